package domain

import "time"

// Column identifies one of the projected CSV columns.
type Column int

// Projected columns, in the order they are stored in a RawRecord.
const (
	ColSeverity Column = iota
	ColStartTime
	ColEndTime
	ColStartLat
	ColStartLng
	ColDistance
	ColCity
	ColState
	ColZipcode
	ColTimezone
	ColTemperature
	ColHumidity
	ColVisibility
	ColWindSpeed
	ColPrecipitation
	ColWeatherCondition
	ColAmenity
	ColBump
	ColCrossing
	ColJunction
	ColNoExit
	ColRailway
	ColRoundabout
	ColStation
	ColStop
	ColTrafficSignal
	ColSunriseSunset

	ColumnCount
)

var columnNames = [ColumnCount]string{
	"Severity", "Start_Time", "End_Time", "Start_Lat", "Start_Lng",
	"Distance(mi)", "City", "State", "Zipcode", "Timezone",
	"Temperature(F)", "Humidity(%)", "Visibility(mi)",
	"Wind_Speed(mph)", "Precipitation(in)", "Weather_Condition",
	"Amenity", "Bump", "Crossing", "Junction", "No_Exit",
	"Railway", "Roundabout", "Station", "Stop", "Traffic_Signal",
	"Sunrise_Sunset",
}

// String returns the CSV header name of the column.
func (c Column) String() string {
	if c < 0 || c >= ColumnCount {
		return "unknown"
	}
	return columnNames[c]
}

// Columns returns the header names of every projected column.
func Columns() []string {
	out := make([]string, ColumnCount)
	copy(out, columnNames[:])
	return out
}

// RawRecord holds the projected string fields of one CSV row.
type RawRecord [ColumnCount]string

// Get returns the raw value of column c.
func (r *RawRecord) Get(c Column) string {
	return r[c]
}

// RawChunk is a batch of consecutive rows read from the source file.
type RawChunk struct {
	Index    int   // zero-based chunk number
	FirstRow int64 // zero-based data row number of Records[0]
	Records  []RawRecord

	// ReadErr is set when the CSV reader hit malformed input inside this
	// chunk. The chunk is still delivered so the reader can move past it.
	ReadErr error
}

// Feature is one of the boolean road-feature annotations.
type Feature int

// Road features, in CSV column order.
const (
	FeatureAmenity Feature = iota
	FeatureBump
	FeatureCrossing
	FeatureJunction
	FeatureNoExit
	FeatureRailway
	FeatureRoundabout
	FeatureStation
	FeatureStop
	FeatureTrafficSignal

	NumFeatures
)

// Column returns the CSV column backing the feature.
func (f Feature) Column() Column {
	return ColAmenity + Column(f)
}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return "unknown"
	}
	return f.Column().String()
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Accident is a parsed row of the dataset.
type Accident struct {
	Severity  int
	StartTime time.Time
	EndTime   time.Time

	Geo       Geo
	HasCoords bool

	DistanceMi float64
	City       string
	State      string
	Zipcode    string
	Timezone   string

	TemperatureF    float64
	HumidityPct     float64
	VisibilityMi    float64
	WindSpeedMph    float64
	PrecipitationIn float64

	WeatherCondition string
	Features         [NumFeatures]bool
	SunriseSunset    string
}

// HotspotPoint is one entry of the spatial sample used for the hotspot plot.
type HotspotPoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Severity int     `json:"severity"`
}
