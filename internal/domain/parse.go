package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// startTimeLayouts are tried in order. time.Parse accepts a fractional second
// after the seconds field even when the layout omits it.
var startTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
}

// RecordError reports a field that could not be parsed.
type RecordError struct {
	Column Column
	Value  string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("column %s: invalid value %q: %v", e.Column, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ParseAccident converts a raw row into an Accident. Only Start_Time,
// Severity and the road-feature flags are strict; coordinates and the
// numeric weather columns degrade to zero.
func ParseAccident(rec RawRecord) (Accident, error) {
	start, err := parseStartTime(rec[ColStartTime])
	if err != nil {
		return Accident{}, &RecordError{Column: ColStartTime, Value: rec[ColStartTime], Err: err}
	}

	severity, err := parseSeverity(rec[ColSeverity])
	if err != nil {
		return Accident{}, &RecordError{Column: ColSeverity, Value: rec[ColSeverity], Err: err}
	}

	acc := Accident{
		Severity:  severity,
		StartTime: start,
		// End_Time is informational; a bad value leaves it zero.
		EndTime: parseTimeOrZero(rec[ColEndTime]),

		DistanceMi: parseFloatOrZero(rec[ColDistance]),
		City:       strings.TrimSpace(rec[ColCity]),
		State:      strings.TrimSpace(rec[ColState]),
		Zipcode:    strings.TrimSpace(rec[ColZipcode]),
		Timezone:   strings.TrimSpace(rec[ColTimezone]),

		TemperatureF:    parseFloatOrZero(rec[ColTemperature]),
		HumidityPct:     parseFloatOrZero(rec[ColHumidity]),
		VisibilityMi:    parseFloatOrZero(rec[ColVisibility]),
		WindSpeedMph:    parseFloatOrZero(rec[ColWindSpeed]),
		PrecipitationIn: parseFloatOrZero(rec[ColPrecipitation]),

		WeatherCondition: strings.TrimSpace(rec[ColWeatherCondition]),
		SunriseSunset:    strings.TrimSpace(rec[ColSunriseSunset]),
	}

	acc.Geo, acc.HasCoords = parseCoords(rec[ColStartLat], rec[ColStartLng])

	for f := Feature(0); f < NumFeatures; f++ {
		col := f.Column()
		v, err := parseFlag(rec[col])
		if err != nil {
			return Accident{}, &RecordError{Column: col, Value: rec[col], Err: err}
		}
		acc.Features[f] = v
	}

	return acc, nil
}

// parseStartTime parses the dataset's timestamp formats. The wall-clock
// value is kept as written and tagged UTC.
func parseStartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range startTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			// Keep the local wall clock of offset forms rather than converting.
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

func parseTimeOrZero(s string) time.Time {
	t, err := parseStartTime(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseSeverity accepts "3" and the float form "3.0" that some exports use.
func parseSeverity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

// parseFlag parses a road-feature column. Empty means false.
func parseFlag(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseCoords(lat, lng string) (Geo, bool) {
	la, errLat := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lo, errLng := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if errLat != nil || errLng != nil {
		return Geo{}, false
	}
	// Negated form also rejects NaN.
	if !(la >= -90 && la <= 90) || !(lo >= -180 && lo <= 180) {
		return Geo{}, false
	}
	return Geo{Lat: la, Lng: lo}, true
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
