package domain

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStartTime = "2016-02-08 05:46:00"

func makeRecord(mods map[Column]string) RawRecord {
	var rec RawRecord
	rec[ColSeverity] = "3"
	rec[ColStartTime] = testStartTime
	rec[ColEndTime] = "2016-02-08 11:00:00"
	rec[ColStartLat] = "39.865147"
	rec[ColStartLng] = "-84.058723"
	rec[ColDistance] = "0.01"
	rec[ColCity] = "Dayton"
	rec[ColState] = "OH"
	rec[ColZipcode] = "45424"
	rec[ColTimezone] = "US/Eastern"
	rec[ColTemperature] = "36.9"
	rec[ColHumidity] = "91.0"
	rec[ColVisibility] = "10.0"
	rec[ColWindSpeed] = ""
	rec[ColPrecipitation] = "0.02"
	rec[ColWeatherCondition] = "Light Rain"
	for f := Feature(0); f < NumFeatures; f++ {
		rec[f.Column()] = "False"
	}
	rec[ColSunriseSunset] = "Night"
	for c, v := range mods {
		rec[c] = v
	}
	return rec
}

func TestParseAccident(t *testing.T) {
	t.Run("typical row", func(t *testing.T) {
		acc, err := ParseAccident(makeRecord(map[Column]string{
			ColTrafficSignal: "True",
			ColCrossing:      "true",
		}))
		require.NoError(t, err)

		assert.Equal(t, 3, acc.Severity)
		assert.Equal(t, time.Date(2016, 2, 8, 5, 46, 0, 0, time.UTC), acc.StartTime)
		assert.Equal(t, time.Date(2016, 2, 8, 11, 0, 0, 0, time.UTC), acc.EndTime)
		assert.True(t, acc.HasCoords)
		assert.InDelta(t, 39.865147, acc.Geo.Lat, 1e-9)
		assert.InDelta(t, -84.058723, acc.Geo.Lng, 1e-9)
		assert.Equal(t, "Dayton", acc.City)
		assert.Equal(t, "OH", acc.State)
		assert.Equal(t, "Light Rain", acc.WeatherCondition)
		assert.InDelta(t, 36.9, acc.TemperatureF, 1e-9)
		assert.Zero(t, acc.WindSpeedMph)
		assert.True(t, acc.Features[FeatureTrafficSignal])
		assert.True(t, acc.Features[FeatureCrossing])
		assert.False(t, acc.Features[FeatureBump])
	})

	t.Run("missing coordinates are not an error", func(t *testing.T) {
		acc, err := ParseAccident(makeRecord(map[Column]string{ColStartLat: "", ColStartLng: "-84.1"}))
		require.NoError(t, err)
		assert.False(t, acc.HasCoords)
		assert.Equal(t, Geo{}, acc.Geo)
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		acc, err := ParseAccident(makeRecord(map[Column]string{ColStartLat: "NaN"}))
		require.NoError(t, err)
		assert.False(t, acc.HasCoords)
	})

	t.Run("empty severity", func(t *testing.T) {
		acc, err := ParseAccident(makeRecord(map[Column]string{ColSeverity: ""}))
		require.NoError(t, err)
		assert.Zero(t, acc.Severity)
	})

	t.Run("invalid start time", func(t *testing.T) {
		_, err := ParseAccident(makeRecord(map[Column]string{ColStartTime: "yesterday"}))
		require.Error(t, err)

		var recErr *RecordError
		require.True(t, errors.As(err, &recErr))
		assert.Equal(t, ColStartTime, recErr.Column)
		assert.Contains(t, err.Error(), "Start_Time")
	})

	t.Run("invalid severity", func(t *testing.T) {
		_, err := ParseAccident(makeRecord(map[Column]string{ColSeverity: "high"}))
		var recErr *RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, ColSeverity, recErr.Column)
	})

	t.Run("invalid road feature flag", func(t *testing.T) {
		_, err := ParseAccident(makeRecord(map[Column]string{ColJunction: "maybe"}))
		var recErr *RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, ColJunction, recErr.Column)
		var numErr *strconv.NumError
		assert.ErrorAs(t, err, &numErr)
	})

	t.Run("bad end time is ignored", func(t *testing.T) {
		acc, err := ParseAccident(makeRecord(map[Column]string{ColEndTime: "n/a"}))
		require.NoError(t, err)
		assert.True(t, acc.EndTime.IsZero())
	})
}

func TestParseStartTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"plain", "2016-02-08 05:46:00", time.Date(2016, 2, 8, 5, 46, 0, 0, time.UTC)},
		{"nanoseconds", "2016-02-08 05:46:00.000000000", time.Date(2016, 2, 8, 5, 46, 0, 0, time.UTC)},
		{"fractional", "2022-09-08 05:49:30.5", time.Date(2022, 9, 8, 5, 49, 30, 500000000, time.UTC)},
		{"iso T separator", "2022-09-08T05:49:30", time.Date(2022, 9, 8, 5, 49, 30, 0, time.UTC)},
		{"rfc3339 keeps wall clock", "2022-09-08T05:49:30-05:00", time.Date(2022, 9, 8, 5, 49, 30, 0, time.UTC)},
		{"space separator with offset", "2016-02-08 05:46:00-05:00", time.Date(2016, 2, 8, 5, 46, 0, 0, time.UTC)},
		{"space separator with fraction and offset", "2016-02-08 23:10:07.25+01:00", time.Date(2016, 2, 8, 23, 10, 7, 250000000, time.UTC)},
		{"space separator zulu", "2016-02-08 05:46:00Z", time.Date(2016, 2, 8, 5, 46, 0, 0, time.UTC)},
		{"no seconds", "2019-06-12 10:10", time.Date(2019, 6, 12, 10, 10, 0, 0, time.UTC)},
		{"padded", "  2016-02-08 05:46:00 ", time.Date(2016, 2, 8, 5, 46, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStartTime(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, bad := range []string{"", "08/02/2016 05:46", "2016-13-01 00:00:00"} {
		_, err := parseStartTime(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"4", 4, false},
		{"2.0", 2, false},
		{"", 0, false},
		{"2.5", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSeverity(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, int(ColumnCount))
	assert.Equal(t, "Severity", cols[0])
	assert.Equal(t, "Sunrise_Sunset", cols[len(cols)-1])
	assert.Equal(t, "Distance(mi)", ColDistance.String())
	assert.Equal(t, "unknown", Column(-1).String())

	assert.Equal(t, "Amenity", FeatureAmenity.String())
	assert.Equal(t, "Traffic_Signal", FeatureTrafficSignal.String())
	assert.Equal(t, ColNoExit, FeatureNoExit.Column())
}
