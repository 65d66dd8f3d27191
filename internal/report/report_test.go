package report_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/pipeline"
	"github.com/couchcryptid/accident-analysis/internal/report"
)

func testResult() *pipeline.Result {
	agg := domain.NewAggregates()
	monday := time.Date(2023, 3, 6, 8, 15, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		acc := domain.Accident{StartTime: monday, WeatherCondition: "Fair"}
		acc.Features[domain.FeatureJunction] = true
		agg.Add(acc)
	}
	agg.Add(domain.Accident{StartTime: monday.AddDate(0, 0, 6), WeatherCondition: "Rain"})
	agg.Add(domain.Accident{StartTime: monday.Add(2 * time.Hour), WeatherCondition: "Snow"})

	return &pipeline.Result{
		Aggregates:      agg,
		ChunksProcessed: []int{0, 2},
		FailedChunks:    []pipeline.ChunkFailure{{Index: 1, Rows: 4, Error: "row 7: bad"}},
		RowsRead:        9,
	}
}

func TestBuild(t *testing.T) {
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	hotspots := []domain.HotspotPoint{{Lat: 1, Lng: 2, Severity: 3}}
	r := report.Build(testResult(), report.Meta{
		Input:      "accidents.csv",
		ChunkSize:  4,
		MaxChunks:  11,
		TopWeather: 2,
		Seed:       42,
	}, hotspots)

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, frozen, r.GeneratedAt)
	assert.Equal(t, "accidents.csv", r.Input)
	assert.Equal(t, []int{0, 2}, r.ChunksProcessed)
	assert.Len(t, r.FailedChunks, 1)
	assert.Equal(t, int64(9), r.RowsRead)
	assert.Equal(t, int64(5), r.Rows)

	require.Len(t, r.HourOfDay, 24)
	assert.Equal(t, int64(4), r.HourOfDay[8].Count)
	assert.Equal(t, int64(1), r.HourOfDay[10].Count)

	require.Len(t, r.DayOfWeek, 7)
	assert.Equal(t, domain.DayCount{Day: "Monday", Count: 4}, r.DayOfWeek[0])
	assert.Equal(t, domain.DayCount{Day: "Sunday", Count: 1}, r.DayOfWeek[6])

	wantTop := []domain.WeatherCount{
		{Condition: "Fair", Count: 3},
		{Condition: "Rain", Count: 1},
	}
	if diff := cmp.Diff(wantTop, r.TopWeather); diff != "" {
		t.Errorf("TopWeather mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, r.Weather, 3)

	assert.Equal(t, domain.FeatureCount{Feature: "Junction", Count: 3}, r.RoadFeatures[0])
	assert.Equal(t, 1, r.SampleSize)
}

func TestBuild_EmptyResultUsesEmptySlices(t *testing.T) {
	r := report.Build(&pipeline.Result{}, report.Meta{TopWeather: 10}, nil)
	assert.NotNil(t, r.ChunksProcessed)
	assert.NotNil(t, r.FailedChunks)
	assert.Zero(t, r.Rows)
	assert.Len(t, r.HourOfDay, 24)
	assert.Empty(t, r.TopWeather)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", report.FileName)
	r := report.Build(testResult(), report.Meta{Input: "x.csv", ChunkSize: 4, TopWeather: 10}, nil)

	require.NoError(t, report.WriteJSON(path, r))

	got, err := report.ReadJSON(path)
	require.NoError(t, err)
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("report round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSON_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := report.ReadJSON(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = report.ReadJSON(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode report")
}
