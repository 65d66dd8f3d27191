// Package report builds the JSON run summary written next to the charts.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/pipeline"
)

// FileName is the report's name inside the output directory.
const FileName = "report.json"

// Meta describes how the run was configured.
type Meta struct {
	Input      string
	ChunkSize  int
	MaxChunks  int
	TopWeather int
	Seed       uint64
}

// Report is the serialized outcome of one analysis run.
type Report struct {
	RunID           string                  `json:"run_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	Input           string                  `json:"input"`
	ChunkSize       int                     `json:"chunk_size"`
	MaxChunks       int                     `json:"max_chunks"`
	Seed            uint64                  `json:"seed"`
	ChunksProcessed []int                   `json:"chunks_processed"`
	FailedChunks    []pipeline.ChunkFailure `json:"failed_chunks"`
	RowsRead        int64                   `json:"rows_read"`
	Rows            int64                   `json:"rows"`
	HourOfDay       []domain.HourCount      `json:"hour_of_day"`
	DayOfWeek       []domain.DayCount       `json:"day_of_week"`
	Weather         []domain.WeatherCount   `json:"weather"`
	TopWeather      []domain.WeatherCount   `json:"top_weather"`
	RoadFeatures    []domain.FeatureCount   `json:"road_features"`
	SampleSize      int                     `json:"sample_size"`
	Hotspots        []domain.HotspotPoint   `json:"-"`
}

// Build assembles a Report from a pipeline result. hotspots is the scatter
// sample actually plotted.
func Build(res *pipeline.Result, meta Meta, hotspots []domain.HotspotPoint) Report {
	agg := res.Aggregates
	if agg == nil {
		agg = domain.NewAggregates()
	}
	processed := res.ChunksProcessed
	if processed == nil {
		processed = []int{}
	}
	failed := res.FailedChunks
	if failed == nil {
		failed = []pipeline.ChunkFailure{}
	}
	return Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     domain.Now().UTC(),
		Input:           meta.Input,
		ChunkSize:       meta.ChunkSize,
		MaxChunks:       meta.MaxChunks,
		Seed:            meta.Seed,
		ChunksProcessed: processed,
		FailedChunks:    failed,
		RowsRead:        res.RowsRead,
		Rows:            agg.Rows,
		HourOfDay:       agg.HourTotals(),
		DayOfWeek:       agg.DayTotals(),
		Weather:         agg.WeatherRanking(),
		TopWeather:      agg.TopWeather(meta.TopWeather),
		RoadFeatures:    agg.FeatureRanking(),
		SampleSize:      len(hotspots),
		Hotspots:        hotspots,
	}
}

// WriteJSON writes r as indented JSON to path, creating parent directories.
func WriteJSON(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (Report, error) {
	var r Report
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read report: %w", err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("decode report %s: %w", path, err)
	}
	return r, nil
}
