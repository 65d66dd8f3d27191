package main

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-analysis/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-analysis/internal/mockdata"
	"github.com/couchcryptid/accident-analysis/internal/observability"
	"github.com/couchcryptid/accident-analysis/internal/pipeline"
	"github.com/couchcryptid/accident-analysis/internal/report"
)

// fixture writes a mock CSV and the report the pipeline produces for it.
func fixture(t *testing.T, rows, badRowEvery, chunkSize, maxChunks int) (csvPath string, rep report.Report) {
	t.Helper()
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "accidents.csv")

	f, err := os.Create(csvPath)
	require.NoError(t, err)
	opts := mockdata.DefaultOptions()
	opts.Rows = rows
	opts.BadRowEvery = badRowEvery
	require.NoError(t, mockdata.Generate(f, opts))
	require.NoError(t, f.Close())

	reader, err := csvfile.Open(csvPath, chunkSize, slog.Default())
	require.NoError(t, err)
	defer reader.Close()

	rng := rand.New(rand.NewPCG(1, 2))
	p := pipeline.New(reader, pipeline.NewChunkAggregator(0.2, rng), slog.Default(), observability.NewMetricsForTesting(), maxChunks)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	rep = report.Build(res, report.Meta{Input: csvPath, ChunkSize: chunkSize, MaxChunks: maxChunks, TopWeather: 5}, res.Aggregates.Sample)
	return csvPath, rep
}

func writeReport(t *testing.T, rep report.Report) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), report.FileName)
	require.NoError(t, report.WriteJSON(path, rep))
	return path
}

func TestRun_ReportMatchesRecount(t *testing.T) {
	csvPath, rep := fixture(t, 420, 0, 100, 0)

	var out bytes.Buffer
	code := run(&out, csvPath, writeReport(t, rep))

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_FailedChunksAndLimit(t *testing.T) {
	csvPath, rep := fixture(t, 420, 250, 100, 3)
	require.Len(t, rep.FailedChunks, 1)

	var out bytes.Buffer
	assert.Equal(t, 0, run(&out, csvPath, writeReport(t, rep)), out.String())
}

func TestRun_DetectsTamperedReport(t *testing.T) {
	csvPath, rep := fixture(t, 250, 0, 100, 0)
	rep.Rows++
	rep.HourOfDay[3].Count += 5
	rep.RoadFeatures[0].Count = -1

	var out bytes.Buffer
	code := run(&out, csvPath, writeReport(t, rep))

	assert.Equal(t, 1, code)
	s := out.String()
	assert.Contains(t, s, "Validation FAILED.")
	assert.Contains(t, s, "rows aggregated")
	assert.Contains(t, s, "hour 3")
	assert.Contains(t, s, rep.RoadFeatures[0].Feature)
}

func TestRun_DetectsWrongChunking(t *testing.T) {
	csvPath, rep := fixture(t, 250, 0, 100, 0)
	rep.ChunkSize = 50

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, csvPath, writeReport(t, rep)))
	assert.Contains(t, out.String(), "processed chunks differ")
}

func TestRun_MissingFiles(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, "nope.csv", filepath.Join(t.TempDir(), "missing.json")))
	assert.Contains(t, out.String(), "FATAL")

	_, rep := fixture(t, 10, 0, 5, 0)
	out.Reset()
	assert.Equal(t, 1, run(&out, filepath.Join(t.TempDir(), "nope.csv"), writeReport(t, rep)))
	assert.Contains(t, out.String(), "FATAL: recount")
}
