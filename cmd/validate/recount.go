package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/report"
)

// tally is an independent recount of the CSV using the report's chunking.
type tally struct {
	processed  []int
	failed     []int
	rowsRead   int64
	rows       int64
	hours      [24]int64
	days       [7]int64 // Monday first
	weather    map[string]int64
	features   map[string]int64
	withCoords int64
}

func loadReport(path string) (report.Report, error) {
	rep, err := report.ReadJSON(path)
	if err != nil {
		return rep, err
	}
	if rep.ChunkSize <= 0 {
		return rep, fmt.Errorf("report %s has no chunk_size", path)
	}
	return rep, nil
}

// recount walks path in chunks of chunkSize rows, stopping after maxChunks
// attempted chunks when maxChunks > 0. A chunk containing any malformed or
// unparseable row contributes nothing.
func recount(path string, chunkSize, maxChunks int) (*tally, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := colIdx[h]; !dup {
			colIdx[h] = i
		}
	}
	for _, name := range domain.Columns() {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("header missing column %q", name)
		}
	}

	t := &tally{
		weather:  make(map[string]int64),
		features: make(map[string]int64),
	}

	var (
		chunk   []domain.RawRecord
		bad     bool
		attempt int
	)
	flush := func() {
		t.finishChunk(attempt, chunk, bad)
		attempt++
		chunk = chunk[:0]
		bad = false
	}

	for maxChunks <= 0 || attempt < maxChunks {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		switch {
		case errors.As(err, &perr):
			bad = true
			chunk = append(chunk, domain.RawRecord{})
		case err != nil:
			return nil, err
		default:
			chunk = append(chunk, project(row, colIdx))
		}
		t.rowsRead++
		if len(chunk) == chunkSize {
			flush()
		}
	}
	if len(chunk) > 0 {
		flush()
	}
	return t, nil
}

func project(row []string, colIdx map[string]int) domain.RawRecord {
	var rec domain.RawRecord
	for c := domain.Column(0); c < domain.ColumnCount; c++ {
		if i := colIdx[c.String()]; i < len(row) {
			rec[c] = row[i]
		}
	}
	return rec
}

func (t *tally) finishChunk(index int, recs []domain.RawRecord, bad bool) {
	if bad {
		t.failed = append(t.failed, index)
		return
	}
	parsed := make([]domain.Accident, 0, len(recs))
	for _, rec := range recs {
		acc, err := domain.ParseAccident(rec)
		if err != nil {
			t.failed = append(t.failed, index)
			return
		}
		parsed = append(parsed, acc)
	}

	t.processed = append(t.processed, index)
	for _, acc := range parsed {
		t.rows++
		t.hours[acc.StartTime.Hour()]++
		t.days[(int(acc.StartTime.Weekday())+6)%7]++
		if acc.WeatherCondition != "" {
			t.weather[acc.WeatherCondition]++
		}
		for f := domain.Feature(0); f < domain.NumFeatures; f++ {
			if acc.Features[f] {
				t.features[f.String()]++
			}
		}
		if acc.HasCoords {
			t.withCoords++
		}
	}
}
