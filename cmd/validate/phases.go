package main

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/report"
)

// ── Phase 1: Chunk accounting ──

func validateChunks(rep report.Report, t *tally) *phase {
	p := &phase{name: "Phase 1: Chunk accounting"}

	if diff := cmp.Diff(t.processed, rep.ChunksProcessed, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("processed chunks differ (-recount +report):\n%s", diff)
	}
	failed := make([]int, len(rep.FailedChunks))
	for i, fc := range rep.FailedChunks {
		failed[i] = fc.Index
	}
	if diff := cmp.Diff(t.failed, failed, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("failed chunks differ (-recount +report):\n%s", diff)
	}
	if t.rowsRead != rep.RowsRead {
		p.errorf("rows read: recount=%d, report=%d", t.rowsRead, rep.RowsRead)
	}
	if t.rows != rep.Rows {
		p.errorf("rows aggregated: recount=%d, report=%d", t.rows, rep.Rows)
	}
	return p
}

// ── Phase 2: Hour and weekday tables ──

func validateTemporal(rep report.Report, t *tally) *phase {
	p := &phase{name: "Phase 2: Temporal tables"}

	if len(rep.HourOfDay) != 24 {
		p.errorf("hour_of_day has %d entries, want 24", len(rep.HourOfDay))
	} else {
		var sum int64
		for h, hc := range rep.HourOfDay {
			if hc.Hour != h {
				p.errorf("hour_of_day[%d] is labelled hour %d", h, hc.Hour)
			}
			if hc.Count != t.hours[h] {
				p.errorf("hour %d: recount=%d, report=%d", h, t.hours[h], hc.Count)
			}
			sum += hc.Count
		}
		if sum != rep.Rows {
			p.errorf("hour_of_day sums to %d, rows=%d", sum, rep.Rows)
		}
	}

	if len(rep.DayOfWeek) != 7 {
		p.errorf("day_of_week has %d entries, want 7", len(rep.DayOfWeek))
		return p
	}
	for i, dc := range rep.DayOfWeek {
		if want := domain.Weekdays[i].String(); dc.Day != want {
			p.errorf("day_of_week[%d] is %q, want %q", i, dc.Day, want)
		}
		if dc.Count != t.days[i] {
			p.errorf("%s: recount=%d, report=%d", dc.Day, t.days[i], dc.Count)
		}
	}
	return p
}

// ── Phase 3: Weather ranking ──

func validateWeather(rep report.Report, t *tally) *phase {
	p := &phase{name: "Phase 3: Weather ranking"}

	got := make(map[string]int64, len(rep.Weather))
	for i, wc := range rep.Weather {
		got[wc.Condition] = wc.Count
		if i > 0 && !ranksBefore(rep.Weather[i-1], wc) {
			p.errorf("weather[%d] %q is out of order", i, wc.Condition)
		}
	}
	if diff := cmp.Diff(t.weather, got, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("weather counts differ (-recount +report):\n%s", diff)
	}

	if len(rep.TopWeather) > len(rep.Weather) {
		p.errorf("top_weather has %d entries but only %d conditions exist", len(rep.TopWeather), len(rep.Weather))
	} else if diff := cmp.Diff(rep.Weather[:len(rep.TopWeather)], rep.TopWeather, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("top_weather is not a prefix of weather:\n%s", diff)
	}
	return p
}

func ranksBefore(a, b domain.WeatherCount) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Condition < b.Condition
}

// ── Phase 4: Road features ──

func validateRoadFeatures(rep report.Report, t *tally) *phase {
	p := &phase{name: "Phase 4: Road features"}

	if len(rep.RoadFeatures) != int(domain.NumFeatures) {
		p.errorf("road_features has %d entries, want %d", len(rep.RoadFeatures), domain.NumFeatures)
	}
	for i, fc := range rep.RoadFeatures {
		if fc.Count != t.features[fc.Feature] {
			p.errorf("%s: recount=%d, report=%d", fc.Feature, t.features[fc.Feature], fc.Count)
		}
		if i > 0 && rep.RoadFeatures[i-1].Count < fc.Count {
			p.errorf("road_features[%d] %q is out of order", i, fc.Feature)
		}
	}
	return p
}

// ── Phase 5: Hotspot sample ──

func validateSample(rep report.Report, t *tally) *phase {
	p := &phase{name: "Phase 5: Hotspot sample"}

	if rep.SampleSize < 0 {
		p.errorf("sample_size is negative: %d", rep.SampleSize)
	}
	if int64(rep.SampleSize) > t.withCoords {
		p.errorf("sample_size %d exceeds the %d aggregated rows with coordinates", rep.SampleSize, t.withCoords)
	}
	return p
}
