package domain

import (
	"sort"
	"time"
)

// Weekdays lists the days in the order used by every day-of-week table.
var Weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// HourCount is the number of accidents that started in a clock hour.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// DayCount is the number of accidents that started on a weekday.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// WeatherCount is the number of accidents reported under a weather condition.
type WeatherCount struct {
	Condition string `json:"condition"`
	Count     int64  `json:"count"`
}

// FeatureCount is the number of accidents flagged with a road feature.
type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int64  `json:"count"`
}

// Aggregates is the running reduction over accident records. The zero value
// is ready to use.
type Aggregates struct {
	Rows     int64
	HourDay  [24][7]int64 // [hour][weekday index, Monday = 0]
	Weather  map[string]int64
	Features [NumFeatures]int64
	Sample   []HotspotPoint
}

// NewAggregates returns an empty reduction.
func NewAggregates() *Aggregates {
	return &Aggregates{Weather: make(map[string]int64)}
}

// weekdayIndex maps time.Weekday (Sunday = 0) to a Monday-first index.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Add folds one accident into the counts. The hotspot sample is drawn
// separately, see SampleIndices.
func (a *Aggregates) Add(acc Accident) {
	a.Rows++
	a.HourDay[acc.StartTime.Hour()][weekdayIndex(acc.StartTime.Weekday())]++
	if acc.WeatherCondition != "" {
		if a.Weather == nil {
			a.Weather = make(map[string]int64)
		}
		a.Weather[acc.WeatherCondition]++
	}
	for f, set := range acc.Features {
		if set {
			a.Features[f]++
		}
	}
}

// Merge adds the counts and sample of o into a.
func (a *Aggregates) Merge(o *Aggregates) {
	if o == nil {
		return
	}
	a.Rows += o.Rows
	for h := range a.HourDay {
		for d := range a.HourDay[h] {
			a.HourDay[h][d] += o.HourDay[h][d]
		}
	}
	if a.Weather == nil {
		a.Weather = make(map[string]int64, len(o.Weather))
	}
	for cond, n := range o.Weather {
		a.Weather[cond] += n
	}
	for f := range a.Features {
		a.Features[f] += o.Features[f]
	}
	a.Sample = append(a.Sample, o.Sample...)
}

// HourTotals returns counts for hours 0 through 23, zero-filled.
func (a *Aggregates) HourTotals() []HourCount {
	out := make([]HourCount, 24)
	for h := range a.HourDay {
		var sum int64
		for _, n := range a.HourDay[h] {
			sum += n
		}
		out[h] = HourCount{Hour: h, Count: sum}
	}
	return out
}

// DayTotals returns counts for Monday through Sunday, zero-filled.
func (a *Aggregates) DayTotals() []DayCount {
	out := make([]DayCount, len(Weekdays))
	for i, d := range Weekdays {
		var sum int64
		for h := range a.HourDay {
			sum += a.HourDay[h][i]
		}
		out[i] = DayCount{Day: d.String(), Count: sum}
	}
	return out
}

// WeatherRanking returns every weather condition ordered by count
// descending, then by name.
func (a *Aggregates) WeatherRanking() []WeatherCount {
	out := make([]WeatherCount, 0, len(a.Weather))
	for cond, n := range a.Weather {
		out = append(out, WeatherCount{Condition: cond, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Condition < out[j].Condition
	})
	return out
}

// TopWeather returns the n most frequent weather conditions.
func (a *Aggregates) TopWeather(n int) []WeatherCount {
	ranked := a.WeatherRanking()
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// FeatureRanking returns all road features ordered by count descending.
// Ties keep column order.
func (a *Aggregates) FeatureRanking() []FeatureCount {
	out := make([]FeatureCount, NumFeatures)
	for f := Feature(0); f < NumFeatures; f++ {
		out[f] = FeatureCount{Feature: f.String(), Count: a.Features[f]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
