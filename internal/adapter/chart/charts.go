package chart

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// severityColors uses alpha 77 (~0.3) so dense clusters read darker.
var severityColors = map[int]drawing.Color{
	1: {R: 102, G: 194, B: 165, A: 77},
	2: {R: 141, G: 160, B: 203, A: 77},
	3: {R: 252, G: 141, B: 98, A: 77},
	4: {R: 231, G: 41, B: 138, A: 77},
}

var (
	lineColor = drawing.Color{R: 226, G: 74, B: 51, A: 255}
	barColor  = drawing.Color{R: 161, G: 201, B: 244, A: 255}
)

func padding() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 48, Left: 20, Right: 24, Bottom: 20}}
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// countRange returns a 0-based range with headroom above the largest value.
// The upper bound is never zero so go-chart never sees an empty range.
func countRange(maxValue float64) *gochart.ContinuousRange {
	upper := math.Ceil(maxValue * 1.1)
	if upper < 1 {
		upper = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: upper}
}

func renderHourOfDay(w io.Writer, d Data, width, height int) error {
	if len(d.Hours) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(d.Hours))
	ys := make([]float64, len(d.Hours))
	ticks := make([]gochart.Tick, 0, len(d.Hours))
	var peak float64
	for i, h := range d.Hours {
		xs[i] = float64(h.Hour)
		ys[i] = float64(h.Count)
		peak = math.Max(peak, ys[i])
		ticks = append(ticks, gochart.Tick{Value: float64(h.Hour), Label: fmt.Sprintf("%d", h.Hour)})
	}

	minX, maxX := xs[0], xs[len(xs)-1]
	if maxX <= minX {
		maxX = minX + 1
	}

	ch := gochart.Chart{
		Title:      "Accidents by Hour of Day",
		Width:      width,
		Height:     height,
		Background: padding(),
		XAxis: gochart.XAxis{
			Name:  "Hour of Day",
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: gochart.YAxis{
			Name:           "Number of Accidents",
			Range:          countRange(peak),
			ValueFormatter: countFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "Count",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2.5,
				},
			},
		},
	}
	return ch.Render(gochart.PNG, w)
}

func renderDayOfWeek(w io.Writer, d Data, width, height int) error {
	if len(d.Days) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, len(d.Days))
	for i, day := range d.Days {
		bars[i] = gochart.Value{Label: day.Day, Value: float64(day.Count)}
	}
	return renderBars(w, "Accidents by Day of Week", "Number of Accidents", bars, width, height)
}

func renderWeather(w io.Writer, d Data, width, height int) error {
	if len(d.Weather) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, len(d.Weather))
	for i, wc := range d.Weather {
		bars[i] = gochart.Value{Label: wc.Condition, Value: float64(wc.Count)}
	}
	title := fmt.Sprintf("Top %d Weather Conditions During Accidents", len(bars))
	return renderBars(w, title, "Number of Accidents", bars, width, height)
}

func renderRoadFeatures(w io.Writer, d Data, width, height int) error {
	if len(d.Features) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, len(d.Features))
	for i, fc := range d.Features {
		bars[i] = gochart.Value{Label: fc.Feature, Value: float64(fc.Count)}
	}
	return renderBars(w, "Accidents by Road Condition", "Number of Accidents", bars, width, height)
}

func renderBars(w io.Writer, title, yName string, bars []gochart.Value, width, height int) error {
	var peak float64
	for i := range bars {
		peak = math.Max(peak, bars[i].Value)
		bars[i].Style = gochart.Style{FillColor: barColor, StrokeColor: barColor}
	}

	// Leave room for the y axis; bars and gaps share the rest 2:1.
	barWidth := (width - 160) * 2 / (3 * len(bars))
	barWidth = max(barWidth, 8)

	bc := gochart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: padding(),
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		XAxis:      gochart.Style{FontSize: 9},
		YAxis: gochart.YAxis{
			Name:           yName,
			Range:          countRange(peak),
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}

func renderHotspots(w io.Writer, d Data, width, height int) error {
	if len(d.Hotspots) == 0 {
		return ErrNoData
	}

	type xy struct{ xs, ys []float64 }
	bySeverity := map[int]*xy{}
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLng, maxLng := math.Inf(1), math.Inf(-1)
	for _, p := range d.Hotspots {
		s := clampSeverity(p.Severity)
		g, ok := bySeverity[s]
		if !ok {
			g = &xy{}
			bySeverity[s] = g
		}
		g.xs = append(g.xs, p.Lng)
		g.ys = append(g.ys, p.Lat)
		minLat, maxLat = math.Min(minLat, p.Lat), math.Max(maxLat, p.Lat)
		minLng, maxLng = math.Min(minLng, p.Lng), math.Max(maxLng, p.Lng)
	}

	var series []gochart.Series
	for s := 0; s <= 4; s++ {
		g, ok := bySeverity[s]
		if !ok {
			continue
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    fmt.Sprintf("Severity %d", s),
			XValues: g.xs,
			YValues: g.ys,
			Style:   pointStyle(s),
		})
	}

	ch := gochart.Chart{
		Title:      "Accident Hotspots in US (Sample)",
		Width:      width,
		Height:     height,
		Background: padding(),
		XAxis: gochart.XAxis{
			Name:  "Longitude",
			Range: paddedRange(minLng, maxLng),
		},
		YAxis: gochart.YAxis{
			Name:  "Latitude",
			Range: paddedRange(minLat, maxLat),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

// pointStyle draws dots only. Higher severities get larger dots.
func pointStyle(severity int) gochart.Style {
	col, ok := severityColors[severity]
	if !ok {
		col = drawing.Color{R: 150, G: 150, B: 150, A: 77}
	}
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		StrokeColor: drawing.ColorTransparent,
		DotColor:    col,
		DotWidth:    1.5 + 1.25*float64(max(severity, 1)-1),
	}
}

func clampSeverity(s int) int {
	if s < 0 || s > 4 {
		return 0
	}
	return s
}

func paddedRange(lo, hi float64) *gochart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

