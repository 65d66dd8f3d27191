package chart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/observability"
)

// Chart file names, one per rendered figure.
const (
	HourOfDayFile    = "hour_of_day.png"
	DayOfWeekFile    = "day_of_week.png"
	WeatherFile      = "weather_top10.png"
	RoadFeaturesFile = "road_features.png"
	HotspotsFile     = "hotspots.png"
)

// ErrNoData is returned for a chart whose input table is empty.
var ErrNoData = errors.New("no data to plot")

// Data is everything the five charts plot.
type Data struct {
	Hours    []domain.HourCount
	Days     []domain.DayCount
	Weather  []domain.WeatherCount // already cut to the top N
	Features []domain.FeatureCount
	Hotspots []domain.HotspotPoint
}

// Artifact is a file produced by the run.
type Artifact struct {
	Name        string
	Path        string
	ContentType string
}

// Renderer writes PNG charts into a directory.
type Renderer struct {
	dir     string
	width   int
	height  int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRenderer creates a Renderer writing width x height images into dir.
func NewRenderer(dir string, width, height int, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{
		dir:     dir,
		width:   width,
		height:  height,
		logger:  logger,
		metrics: metrics,
	}
}

type renderFunc func(w io.Writer, d Data, width, height int) error

// RenderAll renders every chart. A failing chart does not stop the others;
// the returned error joins all failures. Charts without data are skipped.
func (r *Renderer) RenderAll(d Data) ([]Artifact, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	jobs := []struct {
		file   string
		render renderFunc
	}{
		{HourOfDayFile, renderHourOfDay},
		{DayOfWeekFile, renderDayOfWeek},
		{WeatherFile, renderWeather},
		{RoadFeaturesFile, renderRoadFeatures},
		{HotspotsFile, renderHotspots},
	}

	var artifacts []Artifact
	var errs []error
	for _, job := range jobs {
		path := filepath.Join(r.dir, job.file)
		err := r.renderFile(path, d, job.render)
		switch {
		case errors.Is(err, ErrNoData):
			r.logger.Warn("chart skipped", "chart", job.file, "reason", err)
			r.metrics.ChartsRendered.WithLabelValues(job.file, "skipped").Inc()
		case err != nil:
			r.logger.Error("chart render failed", "chart", job.file, "error", err)
			r.metrics.ChartsRendered.WithLabelValues(job.file, "error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", job.file, err))
		default:
			r.logger.Info("chart rendered", "path", path)
			r.metrics.ChartsRendered.WithLabelValues(job.file, "success").Inc()
			artifacts = append(artifacts, Artifact{Name: job.file, Path: path, ContentType: "image/png"})
		}
	}
	return artifacts, errors.Join(errs...)
}

func (r *Renderer) renderFile(path string, d Data, render renderFunc) (err error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = render(f, d, r.width, r.height); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
