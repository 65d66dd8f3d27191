package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accident_analysis"

// Metrics holds the Prometheus counters, histograms, and gauges for an analysis run.
type Metrics struct {
	ChunksProcessed prometheus.Counter
	ChunkErrors     prometheus.Counter
	RowsAggregated  prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Per-chunk metrics.
	ChunkRows     prometheus.Histogram
	ChunkDuration prometheus.Histogram

	// Output metrics.
	ChartsRendered   *prometheus.CounterVec // labels: chart, outcome={success,error,skipped}
	ArtifactUploads  *prometheus.CounterVec // labels: outcome={success,error}
	ReportsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ChunksProcessed,
		m.ChunkErrors,
		m.RowsAggregated,
		m.PipelineRunning,
		m.ChunkRows,
		m.ChunkDuration,
		m.ChartsRendered,
		m.ArtifactUploads,
		m.ReportsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ChunksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_processed_total",
			Help:      "Total chunks aggregated and merged.",
		}),
		ChunkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_errors_total",
			Help:      "Total chunks skipped because of read or parse failures.",
		}),
		RowsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_aggregated_total",
			Help:      "Total accident rows folded into the aggregates.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while chunks are being processed, 0 otherwise.",
		}),
		ChunkRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_rows",
			Help:      "Number of rows per extracted chunk.",
			Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000},
		}),
		ChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_processing_duration_seconds",
			Help:      "Duration of a complete extract-aggregate-merge cycle for one chunk.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Chart renders by chart and outcome.",
		}, []string{"chart", "outcome"}),
		ArtifactUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_uploads_total",
			Help:      "Object storage uploads by outcome.",
		}, []string{"outcome"}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Report messages published by outcome.",
		}, []string{"outcome"}),
	}
}
