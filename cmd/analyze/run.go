package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/couchcryptid/accident-analysis/internal/adapter/chart"
	"github.com/couchcryptid/accident-analysis/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/accident-analysis/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/accident-analysis/internal/adapter/kafka"
	"github.com/couchcryptid/accident-analysis/internal/adapter/parquet"
	s3adapter "github.com/couchcryptid/accident-analysis/internal/adapter/s3"
	"github.com/couchcryptid/accident-analysis/internal/config"
	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/observability"
	"github.com/couchcryptid/accident-analysis/internal/pipeline"
	"github.com/couchcryptid/accident-analysis/internal/report"
)

// run executes one analysis. Local outputs are written even when the run is
// interrupted; remote publishing only happens after a complete run.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	logger.Info("loading data", "input", cfg.InputPath, "chunk_size", cfg.ChunkSize, "max_chunks", cfg.MaxChunks)

	reader, err := csvfile.Open(cfg.InputPath, cfg.ChunkSize, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	seed := cfg.SeedOrNow(domain.Now())
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	p := pipeline.New(reader, pipeline.NewChunkAggregator(cfg.SampleFraction, rng), logger, metrics, cfg.MaxChunks)
	if cfg.Progress {
		bar := newProgressBar(cfg.MaxChunks)
		defer bar.Finish() //nolint:errcheck // cosmetic
		p.SetProgress(bar)
	}

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	result, runErr := p.Run(ctx)
	interrupted := runErr != nil && ctx.Err() != nil
	if runErr != nil && !interrupted {
		return runErr
	}
	if interrupted {
		logger.Warn("run interrupted, writing partial results",
			"chunks_processed", len(result.ChunksProcessed),
			"rows", result.Aggregates.Rows,
		)
	}

	logger.Info("aggregating results", "rows", result.Aggregates.Rows, "sample_candidates", len(result.Aggregates.Sample))
	if result.Aggregates.Rows == 0 {
		logger.Warn("no rows were aggregated")
	}

	hotspots := domain.SamplePoints(rng, result.Aggregates.Sample, cfg.ScatterSampleSize)
	rep := report.Build(result, report.Meta{
		Input:      cfg.InputPath,
		ChunkSize:  cfg.ChunkSize,
		MaxChunks:  cfg.MaxChunks,
		TopWeather: cfg.TopWeather,
		Seed:       seed,
	}, hotspots)

	artifacts, outErr := writeOutputs(cfg, rep, logger, metrics)
	if interrupted {
		return errors.Join(runErr, outErr)
	}

	if err := publish(ctx, cfg, rep, artifacts, logger, metrics); err != nil {
		outErr = errors.Join(outErr, err)
	}
	if outErr != nil {
		return outErr
	}

	logger.Info("analysis complete",
		"run_id", rep.RunID,
		"rows", rep.Rows,
		"chunks_processed", len(rep.ChunksProcessed),
		"chunks_failed", len(rep.FailedChunks),
		"output_dir", cfg.OutputDir,
	)
	return nil
}

// writeOutputs renders the charts and writes the report and optional
// Parquet sample. It returns every artifact that was written.
func writeOutputs(cfg *config.Config, rep report.Report, logger *slog.Logger, metrics *observability.Metrics) ([]chart.Artifact, error) {
	renderer := chart.NewRenderer(cfg.OutputDir, cfg.ChartWidth, cfg.ChartHeight, logger, metrics)
	artifacts, chartErr := renderer.RenderAll(chart.Data{
		Hours:    rep.HourOfDay,
		Days:     rep.DayOfWeek,
		Weather:  rep.TopWeather,
		Features: rep.RoadFeatures,
		Hotspots: rep.Hotspots,
	})
	errs := []error{chartErr}

	reportPath := filepath.Join(cfg.OutputDir, report.FileName)
	if err := report.WriteJSON(reportPath, rep); err != nil {
		errs = append(errs, err)
	} else {
		logger.Info("report written", "path", reportPath)
		artifacts = append(artifacts, chart.Artifact{Name: report.FileName, Path: reportPath, ContentType: "application/json"})
	}

	if cfg.SampleParquet {
		path := filepath.Join(cfg.OutputDir, parquet.FileName)
		if err := parquet.WriteHotspots(path, rep.Hotspots); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("hotspot sample written", "path", path, "points", len(rep.Hotspots))
			artifacts = append(artifacts, chart.Artifact{Name: parquet.FileName, Path: path, ContentType: "application/vnd.apache.parquet"})
		}
	}
	return artifacts, errors.Join(errs...)
}

// publish uploads artifacts and sends the report when those sinks are
// configured.
func publish(ctx context.Context, cfg *config.Config, rep report.Report, artifacts []chart.Artifact, logger *slog.Logger, metrics *observability.Metrics) error {
	var errs []error

	if cfg.S3Bucket != "" {
		uploader, err := s3adapter.NewUploader(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, logger, metrics)
		if err != nil {
			errs = append(errs, err)
		} else if err := uploader.UploadArtifacts(ctx, rep.RunID, artifacts); err != nil {
			errs = append(errs, err)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger, metrics)
		if err := pub.Publish(ctx, rep); err != nil {
			errs = append(errs, err)
		}
		if err := pub.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	return errors.Join(errs...)
}

func newProgressBar(maxChunks int) *progressbar.ProgressBar {
	total := maxChunks
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("processing chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Compile-time check that the pipeline satisfies the server's view of a run.
var _ httpadapter.RunMonitor = (*pipeline.Pipeline)(nil)
