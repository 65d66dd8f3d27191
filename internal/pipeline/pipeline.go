package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/accident-analysis/internal/domain"
	"github.com/couchcryptid/accident-analysis/internal/observability"
)

// ChunkExtractor reads the next chunk of raw records from the source.
// It returns io.EOF when the source is exhausted.
type ChunkExtractor interface {
	ExtractChunk(ctx context.Context) (domain.RawChunk, error)
}

// Aggregator reduces one raw chunk into partial aggregates.
type Aggregator interface {
	Aggregate(ctx context.Context, chunk domain.RawChunk) (*domain.Aggregates, error)
}

// Progress receives one tick per attempted chunk.
type Progress interface {
	Add(n int) error
}

// ChunkFailure records a chunk that was skipped.
type ChunkFailure struct {
	Index int    `json:"index"`
	Rows  int    `json:"rows"`
	Error string `json:"error"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	Aggregates      *domain.Aggregates
	ChunksProcessed []int // zero-based indexes of merged chunks
	FailedChunks    []ChunkFailure
	RowsRead        int64 // rows extracted, including those of failed chunks
}

// ChunksAttempted is the number of chunks extracted, merged or not.
func (r *Result) ChunksAttempted() int {
	return len(r.ChunksProcessed) + len(r.FailedChunks)
}

// Status is a point-in-time view of a running pipeline.
type Status struct {
	Running         bool  `json:"running"`
	ChunksProcessed int64 `json:"chunks_processed"`
	ChunksFailed    int64 `json:"chunks_failed"`
	Rows            int64 `json:"rows"`
}

// Pipeline orchestrates the extract-aggregate-merge loop.
type Pipeline struct {
	extractor  ChunkExtractor
	aggregator Aggregator
	logger     *slog.Logger
	metrics    *observability.Metrics
	progress   Progress
	maxChunks  int

	ready   atomic.Bool
	running atomic.Bool
	done    atomic.Int64
	failed  atomic.Int64
	rows    atomic.Int64
}

// New creates a Pipeline. maxChunks <= 0 processes the whole source.
func New(e ChunkExtractor, a Aggregator, logger *slog.Logger, metrics *observability.Metrics, maxChunks int) *Pipeline {
	return &Pipeline{
		extractor:  e,
		aggregator: a,
		logger:     logger,
		metrics:    metrics,
		maxChunks:  maxChunks,
	}
}

// SetProgress attaches a progress sink ticked once per chunk.
func (p *Pipeline) SetProgress(progress Progress) {
	p.progress = progress
}

// CheckReadiness returns nil once at least one chunk has been merged,
// or an error describing why the run is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not merged any chunks yet")
	}
	return nil
}

// Status reports progress so far. It is safe to call while Run is active.
func (p *Pipeline) Status() Status {
	return Status{
		Running:         p.running.Load(),
		ChunksProcessed: p.done.Load(),
		ChunksFailed:    p.failed.Load(),
		Rows:            p.rows.Load(),
	}
}

// Run processes chunks until the source is exhausted, the chunk limit is
// reached, or ctx is cancelled. A chunk that fails to aggregate is logged
// and skipped. Extract errors end the run. On cancellation the partial
// result is returned together with ctx.Err().
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.logger.Info("pipeline started", "max_chunks", p.maxChunks)
	p.metrics.PipelineRunning.Set(1)
	p.running.Store(true)
	defer func() {
		p.running.Store(false)
		p.metrics.PipelineRunning.Set(0)
	}()

	result := &Result{Aggregates: domain.NewAggregates()}

	for p.maxChunks <= 0 || result.ChunksAttempted() < p.maxChunks {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err)
			return result, err
		}

		done, err := p.processChunk(ctx, result)
		if err != nil {
			return result, err
		}
		if done {
			break
		}
	}

	p.logger.Info("pipeline finished",
		"chunks_processed", len(result.ChunksProcessed),
		"chunks_failed", len(result.FailedChunks),
		"rows", result.Aggregates.Rows,
	)
	return result, nil
}

// processChunk runs one extract-aggregate-merge cycle. It reports done when
// the source is exhausted.
func (p *Pipeline) processChunk(ctx context.Context, result *Result) (bool, error) {
	start := time.Now()

	chunk, err := p.extractor.ExtractChunk(ctx)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("extract chunk %d: %w", result.ChunksAttempted()+1, err)
	}

	p.logger.Info("processing chunk", "chunk", chunk.Index+1, "rows", len(chunk.Records))
	result.RowsRead += int64(len(chunk.Records))
	p.metrics.ChunkRows.Observe(float64(len(chunk.Records)))
	defer func() {
		p.metrics.ChunkDuration.Observe(time.Since(start).Seconds())
		p.tick()
	}()

	partial, err := p.aggregator.Aggregate(ctx, chunk)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		p.logger.Warn("chunk failed, skipping",
			"chunk", chunk.Index+1,
			"first_row", chunk.FirstRow+1,
			"error", err,
		)
		p.metrics.ChunkErrors.Inc()
		p.failed.Add(1)
		result.FailedChunks = append(result.FailedChunks, ChunkFailure{
			Index: chunk.Index,
			Rows:  len(chunk.Records),
			Error: err.Error(),
		})
		return false, nil
	}

	result.Aggregates.Merge(partial)
	result.ChunksProcessed = append(result.ChunksProcessed, chunk.Index)

	p.metrics.ChunksProcessed.Inc()
	p.done.Add(1)
	p.rows.Add(partial.Rows)
	p.metrics.RowsAggregated.Add(float64(partial.Rows))
	p.ready.Store(true)
	return false, nil
}

func (p *Pipeline) tick() {
	if p.progress == nil {
		return
	}
	if err := p.progress.Add(1); err != nil {
		p.logger.Debug("progress update failed", "error", err)
	}
}
