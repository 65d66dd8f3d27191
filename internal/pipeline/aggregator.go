package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/couchcryptid/accident-analysis/internal/domain"
)

// ChunkAggregator implements Aggregator by parsing every record of a chunk
// and reducing it into a fresh domain.Aggregates.
type ChunkAggregator struct {
	sampleFraction float64
	rng            *rand.Rand
}

// NewChunkAggregator creates a ChunkAggregator that keeps sampleFraction of
// each chunk's rows for the hotspot sample. rng must not be shared with
// other goroutines.
func NewChunkAggregator(sampleFraction float64, rng *rand.Rand) *ChunkAggregator {
	return &ChunkAggregator{
		sampleFraction: sampleFraction,
		rng:            rng,
	}
}

// Aggregate reduces a chunk. Any read or parse failure rejects the whole
// chunk so partial results never reach the running totals.
func (a *ChunkAggregator) Aggregate(ctx context.Context, chunk domain.RawChunk) (*domain.Aggregates, error) {
	if chunk.ReadErr != nil {
		return nil, fmt.Errorf("read: %w", chunk.ReadErr)
	}

	agg := domain.NewAggregates()
	candidates := make([]domain.HotspotPoint, len(chunk.Records))
	hasCoords := make([]bool, len(chunk.Records))

	for i := range chunk.Records {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		acc, err := domain.ParseAccident(chunk.Records[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", chunk.FirstRow+int64(i)+1, err)
		}
		agg.Add(acc)

		candidates[i] = domain.HotspotPoint{Lat: acc.Geo.Lat, Lng: acc.Geo.Lng, Severity: acc.Severity}
		hasCoords[i] = acc.HasCoords
	}

	// Rows are drawn before the coordinate filter, so the kept share can be
	// slightly under the fraction when coordinates are missing.
	for _, i := range domain.SampleIndices(a.rng, len(chunk.Records), a.sampleFraction) {
		if hasCoords[i] {
			agg.Sample = append(agg.Sample, candidates[i])
		}
	}

	return agg, nil
}
