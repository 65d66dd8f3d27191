package domain

import (
	"math"
	"math/rand/v2"
	"sort"
)

// SampleIndices draws round(fraction*n) distinct indices from [0, n) without
// replacement. The result is sorted so callers keep row order.
func SampleIndices(rng *rand.Rand, n int, fraction float64) []int {
	if n <= 0 || fraction <= 0 {
		return nil
	}
	if fraction > 1 {
		fraction = 1
	}
	k := int(math.Round(fraction * float64(n)))
	if k == 0 {
		return nil
	}
	idx := partialShuffle(rng, n, k)
	sort.Ints(idx)
	return idx
}

// SamplePoints returns min(n, len(points)) points drawn without replacement.
// The input slice is not modified.
func SamplePoints(rng *rand.Rand, points []HotspotPoint, n int) []HotspotPoint {
	if n <= 0 || len(points) == 0 {
		return nil
	}
	if n >= len(points) {
		out := make([]HotspotPoint, len(points))
		copy(out, points)
		return out
	}
	idx := partialShuffle(rng, len(points), n)
	out := make([]HotspotPoint, n)
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}

// partialShuffle runs k steps of a Fisher-Yates shuffle over [0, n) and
// returns the first k positions.
func partialShuffle(rng *rand.Rand, n, k int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}
