package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seedable random number generator. It is not safe for
// concurrent use; each search strategy owns its own source.
type RandSource struct {
	rng  *rand.Rand
	seed int64
}

// NewRandSource creates a new random source with the given seed.
// A zero seed selects a time-based seed.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the source was created with.
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// BernoulliBool returns true with probability p, false otherwise
func (r *RandSource) BernoulliBool(p float64) bool {
	return r.rng.Float64() < p
}

// DistinctExcluding returns k distinct indices drawn uniformly from [0, n),
// none equal to exclude. It returns nil when fewer than k candidates exist.
func (r *RandSource) DistinctExcluding(n, k, exclude int) []int {
	candidates := n
	if exclude >= 0 && exclude < n {
		candidates--
	}
	if k > candidates || k < 0 {
		return nil
	}

	out := make([]int, 0, k)
	picked := make(map[int]bool, k+1)
	picked[exclude] = true
	for len(out) < k {
		idx := r.rng.Intn(n)
		if picked[idx] {
			continue
		}
		picked[idx] = true
		out = append(out, idx)
	}
	return out
}

// WeightedIndex draws an index with probability proportional to weights[i].
// Non-positive weights are never drawn unless every weight is non-positive,
// in which case the draw is uniform.
func (r *RandSource) WeightedIndex(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return r.rng.Intn(len(weights))
	}

	target := r.rng.Float64() * total
	acc := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if target < acc {
			return i
		}
	}
	return last
}
