package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
// A single RNG is threaded through every stochastic call of a simulation so a
// seed reproduces a run exactly.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a uniform value in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// IntN returns a uniform value in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Chance reports true with probability p. Probabilities outside (0, 1) are
// decided without consuming a draw.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.r.Float64() < p
}

// Gauss samples a normal distribution with the given mean and standard deviation.
func (r *RNG) Gauss(mean, stddev float64) float64 {
	return mean + stddev*r.r.NormFloat64()
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are never picked; -1 is returned when no weight is positive.
func (r *RNG) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := r.r.Float64() * total
	running := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		running += w
		last = i
		if target < running {
			return i
		}
	}
	return last
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
