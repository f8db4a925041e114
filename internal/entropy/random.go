// Package entropy provides the single seeded random stream a simulation run draws from.
// Every stochastic decision in a run goes through one Source so that a seed fully
// determines the trace.
package entropy

import (
	"math/rand"
	"time"
)

// Source is a seeded pseudo-random stream. Not safe for concurrent use; a run
// owns exactly one.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// NewSource creates a stream from the given seed. A zero seed picks one from
// the wall clock; Seed reports the value actually used.
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the stream was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Float32 returns a value in [0, 1).
func (s *Source) Float32() float32 {
	return s.rng.Float32()
}

// Uniform returns a value in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Uniform32 is Uniform narrowed to float32.
func (s *Source) Uniform32(lo, hi float32) float32 {
	return float32(s.Uniform(float64(lo), float64(hi)))
}

// Intn returns a value in [0, n). Panics if n <= 0, like rand.Intn.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// IntRange returns a value in [lo, hi). Returns lo when the range is empty.
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo)
}

// Chance reports whether an event with probability p fires.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}
