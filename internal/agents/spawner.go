// Affiliate spawning: builds the initial population, whales first.
package agents

import (
	"log/slog"
	"math"

	"github.com/talgya/tokensim/internal/config"
)

// Spawner creates affiliates for a run.
type Spawner struct {
	rng    Rand
	policy config.Tuning
	log    *slog.Logger
}

// NewSpawner creates a spawner drawing whale capacities from rng.
func NewSpawner(rng Rand, t config.Tuning, logger *slog.Logger) *Spawner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Spawner{rng: rng, policy: t, log: logger}
}

// WhaleCount returns how many of count affiliates are whales.
func (s *Spawner) WhaleCount(count int) int {
	return int(math.Floor(float64(count)*s.policy.WhaleFraction + 1e-9))
}

// SpawnPopulation creates count affiliates with IDs 0..count-1. The lowest
// WhaleCount IDs are whales.
func (s *Spawner) SpawnPopulation(count int, rate float64) ([]*Affiliate, error) {
	whales := s.WhaleCount(count)
	if whales == 0 && s.policy.WhaleFraction > 0 {
		s.log.Warn("population too small for any whales",
			"affiliates", count,
			"whale_fraction", s.policy.WhaleFraction,
		)
	}

	population := make([]*Affiliate, 0, count)
	for id := 0; id < count; id++ {
		a, err := NewAffiliate(id, rate, id < whales, s.rng, s.policy, s.log)
		if err != nil {
			return nil, err
		}
		population = append(population, a)
	}
	return population, nil
}
