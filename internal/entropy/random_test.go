package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceIsReproducible(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(7), b.Intn(7))
	}
}

func TestZeroSeedIsReplaced(t *testing.T) {
	s := NewSource(0)
	assert.NotZero(t, s.Seed())
}

func TestRanges(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 1000; i++ {
		u := s.Uniform(5000, 10000)
		assert.GreaterOrEqual(t, u, 5000.0)
		assert.Less(t, u, 10000.0)

		n := s.IntRange(500, 1000)
		assert.GreaterOrEqual(t, n, 500)
		assert.Less(t, n, 1000)

		f := s.Uniform32(0.08, 0.12)
		assert.GreaterOrEqual(t, f, float32(0.08))
		assert.LessOrEqual(t, f, float32(0.12))
	}
	assert.Equal(t, 3, s.IntRange(3, 3))
}

func TestChanceExtremes(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Chance(0))
		assert.True(t, s.Chance(1))
	}
}
