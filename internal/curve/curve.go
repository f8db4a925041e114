// Package curve implements the bonding curves that map a token's outstanding
// supply to its price. All arithmetic is float32 so traces match across runs.
package curve

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeSupply   = errors.New("supply cannot be negative")
	ErrExponentOverflow = errors.New("exponent coefficient too large, may overflow")
	ErrNonPositiveParam = errors.New("curve parameter must be positive")
	ErrUnknownKind      = errors.New("unknown curve kind")
)

// MaxExponent bounds |k| for the exponential curve.
const MaxExponent = 0.01

// Linear prices supply as m·s + b.
func Linear(supply, m, b float32) (float32, error) {
	if supply < 0 {
		return 0, ErrNegativeSupply
	}
	return m*supply + b, nil
}

// Exponential prices supply as a·e^(k·s).
func Exponential(supply, a, k float32) (float32, error) {
	if supply < 0 {
		return 0, ErrNegativeSupply
	}
	if math.Abs(float64(k)) > MaxExponent {
		return 0, fmt.Errorf("%w: k=%g", ErrExponentOverflow, k)
	}
	return a * exp32(k*supply), nil
}

// Sigmoid prices supply as K / (1 + e^(−k·(s − s0))). K is the price ceiling,
// k the steepness and s0 the supply at the midpoint.
func Sigmoid(supply, ceiling, steepness, midpoint float32) (float32, error) {
	if supply < 0 {
		return 0, ErrNegativeSupply
	}
	if ceiling <= 0 {
		return 0, fmt.Errorf("%w: K=%g", ErrNonPositiveParam, ceiling)
	}
	if steepness <= 0 {
		return 0, fmt.Errorf("%w: k=%g", ErrNonPositiveParam, steepness)
	}
	return ceiling / (1 + exp32(-steepness*(supply-midpoint))), nil
}

// Root prices supply as k·√s.
func Root(supply, k float32) (float32, error) {
	if supply < 0 {
		return 0, ErrNegativeSupply
	}
	return float32(math.Sqrt(float64(supply))) * k, nil
}

// Inverse prices supply as k / (s + 1).
func Inverse(supply, k float32) (float32, error) {
	if supply < 0 {
		return 0, ErrNegativeSupply
	}
	if k <= 0 {
		return 0, fmt.Errorf("%w: k=%g", ErrNonPositiveParam, k)
	}
	return k / (supply + 1), nil
}

func exp32(x float32) float32 {
	return float32(math.Exp(float64(x)))
}
