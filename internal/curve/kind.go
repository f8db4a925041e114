package curve

import "fmt"

// Kind identifies a curve family.
type Kind uint8

const (
	KindLinear Kind = iota
	KindExponential
	KindSigmoid
	KindRoot
	KindInverse
)

// Kinds is the fixed rotation order used by curve switches.
var Kinds = []Kind{KindLinear, KindExponential, KindSigmoid, KindRoot, KindInverse}

var kindNames = [...]string{
	KindLinear:      "linear_bonding_curve",
	KindExponential: "exponential_bonding_curve",
	KindSigmoid:     "sigmoid_bonding_curve",
	KindRoot:        "root_bonding_curve",
	KindInverse:     "inverse_bonding_curve",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Next returns the following family in rotation order, wrapping at the end.
func (k Kind) Next() Kind {
	return Kinds[(int(k)+1)%len(Kinds)]
}

// Params is the parameter record shared by all families. Each family reads
// only its own fields:
//
//	linear      M, B
//	exponential A, K
//	sigmoid     Ceiling, K, Midpoint
//	root        K
//	inverse     K
type Params struct {
	M        float32 `json:"m,omitempty"`
	B        float32 `json:"b,omitempty"`
	A        float32 `json:"a,omitempty"`
	K        float32 `json:"k,omitempty"`
	Ceiling  float32 `json:"ceiling,omitempty"`
	Midpoint float32 `json:"midpoint,omitempty"`
}

// Curve is a family plus its parameters.
type Curve struct {
	Kind   Kind   `json:"kind"`
	Params Params `json:"params"`
}

// Default returns the family with its default parameters.
func Default(kind Kind) Curve {
	var p Params
	switch kind {
	case KindLinear:
		p = Params{M: 0.001, B: 1}
	case KindExponential:
		p = Params{A: 1, K: 0.0005}
	case KindSigmoid:
		p = Params{Ceiling: 10, K: 0.0001, Midpoint: 5000}
	case KindRoot:
		p = Params{K: 0.1}
	case KindInverse:
		p = Params{K: 100000}
	}
	return Curve{Kind: kind, Params: p}
}

// Price evaluates the curve at the given supply.
func (c Curve) Price(supply float32) (float32, error) {
	p := c.Params
	switch c.Kind {
	case KindLinear:
		return Linear(supply, p.M, p.B)
	case KindExponential:
		return Exponential(supply, p.A, p.K)
	case KindSigmoid:
		return Sigmoid(supply, p.Ceiling, p.K, p.Midpoint)
	case KindRoot:
		return Root(supply, p.K)
	case KindInverse:
		return Inverse(supply, p.K)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKind, c.Kind)
}

// Rand is the randomness a resample draws from.
type Rand interface {
	Uniform32(lo, hi float32) float32
}

// Resample keeps the family and draws fresh parameters from its fixed ranges.
func Resample(kind Kind, rng Rand) Curve {
	var p Params
	switch kind {
	case KindLinear:
		p = Params{M: rng.Uniform32(0.0005, 0.002), B: rng.Uniform32(0.5, 1.5)}
	case KindExponential:
		p = Params{A: rng.Uniform32(0.8, 1.2), K: rng.Uniform32(0.0004, 0.0006)}
	case KindSigmoid:
		p = Params{
			Ceiling:  rng.Uniform32(8, 12),
			K:        rng.Uniform32(0.00008, 0.00012),
			Midpoint: rng.Uniform32(4000, 6000),
		}
	case KindRoot:
		p = Params{K: rng.Uniform32(0.08, 0.12)}
	case KindInverse:
		p = Params{K: rng.Uniform32(80000, 120000)}
	}
	return Curve{Kind: kind, Params: p}
}

// Metadata describes the curve for logs and exports.
func (c Curve) Metadata() map[string]any {
	p := c.Params
	params := map[string]float32{}
	switch c.Kind {
	case KindLinear:
		params["m"], params["b"] = p.M, p.B
	case KindExponential:
		params["a"], params["k"] = p.A, p.K
	case KindSigmoid:
		params["K"], params["k"], params["S0"] = p.Ceiling, p.K, p.Midpoint
	case KindRoot, KindInverse:
		params["k"] = p.K
	}
	return map[string]any{
		"function_name": c.Kind.String(),
		"params":        params,
	}
}
