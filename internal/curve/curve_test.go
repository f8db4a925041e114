package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tokensim/internal/entropy"
)

func TestReferencePrices(t *testing.T) {
	tests := []struct {
		name string
		eval func() (float32, error)
		want float32
	}{
		{"linear", func() (float32, error) { return Linear(1000, 0.001, 1) }, 1.001},
		{"exponential", func() (float32, error) { return Exponential(1000, 1, 0.0005) }, 1.6487213},
		{"sigmoid", func() (float32, error) { return Sigmoid(5000, 10, 0.0001, 5000) }, 5.0},
		{"root", func() (float32, error) { return Root(10000, 0.1) }, 10.0},
		{"inverse", func() (float32, error) { return Inverse(10000, 100000) }, 9.9990001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.eval()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-4)
		})
	}
}

func TestPriceAtZeroSupply(t *testing.T) {
	sigmoidAtZero := float32(10 / (1 + math.Exp(5000*0.0001)))

	tests := []struct {
		kind Kind
		want float32
	}{
		{KindLinear, 1},
		{KindExponential, 1},
		{KindSigmoid, sigmoidAtZero},
		{KindRoot, 0},
		{KindInverse, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := Default(tt.kind).Price(0)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}
}

func TestNegativeSupplyRejected(t *testing.T) {
	for _, k := range Kinds {
		_, err := Default(k).Price(-1)
		assert.ErrorIs(t, err, ErrNegativeSupply, k.String())
	}
}

func TestParameterGuards(t *testing.T) {
	_, err := Exponential(10, 1, 0.02)
	assert.ErrorIs(t, err, ErrExponentOverflow)
	_, err = Exponential(10, 1, -0.02)
	assert.ErrorIs(t, err, ErrExponentOverflow)

	_, err = Sigmoid(10, 0, 0.0001, 5000)
	assert.ErrorIs(t, err, ErrNonPositiveParam)
	_, err = Sigmoid(10, 10, 0, 5000)
	assert.ErrorIs(t, err, ErrNonPositiveParam)

	_, err = Inverse(10, 0)
	assert.ErrorIs(t, err, ErrNonPositiveParam)

	_, err = Curve{Kind: Kind(99)}.Price(1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNextWraps(t *testing.T) {
	assert.Equal(t, KindExponential, KindLinear.Next())
	assert.Equal(t, KindLinear, KindInverse.Next())

	k := KindSigmoid
	for range Kinds {
		k = k.Next()
	}
	assert.Equal(t, KindSigmoid, k)
}

func TestResampleStaysInRange(t *testing.T) {
	src := entropy.NewSource(3)
	for i := 0; i < 200; i++ {
		lin := Resample(KindLinear, src).Params
		assert.True(t, lin.M >= 0.0005 && lin.M <= 0.002)
		assert.True(t, lin.B >= 0.5 && lin.B <= 1.5)

		exp := Resample(KindExponential, src).Params
		assert.True(t, exp.A >= 0.8 && exp.A <= 1.2)
		assert.True(t, exp.K >= 0.0004 && exp.K <= 0.0006)

		sig := Resample(KindSigmoid, src).Params
		assert.True(t, sig.Ceiling >= 8 && sig.Ceiling <= 12)
		assert.True(t, sig.Midpoint >= 4000 && sig.Midpoint <= 6000)

		inv := Resample(KindInverse, src).Params
		assert.True(t, inv.K >= 80000 && inv.K <= 120000)
	}
}

func TestResampledCurvesEvaluate(t *testing.T) {
	src := entropy.NewSource(11)
	for _, k := range Kinds {
		c := Resample(k, src)
		assert.Equal(t, k, c.Kind)
		_, err := c.Price(10000)
		assert.NoError(t, err, k.String())
	}
}

func TestMetadata(t *testing.T) {
	md := Default(KindSigmoid).Metadata()
	assert.Equal(t, "sigmoid_bonding_curve", md["function_name"])
	params := md["params"].(map[string]float32)
	assert.Equal(t, float32(5000), params["S0"])
	assert.Len(t, params, 3)
}
