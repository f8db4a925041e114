package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tokensim/internal/config"
	"github.com/talgya/tokensim/internal/curve"
	"github.com/talgya/tokensim/internal/entropy"
)

func newTestToken(t *testing.T, kind curve.Kind) *Token {
	t.Helper()
	tok, err := NewToken("TestToken", 1000, 1.0, curve.Default(kind), config.DefaultTuning(), nil)
	require.NoError(t, err)
	return tok
}

func TestNewToken(t *testing.T) {
	tok := newTestToken(t, curve.KindLinear)
	assert.Equal(t, "TestToken", tok.Name)
	assert.Equal(t, float32(1000), tok.Supply)
	assert.Equal(t, float32(1.0), tok.Price)
	assert.Equal(t, float32(0.0025), tok.FeeRate)
	assert.Equal(t, float32(0.0002), tok.BurnRate)
	assert.Equal(t, "linear_bonding_curve", tok.CurveMetadata()["function_name"])
}

func TestNewTokenRejectsNegative(t *testing.T) {
	_, err := NewToken("bad", -1, 1, curve.Default(curve.KindLinear), config.DefaultTuning(), nil)
	assert.ErrorIs(t, err, ErrNegativeInitial)
	_, err = NewToken("bad", 1, -1, curve.Default(curve.KindLinear), config.DefaultTuning(), nil)
	assert.ErrorIs(t, err, ErrNegativeInitial)
}

func TestBuyAppliesFeeAndBurn(t *testing.T) {
	tok := newTestToken(t, curve.KindLinear)
	amount := float32(100)
	net := amount - amount*tok.FeeRate - amount*tok.BurnRate

	price, err := tok.Buy(amount)
	require.NoError(t, err)

	assert.InDelta(t, 1000+net, tok.Supply, 1e-3)
	assert.Equal(t, price, tok.Price)
	want, _ := curve.Linear(tok.Supply, 0.001, 1)
	assert.Equal(t, want, tok.Price)
}

func TestSellAppliesFeeAndBurn(t *testing.T) {
	tok := newTestToken(t, curve.KindLinear)
	_, err := tok.Buy(500)
	require.NoError(t, err)
	before := tok.Price
	supply := tok.Supply

	amount := float32(100)
	net := amount - amount*tok.FeeRate - amount*tok.BurnRate
	price, err := tok.Sell(amount)
	require.NoError(t, err)

	assert.InDelta(t, supply-net, tok.Supply, 1e-3)
	assert.Less(t, tok.Price, before)
	assert.Equal(t, price, tok.Price)
}

func TestPriceMatchesCurveAfterEveryMutation(t *testing.T) {
	src := entropy.NewSource(5)
	for _, k := range curve.Kinds {
		tok := newTestToken(t, k)
		steps := []func() error{
			func() error { _, err := tok.Buy(250); return err },
			func() error { _, err := tok.Sell(40); return err },
			tok.ChangeCurve,
			func() error { return tok.ChangeCurveParameters(src) },
			func() error { _, err := tok.Buy(3); return err },
		}
		for _, step := range steps {
			require.NoError(t, step())
			want, err := tok.CurrentPrice()
			require.NoError(t, err)
			assert.Equal(t, want, tok.Price, k.String())
		}
	}
}

func TestRoundTripLosesSupply(t *testing.T) {
	tok := newTestToken(t, curve.KindRoot)
	pre := tok.Supply
	amount := float32(100)
	net := amount - amount*tok.FeeRate - amount*tok.BurnRate

	_, err := tok.Buy(amount)
	require.NoError(t, err)
	_, err = tok.Sell(net)
	require.NoError(t, err)

	assert.Less(t, tok.Supply, pre)
}

func TestInvalidTrades(t *testing.T) {
	tok := newTestToken(t, curve.KindLinear)

	_, err := tok.Buy(0)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = tok.Buy(-5)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = tok.Sell(0)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	_, err = tok.Sell(tok.Supply + 1)
	assert.ErrorIs(t, err, ErrExceedsSupply)

	assert.Equal(t, float32(1000), tok.Supply)
}

func TestFeeExhaustedTradeIsNoop(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.FeeRate = 0.95
	tuning.BurnRate = 0.1
	tok, err := NewToken("Dust", 1000, 1.0, curve.Default(curve.KindLinear), tuning, nil)
	require.NoError(t, err)

	price, err := tok.Buy(10)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), price)
	assert.Equal(t, float32(1000), tok.Supply)

	price, err = tok.Sell(10)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), price)
	assert.Equal(t, float32(1000), tok.Supply)
}

func TestChangeCurveCycles(t *testing.T) {
	tok := newTestToken(t, curve.KindInverse)
	require.NoError(t, tok.ChangeCurve())
	assert.Equal(t, curve.KindLinear, tok.Curve.Kind)
	assert.Equal(t, curve.Default(curve.KindLinear), tok.Curve)

	require.NoError(t, tok.ChangeCurve())
	assert.Equal(t, curve.KindExponential, tok.Curve.Kind)
}

func TestChangeCurveParametersKeepsFamily(t *testing.T) {
	tok := newTestToken(t, curve.KindSigmoid)
	before := tok.Curve
	require.NoError(t, tok.ChangeCurveParameters(entropy.NewSource(9)))

	assert.Equal(t, curve.KindSigmoid, tok.Curve.Kind)
	assert.NotEqual(t, before.Params, tok.Curve.Params)
}
