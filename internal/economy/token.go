// Package economy provides the tradable token: bonding-curve pricing, buys and
// sells with fee and burn, and curve mutation.
package economy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/tokensim/internal/config"
	"github.com/talgya/tokensim/internal/curve"
)

var (
	ErrNonPositiveAmount = errors.New("trade amount must be positive")
	ErrExceedsSupply     = errors.New("sell amount exceeds current supply")
	ErrNegativeInitial   = errors.New("initial supply and price cannot be negative")
)

// Token is one bonding-curve priced asset.
type Token struct {
	Name     string      `json:"name"`
	Supply   float32     `json:"supply"`
	Price    float32     `json:"price"` // curve(Supply) after every mutation
	Curve    curve.Curve `json:"curve"`
	FeeRate  float32     `json:"fee_rate"`
	BurnRate float32     `json:"burn_rate"`

	// ChangeInterval is the step period of full curve-family switches, drawn once at setup.
	ChangeInterval int `json:"change_interval"`

	log *slog.Logger
}

// NewToken creates a token listed at the given supply and price.
func NewToken(name string, supply, price float32, c curve.Curve, t config.Tuning, logger *slog.Logger) (*Token, error) {
	if supply < 0 || price < 0 {
		return nil, fmt.Errorf("token %s: %w (supply=%g, price=%g)", name, ErrNegativeInitial, supply, price)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Token{
		Name:     name,
		Supply:   supply,
		Price:    price,
		Curve:    c,
		FeeRate:  float32(t.FeeRate),
		BurnRate: float32(t.BurnRate),
		log:      logger.With("token", name),
	}, nil
}

// CurrentPrice evaluates the curve at the current supply without changing state.
func (t *Token) CurrentPrice() (float32, error) {
	return t.Curve.Price(t.Supply)
}

// residual is the part of a trade left after fee and burn.
func (t *Token) residual(amount float32) float32 {
	fee := amount * t.FeeRate
	burn := amount * t.BurnRate
	return amount - fee - burn
}

// Buy adds amount less fee and burn to supply and returns the new price.
// A trade whose residual is not positive is a logged no-op that returns the
// unchanged price.
func (t *Token) Buy(amount float32) (float32, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("buy %s %g: %w", t.Name, amount, ErrNonPositiveAmount)
	}
	net := t.residual(amount)
	if net <= 0 {
		t.log.Warn("buy amount too small after fees and burn, no tokens purchased", "amount", amount)
		return t.Price, nil
	}

	old := t.Price
	if err := t.setSupply(t.Supply + net); err != nil {
		return 0, fmt.Errorf("buy %s: %w", t.Name, err)
	}
	t.log.Debug("price updated",
		"from", fmt.Sprintf("%.2f", old),
		"to", fmt.Sprintf("%.2f", t.Price),
		"supply", fmt.Sprintf("%.2f", t.Supply),
	)
	return t.Price, nil
}

// Sell removes amount less fee and burn from supply and returns the new price.
func (t *Token) Sell(amount float32) (float32, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("sell %s %g: %w", t.Name, amount, ErrNonPositiveAmount)
	}
	if amount > t.Supply {
		return 0, fmt.Errorf("sell %s %g (supply %g): %w", t.Name, amount, t.Supply, ErrExceedsSupply)
	}
	net := t.residual(amount)
	if net <= 0 {
		t.log.Warn("sell amount too small after fees and burn, no tokens sold", "amount", amount)
		return t.Price, nil
	}

	old := t.Price
	if err := t.setSupply(t.Supply - net); err != nil {
		return 0, fmt.Errorf("sell %s: %w", t.Name, err)
	}
	t.log.Debug("price updated",
		"from", fmt.Sprintf("%.2f", old),
		"to", fmt.Sprintf("%.2f", t.Price),
		"supply", fmt.Sprintf("%.2f", t.Supply),
	)
	return t.Price, nil
}

// ChangeCurve switches to the next curve family with its default parameters.
func (t *Token) ChangeCurve() error {
	next := curve.Default(t.Curve.Kind.Next())
	if err := t.setCurve(next); err != nil {
		return fmt.Errorf("change curve %s: %w", t.Name, err)
	}
	t.log.Info("bonding curve changed", "curve", next.Kind.String())
	return nil
}

// ChangeCurveParameters keeps the family and redraws its parameters.
func (t *Token) ChangeCurveParameters(rng curve.Rand) error {
	next := curve.Resample(t.Curve.Kind, rng)
	if err := t.setCurve(next); err != nil {
		return fmt.Errorf("change curve parameters %s: %w", t.Name, err)
	}
	t.log.Debug("bonding curve parameters changed", "metadata", next.Metadata())
	return nil
}

// CurveMetadata describes the active curve.
func (t *Token) CurveMetadata() map[string]any {
	return t.Curve.Metadata()
}

func (t *Token) setSupply(supply float32) error {
	price, err := t.Curve.Price(supply)
	if err != nil {
		return err
	}
	t.Supply = supply
	t.Price = price
	return nil
}

func (t *Token) setCurve(c curve.Curve) error {
	price, err := c.Price(t.Supply)
	if err != nil {
		return err
	}
	t.Curve = c
	t.Price = price
	return nil
}
