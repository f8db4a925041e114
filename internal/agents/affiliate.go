// Package agents provides the affiliate data model: balances, token wallets,
// referral commissions, and the commission-rate feedback loop.
package agents

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/exp/constraints"

	"github.com/talgya/tokensim/internal/config"
)

var (
	ErrNegativeID           = errors.New("affiliate ID cannot be negative")
	ErrRateOutOfBounds      = errors.New("commission rate out of bounds")
	ErrNegativeTradeAmount  = errors.New("trade amount cannot be negative")
	ErrNonPositiveQuantity  = errors.New("quantity must be positive")
	ErrInsufficientHoldings = errors.New("sell quantity exceeds wallet holding")
	ErrInsufficientBalance  = errors.New("cost exceeds base currency balance")
)

// Rand is the randomness needed to initialise a whale.
type Rand interface {
	Uniform(lo, hi float64) float64
}

// Affiliate refers trade volume and earns commission on it.
type Affiliate struct {
	ID             int     `json:"id"`
	CommissionRate float64 `json:"commission_rate"`
	IsWhale        bool    `json:"is_whale"`
	WhaleCapacity  float64 `json:"whale_investment_capacity"` // 0 for non-whales

	Balance float64            `json:"base_currency_balance"`
	Wallet  map[string]float64 `json:"wallet"` // token name → quantity, created on first holding

	TotalReferral float64 `json:"total_referral_amount"`
	TotalEarned   float64 `json:"total_earned"`

	EarningsHistory       []float64 `json:"earnings_history"`
	CommissionRateHistory []float64 `json:"commission_rate_history"`

	// RecentInvestment is the moving-average window, oldest first.
	RecentInvestment []float64 `json:"recent_investment"`

	policy config.Tuning
	log    *slog.Logger
}

// NewAffiliate validates and creates an affiliate. Whales draw their
// per-trade capacity from rng; non-whales draw nothing.
func NewAffiliate(id int, rate float64, whale bool, rng Rand, t config.Tuning, logger *slog.Logger) (*Affiliate, error) {
	if id < 0 {
		return nil, fmt.Errorf("affiliate %d: %w", id, ErrNegativeID)
	}
	if rate < t.CommissionRateMin || rate > t.CommissionRateMax {
		return nil, fmt.Errorf("affiliate %d: %w: %g not in [%g, %g]",
			id, ErrRateOutOfBounds, rate, t.CommissionRateMin, t.CommissionRateMax)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Affiliate{
		ID:             id,
		CommissionRate: rate,
		IsWhale:        whale,
		Balance:        t.StartingBalance,
		Wallet:         make(map[string]float64),
		policy:         t,
		log:            logger.With("affiliate", id),
	}
	if whale {
		a.WhaleCapacity = rng.Uniform(t.WhaleCapacityMin, t.WhaleCapacityMax)
	}
	return a, nil
}

// CalculateCommission returns the commission owed on a trade.
func (a *Affiliate) CalculateCommission(tradeAmount float64) float64 {
	return tradeAmount * a.CommissionRate
}

// TrackReferral books the commission on a referred trade.
func (a *Affiliate) TrackReferral(tradeAmount float64) error {
	if tradeAmount < 0 {
		return fmt.Errorf("affiliate %d: %w: %g", a.ID, ErrNegativeTradeAmount, tradeAmount)
	}
	earned := a.CalculateCommission(tradeAmount)
	a.TotalEarned += earned
	a.TotalReferral += tradeAmount
	a.log.Debug("earned commission", "commission", fmt.Sprintf("%.2f", earned))
	return nil
}

// AverageInvestment is the mean of the moving-average window, 0 when empty.
func (a *Affiliate) AverageInvestment() float64 {
	if len(a.RecentInvestment) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.RecentInvestment {
		sum += v
	}
	return sum / float64(len(a.RecentInvestment))
}

// AdjustCommission moves the rate one delta up when the average recent
// investment is above threshold and one delta down otherwise, clamped to
// bounds. It only fires on adjustment steps and reports whether it did.
func (a *Affiliate) AdjustCommission(step int) bool {
	p := a.policy
	if step%p.AdjustInterval != 0 {
		return false
	}

	avg := a.AverageInvestment()
	if avg > p.InvestmentThreshold {
		a.CommissionRate += p.AdjustDelta
	} else {
		a.CommissionRate -= p.AdjustDelta
	}
	a.CommissionRate = clamp(a.CommissionRate, p.CommissionRateMin, p.CommissionRateMax)

	a.log.Debug("commission rate adjusted",
		"rate", fmt.Sprintf("%.4f", a.CommissionRate),
		"avg_investment", fmt.Sprintf("%.2f", avg),
	)
	return true
}

// RecordInvestment appends to the moving-average window, evicting the oldest
// entry once the window is full.
func (a *Affiliate) RecordInvestment(amount float64) {
	a.RecentInvestment = append(a.RecentInvestment, amount)
	if over := len(a.RecentInvestment) - a.policy.MovingAverageWindow; over > 0 {
		a.RecentInvestment = a.RecentInvestment[over:]
	}
}

// Holding returns the wallet quantity of a token.
func (a *Affiliate) Holding(token string) float64 {
	return a.Wallet[token]
}

// Credit adds tokens to the wallet.
func (a *Affiliate) Credit(token string, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("affiliate %d credit %s: %w", a.ID, token, ErrNonPositiveQuantity)
	}
	a.Wallet[token] += qty
	return nil
}

// Debit removes tokens from the wallet. Never clamps: asking for more than is
// held fails.
func (a *Affiliate) Debit(token string, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("affiliate %d debit %s: %w", a.ID, token, ErrNonPositiveQuantity)
	}
	if held := a.Wallet[token]; qty > held {
		return fmt.Errorf("affiliate %d debit %s %g (held %g): %w", a.ID, token, qty, held, ErrInsufficientHoldings)
	}
	a.Wallet[token] -= qty
	return nil
}

// Spend takes cost out of the base currency balance.
func (a *Affiliate) Spend(cost float64) error {
	if cost > a.Balance {
		return fmt.Errorf("affiliate %d spend %g (balance %g): %w", a.ID, cost, a.Balance, ErrInsufficientBalance)
	}
	a.Balance -= cost
	return nil
}

// Receive adds proceeds to the base currency balance.
func (a *Affiliate) Receive(amount float64) {
	a.Balance += amount
}

// CanAfford reports whether the balance covers cost.
func (a *Affiliate) CanAfford(cost float64) bool {
	return a.Balance >= cost
}

// RecordHistory appends the current earnings and commission rate to the
// affiliate's own logs.
func (a *Affiliate) RecordHistory() {
	a.EarningsHistory = append(a.EarningsHistory, a.TotalEarned)
	a.CommissionRateHistory = append(a.CommissionRateHistory, a.CommissionRate)
}

// WalletSnapshot returns a copy of the wallet.
func (a *Affiliate) WalletSnapshot() map[string]float64 {
	snap := make(map[string]float64, len(a.Wallet))
	for k, v := range a.Wallet {
		snap[k] = v
	}
	return snap
}

func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
