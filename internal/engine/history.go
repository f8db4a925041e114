package engine

import (
	"github.com/talgya/tokensim/internal/agents"
	"github.com/talgya/tokensim/internal/economy"
)

// TokenHistory is the per-step series of one token. Appended only by the
// simulation's capture phase.
type TokenHistory struct {
	Name   string    `json:"name"`
	Price  []float32 `json:"price"`
	Supply []float32 `json:"supply"`
	Curve  []string  `json:"bonding_curve"`
}

func newTokenHistory(name string, steps int) *TokenHistory {
	return &TokenHistory{
		Name:   name,
		Price:  make([]float32, 0, steps),
		Supply: make([]float32, 0, steps),
		Curve:  make([]string, 0, steps),
	}
}

func (h *TokenHistory) capture(t *economy.Token) {
	h.Price = append(h.Price, t.Price)
	h.Supply = append(h.Supply, t.Supply)
	h.Curve = append(h.Curve, t.Curve.Kind.String())
}

// Len returns the number of captured steps.
func (h *TokenHistory) Len() int {
	return len(h.Price)
}

// AffiliateHistory is the per-step series of one affiliate.
type AffiliateHistory struct {
	ID             int                  `json:"id"`
	Earned         []float64            `json:"earned"`
	CommissionRate []float64            `json:"commission_rate"`
	Wallet         []map[string]float64 `json:"wallet"`
	Balance        []float64            `json:"base_currency_balance"`
}

func newAffiliateHistory(id, steps int) *AffiliateHistory {
	return &AffiliateHistory{
		ID:             id,
		Earned:         make([]float64, 0, steps),
		CommissionRate: make([]float64, 0, steps),
		Wallet:         make([]map[string]float64, 0, steps),
		Balance:        make([]float64, 0, steps),
	}
}

func (h *AffiliateHistory) capture(a *agents.Affiliate) {
	h.Earned = append(h.Earned, a.TotalEarned)
	h.CommissionRate = append(h.CommissionRate, a.CommissionRate)
	h.Wallet = append(h.Wallet, a.WalletSnapshot())
	h.Balance = append(h.Balance, a.Balance)
}

// Len returns the number of captured steps.
func (h *AffiliateHistory) Len() int {
	return len(h.Earned)
}
