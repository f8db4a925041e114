// Affiliate trading: each affiliate draws a few transactions per step
// against randomly chosen tokens.
package engine

import (
	"fmt"
	"math"

	"github.com/talgya/tokensim/internal/agents"
	"github.com/talgya/tokensim/internal/economy"
)

// tradePhase runs every affiliate's transactions for the step.
func (s *Simulation) tradePhase(step int) error {
	for _, a := range s.Affiliates {
		if err := s.processAffiliateTrades(a); err != nil {
			return err
		}
	}
	return nil
}

// processAffiliateTrades draws the transaction count (whales make 0 or 1 large ones,
// others 1 or 2 small ones) and executes each.
func (s *Simulation) processAffiliateTrades(a *agents.Affiliate) error {
	t := s.cfg.Tuning

	var n int
	if a.IsWhale {
		n = s.rng.IntRange(0, 2)
	} else {
		n = s.rng.IntRange(1, 3)
	}

	for i := 0; i < n; i++ {
		tok := s.Tokens[s.rng.Intn(len(s.Tokens))]

		var invest float64
		if a.IsWhale && a.WhaleCapacity > 0 {
			invest = a.WhaleCapacity * s.rng.Uniform(0.1, 0.4)
		} else {
			invest = t.InitialTokenInvestment + s.rng.Float64()*5
		}

		price := float64(tok.Price)
		if price <= 0 || math.IsInf(price, 1) {
			s.Stats.SkippedTrades++
			continue
		}
		qty := invest / price

		if s.rng.Chance(t.BuyProbability) {
			cost := qty * price
			if a.CanAfford(cost) {
				if err := s.buy(a, tok, qty, cost); err != nil {
					return err
				}
			} else {
				s.Stats.UnaffordableBuys++
				s.log.Debug("could not afford buy", "affiliate", a.ID, "token", tok.Name, "cost", cost)
			}
		} else {
			// The drawn quantity is capped at what the affiliate actually holds.
			sellQty := math.Min(qty, a.Holding(tok.Name))
			if sellQty > 0 {
				if _, err := s.sell(a, tok, sellQty); err != nil {
					return err
				}
				s.Stats.Sells++
			} else {
				s.Stats.EmptySells++
				s.log.Debug("nothing to sell", "affiliate", a.ID, "token", tok.Name)
			}
		}

		a.RecordInvestment(invest)
	}
	return nil
}

// buy executes a purchase of qty tokens for cost, booking commission on cost.
func (s *Simulation) buy(a *agents.Affiliate, tok *economy.Token, qty, cost float64) error {
	if err := a.Spend(cost); err != nil {
		return err
	}
	if _, err := tok.Buy(float32(qty)); err != nil {
		return fmt.Errorf("affiliate %d: %w", a.ID, err)
	}
	if err := a.Credit(tok.Name, qty); err != nil {
		return err
	}
	if err := a.TrackReferral(cost); err != nil {
		return err
	}

	s.Stats.Buys++
	s.Stats.Volume += cost
	s.log.Debug("bought",
		"affiliate", a.ID,
		"token", tok.Name,
		"qty", fmt.Sprintf("%.2f", qty),
		"cost", fmt.Sprintf("%.2f", cost),
	)
	return nil
}

// sell sells qty tokens out of the affiliate's wallet at the post-trade price
// and books commission on the proceeds. qty must not exceed the holding.
func (s *Simulation) sell(a *agents.Affiliate, tok *economy.Token, qty float64) (float64, error) {
	if err := a.Debit(tok.Name, qty); err != nil {
		return 0, err
	}
	price, err := tok.Sell(float32(qty))
	if err != nil {
		return 0, fmt.Errorf("affiliate %d: %w", a.ID, err)
	}

	proceeds := float64(price) * qty
	a.Receive(proceeds)
	if err := a.TrackReferral(proceeds); err != nil {
		return 0, err
	}

	s.Stats.Volume += proceeds
	s.log.Debug("sold",
		"affiliate", a.ID,
		"token", tok.Name,
		"qty", fmt.Sprintf("%.2f", qty),
		"proceeds", fmt.Sprintf("%.2f", proceeds),
	)
	return proceeds, nil
}
