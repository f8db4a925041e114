// Periodic liquidation: affiliates occasionally sell a slice of what they
// hold, then log their earnings and let the commission rule fire.
package engine

// liquidationPhase walks affiliates in ID order and their holdings in token
// order so the draw sequence is fixed for a given seed.
func (s *Simulation) liquidationPhase(step int) error {
	t := s.cfg.Tuning
	for _, a := range s.Affiliates {
		for _, tok := range s.Tokens {
			held := a.Holding(tok.Name)
			if held <= 0 || !s.rng.Chance(t.SellProbability) {
				continue
			}
			qty := held * s.rng.Float64() * t.MaxSellPercentage
			if qty <= 0 {
				continue
			}
			proceeds, err := s.sell(a, tok, qty)
			if err != nil {
				return err
			}
			s.Stats.Liquidations++
			s.log.Debug("periodic sell", "affiliate", a.ID, "token", tok.Name, "proceeds", proceeds)
		}

		a.RecordHistory()
		if a.AdjustCommission(step) {
			s.Stats.Adjustments++
		}
	}
	return nil
}
