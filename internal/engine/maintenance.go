package engine

// maintenancePhase applies scheduled curve mutations: a family switch on each
// token's own interval, and a parameter resample on the shorter global one.
func (s *Simulation) maintenancePhase(step int) error {
	paramInterval := s.cfg.Tuning.ParamChangeInterval
	for _, tok := range s.Tokens {
		if step%tok.ChangeInterval == 0 {
			if err := tok.ChangeCurve(); err != nil {
				return err
			}
			s.Stats.CurveChanges++
		}
		if step%paramInterval == 0 {
			if err := tok.ChangeCurveParameters(s.rng); err != nil {
				return err
			}
			s.Stats.ParamChanges++
		}
	}
	return nil
}
