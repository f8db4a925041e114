// Simulation ties tokens and affiliates together and runs the per-step phases.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/tokensim/internal/agents"
	"github.com/talgya/tokensim/internal/config"
	"github.com/talgya/tokensim/internal/curve"
	"github.com/talgya/tokensim/internal/economy"
	"github.com/talgya/tokensim/internal/entropy"
)

// Simulation holds the complete state of one run. Tokens and affiliates are
// owned by the simulation for the run's lifetime.
type Simulation struct {
	Tokens     []*economy.Token
	Affiliates []*agents.Affiliate

	tokenHistory     []*TokenHistory
	affiliateHistory []*AffiliateHistory

	Stats Stats

	cfg    config.Config
	rng    *entropy.Source
	log    *slog.Logger
	engine *Engine
}

// Stats counts what happened during a run.
type Stats struct {
	Buys             int           `json:"buys"`
	Sells            int           `json:"sells"`
	Liquidations     int           `json:"liquidations"`
	UnaffordableBuys int           `json:"unaffordable_buys"`
	EmptySells       int           `json:"empty_sells"`   // sell drawn with nothing held
	SkippedTrades    int           `json:"skipped_trades"` // token price not positive or not finite
	CurveChanges     int           `json:"curve_changes"`
	ParamChanges     int           `json:"param_changes"`
	Adjustments      int           `json:"commission_adjustments"`
	Volume           float64       `json:"volume"` // base currency notional of executed trades
	Elapsed          time.Duration `json:"elapsed"`
}

// Trades is the number of executed buys, sells and liquidations.
func (s Stats) Trades() int {
	return s.Buys + s.Sells + s.Liquidations
}

// Result is what a finished run hands back to its caller.
type Result struct {
	Seed       int64               `json:"seed"`
	Steps      int                 `json:"steps"`
	Config     config.Config       `json:"config"`
	Tokens     []*TokenHistory     `json:"tokens"`     // setup order
	Affiliates []*AffiliateHistory `json:"affiliates"` // ID order
	Stats      Stats               `json:"stats"`
}

// TokenHistories indexes the token series by token name.
func (r *Result) TokenHistories() map[string]*TokenHistory {
	m := make(map[string]*TokenHistory, len(r.Tokens))
	for _, h := range r.Tokens {
		m[h.Name] = h
	}
	return m
}

// AffiliateHistories indexes the affiliate series by affiliate ID.
func (r *Result) AffiliateHistories() map[int]*AffiliateHistory {
	m := make(map[int]*AffiliateHistory, len(r.Affiliates))
	for _, h := range r.Affiliates {
		m[h.ID] = h
	}
	return m
}

// NewSimulation validates cfg and sets up tokens and affiliates, drawing all
// setup randomness from rng: per-token curve-change intervals, then initial
// curve families, then whale capacities.
func NewSimulation(cfg config.Config, rng *entropy.Source, logger *slog.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = entropy.NewSource(cfg.Seed)
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := cfg.Tuning

	intervals := make([]int, cfg.Tokens)
	for i := range intervals {
		intervals[i] = rng.IntRange(t.CurveChangeMin, t.CurveChangeMax)
	}

	s := &Simulation{
		cfg: cfg,
		rng: rng,
		log: logger,
	}

	for i := 0; i < cfg.Tokens; i++ {
		kind := curve.Kinds[rng.Intn(len(curve.Kinds))]
		tok, err := economy.NewToken(
			fmt.Sprintf("Token_%d", i),
			float32(cfg.InitialSupply),
			float32(cfg.InitialPrice),
			curve.Default(kind),
			t,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("setup tokens: %w", err)
		}
		tok.ChangeInterval = intervals[i]
		s.Tokens = append(s.Tokens, tok)
		s.tokenHistory = append(s.tokenHistory, newTokenHistory(tok.Name, cfg.Steps))
	}

	spawner := agents.NewSpawner(rng, t, logger)
	affs, err := spawner.SpawnPopulation(cfg.Affiliates, cfg.InitialCommissionRate)
	if err != nil {
		return nil, fmt.Errorf("setup affiliates: %w", err)
	}
	s.Affiliates = affs
	for _, a := range affs {
		s.affiliateHistory = append(s.affiliateHistory, newAffiliateHistory(a.ID, cfg.Steps))
	}

	s.engine = NewEngine(cfg.Steps, logger)
	s.engine.OnStep = s.Step

	logger.Info("simulation ready",
		"seed", rng.Seed(),
		"steps", cfg.Steps,
		"tokens", len(s.Tokens),
		"affiliates", len(s.Affiliates),
		"whales", spawner.WhaleCount(cfg.Affiliates),
	)
	return s, nil
}

// State reports where the run is in its lifecycle.
func (s *Simulation) State() State {
	return s.engine.State
}

// Step advances the economy by one step. Phases run strictly in order so
// curve mutations never land mid-trade and commission adjustment sees the
// step's completed liquidations.
func (s *Simulation) Step(step int) error {
	if err := s.tradePhase(step); err != nil {
		return fmt.Errorf("trading: %w", err)
	}
	if err := s.maintenancePhase(step); err != nil {
		return fmt.Errorf("token maintenance: %w", err)
	}
	if err := s.liquidationPhase(step); err != nil {
		return fmt.Errorf("liquidation: %w", err)
	}
	s.capture()
	return nil
}

// Run executes every configured step and returns the histories. Validation
// errors raised inside a step are not retried; they end the run.
func (s *Simulation) Run() (*Result, error) {
	s.log.Info("simulation started")
	start := time.Now()

	err := s.engine.Run()
	s.Stats.Elapsed = time.Since(start)
	if err != nil {
		s.log.Error("simulation failed", "step", s.engine.Step, "error", err)
		return nil, err
	}

	s.log.Info("simulation completed",
		"elapsed", s.Stats.Elapsed.Round(time.Millisecond).String(),
		"trades", humanize.Comma(int64(s.Stats.Trades())),
		"volume", humanize.Commaf(s.Stats.Volume),
	)
	return s.result(), nil
}

func (s *Simulation) capture() {
	for i, tok := range s.Tokens {
		s.tokenHistory[i].capture(tok)
	}
	for i, a := range s.Affiliates {
		s.affiliateHistory[i].capture(a)
	}
}

func (s *Simulation) result() *Result {
	return &Result{
		Seed:       s.rng.Seed(),
		Steps:      s.cfg.Steps,
		Config:     s.cfg,
		Tokens:     s.tokenHistory,
		Affiliates: s.affiliateHistory,
		Stats:      s.Stats,
	}
}
