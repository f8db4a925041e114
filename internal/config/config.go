// Package config holds the run configuration and the fixed tuning constants of
// the token economy, with YAML file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is everything a single simulation run needs.
type Config struct {
	Steps                 int     `yaml:"num_simulation_steps"`
	Tokens                int     `yaml:"num_tokens"`
	Affiliates            int     `yaml:"num_affiliates"`
	InitialSupply         float64 `yaml:"initial_supply"`
	InitialPrice          float64 `yaml:"initial_price"`
	InitialCommissionRate float64 `yaml:"initial_commission_rate"`
	Seed                  int64   `yaml:"seed"` // 0 = seed from clock

	ExportPath string `yaml:"export_path"` // SQLite file; empty = no export
	LogLevel   string `yaml:"log_level"`

	Tuning Tuning `yaml:"tuning"`
}

// Tuning holds the economy's fixed constants.
type Tuning struct {
	FeeRate  float64 `yaml:"transaction_fee_rate"`
	BurnRate float64 `yaml:"burn_rate"`

	CommissionRateMin   float64 `yaml:"commission_rate_min"`
	CommissionRateMax   float64 `yaml:"commission_rate_max"`
	AdjustInterval      int     `yaml:"commission_dynamics_step"`
	AdjustDelta         float64 `yaml:"dynamic_adjustment_rate"`
	InvestmentThreshold float64 `yaml:"investment_threshold"`
	MovingAverageWindow int     `yaml:"moving_average_window"`

	StartingBalance        float64 `yaml:"initial_base_currency"`
	InitialTokenInvestment float64 `yaml:"initial_token_investment"`
	WhaleFraction          float64 `yaml:"whale_fraction"`
	WhaleCapacityMin       float64 `yaml:"whale_investment_min"`
	WhaleCapacityMax       float64 `yaml:"whale_investment_max"`

	BuyProbability    float64 `yaml:"buy_probability"`
	SellProbability   float64 `yaml:"sell_probability"`
	MaxSellPercentage float64 `yaml:"max_sell_percentage"`

	CurveChangeMin      int `yaml:"bonding_curve_change_min_step"`
	CurveChangeMax      int `yaml:"bonding_curve_change_max_step"` // exclusive
	ParamChangeInterval int `yaml:"bonding_curve_param_change_interval"`
}

// DefaultSeed makes a run with no explicit seed reproducible.
const DefaultSeed = 42

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Steps:                 100,
		Tokens:                5,
		Affiliates:            5,
		InitialSupply:         10000,
		InitialPrice:          1.0,
		InitialCommissionRate: 0.10,
		Seed:                  DefaultSeed,
		LogLevel:              "info",
		Tuning:                DefaultTuning(),
	}
}

// DefaultTuning returns the stock economy constants.
func DefaultTuning() Tuning {
	return Tuning{
		FeeRate:  0.0025, // 0.25%
		BurnRate: 0.0002, // 0.02%

		CommissionRateMin:   0.0,
		CommissionRateMax:   0.20,
		AdjustInterval:      10,
		AdjustDelta:         0.0005,
		InvestmentThreshold: 50,
		MovingAverageWindow: 50,

		StartingBalance:        1000,
		InitialTokenInvestment: 10,
		WhaleFraction:          0.2,
		WhaleCapacityMin:       5000,
		WhaleCapacityMax:       10000,

		BuyProbability:    0.6,
		SellProbability:   0.05,
		MaxSellPercentage: 0.05,

		CurveChangeMin:      500,
		CurveChangeMax:      1000,
		ParamChangeInterval: 20,
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the run inputs and the tuning constants.
func (c *Config) Validate() error {
	switch {
	case c.Steps <= 0:
		return fmt.Errorf("%w: num_simulation_steps must be positive, got %d", ErrInvalid, c.Steps)
	case c.Tokens <= 0:
		return fmt.Errorf("%w: num_tokens must be positive, got %d", ErrInvalid, c.Tokens)
	case c.Affiliates <= 0:
		return fmt.Errorf("%w: num_affiliates must be positive, got %d", ErrInvalid, c.Affiliates)
	case !validListing(c.InitialSupply):
		return fmt.Errorf("%w: initial_supply must be a finite float32 >= 0, got %g", ErrInvalid, c.InitialSupply)
	case !validListing(c.InitialPrice):
		return fmt.Errorf("%w: initial_price must be a finite float32 >= 0, got %g", ErrInvalid, c.InitialPrice)
	}
	t := c.Tuning
	if c.InitialCommissionRate < t.CommissionRateMin || c.InitialCommissionRate > t.CommissionRateMax {
		return fmt.Errorf("%w: initial_commission_rate %g outside [%g, %g]",
			ErrInvalid, c.InitialCommissionRate, t.CommissionRateMin, t.CommissionRateMax)
	}
	return t.Validate()
}

// Validate checks the tuning constants for values the engine cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.FeeRate < 0 || t.BurnRate < 0:
		return fmt.Errorf("%w: fee and burn rates cannot be negative", ErrInvalid)
	case t.CommissionRateMin > t.CommissionRateMax:
		return fmt.Errorf("%w: commission_rate_min exceeds commission_rate_max", ErrInvalid)
	case t.AdjustInterval <= 0:
		return fmt.Errorf("%w: commission_dynamics_step must be positive", ErrInvalid)
	case t.MovingAverageWindow <= 0:
		return fmt.Errorf("%w: moving_average_window must be positive", ErrInvalid)
	case t.WhaleFraction < 0 || t.WhaleFraction > 1:
		return fmt.Errorf("%w: whale_fraction must be within [0, 1]", ErrInvalid)
	case t.WhaleCapacityMin > t.WhaleCapacityMax:
		return fmt.Errorf("%w: whale_investment_min exceeds whale_investment_max", ErrInvalid)
	case t.CurveChangeMin <= 0 || t.CurveChangeMax <= t.CurveChangeMin:
		return fmt.Errorf("%w: bonding curve change range [%d, %d) is empty",
			ErrInvalid, t.CurveChangeMin, t.CurveChangeMax)
	case t.ParamChangeInterval <= 0:
		return fmt.Errorf("%w: bonding_curve_param_change_interval must be positive", ErrInvalid)
	case t.MaxSellPercentage < 0 || t.MaxSellPercentage > 1:
		return fmt.Errorf("%w: max_sell_percentage must be within [0, 1]", ErrInvalid)
	case !probability(t.BuyProbability):
		return fmt.Errorf("%w: buy_probability must be within [0, 1], got %g", ErrInvalid, t.BuyProbability)
	case !probability(t.SellProbability):
		return fmt.Errorf("%w: sell_probability must be within [0, 1], got %g", ErrInvalid, t.SellProbability)
	case t.StartingBalance < 0 || math.IsNaN(t.StartingBalance):
		return fmt.Errorf("%w: starting_balance cannot be negative", ErrInvalid)
	case t.InitialTokenInvestment < 0 || math.IsNaN(t.InitialTokenInvestment):
		return fmt.Errorf("%w: initial_token_investment cannot be negative", ErrInvalid)
	}
	return nil
}

// validListing reports whether v is usable as a float32 supply or price.
// NaN fails every comparison, so it is rejected explicitly.
func validListing(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= math.MaxFloat32
}

func probability(p float64) bool {
	return p >= 0 && p <= 1
}
