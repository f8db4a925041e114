// Command tokensim runs the bonding-curve token economy simulation and prints
// a summary of the final state.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/talgya/tokensim/internal/config"
	"github.com/talgya/tokensim/internal/engine"
	"github.com/talgya/tokensim/internal/entropy"
	"github.com/talgya/tokensim/internal/persistence"
	"github.com/talgya/tokensim/internal/report"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("tokensim failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// ── Configuration: defaults < config file < .env / environment < flags ──
	cfg := config.Default()

	fs := flag.NewFlagSet("tokensim", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	steps := fs.Int("num_simulation_steps", cfg.Steps, "Number of simulation steps.")
	tokens := fs.Int("num_tokens", cfg.Tokens, "Number of tokens to simulate.")
	affiliates := fs.Int("num_affiliates", cfg.Affiliates, "Number of affiliates.")
	supply := fs.Float64("initial_supply", cfg.InitialSupply, "Initial token supply.")
	price := fs.Float64("initial_price", cfg.InitialPrice, "Initial token price.")
	rate := fs.Float64("initial_commission_rate", cfg.InitialCommissionRate, "Initial affiliate commission rate.")
	seed := fs.Int64("seed", cfg.Seed, "Random seed. 0 draws one from the clock; the seed used is printed in the summary.")
	export := fs.String("export", "", "Write run histories to this SQLite file.")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error.")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			return err
		}
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	// Only flags given on the command line override the layers above.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "num_simulation_steps":
			cfg.Steps = *steps
		case "num_tokens":
			cfg.Tokens = *tokens
		case "num_affiliates":
			cfg.Affiliates = *affiliates
		case "initial_supply":
			cfg.InitialSupply = *supply
		case "initial_price":
			cfg.InitialPrice = *price
		case "initial_commission_rate":
			cfg.InitialCommissionRate = *rate
		case "seed":
			cfg.Seed = *seed
		case "export":
			cfg.ExportPath = *export
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	// ── Logging ──────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── Simulation ───────────────────────────────────────────────────
	src := entropy.NewSource(cfg.Seed)
	sim, err := engine.NewSimulation(cfg, src, logger)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	res, err := sim.Run()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if err := report.Print(os.Stdout, res); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	// ── Export ───────────────────────────────────────────────────────
	if cfg.ExportPath == "" {
		return nil
	}
	db, err := persistence.Open(cfg.ExportPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.SaveResult(res)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("\nRun %s exported to %s\n", runID, cfg.ExportPath)
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
