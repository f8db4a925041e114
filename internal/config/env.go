package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvSteps          = "TOKENSIM_STEPS"
	EnvTokens         = "TOKENSIM_TOKENS"
	EnvAffiliates     = "TOKENSIM_AFFILIATES"
	EnvInitialSupply  = "TOKENSIM_INITIAL_SUPPLY"
	EnvInitialPrice   = "TOKENSIM_INITIAL_PRICE"
	EnvCommissionRate = "TOKENSIM_COMMISSION_RATE"
	EnvSeed           = "TOKENSIM_SEED"
	EnvExportPath     = "TOKENSIM_EXPORT"
	EnvLogLevel       = "TOKENSIM_LOG_LEVEL"
)

// LoadDotEnv loads the given .env files into the process environment. Missing
// files are skipped; variables already set are not overwritten.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays TOKENSIM_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvSteps, &c.Steps},
		{EnvTokens, &c.Tokens},
		{EnvAffiliates, &c.Affiliates},
	}
	for _, v := range ints {
		if s := os.Getenv(v.key); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, v.key, s, err)
			}
			*v.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvInitialSupply, &c.InitialSupply},
		{EnvInitialPrice, &c.InitialPrice},
		{EnvCommissionRate, &c.InitialCommissionRate},
	}
	for _, v := range floats {
		if s := os.Getenv(v.key); s != "" {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, v.key, s, err)
			}
			*v.dst = f
		}
	}

	if s := os.Getenv(EnvSeed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSeed, s, err)
		}
		c.Seed = seed
	}
	if s := os.Getenv(EnvExportPath); s != "" {
		c.ExportPath = s
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		c.LogLevel = s
	}
	return nil
}
