// Package persistence exports finished runs to SQLite for offline analysis.
// It only ever writes completed results; runs are never resumed from it.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tokensim/internal/engine"
)

// DB wraps a SQLite connection holding exported runs.
type DB struct {
	conn *sqlx.DB
	log  *slog.Logger
}

// Run is one exported run's header row.
type Run struct {
	ID         string    `db:"id"`
	Seed       int64     `db:"seed"`
	Steps      int       `db:"steps"`
	Tokens     int       `db:"tokens"`
	Affiliates int       `db:"affiliates"`
	Trades     int       `db:"trades"`
	Volume     float64   `db:"volume"`
	ConfigJSON string    `db:"config_json"`
	CreatedAt  time.Time `db:"created_at"`
}

// TokenPoint is one step of a token series.
type TokenPoint struct {
	Step   int     `db:"step"`
	Price  float32 `db:"price"`
	Supply float32 `db:"supply"`
	Curve  string  `db:"curve"`
}

// AffiliatePoint is one step of an affiliate series.
type AffiliatePoint struct {
	Step           int     `db:"step"`
	Earned         float64 `db:"earned"`
	CommissionRate float64 `db:"commission_rate"`
	Balance        float64 `db:"balance"`
	WalletJSON     string  `db:"wallet_json"`
}

// Open opens or creates a SQLite database at the given path. A nil logger
// falls back to slog.Default.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, log: logger}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		tokens INTEGER NOT NULL,
		affiliates INTEGER NOT NULL,
		trades INTEGER NOT NULL,
		volume REAL NOT NULL,
		config_json TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS token_history (
		run_id TEXT NOT NULL REFERENCES runs(id),
		token TEXT NOT NULL,
		step INTEGER NOT NULL,
		price REAL NOT NULL,
		supply REAL NOT NULL,
		curve TEXT NOT NULL,
		PRIMARY KEY (run_id, token, step)
	);

	CREATE TABLE IF NOT EXISTS affiliate_history (
		run_id TEXT NOT NULL REFERENCES runs(id),
		affiliate_id INTEGER NOT NULL,
		step INTEGER NOT NULL,
		earned REAL NOT NULL,
		commission_rate REAL NOT NULL,
		balance REAL NOT NULL,
		wallet_json TEXT NOT NULL,
		PRIMARY KEY (run_id, affiliate_id, step)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveResult writes a finished run in one transaction and returns its new ID.
func (db *DB) SaveResult(res *engine.Result) (string, error) {
	runID := uuid.NewString()
	cfgJSON, err := json.Marshal(res.Config)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, seed, steps, tokens, affiliates, trades, volume, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.Seed, res.Steps, len(res.Tokens), len(res.Affiliates),
		res.Stats.Trades(), res.Stats.Volume, string(cfgJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	tokStmt, err := tx.Preparex(`INSERT INTO token_history
		(run_id, token, step, price, supply, curve) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer tokStmt.Close()

	for _, h := range res.Tokens {
		for step := 0; step < h.Len(); step++ {
			if _, err := tokStmt.Exec(runID, h.Name, step, h.Price[step], h.Supply[step], h.Curve[step]); err != nil {
				return "", fmt.Errorf("insert token %s step %d: %w", h.Name, step, err)
			}
		}
	}

	affStmt, err := tx.Preparex(`INSERT INTO affiliate_history
		(run_id, affiliate_id, step, earned, commission_rate, balance, wallet_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer affStmt.Close()

	for _, h := range res.Affiliates {
		for step := 0; step < h.Len(); step++ {
			walletJSON, err := json.Marshal(h.Wallet[step])
			if err != nil {
				return "", fmt.Errorf("marshal wallet %d step %d: %w", h.ID, step, err)
			}
			_, err = affStmt.Exec(runID, h.ID, step,
				h.Earned[step], h.CommissionRate[step], h.Balance[step], string(walletJSON))
			if err != nil {
				return "", fmt.Errorf("insert affiliate %d step %d: %w", h.ID, step, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	db.log.Info("run exported", "run_id", runID, "tokens", len(res.Tokens), "affiliates", len(res.Affiliates))
	return runID, nil
}

// RecentRuns returns the most recently exported runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, steps, tokens, affiliates, trades, volume, config_json, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// TokenSeries returns one token's exported series in step order.
func (db *DB) TokenSeries(runID, token string) ([]TokenPoint, error) {
	var points []TokenPoint
	err := db.conn.Select(&points,
		"SELECT step, price, supply, curve FROM token_history WHERE run_id = ? AND token = ? ORDER BY step",
		runID, token,
	)
	return points, err
}

// AffiliateSeries returns one affiliate's exported series in step order.
func (db *DB) AffiliateSeries(runID string, affiliateID int) ([]AffiliatePoint, error) {
	var points []AffiliatePoint
	err := db.conn.Select(&points,
		"SELECT step, earned, commission_rate, balance, wallet_json FROM affiliate_history WHERE run_id = ? AND affiliate_id = ? ORDER BY step",
		runID, affiliateID,
	)
	return points, err
}
