package persistence

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tokensim/internal/config"
	"github.com/talgya/tokensim/internal/engine"
	"github.com/talgya/tokensim/internal/entropy"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func runResult(t *testing.T) *engine.Result {
	t.Helper()
	cfg := config.Default()
	cfg.Steps = 12
	cfg.Tokens = 2
	cfg.Affiliates = 3
	cfg.Seed = 5
	sim, err := engine.NewSimulation(cfg, entropy.NewSource(cfg.Seed), nil)
	require.NoError(t, err)
	res, err := sim.Run()
	require.NoError(t, err)
	return res
}

func TestSaveResultRoundTrip(t *testing.T) {
	db := openTestDB(t)
	res := runResult(t)

	runID, err := db.SaveResult(res)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, int64(5), runs[0].Seed)
	assert.Equal(t, 12, runs[0].Steps)
	assert.Equal(t, 2, runs[0].Tokens)
	assert.Equal(t, 3, runs[0].Affiliates)

	for _, h := range res.Tokens {
		points, err := db.TokenSeries(runID, h.Name)
		require.NoError(t, err)
		require.Len(t, points, 12)
		for i, p := range points {
			assert.Equal(t, i, p.Step)
			assert.Equal(t, h.Price[i], p.Price)
			assert.Equal(t, h.Supply[i], p.Supply)
			assert.Equal(t, h.Curve[i], p.Curve)
		}
	}

	h := res.Affiliates[1]
	points, err := db.AffiliateSeries(runID, h.ID)
	require.NoError(t, err)
	require.Len(t, points, 12)
	last := points[11]
	assert.Equal(t, h.Earned[11], last.Earned)
	assert.Equal(t, h.Balance[11], last.Balance)

	var wallet map[string]float64
	require.NoError(t, json.Unmarshal([]byte(last.WalletJSON), &wallet))
	assert.Equal(t, h.Wallet[11], wallet)
}

func TestSaveResultKeepsRunsApart(t *testing.T) {
	db := openTestDB(t)
	res := runResult(t)

	first, err := db.SaveResult(res)
	require.NoError(t, err)
	second, err := db.SaveResult(res)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err := db.RecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	points, err := db.TokenSeries(second, res.Tokens[0].Name)
	require.NoError(t, err)
	assert.Len(t, points, 12)
}

func TestSeriesForUnknownRun(t *testing.T) {
	db := openTestDB(t)
	points, err := db.TokenSeries("missing", "Token_0")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestSaveResultLogsToGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runID, err := db.SaveResult(runResult(t))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run exported")
	assert.Contains(t, buf.String(), "run_id="+runID)
}
