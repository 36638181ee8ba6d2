package recorder

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordBacktest(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	report := &engine.BacktestReport{
		Config: model.BacktestConfig{StartYear: 2020, InitialCapital: 100, GEMWeight: 1, Universe: model.DefaultUniverse()},
		Result: &model.BacktestResult{
			EquityCurve: []model.EquityPoint{{Time: 1, Value: 100}, {Time: 2, Value: 110}},
			Months:      1,
			CAGR:        0.1,
			Calmar:      math.Inf(1),
		},
		Missing: []string{"DBC"},
	}

	id, err := r.RecordBacktest(ctx, report)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	runs, err := r.RecentBacktests(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 2020, runs[0].StartYear)
	assert.Equal(t, 110.0, runs[0].FinalEquity)

	var points int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM backtest_equity WHERE run_id = ?`, id).Scan(&points))
	assert.Equal(t, 2, points)

	var calmar sql.NullFloat64
	require.NoError(t, r.db.QueryRow(`SELECT calmar FROM backtest_runs WHERE id = ?`, id).Scan(&calmar))
	assert.False(t, calmar.Valid)
}

func TestRecordPairInfiniteHalfLife(t *testing.T) {
	r := openTestDB(t)
	res := &model.PairResult{PairA: "KO", PairB: "PEP", Beta: 1.2, HalfLife: math.Inf(1), Signal: model.PairSignalNone, PValue: ">0.10"}
	require.NoError(t, r.RecordPair(context.Background(), res))

	var hl sql.NullFloat64
	var signal string
	require.NoError(t, r.db.QueryRow(`SELECT half_life, signal FROM pair_analyses`).Scan(&hl, &signal))
	assert.False(t, hl.Valid)
	assert.Equal(t, "none", signal)
}

func TestRecordConfluenceDeduplicates(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	sig := model.ConfluenceSignal{
		Time: 1700000000, Side: model.SideBuy, Confidence: model.ConfidenceStrong, Price: 99,
		Conditions: []model.Condition{{Name: "lower band touch"}},
	}
	require.NoError(t, r.RecordConfluence(ctx, "SPY", "1d", sig))
	require.NoError(t, r.RecordConfluence(ctx, "SPY", "1d", sig))
	require.NoError(t, r.RecordConfluence(ctx, "QQQ", "1d", sig))

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM confluence_signals`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestRecordORBAndScreen(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, r.RecordORB(ctx, &model.ORBSignal{Symbol: "SPY", Direction: model.DirectionLong, Entry: 101.5, Time: 10}))

	id, err := r.RecordScreen(ctx, []model.PremarketStock{{Symbol: "BBB", RVol: 5}, {Symbol: "AAA", RVol: 3, HasCatalyst: true}})
	require.NoError(t, err)

	var symbol string
	require.NoError(t, r.db.QueryRow(`SELECT symbol FROM premarket_screens WHERE screen_id = ? AND rank = 1`, id).Scan(&symbol))
	assert.Equal(t, "BBB", symbol)

	var dir string
	require.NoError(t, r.db.QueryRow(`SELECT direction FROM orb_signals WHERE symbol = 'SPY'`).Scan(&dir))
	assert.Equal(t, "long", dir)
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	id, err := n.RecordBacktest(context.Background(), &engine.BacktestReport{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, n.Close())
}
