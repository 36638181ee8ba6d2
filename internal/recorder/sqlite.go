package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/model"
)

var (
	_ Recorder = (*SQLiteRecorder)(nil)
	_ Recorder = (*NoopRecorder)(nil)
)

// SQLiteRecorder persists analysis outputs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// BacktestRun is one row of backtest_runs.
type BacktestRun struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	StartYear      int       `json:"start_year"`
	InitialCapital float64   `json:"initial_capital"`
	Months         int       `json:"months"`
	CAGR           float64   `json:"cagr"`
	Sharpe         float64   `json:"sharpe"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	FinalEquity    float64   `json:"final_equity"`
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(context.Background(), "sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id              TEXT PRIMARY KEY,
			created_at      INTEGER NOT NULL,
			start_year      INTEGER,
			initial_capital REAL,
			gem_weight      REAL,
			taa_weight      REAL,
			sector_weight   REAL,
			months          INTEGER,
			cagr            REAL,
			sharpe          REAL,
			max_drawdown    REAL,
			win_rate        REAL,
			calmar          REAL,
			total_return    REAL,
			volatility      REAL,
			final_equity    REAL,
			missing         TEXT,
			universe        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_created ON backtest_runs(created_at)`,

		`CREATE TABLE IF NOT EXISTS backtest_equity (
			run_id TEXT NOT NULL REFERENCES backtest_runs(id),
			time   INTEGER NOT NULL,
			value  REAL,
			PRIMARY KEY (run_id, time)
		)`,

		`CREATE TABLE IF NOT EXISTS pair_analyses (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			pair_a          TEXT,
			pair_b          TEXT,
			beta            REAL,
			alpha           REAL,
			adf_statistic   REAL,
			p_value         TEXT,
			is_cointegrated INTEGER,
			half_life       REAL,
			correlation     REAL,
			z_window        INTEGER,
			current_z       REAL,
			signal          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pair_ts ON pair_analyses(timestamp)`,

		`CREATE TABLE IF NOT EXISTS confluence_signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT,
			interval    TEXT,
			candle_time INTEGER,
			side        TEXT,
			confidence  TEXT,
			price       REAL,
			rsi         REAL,
			band        REAL,
			conditions  TEXT,
			UNIQUE (symbol, interval, candle_time, side)
		)`,

		`CREATE TABLE IF NOT EXISTS orb_signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT,
			candle_time INTEGER,
			direction   TEXT,
			entry       REAL,
			target1     REAL,
			target2     REAL,
			stop        REAL,
			range_high  REAL,
			range_low   REAL,
			vwap        REAL,
			UNIQUE (symbol, candle_time)
		)`,

		`CREATE TABLE IF NOT EXISTS premarket_screens (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			screen_id      TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			rank           INTEGER,
			symbol         TEXT,
			pre_price      REAL,
			pre_change_pct REAL,
			pre_volume     REAL,
			normal_volume  REAL,
			rvol           REAL,
			has_catalyst   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_id ON premarket_screens(screen_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBacktest(ctx context.Context, report *engine.BacktestReport) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	cfg := report.Config
	res := report.Result
	final := cfg.InitialCapital
	if n := len(res.EquityCurve); n > 0 {
		final = res.EquityCurve[n-1].Value
	}
	universe, err := json.Marshal(cfg.Universe)
	if err != nil {
		return "", fmt.Errorf("encode universe: %w", err)
	}
	missing, err := json.Marshal(report.Missing)
	if err != nil {
		return "", fmt.Errorf("encode missing: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO backtest_runs
		(id, created_at, start_year, initial_capital, gem_weight, taa_weight, sector_weight,
		 months, cagr, sharpe, max_drawdown, win_rate, calmar, total_return, volatility,
		 final_equity, missing, universe)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, time.Now().Unix(), cfg.StartYear, cfg.InitialCapital,
		cfg.GEMWeight, cfg.TAAWeight, cfg.SectorWeight,
		res.Months, res.CAGR, res.Sharpe, res.MaxDrawdown, res.WinRate,
		nullable(res.Calmar), res.TotalReturn, res.Volatility,
		final, string(missing), string(universe),
	)
	if err != nil {
		return "", fmt.Errorf("insert backtest run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO backtest_equity (run_id, time, value) VALUES (?,?,?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for _, p := range res.EquityCurve {
		if _, err := stmt.ExecContext(ctx, id, p.Time, p.Value); err != nil {
			return "", fmt.Errorf("insert equity point: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (r *SQLiteRecorder) RecordPair(ctx context.Context, res *model.PairResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO pair_analyses
		(timestamp, pair_a, pair_b, beta, alpha, adf_statistic, p_value, is_cointegrated,
		 half_life, correlation, z_window, current_z, signal)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), res.PairA, res.PairB, res.Beta, res.Alpha,
		res.ADFStatistic, res.PValue, res.IsCointegrated,
		nullable(res.HalfLife), res.Correlation, res.ZWindow, res.CurrentZScore, string(res.Signal),
	)
	return err
}

// RecordConfluence stores a signal once per symbol, interval, candle and side.
func (r *SQLiteRecorder) RecordConfluence(ctx context.Context, symbol, interval string, sig model.ConfluenceSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conds, err := json.Marshal(sig.Conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT OR IGNORE INTO confluence_signals
		(timestamp, symbol, interval, candle_time, side, confidence, price, rsi, band, conditions)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), symbol, interval, sig.Time, string(sig.Side), string(sig.Confidence),
		sig.Price, sig.RSI, sig.Band, string(conds),
	)
	return err
}

func (r *SQLiteRecorder) RecordORB(ctx context.Context, sig *model.ORBSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO orb_signals
		(timestamp, symbol, candle_time, direction, entry, target1, target2, stop, range_high, range_low, vwap)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), sig.Symbol, sig.Time, string(sig.Direction),
		sig.Entry, sig.Target1, sig.Target2, sig.Stop, sig.RangeHigh, sig.RangeLow, sig.VWAP,
	)
	return err
}

func (r *SQLiteRecorder) RecordScreen(ctx context.Context, stocks []model.PremarketStock) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().Unix()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	for i, s := range stocks {
		_, err := tx.ExecContext(ctx, `INSERT INTO premarket_screens
			(screen_id, timestamp, rank, symbol, pre_price, pre_change_pct, pre_volume, normal_volume, rvol, has_catalyst)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id, now, i+1, s.Symbol, s.PrePrice, s.PreChangePct, s.PreVolume, s.NormalVolume, s.RVol, s.HasCatalyst,
		)
		if err != nil {
			return "", fmt.Errorf("insert screen row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RecentBacktests returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentBacktests(ctx context.Context, limit int) ([]BacktestRun, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, created_at, start_year, initial_capital, months,
		cagr, sharpe, max_drawdown, final_equity
		FROM backtest_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		var run BacktestRun
		var created int64
		if err := rows.Scan(&run.ID, &created, &run.StartYear, &run.InitialCapital, &run.Months,
			&run.CAGR, &run.Sharpe, &run.MaxDrawdown, &run.FinalEquity); err != nil {
			return nil, err
		}
		run.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info(context.Background(), "closing sqlite recorder")
	return r.db.Close()
}

// nullable stores non-finite values as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
