package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"QuantSentinel/internal/backtest"
	"QuantSentinel/internal/collector"
	"QuantSentinel/internal/indicator"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/model"
	"QuantSentinel/internal/orb"
	"QuantSentinel/internal/pairs"
	"QuantSentinel/internal/strategy"
)

// ErrNoData is returned when no requested symbol could be fetched.
var ErrNoData = errors.New("no market data")

// pairConcurrency bounds concurrent pair analyses in a batch.
const pairConcurrency = 4

// Engine is the default Service: fetch through the collector, then run the pure analyses.
type Engine struct {
	collector  *collector.Collector
	indicators indicator.Provider
	opts       Options
}

var _ Service = (*Engine)(nil)

// New creates an Engine.
func New(col *collector.Collector, ind indicator.Provider, opts Options) *Engine {
	return &Engine{collector: col, indicators: ind, opts: opts}
}

// Options returns the settings the engine was created with.
func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) Backtest(ctx context.Context, cfg model.BacktestConfig) (*BacktestReport, error) {
	symbols := cfg.Universe.Symbols()
	batch, err := e.collector.CollectMany(ctx, symbols, collector.Interval1mo, e.opts.BacktestMonths)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	if len(batch.Series) == 0 {
		return nil, fmt.Errorf("backtest: %w", ErrNoData)
	}

	report := &BacktestReport{Config: cfg, Missing: failedSymbols(batch)}
	if len(report.Missing) > 0 {
		logger.Warn(ctx, "backtest running without symbols", "missing", report.Missing)
	}

	var series backtest.MonthlySeries
	if e.opts.CalendarAlign {
		series = backtest.NewCalendarAligned(batch.Series, cfg.Universe.RiskA)
	} else {
		series = backtest.NewIndexAligned(batch.Series, cfg.Universe.RiskA)
	}
	report.Result = backtest.Run(series, cfg)
	if len(report.Result.Trades) == 0 {
		logger.Warn(ctx, "backtest produced no trades", "months", series.Len(), "start_year", cfg.StartYear)
	}
	return report, nil
}

func (e *Engine) AnalyzePair(ctx context.Context, symbolA, symbolB string) (*model.PairResult, error) {
	batch, err := e.collector.CollectMany(ctx, []string{symbolA, symbolB}, collector.Interval1d, e.opts.PairLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("pair %s/%s: %w", symbolA, symbolB, err)
	}
	for _, sym := range []string{symbolA, symbolB} {
		if ferr, ok := batch.Failed[sym]; ok {
			return nil, fmt.Errorf("pair %s/%s: %w", symbolA, symbolB, ferr)
		}
	}

	res, err := pairs.Analyze(symbolA, batch.Series[symbolA], symbolB, batch.Series[symbolB])
	if err != nil {
		if errors.Is(err, pairs.ErrInsufficientData) {
			logger.Warn(ctx, "pair skipped", "pair_a", symbolA, "pair_b", symbolB, "error", err)
		}
		return nil, err
	}
	return res, nil
}

// AnalyzePairs runs every pair concurrently. A failing pair is reported in its
// PairReport; only context cancellation fails the batch.
func (e *Engine) AnalyzePairs(ctx context.Context, list [][]string) ([]PairReport, error) {
	reports := make([]PairReport, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pairConcurrency)
	for i, p := range list {
		if len(p) != 2 {
			reports[i] = PairReport{Err: fmt.Sprintf("pair needs two symbols, got %d", len(p))}
			continue
		}
		g.Go(func() error {
			res, err := e.AnalyzePair(gctx, p[0], p[1])
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			reports[i] = PairReport{PairA: p[0], PairB: p[1], Result: res}
			if err != nil {
				reports[i].Err = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (e *Engine) ScanConfluence(ctx context.Context, symbols []string) ([]ConfluenceReport, error) {
	interval := collector.Interval(e.opts.ConfluenceInterval)
	batch, err := e.collector.CollectMany(ctx, symbols, interval, e.opts.ConfluenceLookback)
	if err != nil {
		return nil, fmt.Errorf("confluence: %w", err)
	}

	reports := make([]ConfluenceReport, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		reports[i] = ConfluenceReport{Symbol: sym, Interval: string(interval), Signals: []model.ConfluenceSignal{}}
		if ferr, ok := batch.Failed[sym]; ok {
			reports[i].Err = ferr.Error()
			continue
		}
		candles := batch.Series[sym]
		reports[i].Candles = len(candles)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ind, err := e.indicators.Compute(candles, e.opts.Indicators)
			if err != nil {
				logger.Warn(ctx, "indicator computation failed", "symbol", sym, "error", err)
				reports[i].Err = err.Error()
				return
			}
			reports[i].Signals = strategy.DetectConfluenceSignals(candles, ind)
		}()
	}
	wg.Wait()
	return reports, nil
}

func (e *Engine) DetectORB(ctx context.Context, symbols []string) ([]ORBReport, error) {
	interval := collector.Interval(e.opts.ORBInterval)
	if !interval.Intraday() {
		return nil, fmt.Errorf("orb: interval %s is not intraday", interval)
	}
	batch, err := e.collector.CollectMany(ctx, symbols, interval, e.opts.ORBLookback)
	if err != nil {
		return nil, fmt.Errorf("orb: %w", err)
	}

	reports := make([]ORBReport, len(symbols))
	for i, sym := range symbols {
		reports[i] = ORBReport{Symbol: sym}
		if ferr, ok := batch.Failed[sym]; ok {
			reports[i].Err = ferr.Error()
			continue
		}
		candles := batch.Series[sym]
		rng := orb.DetectOpeningRange(sym, candles, e.opts.RangeMinutes)
		if rng == nil {
			logger.Debug(ctx, "no opening range yet", "symbol", sym, "candles", len(candles))
			continue
		}
		reports[i].Range = rng
		reports[i].Signal = orb.DetectBreakout(sym, candles, rng, e.opts.Breakout)
	}
	return reports, nil
}

func (e *Engine) ScreenPremarket(ctx context.Context, symbols []string) ([]model.PremarketStock, error) {
	snaps, err := e.collector.Premarket(ctx, symbols)
	if err != nil {
		return nil, err
	}
	if len(snaps) < len(symbols) {
		logger.Warn(ctx, "premarket snapshots missing", "requested", len(symbols), "received", len(snaps))
	}
	return orb.FilterCandidates(snaps, e.opts.Screener), nil
}

func failedSymbols(batch *collector.Batch) []string {
	if len(batch.Failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(batch.Failed))
	for s := range batch.Failed {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
