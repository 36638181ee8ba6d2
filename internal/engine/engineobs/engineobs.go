// Package engineobs decorates an engine.Service with spans, logs and metrics.
package engineobs

import (
	"context"
	"errors"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/metrics"
	"QuantSentinel/internal/model"
	"QuantSentinel/internal/pairs"
)

type observableEngine struct {
	engine engine.Service
}

var _ engine.Service = (*observableEngine)(nil)

func Wrap(eng engine.Service) engine.Service {
	return &observableEngine{engine: eng}
}

func (oe *observableEngine) Backtest(ctx context.Context, cfg model.BacktestConfig) (*engine.BacktestReport, error) {
	op := logger.StartOperation(ctx, "engine.Backtest",
		"start_year", cfg.StartYear,
		"initial_capital", cfg.InitialCapital,
	)
	report, err := oe.engine.Backtest(op.Context(), cfg)
	if err != nil {
		finish(op, "backtest", err)
		return nil, err
	}
	res := report.Result
	result := metrics.ResultOK
	if res.Months == 0 {
		result = metrics.ResultInsufficient
	}
	metrics.ObserveAnalysis("backtest", result, op.Elapsed())
	logger.Info(op.Context(), "backtest completed",
		"months", res.Months,
		"cagr", res.CAGR,
		"sharpe", res.Sharpe,
		"max_drawdown", res.MaxDrawdown,
		"duration_ms", op.Elapsed().Milliseconds(),
	)
	op.End("months", res.Months)
	return report, nil
}

func (oe *observableEngine) AnalyzePair(ctx context.Context, symbolA, symbolB string) (*model.PairResult, error) {
	op := logger.StartOperation(ctx, "engine.AnalyzePair", "pair_a", symbolA, "pair_b", symbolB)
	res, err := oe.engine.AnalyzePair(op.Context(), symbolA, symbolB)
	if err != nil {
		finish(op, "pair", err)
		return nil, err
	}
	metrics.ObserveAnalysis("pair", metrics.ResultOK, op.Elapsed())
	pairSignal(op.Context(), res)
	op.End("signal", string(res.Signal), "cointegrated", res.IsCointegrated)
	return res, nil
}

func (oe *observableEngine) AnalyzePairs(ctx context.Context, list [][]string) ([]engine.PairReport, error) {
	op := logger.StartOperation(ctx, "engine.AnalyzePairs", "pairs", len(list))
	reports, err := oe.engine.AnalyzePairs(op.Context(), list)
	if err != nil {
		finish(op, "pairs", err)
		return nil, err
	}
	failed := 0
	for _, r := range reports {
		if r.Err != "" {
			failed++
			continue
		}
		pairSignal(op.Context(), r.Result)
	}
	metrics.ObserveAnalysis("pairs", metrics.ResultOK, op.Elapsed())
	logger.Info(op.Context(), "pair batch completed", "pairs", len(reports), "failed", failed)
	op.End("failed", failed)
	return reports, nil
}

func (oe *observableEngine) ScanConfluence(ctx context.Context, symbols []string) ([]engine.ConfluenceReport, error) {
	op := logger.StartOperation(ctx, "engine.ScanConfluence", "symbols", len(symbols))
	reports, err := oe.engine.ScanConfluence(op.Context(), symbols)
	if err != nil {
		finish(op, "confluence", err)
		return nil, err
	}
	total := 0
	for _, r := range reports {
		total += len(r.Signals)
		if s := r.Latest(); s != nil {
			metrics.SignalsEmitted.WithLabelValues("confluence", string(s.Side)).Inc()
			logger.Signal(op.Context(), "confluence", r.Symbol, string(s.Side), s.Price,
				"confidence", string(s.Confidence),
				"rsi", s.RSI,
				"time", s.Time,
			)
		}
	}
	metrics.ObserveAnalysis("confluence", metrics.ResultOK, op.Elapsed())
	op.End("signals", total)
	return reports, nil
}

func (oe *observableEngine) DetectORB(ctx context.Context, symbols []string) ([]engine.ORBReport, error) {
	op := logger.StartOperation(ctx, "engine.DetectORB", "symbols", len(symbols))
	reports, err := oe.engine.DetectORB(op.Context(), symbols)
	if err != nil {
		finish(op, "orb", err)
		return nil, err
	}
	breakouts := 0
	for _, r := range reports {
		if r.Signal == nil {
			continue
		}
		breakouts++
		metrics.SignalsEmitted.WithLabelValues("orb", string(r.Signal.Direction)).Inc()
		logger.Signal(op.Context(), "orb", r.Symbol, string(r.Signal.Direction), r.Signal.Entry,
			"stop", r.Signal.Stop,
			"target1", r.Signal.Target1,
			"vwap", r.Signal.VWAP,
		)
	}
	metrics.ObserveAnalysis("orb", metrics.ResultOK, op.Elapsed())
	op.End("breakouts", breakouts)
	return reports, nil
}

func (oe *observableEngine) ScreenPremarket(ctx context.Context, symbols []string) ([]model.PremarketStock, error) {
	op := logger.StartOperation(ctx, "engine.ScreenPremarket", "symbols", len(symbols))
	stocks, err := oe.engine.ScreenPremarket(op.Context(), symbols)
	if err != nil {
		finish(op, "premarket", err)
		return nil, err
	}
	metrics.ObserveAnalysis("premarket", metrics.ResultOK, op.Elapsed())
	logger.Info(op.Context(), "premarket screen completed", "candidates", len(stocks))
	op.End("candidates", len(stocks))
	return stocks, nil
}

func pairSignal(ctx context.Context, res *model.PairResult) {
	if res == nil || res.Signal == model.PairSignalNone {
		return
	}
	metrics.SignalsEmitted.WithLabelValues("pair", string(res.Signal)).Inc()
	logger.Signal(ctx, "pair", res.PairA+"/"+res.PairB, string(res.Signal), res.CurrentZScore,
		"beta", res.Beta,
		"cointegrated", res.IsCointegrated,
	)
}

// finish records a failed operation; insufficient data is a warning, not an error.
func finish(op *logger.OperationTimer, name string, err error) {
	if errors.Is(err, pairs.ErrInsufficientData) {
		metrics.ObserveAnalysis(name, metrics.ResultInsufficient, op.Elapsed())
		logger.Warn(op.Context(), "analysis skipped", "operation", name, "error", err)
		op.End("insufficient_data", true)
		return
	}
	metrics.ObserveAnalysis(name, metrics.ResultError, op.Elapsed())
	op.EndWithError(err)
}
