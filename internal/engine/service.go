// Package engine fetches market data and runs the quant analyses over it.
package engine

import (
	"context"

	"QuantSentinel/internal/config"
	"QuantSentinel/internal/model"
	"QuantSentinel/internal/orb"
)

// Service is one method per analysis entry point. Implementations are safe
// for concurrent use.
type Service interface {
	Backtest(ctx context.Context, cfg model.BacktestConfig) (*BacktestReport, error)
	AnalyzePair(ctx context.Context, symbolA, symbolB string) (*model.PairResult, error)
	AnalyzePairs(ctx context.Context, pairs [][]string) ([]PairReport, error)
	ScanConfluence(ctx context.Context, symbols []string) ([]ConfluenceReport, error)
	DetectORB(ctx context.Context, symbols []string) ([]ORBReport, error)
	ScreenPremarket(ctx context.Context, symbols []string) ([]model.PremarketStock, error)
}

// BacktestReport is a finished backtest and the symbols it ran without.
type BacktestReport struct {
	Config  model.BacktestConfig  `json:"config"`
	Result  *model.BacktestResult `json:"result"`
	Missing []string              `json:"missing_symbols,omitempty"`
}

// PairReport is the outcome of one pair in a batch. Err is set instead of Result on failure.
type PairReport struct {
	PairA  string            `json:"pair_a"`
	PairB  string            `json:"pair_b"`
	Result *model.PairResult `json:"result,omitempty"`
	Err    string            `json:"error,omitempty"`
}

// ConfluenceReport lists the confluence signals found for one symbol.
type ConfluenceReport struct {
	Symbol   string                   `json:"symbol"`
	Interval string                   `json:"interval"`
	Candles  int                      `json:"candles"`
	Signals  []model.ConfluenceSignal `json:"signals"`
	Err      string                   `json:"error,omitempty"`
}

// Latest returns the most recent signal, or nil.
func (r ConfluenceReport) Latest() *model.ConfluenceSignal {
	if len(r.Signals) == 0 {
		return nil
	}
	return &r.Signals[len(r.Signals)-1]
}

// ORBReport holds the opening range and breakout of one symbol for its latest session.
type ORBReport struct {
	Symbol string              `json:"symbol"`
	Range  *model.OpeningRange `json:"range,omitempty"`
	Signal *model.ORBSignal    `json:"signal,omitempty"`
	Err    string              `json:"error,omitempty"`
}

// Options carries the analysis settings the engine applies to every request.
type Options struct {
	Indicators         model.IndicatorParams
	BacktestMonths     int
	CalendarAlign      bool
	PairLookbackDays   int
	ConfluenceInterval string
	ConfluenceLookback int
	ORBInterval        string
	ORBLookback        int
	RangeMinutes       int
	Breakout           orb.BreakoutConfig
	Screener           orb.ScreenerConfig
}

// OptionsFromConfig maps the loaded configuration to engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Indicators:         cfg.Indicators.IndicatorParams,
		BacktestMonths:     cfg.Backtest.LookbackMonths,
		CalendarAlign:      cfg.Backtest.CalendarAlign,
		PairLookbackDays:   cfg.Pairs.LookbackDays,
		ConfluenceInterval: cfg.Confluence.Interval,
		ConfluenceLookback: cfg.Confluence.Lookback,
		ORBInterval:        cfg.ORB.Interval,
		ORBLookback:        cfg.ORB.Lookback,
		RangeMinutes:       cfg.ORB.RangeMinutes,
		Breakout:           cfg.ORB.BreakoutConfig,
		Screener:           cfg.Screener.ScreenerConfig,
	}
}

// DefaultOptions returns the settings used when no configuration is loaded.
func DefaultOptions() Options {
	return Options{
		Indicators:         model.DefaultIndicatorParams(),
		BacktestMonths:     240,
		PairLookbackDays:   252,
		ConfluenceInterval: "1d",
		ConfluenceLookback: 200,
		ORBInterval:        "5m",
		ORBLookback:        156,
		RangeMinutes:       15,
		Breakout:           orb.DefaultBreakoutConfig(),
		Screener:           orb.DefaultScreenerConfig(),
	}
}
