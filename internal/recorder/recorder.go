package recorder

import (
	"context"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/model"
)

// Recorder persists analysis outputs for later review.
type Recorder interface {
	// RecordBacktest stores a backtest run and its equity curve and returns the run id.
	RecordBacktest(ctx context.Context, report *engine.BacktestReport) (string, error)
	RecordPair(ctx context.Context, res *model.PairResult) error
	RecordConfluence(ctx context.Context, symbol, interval string, sig model.ConfluenceSignal) error
	RecordORB(ctx context.Context, sig *model.ORBSignal) error
	// RecordScreen stores one premarket screen and returns its id.
	RecordScreen(ctx context.Context, stocks []model.PremarketStock) (string, error)
	Close() error
}
