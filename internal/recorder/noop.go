package recorder

import (
	"context"

	"github.com/google/uuid"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
// It still hands out run ids so callers can reference a run in messages.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBacktest(_ context.Context, _ *engine.BacktestReport) (string, error) {
	return uuid.NewString(), nil
}
func (n *NoopRecorder) RecordPair(_ context.Context, _ *model.PairResult) error { return nil }
func (n *NoopRecorder) RecordConfluence(_ context.Context, _, _ string, _ model.ConfluenceSignal) error {
	return nil
}
func (n *NoopRecorder) RecordORB(_ context.Context, _ *model.ORBSignal) error { return nil }
func (n *NoopRecorder) RecordScreen(_ context.Context, _ []model.PremarketStock) (string, error) {
	return uuid.NewString(), nil
}
func (n *NoopRecorder) Close() error { return nil }
