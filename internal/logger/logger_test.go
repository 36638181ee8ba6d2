package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLogLevel(tt.in), tt.in)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_DETAILED", "true")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, "WARN", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.DetailedLogging)
	assert.False(t, cfg.TracingEnabled)
}

func TestOperationTimerWithoutTracing(t *testing.T) {
	require.NoError(t, InitWithConfig(LogConfig{Level: "ERROR", Format: "text"}))

	op := StartOperation(context.Background(), "test.op", "symbol", "SPY", "count", 3)
	assert.NotNil(t, op.Context())
	op.End("signals", 1)
	op.EndWithError(errors.New("boom"))
	Signal(context.Background(), "orb", "SPY", "long", 101.5)
}

func TestToAttributesSkipsUnsupported(t *testing.T) {
	attrs := toAttributes([]any{"a", "x", "b", 1, "c", []int{1}, 7, "bad-key", "dangling"})
	require.Len(t, attrs, 2)
	assert.Equal(t, "a", string(attrs[0].Key))
	assert.Equal(t, "b", string(attrs[1].Key))
}
