package collector

import (
	"context"
	"errors"
	"time"

	"QuantSentinel/internal/model"
)

// ErrNoData is returned when a source has no candles or quotes for a request.
var ErrNoData = errors.New("no data returned")

// Interval is a candle interval in Yahoo notation.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "60m"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

// Duration is the nominal length of one candle.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval1wk:
		return 7 * 24 * time.Hour
	case Interval1mo:
		return 31 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Intraday reports whether the interval is shorter than a day.
func (i Interval) Intraday() bool {
	return i.Duration() < 24*time.Hour
}

// Fetcher fetches candles for one symbol.
type Fetcher interface {
	// FetchBars returns up to count most recent candles, ascending by time.
	FetchBars(ctx context.Context, symbol string, interval Interval, count int) ([]model.Candle, error)
	Name() string
}

// QuoteFetcher returns premarket snapshots.
type QuoteFetcher interface {
	FetchPremarket(ctx context.Context, symbols []string) ([]model.PremarketSnapshot, error)
}

// lastN keeps the count most recent candles.
func lastN(bars []model.Candle, count int) []model.Candle {
	if count > 0 && len(bars) > count {
		return bars[len(bars)-count:]
	}
	return bars
}
