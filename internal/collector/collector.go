package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/metrics"
	"QuantSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	Bars      map[string][]model.Candle
	Snapshots []model.PremarketSnapshot
	Errors    map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, interval Interval, count int) ([]model.Candle, error) {
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		if len(bars) == 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
		}
		return lastN(bars, count), nil
	}
	return generateMockBars(m.Price, interval, count), nil
}

func (m *MockFetcher) FetchPremarket(_ context.Context, symbols []string) ([]model.PremarketSnapshot, error) {
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	var out []model.PremarketSnapshot
	for _, s := range m.Snapshots {
		if want[s.Symbol] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("mock quotes: %w", ErrNoData)
	}
	return out, nil
}

// generateMockBars produces a gently oscillating series ending at the current interval.
func generateMockBars(basePrice float64, interval Interval, count int) []model.Candle {
	if count <= 0 {
		return nil
	}
	if basePrice <= 0 {
		basePrice = 100
	}
	step := interval.Duration()
	end := time.Now().UTC().Truncate(step)
	bars := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/5))
		bars[i] = model.Candle{
			Time:   end.Add(-time.Duration(count-1-i) * step).Unix(),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 * (1 + 0.3*math.Cos(float64(i)/3)),
		}
	}
	return bars
}

// Batch is the outcome of a multi-symbol fetch. Failed symbols are absent from Series.
type Batch struct {
	Series model.SeriesMap
	Failed map[string]error
}

// Collector fans candle requests out to a Fetcher under a shared rate limit.
type Collector struct {
	Fetcher     Fetcher
	Quotes      QuoteFetcher
	Limiter     *rate.Limiter
	Concurrency int
}

// NewCollector creates a Collector. requestsPerSecond <= 0 disables the limit.
func NewCollector(fetcher Fetcher, quotes QuoteFetcher, requestsPerSecond float64) *Collector {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(math.Max(1, math.Ceil(requestsPerSecond)))
	}
	return &Collector{
		Fetcher:     fetcher,
		Quotes:      quotes,
		Limiter:     rate.NewLimiter(limit, burst),
		Concurrency: 4,
	}
}

// Collect fetches count candles of interval for one symbol.
func (c *Collector) Collect(ctx context.Context, symbol string, interval Interval, count int) ([]model.Candle, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	bars, err := c.Fetcher.FetchBars(ctx, symbol, interval, count)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(c.Fetcher.Name()).Inc()
		return nil, fmt.Errorf("fetch %s %s: %w", symbol, interval, err)
	}
	return bars, nil
}

// CollectMany fetches every symbol concurrently. A failing symbol is recorded
// in Batch.Failed and does not stop the others; only context cancellation
// returns an error.
func (c *Collector) CollectMany(ctx context.Context, symbols []string, interval Interval, count int) (*Batch, error) {
	batch := &Batch{Series: make(model.SeriesMap, len(symbols)), Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for _, sym := range symbols {
		g.Go(func() error {
			bars, err := c.Collect(gctx, sym, interval, count)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failed[sym] = err
				logger.Warn(gctx, "symbol fetch failed", "symbol", sym, "source", c.Fetcher.Name(), "error", err)
				return nil
			}
			batch.Series[sym] = bars
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// Premarket returns premarket snapshots from the quote source.
func (c *Collector) Premarket(ctx context.Context, symbols []string) ([]model.PremarketSnapshot, error) {
	if c.Quotes == nil {
		return nil, fmt.Errorf("premarket: no quote source configured")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	snaps, err := c.Quotes.FetchPremarket(ctx, symbols)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("quotes").Inc()
		return nil, fmt.Errorf("premarket: %w", err)
	}
	return snaps, nil
}
