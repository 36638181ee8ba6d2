package collector

import (
	"context"
	"fmt"
	"regexp"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"QuantSentinel/internal/model"
)

// InfluxConfig locates the candle store.
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string // defaults to stock_prices
}

// InfluxFetcher reads candles stored as one point per bar with
// open/high/low/close/volume fields and a ticker tag.
type InfluxFetcher struct {
	client      influxdb2.Client
	query       api.QueryAPI
	bucket      string
	measurement string
}

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.^=\-]{1,20}$`)

// NewInfluxFetcher opens a client for cfg. Close releases it.
func NewInfluxFetcher(cfg InfluxConfig) *InfluxFetcher {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	m := cfg.Measurement
	if m == "" {
		m = "stock_prices"
	}
	return &InfluxFetcher{
		client:      client,
		query:       client.QueryAPI(cfg.Org),
		bucket:      cfg.Bucket,
		measurement: m,
	}
}

func (f *InfluxFetcher) Name() string { return "influx" }

// Close closes the underlying client.
func (f *InfluxFetcher) Close() { f.client.Close() }

// FetchBars queries stored bars. Weekly and monthly candles are aggregated
// from the stored daily bars.
func (f *InfluxFetcher) FetchBars(ctx context.Context, symbol string, interval Interval, count int) ([]model.Candle, error) {
	if !tickerPattern.MatchString(symbol) {
		return nil, fmt.Errorf("invalid ticker: %q", symbol)
	}

	stored, storedCount, agg := interval, count, func(b []model.Candle) []model.Candle { return b }
	switch interval {
	case Interval1wk:
		stored, storedCount, agg = Interval1d, (count+1)*5, AggregateDailyToWeekly
	case Interval1mo:
		stored, storedCount, agg = Interval1d, (count+1)*21, AggregateDailyToMonthly
	}

	bars, err := f.queryBars(ctx, symbol, stored, storedCount)
	if err != nil {
		return nil, err
	}
	return lastN(agg(bars), count), nil
}

func (f *InfluxFetcher) queryBars(ctx context.Context, symbol string, interval Interval, count int) ([]model.Candle, error) {
	// calendar span with room for weekends and holidays
	lookback := time.Duration(float64(interval.Duration()) * float64(count) * 1.6)
	if interval.Intraday() {
		lookback += 72 * time.Hour
	}
	flux := fmt.Sprintf(`
		from(bucket: "%s")
		  |> range(start: -%ds)
		  |> filter(fn: (r) => r._measurement == "%s")
		  |> filter(fn: (r) => r.ticker == "%s")
		  |> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
		  |> sort(columns: ["_time"], desc: false)
		  |> tail(n: %d)
	`, f.bucket, int64(lookback.Seconds()), f.measurement, symbol, count)

	result, err := f.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx query: %w", err)
	}
	defer result.Close()

	var bars []model.Candle
	for result.Next() {
		rec := result.Record()
		c := model.Candle{Time: rec.Time().Unix()}
		c.Open, _ = rec.ValueByKey("open").(float64)
		c.High, _ = rec.ValueByKey("high").(float64)
		c.Low, _ = rec.ValueByKey("low").(float64)
		c.Close, _ = rec.ValueByKey("close").(float64)
		c.Volume, _ = rec.ValueByKey("volume").(float64)
		if c.Close == 0 {
			continue
		}
		bars = append(bars, c)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("influx read: %w", result.Err())
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("influx %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}
