package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"QuantSentinel/internal/model"
)

// RESTFetcher implements Fetcher and QuoteFetcher on a vendor REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the bar JSON shape of the vendor API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars uses the matching bars endpoint. Weekly and monthly requests fall
// back to aggregating daily bars when the vendor has no such endpoint.
func (f *RESTFetcher) FetchBars(ctx context.Context, symbol string, interval Interval, count int) ([]model.Candle, error) {
	q := url.Values{"symbol": {symbol}, "limit": {fmt.Sprint(count)}}
	switch interval {
	case Interval1d:
		return f.fetchBars(ctx, "daily", q)
	case Interval1wk, Interval1mo:
		path, perBar, agg := "weekly", 5, AggregateDailyToWeekly
		if interval == Interval1mo {
			path, perBar, agg = "monthly", 21, AggregateDailyToMonthly
		}
		bars, err := f.fetchBars(ctx, path, q)
		if err == nil {
			return bars, nil
		}
		daily, dailyErr := f.fetchBars(ctx, "daily", url.Values{"symbol": {symbol}, "limit": {fmt.Sprint((count + 1) * perBar)}})
		if dailyErr != nil {
			return nil, fmt.Errorf("%s fetch failed: %w; daily fallback also failed: %w", path, err, dailyErr)
		}
		return lastN(agg(daily), count), nil
	default:
		q.Set("interval", string(interval))
		return f.fetchBars(ctx, "intraday", q)
	}
}

// FetchPremarket returns the vendor's premarket snapshots.
func (f *RESTFetcher) FetchPremarket(ctx context.Context, symbols []string) ([]model.PremarketSnapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v1/premarket?symbols=%s", f.BaseURL, url.QueryEscape(strings.Join(symbols, ",")))
	var snaps []model.PremarketSnapshot
	if err := f.getJSON(ctx, endpoint, &snaps); err != nil {
		return nil, fmt.Errorf("fetch premarket: %w", err)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("fetch premarket: %w", ErrNoData)
	}
	return snaps, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, path string, q url.Values) ([]model.Candle, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/%s?%s", f.BaseURL, path, q.Encode())
	var raw []restBar
	if err := f.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("fetch bars %s: %w", q.Get("symbol"), ErrNoData)
	}
	bars := make([]model.Candle, len(raw))
	for i, rb := range raw {
		bars[i] = model.Candle{
			Time:   rb.Timestamp,
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars, nil
}

func (f *RESTFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
