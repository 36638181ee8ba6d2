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
	"time"

	"QuantSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher and QuoteFetcher on the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NDX":    "^NDX",
			"VIX":    "^VIX",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response of the v8 chart API. Missing bars are null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooQuotes is the response of the v7 quote API.
type yahooQuotes struct {
	QuoteResponse struct {
		Result []struct {
			Symbol              string  `json:"symbol"`
			PreMarketPrice      float64 `json:"preMarketPrice"`
			PreMarketChange     float64 `json:"preMarketChange"`
			PreMarketVolume     float64 `json:"preMarketVolume"`
			RegularMarketVolume float64 `json:"regularMarketVolume"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

func at(v []*float64, i int) float64 {
	if i >= len(v) || v[i] == nil {
		return 0
	}
	return *v[i]
}

func (f *YahooFetcher) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// FetchBars fetches the chart for the smallest Yahoo range covering count candles.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, interval Interval, count int) ([]model.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, yahooRange(interval, count))

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bar (holiday, halted minute)
		}
		bars = append(bars, model.Candle{
			Time:   ts,
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return lastN(bars, count), nil
}

// FetchPremarket fetches quote snapshots for symbols in one request.
func (f *YahooFetcher) FetchPremarket(ctx context.Context, symbols []string) ([]model.PremarketSnapshot, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	tickers := make([]string, len(symbols))
	back := make(map[string]string, len(symbols))
	for i, s := range symbols {
		tickers[i] = f.yahooSymbol(s)
		back[tickers[i]] = s
	}
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.BaseURL, url.QueryEscape(strings.Join(tickers, ",")))

	var quotes yahooQuotes
	if err := f.get(ctx, u, &quotes); err != nil {
		return nil, err
	}
	if quotes.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", quotes.QuoteResponse.Error.Description)
	}

	out := make([]model.PremarketSnapshot, 0, len(quotes.QuoteResponse.Result))
	for _, q := range quotes.QuoteResponse.Result {
		sym := q.Symbol
		if orig, ok := back[sym]; ok {
			sym = orig
		}
		out = append(out, model.PremarketSnapshot{
			Symbol:              sym,
			PreMarketPrice:      q.PreMarketPrice,
			PreMarketChange:     q.PreMarketChange,
			PreMarketVolume:     q.PreMarketVolume,
			RegularMarketVolume: q.RegularMarketVolume,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("yahoo quotes: %w", ErrNoData)
	}
	return out, nil
}

// yahooRange picks the smallest chart range holding count candles of interval.
func yahooRange(interval Interval, count int) string {
	type step struct {
		max int
		rng string
	}
	var steps []step
	switch interval {
	case Interval1m:
		steps = []step{{390, "1d"}, {1950, "5d"}}
	case Interval5m, Interval15m, Interval1h:
		perDay := int((390 * time.Minute) / interval.Duration())
		steps = []step{{perDay, "1d"}, {5 * perDay, "5d"}, {21 * perDay, "1mo"}}
	case Interval1wk:
		steps = []step{{26, "6mo"}, {52, "1y"}, {104, "2y"}, {260, "5y"}, {520, "10y"}}
	case Interval1mo:
		steps = []step{{12, "1y"}, {24, "2y"}, {60, "5y"}, {120, "10y"}}
	default:
		steps = []step{{20, "1mo"}, {60, "3mo"}, {120, "6mo"}, {250, "1y"}, {500, "2y"}, {1250, "5y"}, {2500, "10y"}}
	}
	for _, s := range steps {
		if count <= s.max {
			return s.rng
		}
	}
	if interval.Intraday() {
		return steps[len(steps)-1].rng
	}
	return "max"
}
