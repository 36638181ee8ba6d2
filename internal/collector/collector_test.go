package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantSentinel/internal/model"
)

const chartJSON = `{"chart":{"result":[{"timestamp":[300,100,200],
"indicators":{"quote":[{"open":[3,1,null],"high":[3.5,1.5,null],"low":[2.5,0.5,null],"close":[3.2,1.2,null],"volume":[30,10,null]}]}}],"error":null}}`

func TestYahooFetchBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/^GSPC", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartJSON)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchBars(context.Background(), "SPX", Interval1d, 10)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null bar is skipped")
	assert.Equal(t, int64(100), bars[0].Time)
	assert.Equal(t, 3.2, bars[1].Close)
	assert.Equal(t, 30.0, bars[1].Volume)
}

func TestYahooFetchBarsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchBars(context.Background(), "NOPE", Interval1d, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooFetchPremarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL,^GSPC", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, `{"quoteResponse":{"result":[
			{"symbol":"AAPL","preMarketPrice":190.5,"preMarketChange":4.5,"preMarketVolume":1200000,"regularMarketVolume":50000000},
			{"symbol":"^GSPC","preMarketPrice":5000,"preMarketChange":-10,"preMarketVolume":0,"regularMarketVolume":0}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	snaps, err := f.FetchPremarket(context.Background(), []string{"AAPL", "SPX"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "AAPL", snaps[0].Symbol)
	assert.Equal(t, 4.5, snaps[0].PreMarketChange)
	assert.Equal(t, "SPX", snaps[1].Symbol, "mapped ticker is reported under the internal symbol")
}

func TestYahooRange(t *testing.T) {
	tests := []struct {
		interval Interval
		count    int
		expected string
	}{
		{Interval1m, 100, "1d"},
		{Interval1m, 1000, "5d"},
		{Interval1m, 99999, "5d"},
		{Interval5m, 78, "1d"},
		{Interval5m, 300, "5d"},
		{Interval1d, 252, "2y"},
		{Interval1d, 60, "3mo"},
		{Interval1mo, 200, "max"},
		{Interval1mo, 36, "5y"},
		{Interval1wk, 52, "1y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, yahooRange(tt.interval, tt.count), "%s x %d", tt.interval, tt.count)
	}
}

func TestRESTFetcherMonthlyFallsBackToDaily(t *testing.T) {
	var daily []string
	day := func(y int, m time.Month, d int, c float64) string {
		ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
		return fmt.Sprintf(`{"timestamp":%d,"open":%g,"high":%g,"low":%g,"close":%g,"volume":10}`, ts, c, c+1, c-1, c)
	}
	daily = append(daily, day(2024, 1, 30, 10), day(2024, 1, 31, 11), day(2024, 2, 1, 12), day(2024, 2, 2, 9))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/bars/monthly":
			http.Error(w, "not supported", http.StatusNotFound)
		case "/api/v1/bars/daily":
			fmt.Fprint(w, "["+strings.Join(daily, ",")+"]")
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "")
	bars, err := f.FetchBars(context.Background(), "SPY", Interval1mo, 12)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 11.0, bars[0].Close)
	assert.Equal(t, 20.0, bars[0].Volume)
	assert.Equal(t, 13.0, bars[1].High)
	assert.Equal(t, 8.0, bars[1].Low)
	assert.Equal(t, 9.0, bars[1].Close)
}

func TestAggregateDailyToWeekly(t *testing.T) {
	mon := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	var daily []model.Candle
	for d := 0; d < 7; d++ {
		ts := mon.AddDate(0, 0, d)
		if ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
			continue
		}
		daily = append(daily, model.Candle{Time: ts.Unix(), Open: 1, High: float64(d + 2), Low: 1, Close: float64(d + 1), Volume: 1})
	}
	daily = append(daily, model.Candle{Time: mon.AddDate(0, 0, 7).Unix(), Open: 9, High: 9, Low: 9, Close: 9, Volume: 1})

	weekly := AggregateDailyToWeekly(daily)
	require.Len(t, weekly, 2)
	assert.Equal(t, 6.0, weekly[0].High)
	assert.Equal(t, 5.0, weekly[0].Close)
	assert.Equal(t, 5.0, weekly[0].Volume)
	assert.Nil(t, AggregateDailyToWeekly(nil))
}

func TestCollectManyDegradesPerSymbol(t *testing.T) {
	boom := errors.New("boom")
	mock := &MockFetcher{
		Price:  50,
		Bars:   map[string][]model.Candle{"EMPTY": {}},
		Errors: map[string]error{"BAD": boom},
	}
	c := NewCollector(mock, mock, 0)

	batch, err := c.CollectMany(context.Background(), []string{"SPY", "BAD", "EMPTY", "QQQ"}, Interval1d, 30)
	require.NoError(t, err)

	assert.Len(t, batch.Series, 2)
	assert.Len(t, batch.Series["SPY"], 30)
	require.Contains(t, batch.Failed, "BAD")
	assert.ErrorIs(t, batch.Failed["BAD"], boom)
	assert.ErrorIs(t, batch.Failed["EMPTY"], ErrNoData)
}

func TestCollectManyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&MockFetcher{}, nil, 1)
	_, err := c.CollectMany(ctx, []string{"SPY"}, Interval1d, 5)
	assert.Error(t, err)
}

func TestPremarketRequiresQuoteSource(t *testing.T) {
	c := NewCollector(&MockFetcher{}, nil, 0)
	_, err := c.Premarket(context.Background(), []string{"SPY"})
	assert.Error(t, err)

	mock := &MockFetcher{Snapshots: []model.PremarketSnapshot{{Symbol: "SPY"}, {Symbol: "QQQ"}}}
	c = NewCollector(mock, mock, 0)
	snaps, err := c.Premarket(context.Background(), []string{"QQQ"})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "QQQ", snaps[0].Symbol)
}

func TestGeneratedMockBarsAreOrdered(t *testing.T) {
	bars := generateMockBars(100, Interval5m, 50)
	require.Len(t, bars, 50)
	for i := 1; i < len(bars); i++ {
		assert.Equal(t, int64(300), bars[i].Time-bars[i-1].Time)
	}
	assert.Nil(t, generateMockBars(100, Interval1d, 0))
}
