package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	messages []string
	status   int
}

func (f *fakeTelegram) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/sendMessage":
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "42", payload["chat_id"])
			assert.Equal(t, "HTML", payload["parse_mode"])
			f.mu.Lock()
			f.messages = append(f.messages, payload["text"].(string))
			f.mu.Unlock()
			if f.status != 0 {
				w.WriteHeader(f.status)
			}
			fmt.Fprint(w, `{"ok":true}`)
		case "/botTOKEN/getUpdates":
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /orb SPY "}},{"update_id":8}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(fake.server(t))

	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, fake.messages)
}

func TestSendAPIError(t *testing.T) {
	fake := &fakeTelegram{status: http.StatusBadRequest}
	n := newTestNotifier(fake.server(t))

	err := n.SendWithRetry(context.Background(), "hello", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetryCancelled(t *testing.T) {
	fake := &fakeTelegram{status: http.StatusInternalServerError}
	n := newTestNotifier(fake.server(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.SendWithRetry(ctx, "hello", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollingDispatch(t *testing.T) {
	fake := &fakeTelegram{}
	srv := fake.server(t)
	n := newTestNotifier(srv)

	updates, err := n.getUpdates(context.Background(), srv.Client(), 7)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	var got []string
	next := n.dispatch(context.Background(), updates, 7, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	assert.Equal(t, 9, next)
	assert.Equal(t, []string{"/orb SPY"}, got)
	assert.Equal(t, []string{"reply to /orb SPY"}, fake.messages)
}

func TestFormatBacktest(t *testing.T) {
	report := &engine.BacktestReport{
		Config: model.BacktestConfig{StartYear: 2015, InitialCapital: 10000, GEMWeight: 0.4, TAAWeight: 0.3, SectorWeight: 0.3},
		Result: &model.BacktestResult{
			EquityCurve:       []model.EquityPoint{{Value: 10000}, {Value: 12500}},
			Months:            1,
			TotalReturn:       0.25,
			CAGR:              0.08,
			CurrentAllocation: &model.Allocation{GEM: "SPY", TAA: []string{"IEF"}, Sectors: []string{}},
		},
		Missing: []string{"DBC"},
	}
	msg := FormatBacktest(report, "run-1")
	assert.Contains(t, msg, "10000 → 12500")
	assert.Contains(t, msg, "CAGR: +8.00%")
	assert.Contains(t, msg, "GEM: SPY")
	assert.Contains(t, msg, "Sectors: -")
	assert.Contains(t, msg, "Missing data: DBC")
	assert.Contains(t, msg, "run-1")

	empty := FormatBacktest(&engine.BacktestReport{Result: &model.BacktestResult{}}, "")
	assert.Contains(t, empty, "Not enough history")
}

func TestFormatPair(t *testing.T) {
	msg := FormatPair(&model.PairResult{PairA: "KO", PairB: "PEP", HalfLife: math.Inf(1), Signal: model.PairSignalLong, CurrentZScore: -2.4, PValue: "<0.01", IsCointegrated: true})
	assert.Contains(t, msg, "KO / PEP")
	assert.Contains(t, msg, "half-life: ∞")
	assert.Contains(t, msg, "z=-2.40")
	assert.Contains(t, msg, "cointegrated: yes")

	batch := FormatPairBatch([]engine.PairReport{{PairA: "X", PairB: "Y", Err: "boom"}})
	assert.Contains(t, batch, "X / Y: boom")
}

func TestFormatScans(t *testing.T) {
	conf := FormatConfluenceScan([]engine.ConfluenceReport{
		{Symbol: "SPY", Candles: 200},
		{Symbol: "QQQ", Signals: []model.ConfluenceSignal{{Side: model.SideSell, Confidence: model.ConfidenceStrong, Price: 400,
			Conditions: []model.Condition{{Name: "upper band touch", Commentary: "high above band"}}}}},
		{Symbol: "BAD", Err: "fetch failed"},
	})
	assert.Contains(t, conf, "SPY: no signal in 200 candles")
	assert.Contains(t, conf, "QQQ SELL")
	assert.Contains(t, conf, "upper band touch")
	assert.Contains(t, conf, "BAD: fetch failed")

	orbMsg := FormatORBScan([]engine.ORBReport{
		{Symbol: "SPY", Range: &model.OpeningRange{High: 101, Low: 99}, Signal: &model.ORBSignal{Symbol: "SPY", Direction: model.DirectionLong, Entry: 101.5}},
		{Symbol: "QQQ", Range: &model.OpeningRange{High: 10, Low: 9}},
		{Symbol: "IWM"},
	})
	assert.Contains(t, orbMsg, "ORB SPY LONG")
	assert.Contains(t, orbMsg, "QQQ: range 9.00 – 10.00, no breakout")
	assert.Contains(t, orbMsg, "IWM: no range yet")
}

func TestFormatPremarket(t *testing.T) {
	msg := FormatPremarket([]model.PremarketStock{{Symbol: "AAA", PrePrice: 105, PreChangePct: 5, RVol: 3, HasCatalyst: true}})
	assert.Contains(t, msg, "1. <b>AAA</b> 105.00 (+5.0%) rVol 3.0 📰")
	assert.Contains(t, FormatPremarket(nil), "No candidates")
}
