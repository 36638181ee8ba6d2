package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/model"
	"QuantSentinel/internal/pairs"
	"QuantSentinel/internal/recorder"
	"QuantSentinel/internal/scheduler"
)

type fakeService struct {
	lastBacktest model.BacktestConfig
	lastSymbols  []string
	pairErr      error
}

func (f *fakeService) Backtest(_ context.Context, cfg model.BacktestConfig) (*engine.BacktestReport, error) {
	f.lastBacktest = cfg
	return &engine.BacktestReport{Config: cfg, Result: &model.BacktestResult{Months: 3}}, nil
}

func (f *fakeService) AnalyzePair(_ context.Context, a, b string) (*model.PairResult, error) {
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	return &model.PairResult{PairA: a, PairB: b, Signal: model.PairSignalNone}, nil
}

func (f *fakeService) AnalyzePairs(_ context.Context, list [][]string) ([]engine.PairReport, error) {
	out := make([]engine.PairReport, len(list))
	for i, p := range list {
		out[i] = engine.PairReport{PairA: p[0], PairB: p[1]}
	}
	return out, nil
}

func (f *fakeService) ScanConfluence(_ context.Context, symbols []string) ([]engine.ConfluenceReport, error) {
	f.lastSymbols = symbols
	return []engine.ConfluenceReport{{Symbol: symbols[0], Signals: []model.ConfluenceSignal{}}}, nil
}

func (f *fakeService) DetectORB(_ context.Context, symbols []string) ([]engine.ORBReport, error) {
	f.lastSymbols = symbols
	return []engine.ORBReport{{Symbol: symbols[0]}}, nil
}

func (f *fakeService) ScreenPremarket(_ context.Context, symbols []string) ([]model.PremarketStock, error) {
	f.lastSymbols = symbols
	return nil, fmt.Errorf("premarket: %w", context.DeadlineExceeded)
}

type fakeRuns struct{}

func (fakeRuns) RecentBacktests(_ context.Context, limit int) ([]recorder.BacktestRun, error) {
	return []recorder.BacktestRun{{ID: "r1", Months: limit}}, nil
}

func setupRouter(svc *fakeService, runs RunLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	bt := model.BacktestConfig{StartYear: 2010, InitialCapital: 10000, GEMWeight: 0.4, TAAWeight: 0.3, SectorWeight: 0.3}
	watch := scheduler.Watchlists{
		Pairs:      [][]string{{"KO", "PEP"}},
		Confluence: []string{"SPY", "QQQ"},
		ORB:        []string{"SPY"},
	}
	return NewRouter(NewHandlers(svc, bt, watch, runs))
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r := setupRouter(&fakeService{}, nil)

	w := get(r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestHandleBacktestOverrides(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc, nil)

	w := get(r, "/api/v1/backtest?start_year=2015&gem=1&taa=0")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2015, svc.lastBacktest.StartYear)
	assert.Equal(t, 10000.0, svc.lastBacktest.InitialCapital)
	assert.Equal(t, 1.0, svc.lastBacktest.GEMWeight)
	assert.Equal(t, 0.0, svc.lastBacktest.TAAWeight)
	assert.Equal(t, 0.3, svc.lastBacktest.SectorWeight)

	var report engine.BacktestReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Result.Months)
}

func TestHandleBacktestInvalid(t *testing.T) {
	r := setupRouter(&fakeService{}, nil)
	w := get(r, "/api/v1/backtest?start_year=1200")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
}

func TestHandlePair(t *testing.T) {
	r := setupRouter(&fakeService{}, nil)

	w := get(r, "/api/v1/pair?a=ko&b=pep")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pair_a":"KO"`)

	w = get(r, "/api/v1/pair?a=ko")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePairInsufficientData(t *testing.T) {
	svc := &fakeService{pairErr: fmt.Errorf("%w: 12 points", pairs.ErrInsufficientData)}
	r := setupRouter(svc, nil)

	w := get(r, "/api/v1/pair?a=KO&b=PEP")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_DATA")
}

func TestHandlePairs(t *testing.T) {
	r := setupRouter(&fakeService{}, nil)
	w := get(r, "/api/v1/pairs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pair_b":"PEP"`)
}

func TestHandleSymbols(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc, nil)

	w := get(r, "/api/v1/signals")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"SPY", "QQQ"}, svc.lastSymbols)

	w = get(r, "/api/v1/orb?symbols=aapl,%20msft,")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"AAPL", "MSFT"}, svc.lastSymbols)

	w = get(r, "/api/v1/premarket")
	assert.Equal(t, http.StatusBadRequest, w.Code, "no premarket watchlist configured")

	w = get(r, "/api/v1/premarket?symbols=TSLA")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "ANALYSIS_FAILED")
}

func TestHandleRuns(t *testing.T) {
	w := get(setupRouter(&fakeService{}, nil), "/api/v1/backtests")
	assert.Equal(t, http.StatusNotFound, w.Code)

	r := setupRouter(&fakeService{}, fakeRuns{})
	w = get(r, "/api/v1/backtests?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	var runs []recorder.BacktestRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].Months)

	w = get(r, "/api/v1/backtests?limit=500")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
