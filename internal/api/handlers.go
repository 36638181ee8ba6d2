// Package api serves the analyses as JSON for dashboards and charting front-ends.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/model"
	"QuantSentinel/internal/pairs"
	"QuantSentinel/internal/recorder"
	"QuantSentinel/internal/scheduler"
)

// RunLister returns stored backtest runs.
type RunLister interface {
	RecentBacktests(ctx context.Context, limit int) ([]recorder.BacktestRun, error)
}

// Handlers holds the dependencies of the HTTP handlers.
type Handlers struct {
	svc      engine.Service
	backtest model.BacktestConfig
	watch    scheduler.Watchlists
	runs     RunLister
}

// NewHandlers creates Handlers. runs may be nil.
func NewHandlers(svc engine.Service, bt model.BacktestConfig, watch scheduler.Watchlists, runs RunLister) *Handlers {
	return &Handlers{svc: svc, backtest: bt, watch: watch, runs: runs}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterRoutes(r.Group("/api/v1"), h)
	return r
}

// RegisterRoutes registers the analysis routes on group.
func RegisterRoutes(g *gin.RouterGroup, h *Handlers) {
	g.GET("/backtest", h.HandleBacktest)
	g.GET("/backtests", h.HandleRuns)
	g.GET("/pair", h.HandlePair)
	g.GET("/pairs", h.HandlePairs)
	g.GET("/signals", h.HandleSignals)
	g.GET("/orb", h.HandleORB)
	g.GET("/premarket", h.HandlePremarket)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// HandleBacktest handles GET /api/v1/backtest.
func (h *Handlers) HandleBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	cfg := h.backtest
	if req.StartYear != 0 {
		cfg.StartYear = req.StartYear
	}
	if req.InitialCapital != 0 {
		cfg.InitialCapital = req.InitialCapital
	}
	if req.GEMWeight != nil {
		cfg.GEMWeight = *req.GEMWeight
	}
	if req.TAAWeight != nil {
		cfg.TAAWeight = *req.TAAWeight
	}
	if req.SectorWeight != nil {
		cfg.SectorWeight = *req.SectorWeight
	}

	report, err := h.svc.Backtest(c.Request.Context(), cfg)
	if err != nil {
		failed(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleRuns handles GET /api/v1/backtests.
func (h *Handlers) HandleRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "run history is not configured", Code: "NOT_CONFIGURED"})
		return
	}
	var req RunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}
	runs, err := h.runs.RecentBacktests(c.Request.Context(), req.Limit)
	if err != nil {
		failed(c, err)
		return
	}
	if runs == nil {
		runs = []recorder.BacktestRun{}
	}
	c.JSON(http.StatusOK, runs)
}

// HandlePair handles GET /api/v1/pair?a=&b=.
func (h *Handlers) HandlePair(c *gin.Context) {
	var req PairRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.AnalyzePair(c.Request.Context(), strings.ToUpper(req.A), strings.ToUpper(req.B))
	if err != nil {
		failed(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandlePairs handles GET /api/v1/pairs over the configured pair list.
func (h *Handlers) HandlePairs(c *gin.Context) {
	reports, err := h.svc.AnalyzePairs(c.Request.Context(), h.watch.Pairs)
	if err != nil {
		failed(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// HandleSignals handles GET /api/v1/signals.
func (h *Handlers) HandleSignals(c *gin.Context) {
	symbols, ok := h.symbols(c, h.watch.Confluence)
	if !ok {
		return
	}
	reports, err := h.svc.ScanConfluence(c.Request.Context(), symbols)
	if err != nil {
		failed(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// HandleORB handles GET /api/v1/orb.
func (h *Handlers) HandleORB(c *gin.Context) {
	symbols, ok := h.symbols(c, h.watch.ORB)
	if !ok {
		return
	}
	reports, err := h.svc.DetectORB(c.Request.Context(), symbols)
	if err != nil {
		failed(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// HandlePremarket handles GET /api/v1/premarket.
func (h *Handlers) HandlePremarket(c *gin.Context) {
	symbols, ok := h.symbols(c, h.watch.Premarket)
	if !ok {
		return
	}
	stocks, err := h.svc.ScreenPremarket(c.Request.Context(), symbols)
	if err != nil {
		failed(c, err)
		return
	}
	if stocks == nil {
		stocks = []model.PremarketStock{}
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *Handlers) symbols(c *gin.Context, fallback []string) ([]string, bool) {
	var req SymbolsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return nil, false
	}
	var out []string
	for _, s := range strings.Split(req.Symbols, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = fallback
	}
	if len(out) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no symbols given", Code: "INVALID_REQUEST"})
		return nil, false
	}
	return out, true
}

func badRequest(c *gin.Context, err error) {
	logger.Warn(c.Request.Context(), "invalid query parameters", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
}

func failed(c *gin.Context, err error) {
	if errors.Is(err, pairs.ErrInsufficientData) || errors.Is(err, engine.ErrNoData) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "INSUFFICIENT_DATA"})
		return
	}
	logger.ErrorWithErr(c.Request.Context(), "analysis failed", err, "path", c.FullPath())
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "ANALYSIS_FAILED"})
}
