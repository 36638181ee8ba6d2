// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis result labels.
const (
	ResultOK           = "ok"
	ResultError        = "error"
	ResultInsufficient = "insufficient_data"
)

var (
	// AnalysisTotal counts analyses by operation and result.
	AnalysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quant_analysis_total",
		Help: "Total analyses by operation and result",
	}, []string{"op", "result"})

	// AnalysisDuration tracks analysis latency including data fetch.
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quant_analysis_duration_seconds",
		Help:    "Analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"op"})

	// SignalsEmitted counts emitted signals by kind and side.
	SignalsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quant_signals_emitted_total",
		Help: "Total signals emitted by kind and side",
	}, []string{"kind", "side"})

	// FetchErrors counts market data fetch failures by source.
	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quant_fetch_errors_total",
		Help: "Total market data fetch errors by source",
	}, []string{"source"})
)

// ObserveAnalysis records one finished analysis.
func ObserveAnalysis(op, result string, d time.Duration) {
	AnalysisTotal.WithLabelValues(op, result).Inc()
	AnalysisDuration.WithLabelValues(op).Observe(d.Seconds())
}
