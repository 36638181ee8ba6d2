package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAnalysis(t *testing.T) {
	before := testutil.ToFloat64(AnalysisTotal.WithLabelValues("pair", ResultOK))

	ObserveAnalysis("pair", ResultOK, 20*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(AnalysisTotal.WithLabelValues("pair", ResultOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(AnalysisDuration, "quant_analysis_duration_seconds"))
}

func TestSignalsEmitted(t *testing.T) {
	c := SignalsEmitted.WithLabelValues("orb", "long")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
