package stats

import "math"

// MacKinnon approximate critical values for the two-variable cointegration case.
const (
	Critical1Pct  = -3.90
	Critical5Pct  = -3.37
	Critical10Pct = -3.07
)

// MinADFObservations is the shortest series the stationarity test accepts.
const MinADFObservations = 20

// P-value buckets reported by ADF.
const (
	PValue1Pct  = "<0.01"
	PValue5Pct  = "<0.05"
	PValue10Pct = "<0.10"
	PValueAbove = ">0.10"
)

// ADFResult is the outcome of the stationarity test.
type ADFResult struct {
	Statistic      float64
	PValue         string
	IsCointegrated bool
	Gamma          float64
	StdErr         float64
}

// ADF runs a Dickey-Fuller regression without lag terms: the demeaned first
// difference is regressed on the demeaned lagged level and the statistic is
// gamma / SE(gamma). Series shorter than MinADFObservations, or with a
// constant lagged level, produce the neutral result (statistic 0, ">0.10").
func ADF(series []float64) ADFResult {
	neutral := ADFResult{PValue: PValueAbove}
	n := len(series)
	if n < MinADFObservations {
		return neutral
	}

	m := n - 1
	delta := make([]float64, m)
	lag := make([]float64, m)
	for t := 1; t < n; t++ {
		delta[t-1] = series[t] - series[t-1]
		lag[t-1] = series[t-1]
	}
	md, ml := mean(delta), mean(lag)

	var sxy, sxx float64
	for i := 0; i < m; i++ {
		dl := lag[i] - ml
		sxy += dl * (delta[i] - md)
		sxx += dl * dl
	}
	if sxx < epsilon {
		return neutral
	}
	gamma := sxy / sxx

	sse := 0.0
	for i := 0; i < m; i++ {
		e := (delta[i] - md) - gamma*(lag[i]-ml)
		sse += e * e
	}
	// one slope plus the mean removed by demeaning
	dof := float64(m - 2)
	se := math.Sqrt(sse / dof / sxx)
	if se < epsilon {
		return neutral
	}

	stat := gamma / se
	return ADFResult{
		Statistic:      stat,
		PValue:         PValueFor(stat),
		IsCointegrated: stat < Critical5Pct,
		Gamma:          gamma,
		StdErr:         se,
	}
}

// PValueFor maps a test statistic to its approximate p-value bucket.
func PValueFor(stat float64) string {
	switch {
	case stat < Critical1Pct:
		return PValue1Pct
	case stat < Critical5Pct:
		return PValue5Pct
	case stat < Critical10Pct:
		return PValue10Pct
	default:
		return PValueAbove
	}
}
