package stats

import "math"

// MinHalfLifeObservations is the shortest series HalfLife estimates.
const MinHalfLifeObservations = 10

// HalfLife estimates the half-life of mean reversion of a residual series.
//
// gamma is the one-lag OLS slope of the demeaned change on the demeaned
// lagged level, so the implied AR(1) coefficient is 1+gamma and the
// half-life is -ln(2)/ln|1+gamma|.
//
// Only gamma < 0 is accepted as mean reverting. This sign convention is
// unusual next to the textbook 0 < phi < 1 condition and is kept on purpose;
// it needs product-owner confirmation before it changes.
//
// Returns +Inf for fewer than MinHalfLifeObservations values, for a constant
// lagged level, for gamma >= 0, and when |1+gamma| >= 1.
func HalfLife(residuals []float64) float64 {
	n := len(residuals)
	if n < MinHalfLifeObservations {
		return math.Inf(1)
	}

	m := n - 1
	lag := residuals[:m]
	delta := make([]float64, m)
	for t := 1; t < n; t++ {
		delta[t-1] = residuals[t] - residuals[t-1]
	}
	ml, md := mean(lag), mean(delta)

	var sxy, sxx float64
	for i := 0; i < m; i++ {
		dl := lag[i] - ml
		sxy += dl * (delta[i] - md)
		sxx += dl * dl
	}
	if sxx < epsilon {
		return math.Inf(1)
	}

	gamma := sxy / sxx
	if gamma >= 0 {
		return math.Inf(1)
	}
	phi := math.Abs(1 + gamma)
	if phi >= 1 {
		return math.Inf(1)
	}
	if phi == 0 {
		return 0
	}
	return -math.Ln2 / math.Log(phi)
}
