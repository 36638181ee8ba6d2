package stats

import "math"

// OLSResult is the fit of y = Alpha + Beta*x + residual.
type OLSResult struct {
	Beta      float64
	Alpha     float64
	Residuals []float64
}

// OLS fits y on x by closed-form least squares over the first min(len(y), len(x)) pairs.
// Fewer than 3 pairs or a numerically constant x returns the zero result with no residuals.
func OLS(y, x []float64) OLSResult {
	n := len(y)
	if len(x) < n {
		n = len(x)
	}
	if n < 3 {
		return OLSResult{}
	}

	mx, my := mean(x[:n]), mean(y[:n])
	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}
	if sxx < epsilon {
		return OLSResult{}
	}

	beta := sxy / sxx
	alpha := my - beta*mx
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - (alpha + beta*x[i])
	}
	return OLSResult{Beta: beta, Alpha: alpha, Residuals: residuals}
}

// Correlation returns the Pearson correlation of the first min(len) pairs, 0 when undefined.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	mx, my := mean(x[:n]), mean(y[:n])
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	d := math.Sqrt(sxx * syy)
	if d < epsilon {
		return 0
	}
	return sxy / d
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}
