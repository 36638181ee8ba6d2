package calculator

import "math"

// BollingerSeries returns middle/upper/lower bands; indices before period-1 are NaN.
// Standard deviation is the population deviation over the window.
func BollingerSeries(closes []float64, period int, k float64) (mid, upper, lower []float64) {
	n := len(closes)
	mid, upper, lower = nanSlice(n), nanSlice(n), nanSlice(n)
	if period <= 0 {
		return
	}
	for i := period - 1; i < n; i++ {
		m, _ := SMAAt(closes, i, period)
		v := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - m
			v += d * d
		}
		sd := math.Sqrt(v / float64(period))
		mid[i] = m
		upper[i] = m + k*sd
		lower[i] = m - k*sd
	}
	return
}

// EMASeries returns the exponential moving average seeded with the SMA of the first window.
func EMASeries(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	seed, _ := SMAAt(values, period-1, period)
	out[period-1] = seed
	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACDSeries returns the MACD line, its signal line and the histogram.
func MACDSeries(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(closes)
	line, sig, hist = nanSlice(n), nanSlice(n), nanSlice(n)
	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	start := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			continue
		}
		line[i] = fastEMA[i] - slowEMA[i]
		if start < 0 {
			start = i
		}
	}
	if start < 0 {
		return
	}
	s := EMASeries(line[start:], signal)
	for i, v := range s {
		sig[start+i] = v
		if !math.IsNaN(v) {
			hist[start+i] = line[start+i] - v
		}
	}
	return
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
