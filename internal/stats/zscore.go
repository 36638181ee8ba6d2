package stats

import "math"

// RollingZScore returns one z-score per trailing window of size w: element k
// is the z-score of values[k+w-1] against values[k .. k+w-1], using the
// population variance. A window with zero deviation scores 0.
// Returns nil when w < 1 or there are fewer than w values.
func RollingZScore(values []float64, w int) []float64 {
	n := len(values)
	if w < 1 || n < w {
		return nil
	}
	out := make([]float64, 0, n-w+1)
	for i := w - 1; i < n; i++ {
		window := values[i-w+1 : i+1]
		m := mean(window)
		v := 0.0
		for _, x := range window {
			d := x - m
			v += d * d
		}
		sd := math.Sqrt(v / float64(w))
		if sd < epsilon {
			out = append(out, 0)
			continue
		}
		out = append(out, (values[i]-m)/sd)
	}
	return out
}
