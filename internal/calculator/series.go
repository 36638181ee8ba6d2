package calculator

import (
	"fmt"

	"QuantSentinel/internal/model"
)

// ReturnOver returns closes[i]/closes[i-lookback] - 1.
func ReturnOver(closes []float64, i, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, errPeriod
	}
	if i < 0 || i >= len(closes) || i-lookback < 0 {
		return 0, fmt.Errorf("return over %d periods at index %d: out of range", lookback, i)
	}
	base := closes[i-lookback]
	if base == 0 {
		return 0, fmt.Errorf("return over %d periods at index %d: zero base price", lookback, i)
	}
	return closes[i]/base - 1, nil
}

// IndexAtOrAfter returns the first index whose time is >= t, or -1.
func IndexAtOrAfter(bars []model.Candle, t int64) int {
	for i, b := range bars {
		if b.Time >= t {
			return i
		}
	}
	return -1
}

// Until returns bars[0..i] inclusive, clamped to the slice bounds.
func Until(bars []model.Candle, i int) []model.Candle {
	if i < 0 {
		return nil
	}
	if i >= len(bars) {
		return bars
	}
	return bars[:i+1]
}

// TimeIndex maps candle time to slice index.
func TimeIndex(bars []model.Candle) map[int64]int {
	idx := make(map[int64]int, len(bars))
	for i, b := range bars {
		idx[b.Time] = i
	}
	return idx
}
