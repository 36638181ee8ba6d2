package calculator

import (
	"errors"
	"math"

	"QuantSentinel/internal/model"
)

// HighLow scans bars and returns the highest high and lowest low.
func HighLow(bars []model.Candle) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// TypicalPrice returns (high+low+close)/3.
func TypicalPrice(b model.Candle) float64 {
	return (b.High + b.Low + b.Close) / 3
}
