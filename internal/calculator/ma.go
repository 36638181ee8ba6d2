package calculator

import (
	"errors"

	"QuantSentinel/internal/model"
)

var (
	errPeriod       = errors.New("period must be positive")
	errNotEnoughSMA = errors.New("not enough data for SMA calculation")
)

// CalculateSMA computes the simple moving average of the last `period` prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	return SMAAt(prices, len(prices)-1, period)
}

// SMAAt computes the simple moving average of prices[i-period+1 .. i].
func SMAAt(prices []float64, i, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if i >= len(prices) || i-period+1 < 0 {
		return 0, errNotEnoughSMA
	}
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		sum += prices[j]
	}
	return sum / float64(period), nil
}

// AverageVolume returns the mean volume of the `period` candles strictly before index i.
func AverageVolume(candles []model.Candle, i, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if i > len(candles) || i-period < 0 {
		return 0, errors.New("not enough data for average volume")
	}
	sum := 0.0
	for j := i - period; j < i; j++ {
		sum += candles[j].Volume
	}
	return sum / float64(period), nil
}

// Closes extracts close prices.
func Closes(bars []model.Candle) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
