// Package pairs analyzes two instruments for cointegration and maps the
// latest spread z-score to a pair trading signal.
package pairs

import (
	"errors"
	"fmt"
	"math"

	"QuantSentinel/internal/model"
	"QuantSentinel/internal/stats"
)

// ErrInsufficientData is returned when the two series share too few timestamps.
var ErrInsufficientData = errors.New("insufficient aligned data")

const (
	// MinAlignedPoints is the shortest aligned history Analyze accepts.
	MinAlignedPoints = 30
	MinZWindow       = 20
	MaxZWindow       = 60
)

// Z-score thresholds.
const (
	StoplossZ = 3.5
	EntryZ    = 2.0
	ExitZ     = 0.5
)

// Analyze regresses a on b over their common timestamps, tests the residual
// spread for stationarity and derives the current z-score signal.
func Analyze(symbolA string, a []model.Candle, symbolB string, b []model.Candle) (*model.PairResult, error) {
	times, pa, pb := Align(a, b)
	if len(times) < MinAlignedPoints {
		return nil, fmt.Errorf("%w: %s/%s have %d common points, need %d",
			ErrInsufficientData, symbolA, symbolB, len(times), MinAlignedPoints)
	}

	fit := stats.OLS(pa, pb)
	adf := stats.ADF(fit.Residuals)
	halfLife := stats.HalfLife(fit.Residuals)

	res := &model.PairResult{
		PairA:          symbolA,
		PairB:          symbolB,
		Beta:           fit.Beta,
		Alpha:          fit.Alpha,
		ADFStatistic:   adf.Statistic,
		PValue:         adf.PValue,
		IsCointegrated: adf.IsCointegrated,
		HalfLife:       halfLife,
		Correlation:    stats.Correlation(pa, pb),
		AlignedPoints:  len(times),
		ZScores:        []model.ValuePoint{},
		Signal:         model.PairSignalNone,
	}

	w := ZWindow(halfLife)
	if n := len(fit.Residuals); w > n {
		w = n
	}
	res.ZWindow = w

	z := stats.RollingZScore(fit.Residuals, w)
	if len(z) == 0 {
		return res, nil
	}
	for k, v := range z {
		res.ZScores = append(res.ZScores, model.ValuePoint{Time: times[k+w-1], Value: v})
	}
	res.CurrentZScore = z[len(z)-1]
	res.Signal = ZScoreSignal(res.CurrentZScore)
	return res, nil
}

// ZWindow is round(halfLife) clamped to [MinZWindow, MaxZWindow].
// An infinite half-life uses the widest window.
func ZWindow(halfLife float64) int {
	if math.IsInf(halfLife, 1) || math.IsNaN(halfLife) {
		return MaxZWindow
	}
	w := int(math.Round(halfLife))
	if w < MinZWindow {
		return MinZWindow
	}
	if w > MaxZWindow {
		return MaxZWindow
	}
	return w
}

// ZScoreSignal maps a spread z-score to a trading state.
func ZScoreSignal(z float64) model.PairSignal {
	switch {
	case math.Abs(z) > StoplossZ:
		return model.PairSignalStoploss
	case z > EntryZ:
		return model.PairSignalShort
	case z < -EntryZ:
		return model.PairSignalLong
	case math.Abs(z) < ExitZ:
		return model.PairSignalClose
	default:
		return model.PairSignalNone
	}
}

// Align keeps the candles whose timestamp appears in both series, in the
// order of a, and returns their times and close prices.
func Align(a, b []model.Candle) (times []int64, closesA, closesB []float64) {
	byTime := make(map[int64]float64, len(b))
	for _, c := range b {
		byTime[c.Time] = c.Close
	}
	for _, c := range a {
		cb, ok := byTime[c.Time]
		if !ok {
			continue
		}
		times = append(times, c.Time)
		closesA = append(closesA, c.Close)
		closesB = append(closesB, cb)
	}
	return times, closesA, closesB
}
