package backtest

import (
	"math"

	"QuantSentinel/internal/model"
)

const secondsPerYear = 365.25 * 24 * 3600

// fillMetrics derives the performance statistics from the equity curve and trades.
func fillMetrics(res *model.BacktestResult) {
	curve := res.EquityCurve
	returns := make([]float64, len(res.Trades))
	for i, t := range res.Trades {
		returns[i] = t.PeriodReturn
	}

	res.Months = len(returns)
	res.CAGR = cagr(curve)
	res.MaxDrawdown = maxDrawdown(curve)
	res.Sharpe = sharpe(returns)
	res.Volatility = sampleStdDev(returns) * math.Sqrt(12)
	if res.MaxDrawdown > 0 {
		res.Calmar = res.CAGR / res.MaxDrawdown
	}
	if len(curve) > 0 && curve[0].Value != 0 {
		res.TotalReturn = (curve[len(curve)-1].Value - curve[0].Value) / curve[0].Value
	}

	if len(returns) == 0 {
		return
	}
	wins := 0
	res.BestMonth, res.WorstMonth = returns[0], returns[0]
	for _, r := range returns {
		if r > 0 {
			wins++
		}
		res.BestMonth = math.Max(res.BestMonth, r)
		res.WorstMonth = math.Min(res.WorstMonth, r)
	}
	res.WinRate = float64(wins) / float64(len(returns))
}

func cagr(curve []model.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	first, last := curve[0], curve[len(curve)-1]
	years := float64(last.Time-first.Time) / secondsPerYear
	if years <= 0 || first.Value <= 0 || last.Value <= 0 {
		return 0
	}
	return math.Pow(last.Value/first.Value, 1/years) - 1
}

// maxDrawdown is the largest peak-to-trough decline as a positive fraction.
func maxDrawdown(curve []model.EquityPoint) float64 {
	peak, worst := 0.0, 0.0
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			if dd := (peak - p.Value) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := sampleStdDev(returns)
	if sd < 1e-12 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(12)
}

func sampleStdDev(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	m := mean(v)
	ss := 0.0
	for _, x := range v {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(v)-1))
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
