// Package backtest runs the monthly portfolio rotation backtest: a GEM dual
// momentum leg, a TAA trend-filter leg and a sector rotation leg combined into
// one weighted equity curve.
package backtest

import (
	"time"

	"QuantSentinel/internal/model"
)

// Run folds over the monthly steps of series. At step i each leg decides with
// data through month i and earns the month i -> i+1 return; the resulting
// equity point is stamped with month i+1.
//
// The first month on or after January 1st of StartYear must have at least
// MomentumLookback months of history, otherwise the empty result is returned.
func Run(series MonthlySeries, cfg model.BacktestConfig) *model.BacktestResult {
	n := series.Len()
	if n == 0 || cfg.InitialCapital <= 0 {
		return emptyResult()
	}
	u := cfg.Universe

	startTime := time.Date(cfg.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	start := -1
	for i := 0; i < n; i++ {
		if series.Time(i) >= startTime {
			start = i
			break
		}
	}
	if start < 0 || start < MomentumLookback {
		return emptyResult()
	}

	equity := cfg.InitialCapital
	curve := []model.EquityPoint{{Time: series.Time(start), Value: equity}}
	trades := make([]model.TradeRecord, 0, n-start)

	for i := start; i < n-1; i++ {
		gem := gemLeg(series, u, i, true)
		taa := taaLeg(series, u, i, true)
		sec := sectorLeg(series, u, i, true)

		gemRet := gem.ret * cfg.GEMWeight
		taaRet := taa.ret * cfg.TAAWeight
		secRet := sec.ret * cfg.SectorWeight
		monthly := gemRet + taaRet + secRet
		equity *= 1 + monthly

		t := series.Time(i + 1)
		curve = append(curve, model.EquityPoint{Time: t, Value: equity})
		trades = append(trades, model.TradeRecord{
			Time:             t,
			Holdings:         allocationOf(gem, taa, sec),
			GEMReturn:        gemRet,
			TAAReturn:        taaRet,
			SectorReturn:     secRet,
			PeriodReturn:     monthly,
			CumulativeReturn: equity/cfg.InitialCapital - 1,
			Equity:           equity,
		})
	}

	res := &model.BacktestResult{EquityCurve: curve, Trades: trades}
	fillMetrics(res)
	res.CurrentAllocation = CurrentAllocation(series, u)
	return res
}

// RunMap runs the backtest on an index-aligned view of series, using the
// first risk asset as the reference calendar.
func RunMap(series model.SeriesMap, cfg model.BacktestConfig) *model.BacktestResult {
	return Run(NewIndexAligned(series, cfg.Universe.RiskA), cfg)
}

// CurrentAllocation is what every leg would hold at the latest month.
// It is independent of the historical loop. Returns nil for an empty series.
func CurrentAllocation(series MonthlySeries, u model.Universe) *model.Allocation {
	n := series.Len()
	if n == 0 {
		return nil
	}
	last := n - 1
	alloc := allocationOf(gemLeg(series, u, last, false), taaLeg(series, u, last, false), sectorLeg(series, u, last, false))
	return &alloc
}

func allocationOf(gem, taa, sec legResult) model.Allocation {
	a := model.Allocation{TAA: taa.holdings, Sectors: sec.holdings}
	if len(gem.holdings) > 0 {
		a.GEM = gem.holdings[0]
	}
	if a.TAA == nil {
		a.TAA = []string{}
	}
	if a.Sectors == nil {
		a.Sectors = []string{}
	}
	return a
}

func emptyResult() *model.BacktestResult {
	return &model.BacktestResult{
		EquityCurve: []model.EquityPoint{},
		Trades:      []model.TradeRecord{},
	}
}
