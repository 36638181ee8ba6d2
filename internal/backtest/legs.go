package backtest

import (
	"math"
	"sort"

	"QuantSentinel/internal/calculator"
	"QuantSentinel/internal/model"
)

const (
	// MomentumLookback is the trailing return window, in months, used by GEM and sector ranking.
	MomentumLookback = 12
	// TrendPeriod is the SMA period of the trend filter.
	TrendPeriod = 10
)

// legResult is what one strategy leg decided at a step.
type legResult struct {
	holdings []string
	ret      float64 // unweighted leg return for the period
}

// trailingReturn returns the MomentumLookback-month return ending at i.
func trailingReturn(closes []float64, i int) (float64, bool) {
	r, err := calculator.ReturnOver(closes, i, MomentumLookback)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// periodReturn returns the return earned holding from month i to month i+1.
func periodReturn(closes []float64, i int) float64 {
	r, err := calculator.ReturnOver(closes, i+1, 1)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// aboveTrend reports whether closes[i] is strictly above its trailing SMA.
func aboveTrend(closes []float64, i int) bool {
	sma, err := calculator.SMAAt(closes, i, TrendPeriod)
	if err != nil || math.IsNaN(sma) {
		return false
	}
	return closes[i] > sma
}

// gemLeg is the dual momentum rotation between two risk assets and a safety asset.
func gemLeg(s MonthlySeries, u model.Universe, i int, earn bool) legResult {
	a, okA := s.Closes(u.RiskA)
	b, okB := s.Closes(u.RiskB)

	var retA, retB float64
	if okA {
		retA, okA = trailingReturn(a, i)
	}
	if okB {
		retB, okB = trailingReturn(b, i)
	}

	pick := u.Safety
	switch {
	case okA && okB:
		if retA >= 0 || retB >= 0 {
			if retA >= retB {
				pick = u.RiskA
			} else {
				pick = u.RiskB
			}
		}
	case okA && retA >= 0:
		pick = u.RiskA
	case okB && retB >= 0:
		pick = u.RiskB
	}
	if pick == "" {
		return legResult{}
	}

	res := legResult{holdings: []string{pick}}
	if earn {
		if closes, ok := s.Closes(pick); ok {
			res.ret = periodReturn(closes, i)
		}
	}
	return res
}

// taaLeg holds every basket asset above its trend, each with 1/len(basket) of the leg.
func taaLeg(s MonthlySeries, u model.Universe, i int, earn bool) legResult {
	var res legResult
	if len(u.TAA) == 0 {
		return res
	}
	share := 1.0 / float64(len(u.TAA))
	for _, sym := range u.TAA {
		closes, ok := s.Closes(sym)
		if !ok || !aboveTrend(closes, i) {
			continue
		}
		res.holdings = append(res.holdings, sym)
		if earn {
			res.ret += periodReturn(closes, i) * share
		}
	}
	return res
}

type rankedSector struct {
	symbol   string
	momentum float64
	closes   []float64
}

// sectorLeg ranks sectors by momentum and holds up to TopK that are trending
// with positive momentum. Each slot carries 1/TopK of the leg.
func sectorLeg(s MonthlySeries, u model.Universe, i int, earn bool) legResult {
	var res legResult
	if u.TopK <= 0 {
		return res
	}

	ranked := make([]rankedSector, 0, len(u.Sectors))
	for _, sym := range u.Sectors {
		closes, ok := s.Closes(sym)
		if !ok {
			continue
		}
		mom, ok := trailingReturn(closes, i)
		if !ok {
			continue
		}
		ranked = append(ranked, rankedSector{symbol: sym, momentum: mom, closes: closes})
	}
	sort.SliceStable(ranked, func(x, y int) bool { return ranked[x].momentum > ranked[y].momentum })

	share := 1.0 / float64(u.TopK)
	for _, r := range ranked {
		if len(res.holdings) == u.TopK {
			break
		}
		if r.momentum <= 0 || !aboveTrend(r.closes, i) {
			continue
		}
		res.holdings = append(res.holdings, r.symbol)
		if earn {
			res.ret += periodReturn(r.closes, i) * share
		}
	}
	return res
}
