package orb

import (
	"math"
	"sort"

	"QuantSentinel/internal/model"
)

// ScreenerConfig holds the premarket screen thresholds.
type ScreenerConfig struct {
	MinRVol      float64 `json:"min_rvol" yaml:"min_rvol"`
	MinChangePct float64 `json:"min_change_pct" yaml:"min_change_pct"`
	// PremarketFraction is the share of a regular session's volume expected before the open.
	PremarketFraction float64 `json:"premarket_fraction" yaml:"premarket_fraction"`
	// CatalystChangePct marks a move large enough to imply news.
	CatalystChangePct float64 `json:"catalyst_change_pct" yaml:"catalyst_change_pct"`
}

// DefaultScreenerConfig returns RVOL >= 2, |change| >= 3%, a 10% premarket share and a 5% catalyst move.
func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		MinRVol:           2,
		MinChangePct:      3,
		PremarketFraction: 0.1,
		CatalystChangePct: 5,
	}
}

// Screen derives the premarket metrics of one snapshot. A zero previous
// price gives a 0% change; a zero expected volume gives RVOL 0.
func Screen(s model.PremarketSnapshot, cfg ScreenerConfig) model.PremarketStock {
	changePct := 0.0
	if prev := s.PreMarketPrice - s.PreMarketChange; prev > 0 {
		changePct = s.PreMarketChange / prev * 100
	}
	rvol := 0.0
	if expected := s.RegularMarketVolume * cfg.PremarketFraction; expected > 0 {
		rvol = s.PreMarketVolume / expected
	}
	return model.PremarketStock{
		Symbol:       s.Symbol,
		PrePrice:     s.PreMarketPrice,
		PreChangePct: changePct,
		PreVolume:    s.PreMarketVolume,
		NormalVolume: s.RegularMarketVolume,
		RVol:         rvol,
		HasCatalyst:  math.Abs(changePct) >= cfg.CatalystChangePct,
	}
}

// FilterCandidates keeps the snapshots whose RVOL and absolute change meet
// the thresholds, sorted by RVOL descending.
func FilterCandidates(snapshots []model.PremarketSnapshot, cfg ScreenerConfig) []model.PremarketStock {
	out := []model.PremarketStock{}
	for _, s := range snapshots {
		st := Screen(s, cfg)
		if st.RVol <= 0 || st.RVol < cfg.MinRVol {
			continue
		}
		if math.Abs(st.PreChangePct) < cfg.MinChangePct {
			continue
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RVol != out[j].RVol {
			return out[i].RVol > out[j].RVol
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
