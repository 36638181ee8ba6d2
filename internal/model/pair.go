package model

import (
	"encoding/json"
	"math"
)

// PairSignal is the trading state derived from the latest spread z-score.
type PairSignal string

const (
	PairSignalNone     PairSignal = "none"
	PairSignalLong     PairSignal = "long"
	PairSignalShort    PairSignal = "short"
	PairSignalClose    PairSignal = "close"
	PairSignalStoploss PairSignal = "stoploss"
)

// PairResult is the outcome of one pair analysis.
type PairResult struct {
	PairA          string       `json:"pair_a"`
	PairB          string       `json:"pair_b"`
	Beta           float64      `json:"beta"`
	Alpha          float64      `json:"alpha"`
	ADFStatistic   float64      `json:"adf_statistic"`
	PValue         string       `json:"p_value"`
	IsCointegrated bool         `json:"is_cointegrated"`
	HalfLife       float64      `json:"half_life"`
	Correlation    float64      `json:"correlation"`
	ZWindow        int          `json:"z_window"`
	AlignedPoints  int          `json:"aligned_points"`
	ZScores        []ValuePoint `json:"z_scores"`
	CurrentZScore  float64      `json:"current_z_score"`
	Signal         PairSignal   `json:"signal"`
}

// MarshalJSON writes an infinite half-life as null.
func (r PairResult) MarshalJSON() ([]byte, error) {
	type alias PairResult
	out := struct {
		alias
		HalfLife *float64 `json:"half_life"`
	}{alias: alias(r)}
	if !math.IsInf(r.HalfLife, 0) && !math.IsNaN(r.HalfLife) {
		hl := r.HalfLife
		out.HalfLife = &hl
	}
	return json.Marshal(out)
}
