// Package strategy detects confluence signals: candles where band, MACD and
// volume or RSI conditions all agree.
package strategy

import (
	"QuantSentinel/internal/calculator"
	"QuantSentinel/internal/model"
)

const (
	// WarmupIndex is the first candle index scanned.
	WarmupIndex = 21
	// VolumeLookback is the number of preceding candles in the volume average.
	VolumeLookback = 20
)

type rule func(bar) (model.Condition, bool)

var (
	buyRules  = []rule{lowerBandTouch, bullishMomentum, volumeSurge}
	sellRules = []rule{upperBandTouch, bearishMomentum, overboughtRSI}
)

// DetectConfluenceSignals scans candles from WarmupIndex forward and emits at
// most one signal per candle, BUY taking precedence over SELL. Candles whose
// time, or whose predecessor's time, is missing from any indicator series are
// skipped.
func DetectConfluenceSignals(candles []model.Candle, ind model.IndicatorSet) []model.ConfluenceSignal {
	bands := make(map[int64]model.BandPoint, len(ind.Bands))
	for _, p := range ind.Bands {
		bands[p.Time] = p
	}
	macd := make(map[int64]model.MACDPoint, len(ind.MACD))
	for _, p := range ind.MACD {
		macd[p.Time] = p
	}
	rsi := make(map[int64]float64, len(ind.RSI))
	for _, p := range ind.RSI {
		rsi[p.Time] = p.Value
	}

	signals := []model.ConfluenceSignal{}
	for i := WarmupIndex; i < len(candles); i++ {
		c := candles[i]
		band, ok1 := bands[c.Time]
		cur, ok2 := macd[c.Time]
		prev, ok3 := macd[candles[i-1].Time]
		r, ok4 := rsi[c.Time]
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		avg, err := calculator.AverageVolume(candles, i, VolumeLookback)
		if err != nil {
			continue
		}

		b := bar{candle: c, band: band, macd: cur, prevMACD: prev, rsi: r, avgVol: avg}
		if conds, ok := evaluate(b, buyRules); ok {
			conf := model.ConfidenceNormal
			if r < OversoldRSI {
				conf = model.ConfidenceStrong
			}
			signals = append(signals, newSignal(i, b, model.SideBuy, conf, band.Lower, conds))
			continue
		}
		if conds, ok := evaluate(b, sellRules); ok {
			conf := model.ConfidenceNormal
			if r > ExtremeRSI {
				conf = model.ConfidenceStrong
			}
			signals = append(signals, newSignal(i, b, model.SideSell, conf, band.Upper, conds))
		}
	}
	return signals
}

// evaluate returns the fired conditions when every rule holds.
func evaluate(b bar, rules []rule) ([]model.Condition, bool) {
	conds := make([]model.Condition, 0, len(rules))
	for _, r := range rules {
		c, ok := r(b)
		if !ok {
			return nil, false
		}
		conds = append(conds, c)
	}
	return conds, true
}

func newSignal(i int, b bar, side model.Side, conf model.Confidence, band float64, conds []model.Condition) model.ConfluenceSignal {
	return model.ConfluenceSignal{
		Time:       b.candle.Time,
		Index:      i,
		Side:       side,
		Confidence: conf,
		Price:      b.candle.Close,
		RSI:        b.rsi,
		Band:       band,
		Conditions: conds,
	}
}
