package indicator

import (
	"math"

	"QuantSentinel/internal/calculator"
	"QuantSentinel/internal/model"
)

// NativeEngine computes indicators with the calculator package in float64.
type NativeEngine struct{}

func (NativeEngine) Compute(candles []model.Candle, p model.IndicatorParams) (model.IndicatorSet, error) {
	if err := validate(p); err != nil {
		return model.IndicatorSet{}, err
	}
	set := emptySet()
	closes := calculator.Closes(candles)

	mid, upper, lower := calculator.BollingerSeries(closes, p.BBPeriod, p.BBStdDev)
	line, sig, hist := calculator.MACDSeries(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	rsi := calculator.RSISeries(closes, p.RSIPeriod)

	for i, c := range candles {
		if !math.IsNaN(mid[i]) {
			set.Bands = append(set.Bands, model.BandPoint{Time: c.Time, Upper: upper[i], Middle: mid[i], Lower: lower[i]})
		}
		if !math.IsNaN(sig[i]) {
			set.MACD = append(set.MACD, model.MACDPoint{Time: c.Time, MACD: line[i], Signal: sig[i], Histogram: hist[i]})
		}
		if !math.IsNaN(rsi[i]) {
			set.RSI = append(set.RSI, model.ValuePoint{Time: c.Time, Value: rsi[i]})
		}
	}
	return set, nil
}
