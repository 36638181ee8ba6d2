package strategy

import (
	"fmt"

	"QuantSentinel/internal/model"
)

// Thresholds of the confluence rules.
const (
	VolumeMultiplier = 1.2
	OversoldRSI      = 30.0
	OverboughtRSI    = 70.0
	ExtremeRSI       = 80.0
)

// bar is the aligned view of one candle and its indicators.
type bar struct {
	candle   model.Candle
	band     model.BandPoint
	macd     model.MACDPoint
	prevMACD model.MACDPoint
	rsi      float64
	avgVol   float64
}

// lowerBandTouch holds when the close is at or below the lower band.
func lowerBandTouch(b bar) (model.Condition, bool) {
	return model.Condition{
		Name:       "BB lower",
		Commentary: fmt.Sprintf("close %.2f <= lower %.2f", b.candle.Close, b.band.Lower),
	}, b.candle.Close <= b.band.Lower
}

// upperBandTouch holds when the close is at or above the upper band.
func upperBandTouch(b bar) (model.Condition, bool) {
	return model.Condition{
		Name:       "BB upper",
		Commentary: fmt.Sprintf("close %.2f >= upper %.2f", b.candle.Close, b.band.Upper),
	}, b.candle.Close >= b.band.Upper
}

// bullishMomentum holds on a MACD cross above its signal line or a histogram flip to positive.
func bullishMomentum(b bar) (model.Condition, bool) {
	p, c := b.prevMACD, b.macd
	if p.MACD <= p.Signal && c.MACD > c.Signal {
		return model.Condition{Name: "MACD cross up", Commentary: fmt.Sprintf("macd %.4f > signal %.4f", c.MACD, c.Signal)}, true
	}
	if p.Histogram <= 0 && c.Histogram > 0 {
		return model.Condition{Name: "MACD histogram flip up", Commentary: fmt.Sprintf("hist %.4f -> %.4f", p.Histogram, c.Histogram)}, true
	}
	return model.Condition{}, false
}

// bearishMomentum holds on a MACD cross below its signal line or a histogram flip to negative.
func bearishMomentum(b bar) (model.Condition, bool) {
	p, c := b.prevMACD, b.macd
	if p.MACD >= p.Signal && c.MACD < c.Signal {
		return model.Condition{Name: "MACD cross down", Commentary: fmt.Sprintf("macd %.4f < signal %.4f", c.MACD, c.Signal)}, true
	}
	if p.Histogram >= 0 && c.Histogram < 0 {
		return model.Condition{Name: "MACD histogram flip down", Commentary: fmt.Sprintf("hist %.4f -> %.4f", p.Histogram, c.Histogram)}, true
	}
	return model.Condition{}, false
}

// volumeSurge holds when volume is at least VolumeMultiplier times the trailing average.
// Without a positive average there is nothing to confirm against.
func volumeSurge(b bar) (model.Condition, bool) {
	ok := b.avgVol > 0 && b.candle.Volume >= VolumeMultiplier*b.avgVol
	ratio := 0.0
	if b.avgVol > 0 {
		ratio = b.candle.Volume / b.avgVol
	}
	return model.Condition{
		Name:       "Volume",
		Commentary: fmt.Sprintf("%.2fx average", ratio),
	}, ok
}

// overboughtRSI holds when RSI is above OverboughtRSI.
func overboughtRSI(b bar) (model.Condition, bool) {
	return model.Condition{
		Name:       "RSI overbought",
		Commentary: fmt.Sprintf("RSI=%.0f", b.rsi),
	}, b.rsi > OverboughtRSI
}
