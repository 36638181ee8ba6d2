// Package indicator computes the Bollinger, MACD and RSI point series that
// the confluence detector consumes.
package indicator

import (
	"fmt"

	"QuantSentinel/internal/model"
)

// Engine names.
const (
	EngineTechan = "techan"
	EngineNative = "native"
)

// Provider computes time-keyed indicator series for a candle series.
type Provider interface {
	Compute(candles []model.Candle, p model.IndicatorParams) (model.IndicatorSet, error)
}

// New returns the provider for the named engine. An empty name selects techan.
func New(engine string) (Provider, error) {
	switch engine {
	case "", EngineTechan:
		return TechanEngine{}, nil
	case EngineNative:
		return NativeEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown indicator engine: %s", engine)
	}
}

func validate(p model.IndicatorParams) error {
	if p.BBPeriod <= 1 || p.BBStdDev <= 0 {
		return fmt.Errorf("invalid bollinger params: period=%d stddev=%.2f", p.BBPeriod, p.BBStdDev)
	}
	if p.MACDFast <= 0 || p.MACDSlow <= p.MACDFast || p.MACDSignal <= 0 {
		return fmt.Errorf("invalid macd params: %d/%d/%d", p.MACDFast, p.MACDSlow, p.MACDSignal)
	}
	if p.RSIPeriod <= 0 {
		return fmt.Errorf("invalid rsi period: %d", p.RSIPeriod)
	}
	return nil
}

// warmup returns the first index at which each series is defined.
func warmup(p model.IndicatorParams) (bands, macd, rsi int) {
	return p.BBPeriod - 1, p.MACDSlow + p.MACDSignal - 2, p.RSIPeriod
}

func emptySet() model.IndicatorSet {
	return model.IndicatorSet{
		Bands: []model.BandPoint{},
		MACD:  []model.MACDPoint{},
		RSI:   []model.ValuePoint{},
	}
}
