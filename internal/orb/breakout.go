package orb

import (
	"QuantSentinel/internal/calculator"
	"QuantSentinel/internal/model"
)

// DefaultTickBuffer is added beyond the range for the stop level.
const DefaultTickBuffer = 0.01

// BreakoutConfig tunes breakout detection.
type BreakoutConfig struct {
	// VWAPFilter requires a long close above and a short close below the running VWAP.
	VWAPFilter bool    `json:"vwap_filter" yaml:"vwap_filter"`
	TickBuffer float64 `json:"tick_buffer" yaml:"tick_buffer"`
}

// DefaultBreakoutConfig enables the VWAP filter with a one-cent buffer.
func DefaultBreakoutConfig() BreakoutConfig {
	return BreakoutConfig{VWAPFilter: true, TickBuffer: DefaultTickBuffer}
}

// DetectBreakout walks the candles after the range window and returns a plan
// for the first close outside the range, or nil. VWAP accumulates the typical
// price of every candle from the range start. A candle rejected by the VWAP
// filter is not a breakout and the walk continues.
func DetectBreakout(symbol string, candles []model.Candle, rng *model.OpeningRange, cfg BreakoutConfig) *model.ORBSignal {
	if rng == nil {
		return nil
	}
	width := rng.Width()

	var pv, vol float64
	for _, c := range candles {
		if c.Time < rng.Start {
			continue
		}
		pv += calculator.TypicalPrice(c) * c.Volume
		vol += c.Volume
		if c.Time < rng.End {
			continue
		}

		vwap := c.Close
		if vol > 0 {
			vwap = pv / vol
		}

		switch {
		case c.Close > rng.High:
			if cfg.VWAPFilter && c.Close <= vwap {
				continue
			}
			return &model.ORBSignal{
				Symbol:    symbol,
				Direction: model.DirectionLong,
				Entry:     c.Close,
				Target1:   c.Close + width,
				Target2:   c.Close + 1.5*width,
				Stop:      rng.Low - cfg.TickBuffer,
				RangeHigh: rng.High,
				RangeLow:  rng.Low,
				VWAP:      vwap,
				Time:      c.Time,
			}
		case c.Close < rng.Low:
			if cfg.VWAPFilter && c.Close >= vwap {
				continue
			}
			return &model.ORBSignal{
				Symbol:    symbol,
				Direction: model.DirectionShort,
				Entry:     c.Close,
				Target1:   c.Close - width,
				Target2:   c.Close - 1.5*width,
				Stop:      rng.High + cfg.TickBuffer,
				RangeHigh: rng.High,
				RangeLow:  rng.Low,
				VWAP:      vwap,
				Time:      c.Time,
			}
		}
	}
	return nil
}
