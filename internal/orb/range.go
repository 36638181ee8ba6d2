// Package orb detects opening-range breakouts on intraday candles and screens
// premarket candidates by relative volume and price change.
package orb

import (
	"QuantSentinel/internal/calculator"
	"QuantSentinel/internal/model"
)

// DetectOpeningRange returns the range spanned by the candles in
// [open, open+rangeMinutes) of the session on the latest candle's date.
// It returns nil when no candle falls inside that window.
func DetectOpeningRange(symbol string, candles []model.Candle, rangeMinutes int) *model.OpeningRange {
	if len(candles) == 0 || rangeMinutes <= 0 {
		return nil
	}
	open := SessionFor(symbol).OpenOn(candles[len(candles)-1].At())
	start := open.Unix()
	end := start + int64(rangeMinutes)*60

	var window []model.Candle
	for _, c := range candles {
		if c.Time >= start && c.Time < end {
			window = append(window, c)
		}
	}
	high, low, err := calculator.HighLow(window)
	if err != nil {
		return nil
	}
	return &model.OpeningRange{
		Symbol:  symbol,
		High:    high,
		Low:     low,
		Start:   start,
		End:     end,
		Candles: len(window),
	}
}
