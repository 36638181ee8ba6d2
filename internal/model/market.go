package model

import (
	"sort"
	"time"
)

// Candle represents a single OHLCV bar. Time is unix seconds.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// At returns the candle time as a time.Time in UTC.
func (c Candle) At() time.Time {
	return time.Unix(c.Time, 0).UTC()
}

// SeriesMap maps a symbol to its candles, ordered ascending by time.
// Calendars are not assumed to match across symbols.
type SeriesMap map[string][]Candle

// Symbols returns the symbols present in the map, sorted.
func (m SeriesMap) Symbols() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// PremarketSnapshot is the raw quote data returned by the premarket-snapshot source.
type PremarketSnapshot struct {
	Symbol              string  `json:"symbol"`
	PreMarketPrice      float64 `json:"pre_market_price"`
	PreMarketChange     float64 `json:"pre_market_change"`
	PreMarketVolume     float64 `json:"pre_market_volume"`
	RegularMarketVolume float64 `json:"regular_market_volume"`
}

// PremarketStock is a screened candidate derived from a snapshot.
type PremarketStock struct {
	Symbol       string  `json:"symbol"`
	PrePrice     float64 `json:"pre_price"`
	PreChangePct float64 `json:"pre_change_pct"`
	PreVolume    float64 `json:"pre_volume"`
	NormalVolume float64 `json:"normal_volume"`
	RVol         float64 `json:"rvol"`
	HasCatalyst  bool    `json:"has_catalyst"`
}
