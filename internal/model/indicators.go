package model

// BandPoint is one Bollinger-style band value.
type BandPoint struct {
	Time   int64   `json:"time"`
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MACDPoint is one trend-following oscillator value with its signal line and histogram.
type MACDPoint struct {
	Time      int64   `json:"time"`
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// ValuePoint is a single-valued indicator point, e.g. RSI.
type ValuePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// IndicatorSet holds the aligned indicator series consumed by the confluence detector.
// Each series is keyed by candle time; gaps are allowed.
type IndicatorSet struct {
	Bands []BandPoint  `json:"bands"`
	MACD  []MACDPoint  `json:"macd"`
	RSI   []ValuePoint `json:"rsi"`
}

// IndicatorParams configures indicator computation.
type IndicatorParams struct {
	BBPeriod   int     `json:"bb_period" yaml:"bb_period"`
	BBStdDev   float64 `json:"bb_stddev" yaml:"bb_stddev"`
	MACDFast   int     `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int     `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int     `json:"macd_signal" yaml:"macd_signal"`
	RSIPeriod  int     `json:"rsi_period" yaml:"rsi_period"`
}

// DefaultIndicatorParams returns BB(20,2), MACD(12,26,9), RSI(14).
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		BBPeriod:   20,
		BBStdDev:   2,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		RSIPeriod:  14,
	}
}
