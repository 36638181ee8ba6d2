package model

// Direction of an opening-range breakout.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// OpeningRange is the reference range of the first minutes of a session.
// Start is inclusive, End exclusive.
type OpeningRange struct {
	Symbol  string  `json:"symbol"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Start   int64   `json:"start"`
	End     int64   `json:"end"`
	Candles int     `json:"candles"`
}

// Width returns High-Low.
func (r OpeningRange) Width() float64 {
	return r.High - r.Low
}

// ORBSignal is a breakout trade plan.
type ORBSignal struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Entry     float64   `json:"entry"`
	Target1   float64   `json:"target1"`
	Target2   float64   `json:"target2"`
	Stop      float64   `json:"stop"`
	RangeHigh float64   `json:"range_high"`
	RangeLow  float64   `json:"range_low"`
	VWAP      float64   `json:"vwap"`
	Time      int64     `json:"time"`
}
