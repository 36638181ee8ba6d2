package model

// Side is the direction of a confluence signal.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Confidence grades a confluence signal.
type Confidence string

const (
	ConfidenceNormal Confidence = "normal"
	ConfidenceStrong Confidence = "strong"
)

// Condition is one named sub-condition that held when a signal fired.
type Condition struct {
	Name       string `json:"name"`
	Commentary string `json:"commentary"`
}

// ConfluenceSignal is emitted when all BUY or all SELL conditions hold on a candle.
type ConfluenceSignal struct {
	Time       int64       `json:"time"`
	Index      int         `json:"index"`
	Side       Side        `json:"side"`
	Confidence Confidence  `json:"confidence"`
	Price      float64     `json:"price"`
	RSI        float64     `json:"rsi"`
	Band       float64     `json:"band"`
	Conditions []Condition `json:"conditions"`
}
