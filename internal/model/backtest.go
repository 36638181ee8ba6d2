package model

// BacktestConfig configures a portfolio rotation backtest.
// Weights need not sum to 1; unallocated weight earns zero (cash).
type BacktestConfig struct {
	StartYear      int      `json:"start_year" yaml:"start_year"`
	InitialCapital float64  `json:"initial_capital" yaml:"initial_capital"`
	GEMWeight      float64  `json:"gem_weight" yaml:"gem_weight"`
	TAAWeight      float64  `json:"taa_weight" yaml:"taa_weight"`
	SectorWeight   float64  `json:"sector_weight" yaml:"sector_weight"`
	Universe       Universe `json:"universe" yaml:"universe"`
}

// Universe names the instruments each strategy leg trades.
type Universe struct {
	RiskA   string   `json:"risk_a" yaml:"risk_a"`
	RiskB   string   `json:"risk_b" yaml:"risk_b"`
	Safety  string   `json:"safety" yaml:"safety"`
	TAA     []string `json:"taa" yaml:"taa"`
	Sectors []string `json:"sectors" yaml:"sectors"`
	TopK    int      `json:"top_k" yaml:"top_k"`
}

// DefaultUniverse returns the stock universe used when none is configured.
func DefaultUniverse() Universe {
	return Universe{
		RiskA:   "SPY",
		RiskB:   "EFA",
		Safety:  "AGG",
		TAA:     []string{"SPY", "EFA", "IEF", "VNQ", "DBC"},
		Sectors: []string{"XLK", "XLF", "XLE", "XLV", "XLI", "XLP", "XLY", "XLU", "XLB"},
		TopK:    3,
	}
}

// Symbols returns every distinct symbol the universe references.
func (u Universe) Symbols() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	add(u.RiskA)
	add(u.RiskB)
	add(u.Safety)
	for _, s := range u.TAA {
		add(s)
	}
	for _, s := range u.Sectors {
		add(s)
	}
	return out
}

// EquityPoint is one point on the equity curve.
type EquityPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Allocation lists what each leg holds for one period.
type Allocation struct {
	GEM     string   `json:"gem"`
	TAA     []string `json:"taa"`
	Sectors []string `json:"sectors"`
}

// TradeRecord is the per-period record of a backtest.
type TradeRecord struct {
	Time             int64      `json:"time"`
	Holdings         Allocation `json:"holdings"`
	GEMReturn        float64    `json:"gem_return"`
	TAAReturn        float64    `json:"taa_return"`
	SectorReturn     float64    `json:"sector_return"`
	PeriodReturn     float64    `json:"period_return"`
	CumulativeReturn float64    `json:"cumulative_return"`
	Equity           float64    `json:"equity"`
}

// BacktestResult is built fresh for every run and not mutated afterwards.
type BacktestResult struct {
	EquityCurve       []EquityPoint `json:"equity_curve"`
	Trades            []TradeRecord `json:"trades"`
	CAGR              float64       `json:"cagr"`
	Sharpe            float64       `json:"sharpe"`
	MaxDrawdown       float64       `json:"max_drawdown"`
	WinRate           float64       `json:"win_rate"`
	Calmar            float64       `json:"calmar"`
	TotalReturn       float64       `json:"total_return"`
	Volatility        float64       `json:"volatility"`
	BestMonth         float64       `json:"best_month"`
	WorstMonth        float64       `json:"worst_month"`
	Months            int           `json:"months"`
	CurrentAllocation *Allocation   `json:"current_allocation"`
}
