package api

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// BacktestRequest overrides the configured backtest. Zero fields keep the configured value.
type BacktestRequest struct {
	StartYear      int      `form:"start_year" binding:"omitempty,gte=1900,lte=2100"`
	InitialCapital float64  `form:"capital" binding:"omitempty,gt=0"`
	GEMWeight      *float64 `form:"gem" binding:"omitempty,gte=0"`
	TAAWeight      *float64 `form:"taa" binding:"omitempty,gte=0"`
	SectorWeight   *float64 `form:"sector" binding:"omitempty,gte=0"`
}

// PairRequest names the two legs of a pair.
type PairRequest struct {
	A string `form:"a" binding:"required"`
	B string `form:"b" binding:"required"`
}

// SymbolsRequest is a comma-separated symbol list; empty means the configured watchlist.
type SymbolsRequest struct {
	Symbols string `form:"symbols"`
}

// RunsRequest pages the stored backtest runs.
type RunsRequest struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}
