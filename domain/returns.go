package domain

// HistoricalReturns is the annualised return of an investment vehicle over a
// lookback window. Variation follows the same ~95% band convention as
// SimulationParameters (twice the standard deviation).
type HistoricalReturns struct {
	Ticker        string  `json:"ticker"`
	LookbackYears int     `json:"lookback_years"`
	MeanReturn    float64 `json:"mean_return"`
	Variation     float64 `json:"variation"`
	Source        string  `json:"source"`
	Observations  int     `json:"observations"`
}

type InvestmentOption struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// CustomTicker marks a manually entered return instead of a lookup.
const CustomTicker = "CUSTOM"

var InvestmentOptions = []InvestmentOption{
	{Name: "S&P 500 (US)", Ticker: "SPY"},
	{Name: "FTSE All-World", Ticker: "VWRL.L"},
	{Name: "Vanguard FTSE 100 ETF", Ticker: "VUKE.L"},
	{Name: "Custom", Ticker: CustomTicker},
}
