package domain

import "time"

// SimulationParameters describes one borrower. Variation fields ("*Sigma")
// are the half-width of a ~95% band around the mean, not a standard
// deviation.
type SimulationParameters struct {
	InitialSalary       float64 `json:"initial_salary" yaml:"initial_salary" mapstructure:"initial_salary"`
	CurrentLoan         float64 `json:"current_loan" yaml:"current_loan" mapstructure:"current_loan"`
	PaybackYears        int     `json:"payback_years" yaml:"payback_years" mapstructure:"payback_years"`
	Threshold           float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	RepaymentRate       float64 `json:"repayment_rate" yaml:"repayment_rate" mapstructure:"repayment_rate"`
	SalaryGrowth        float64 `json:"salary_growth" yaml:"salary_growth" mapstructure:"salary_growth"`
	SalaryGrowthSigma   float64 `json:"salary_growth_sigma" yaml:"salary_growth_sigma" mapstructure:"salary_growth_sigma"`
	LoanRate            float64 `json:"loan_rate" yaml:"loan_rate" mapstructure:"loan_rate"`
	LoanRateSigma       float64 `json:"loan_rate_sigma" yaml:"loan_rate_sigma" mapstructure:"loan_rate_sigma"`
	InvestmentRate      float64 `json:"investment_rate" yaml:"investment_rate" mapstructure:"investment_rate"`
	InvestmentRateSigma float64 `json:"investment_rate_sigma" yaml:"investment_rate_sigma" mapstructure:"investment_rate_sigma"`
	ChildProb           float64 `json:"child_prob" yaml:"child_prob" mapstructure:"child_prob"`
}

type PathOutcome struct {
	TotalRepayments float64 `json:"total_repayments"`
	FinalInvestment float64 `json:"final_investment"`
}

// YearState is the borrower's position at the end of one simulated year.
type YearState struct {
	Year            int     `json:"year"`
	CareerBreak     bool    `json:"career_break"`
	Salary          float64 `json:"salary"`
	Loan            float64 `json:"loan"`
	Investment      float64 `json:"investment"`
	Payment         float64 `json:"payment"`
	TotalRepayments float64 `json:"total_repayments"`
}

type PathTrace struct {
	Outcome          PathOutcome `json:"outcome"`
	Years            []YearState `json:"years"`
	RepaidInFull     bool        `json:"repaid_in_full"`
	RemainingLoan    float64     `json:"remaining_loan"` // written off at the end of the horizon
	CareerBreakYears int         `json:"career_break_years"`
}

type Recommendation string

const (
	RecommendPayEarly      Recommendation = "pay_early"
	RecommendKeepAndInvest Recommendation = "keep_and_invest"
)

// AggregateResult holds per-path outcomes in call order and the statistics
// derived from them. Gains[i] = Repayments[i] - Investments[i].
type AggregateResult struct {
	Repayments  []float64
	Investments []float64
	Gains       []float64

	MeanRepayment    float64
	MedianRepayment  float64
	MeanInvestment   float64
	MedianInvestment float64
	MeanGain         float64
	MedianGain       float64

	// FavorableFraction is the share of paths with a positive gain from
	// paying early.
	FavorableFraction float64
	Recommendation    Recommendation
	// RecommendedWinFraction is the share of paths where the recommended
	// strategy beats the alternative.
	RecommendedWinFraction float64
}

type Histogram struct {
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	BinWidth float64   `json:"bin_width"`
	Counts   []int     `json:"counts"`
	Density  []float64 `json:"density"`
}

type Distribution struct {
	Mean      float64   `json:"mean"`
	Median    float64   `json:"median"`
	StdDev    float64   `json:"std_dev"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	P5        float64   `json:"p5"`
	P25       float64   `json:"p25"`
	P75       float64   `json:"p75"`
	P95       float64   `json:"p95"`
	Histogram Histogram `json:"histogram"`
}

type RunSummary struct {
	Simulations            int            `json:"simulations"`
	Recommendation         Recommendation `json:"recommendation"`
	FavorableFraction      float64        `json:"favorable_fraction"`
	RecommendedWinFraction float64        `json:"recommended_win_fraction"`
	Repayments             Distribution   `json:"repayments"`
	Investments            Distribution   `json:"investments"`
	Gains                  Distribution   `json:"gains"`
}

type RunRecord struct {
	ID               string               `json:"id"`
	CreatedAt        time.Time            `json:"created_at"`
	Parameters       SimulationParameters `json:"parameters"`
	Simulations      int                  `json:"simulations"`
	Seed             uint64               `json:"seed"`
	Workers          int                  `json:"workers"`
	InvestmentTicker string               `json:"investment_ticker,omitempty"`
	Summary          RunSummary           `json:"summary"`
	Cached           bool                 `json:"cached"`
	Explanation      string               `json:"explanation,omitempty"`
}

// SimulationRequest is what a caller submits for a batch run. Seed makes the
// run reproducible; without one a random seed is chosen. A non-empty
// InvestmentTicker replaces the investment rate and variation with the
// historical figures of that vehicle.
type SimulationRequest struct {
	Parameters       SimulationParameters `json:"parameters" yaml:"parameters"`
	Simulations      int                  `json:"simulations" yaml:"simulations"`
	Seed             *uint64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	InvestmentTicker string               `json:"investment_ticker,omitempty" yaml:"investment_ticker,omitempty"`
	LookbackYears    int                  `json:"lookback_years,omitempty" yaml:"lookback_years,omitempty"`
}

type TraceRequest struct {
	Parameters SimulationParameters `json:"parameters"`
	Seed       *uint64              `json:"seed,omitempty"`
}
