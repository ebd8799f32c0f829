package service

import (
	"context"
	"fmt"
	"strings"

	"student-loan-sim/domain"
)

// ReturnPeriod is the annualised return of a vehicle over a trailing window.
type ReturnPeriod struct {
	Years     int
	Return    float64 // 0.10 = 10%
	Variation float64 // twice the annual standard deviation
}

// IndexFund is an investable vehicle with published trailing returns.
type IndexFund struct {
	Ticker  string
	Aliases []string
	Name    string
	Region  string
	Periods []ReturnPeriod // ascending by Years
}

// IndexFunds holds nominal total returns to end 2024, rounded. The figures
// are a fallback for when no price history is available.
var IndexFunds = []IndexFund{
	{
		Ticker:  "SPY",
		Aliases: []string{"sp500"},
		Name:    "S&P 500",
		Region:  "US",
		Periods: []ReturnPeriod{
			{Years: 3, Return: 0.089, Variation: 0.36},
			{Years: 5, Return: 0.145, Variation: 0.38},
			{Years: 10, Return: 0.128, Variation: 0.32},
			{Years: 20, Return: 0.104, Variation: 0.34},
			{Years: 25, Return: 0.078, Variation: 0.34},
		},
	},
	{
		Ticker:  "VWRL.L",
		Aliases: []string{"ftseAllWorld"},
		Name:    "FTSE All-World",
		Region:  "Global",
		Periods: []ReturnPeriod{
			{Years: 3, Return: 0.078, Variation: 0.30},
			{Years: 5, Return: 0.115, Variation: 0.32},
			{Years: 10, Return: 0.095, Variation: 0.28},
			{Years: 20, Return: 0.080, Variation: 0.30},
		},
	},
	{
		Ticker:  "VUKE.L",
		Aliases: []string{"ftse100"},
		Name:    "FTSE 100",
		Region:  "UK",
		Periods: []ReturnPeriod{
			{Years: 3, Return: 0.082, Variation: 0.24},
			{Years: 5, Return: 0.058, Variation: 0.30},
			{Years: 10, Return: 0.056, Variation: 0.28},
			{Years: 20, Return: 0.060, Variation: 0.30},
			{Years: 25, Return: 0.052, Variation: 0.30},
		},
	},
	{
		Ticker:  "VMID.L",
		Aliases: []string{"ftse250"},
		Name:    "FTSE 250",
		Region:  "UK",
		Periods: []ReturnPeriod{
			{Years: 3, Return: 0.045, Variation: 0.38},
			{Years: 5, Return: 0.052, Variation: 0.40},
			{Years: 10, Return: 0.068, Variation: 0.36},
			{Years: 25, Return: 0.085, Variation: 0.36},
		},
	},
	{
		Ticker:  "SWDA.L",
		Aliases: []string{"msciWorld"},
		Name:    "MSCI World",
		Region:  "Global",
		Periods: []ReturnPeriod{
			{Years: 3, Return: 0.082, Variation: 0.30},
			{Years: 5, Return: 0.125, Variation: 0.32},
			{Years: 10, Return: 0.102, Variation: 0.28},
			{Years: 25, Return: 0.072, Variation: 0.32},
		},
	},
	{
		Ticker:  "QQQ",
		Aliases: []string{"nasdaq"},
		Name:    "NASDAQ-100",
		Region:  "US",
		Periods: []ReturnPeriod{
			{Years: 3, Return: 0.092, Variation: 0.50},
			{Years: 5, Return: 0.188, Variation: 0.48},
			{Years: 10, Return: 0.165, Variation: 0.42},
			{Years: 25, Return: 0.095, Variation: 0.52},
		},
	},
}

// FindIndexFund looks a vehicle up by ticker or alias, ignoring case.
func FindIndexFund(id string) *IndexFund {
	for i := range IndexFunds {
		f := &IndexFunds[i]
		if strings.EqualFold(f.Ticker, id) {
			return f
		}
		for _, a := range f.Aliases {
			if strings.EqualFold(a, id) {
				return f
			}
		}
	}
	return nil
}

// PeriodFor returns the longest published period not exceeding
// lookbackYears.
func (f *IndexFund) PeriodFor(lookbackYears int) (ReturnPeriod, bool) {
	var best ReturnPeriod
	found := false
	for _, p := range f.Periods {
		if p.Years <= lookbackYears && (!found || p.Years > best.Years) {
			best = p
			found = true
		}
	}
	return best, found
}

// IndexTableProvider answers from the static IndexFunds table.
type IndexTableProvider struct{}

func NewIndexTableProvider() *IndexTableProvider {
	return &IndexTableProvider{}
}

func (IndexTableProvider) HistoricalReturns(
	_ context.Context,
	ticker string,
	lookbackYears int,
) (domain.HistoricalReturns, error) {
	fund := FindIndexFund(ticker)
	if fund == nil {
		return domain.HistoricalReturns{}, &DataUnavailableError{Ticker: ticker, Reason: "not in index table"}
	}
	period, ok := fund.PeriodFor(lookbackYears)
	if !ok {
		return domain.HistoricalReturns{}, &DataUnavailableError{
			Ticker: ticker,
			Reason: fmt.Sprintf("no published period within %d years", lookbackYears),
		}
	}
	return domain.HistoricalReturns{
		Ticker:        fund.Ticker,
		LookbackYears: period.Years,
		MeanReturn:    period.Return,
		Variation:     period.Variation,
		Source:        "index_table",
		Observations:  period.Years,
	}, nil
}
