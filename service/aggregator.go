package service

import (
	"fmt"

	"student-loan-sim/domain"
)

// RunAggregate runs count independent paths sequentially from rnd and
// summarises them. Parameters are validated before any path is simulated.
func RunAggregate(
	params domain.SimulationParameters,
	count int,
	rnd RandomSource,
) (domain.AggregateResult, error) {
	if err := ValidateParameters(params); err != nil {
		return domain.AggregateResult{}, err
	}
	if err := validateSimulationCount(count); err != nil {
		return domain.AggregateResult{}, err
	}
	if rnd == nil {
		return domain.AggregateResult{}, fmt.Errorf("run aggregate: nil random source")
	}

	repayments := make([]float64, count)
	investments := make([]float64, count)
	for i := range count {
		outcome := SimulatePath(params, rnd)
		repayments[i] = outcome.TotalRepayments
		investments[i] = outcome.FinalInvestment
	}

	return Summarize(repayments, investments), nil
}

// Summarize derives the aggregate statistics from per-path outcomes. Both
// slices must have the same length.
func Summarize(repayments, investments []float64) domain.AggregateResult {
	gains := make([]float64, len(repayments))
	positive, negative := 0, 0
	for i := range repayments {
		gains[i] = repayments[i] - investments[i]
		switch {
		case gains[i] > 0:
			positive++
		case gains[i] < 0:
			negative++
		}
	}

	result := domain.AggregateResult{
		Repayments:       repayments,
		Investments:      investments,
		Gains:            gains,
		MeanRepayment:    mean(repayments),
		MedianRepayment:  median(repayments),
		MeanInvestment:   mean(investments),
		MedianInvestment: median(investments),
		MeanGain:         mean(gains),
		MedianGain:       median(gains),
	}

	n := float64(len(gains))
	if n == 0 {
		result.Recommendation = domain.RecommendKeepAndInvest
		return result
	}

	result.FavorableFraction = float64(positive) / n
	if result.MeanGain > 0 {
		result.Recommendation = domain.RecommendPayEarly
		result.RecommendedWinFraction = result.FavorableFraction
	} else {
		result.Recommendation = domain.RecommendKeepAndInvest
		result.RecommendedWinFraction = float64(negative) / n
	}
	return result
}

// NewRunSummary condenses an aggregate into the distributions shown to users.
func NewRunSummary(result domain.AggregateResult, bins int) domain.RunSummary {
	return domain.RunSummary{
		Simulations:            len(result.Repayments),
		Recommendation:         result.Recommendation,
		FavorableFraction:      result.FavorableFraction,
		RecommendedWinFraction: result.RecommendedWinFraction,
		Repayments:             roundDistribution(Describe(result.Repayments, bins)),
		Investments:            roundDistribution(Describe(result.Investments, bins)),
		Gains:                  roundDistribution(Describe(result.Gains, bins)),
	}
}
