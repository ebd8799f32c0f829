package service

import (
	"math"

	"student-loan-sim/domain"
)

// ValidateParameters checks every field of p and returns the first
// violation as a *ParameterError.
func ValidateParameters(p domain.SimulationParameters) error {
	checks := []struct {
		field string
		value float64
	}{
		{"initial_salary", p.InitialSalary},
		{"current_loan", p.CurrentLoan},
		{"threshold", p.Threshold},
		{"repayment_rate", p.RepaymentRate},
		{"salary_growth", p.SalaryGrowth},
		{"salary_growth_sigma", p.SalaryGrowthSigma},
		{"loan_rate", p.LoanRate},
		{"loan_rate_sigma", p.LoanRateSigma},
		{"investment_rate", p.InvestmentRate},
		{"investment_rate_sigma", p.InvestmentRateSigma},
		{"child_prob", p.ChildProb},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ParameterError{Field: c.field, Value: c.value, Reason: "must be a finite number"}
		}
	}

	nonNegative := []struct {
		field string
		value float64
	}{
		{"initial_salary", p.InitialSalary},
		{"current_loan", p.CurrentLoan},
		{"threshold", p.Threshold},
		{"salary_growth_sigma", p.SalaryGrowthSigma},
		{"loan_rate_sigma", p.LoanRateSigma},
		{"investment_rate_sigma", p.InvestmentRateSigma},
	}
	for _, c := range nonNegative {
		if c.value < 0 {
			return &ParameterError{Field: c.field, Value: c.value, Reason: "must not be negative"}
		}
	}

	if p.PaybackYears < 1 {
		return &ParameterError{Field: "payback_years", Value: float64(p.PaybackYears), Reason: "must be at least 1"}
	}
	if p.RepaymentRate < 0 || p.RepaymentRate > 1 {
		return &ParameterError{Field: "repayment_rate", Value: p.RepaymentRate, Reason: "must be within [0, 1]"}
	}
	if p.ChildProb < 0 || p.ChildProb > 1 {
		return &ParameterError{Field: "child_prob", Value: p.ChildProb, Reason: "must be within [0, 1]"}
	}
	return nil
}

func validateSimulationCount(count int) error {
	if count < 1 {
		return &ParameterError{Field: "simulations", Value: float64(count), Reason: "must be a positive integer"}
	}
	return nil
}

// Limits bounds the work a single request may ask for. It is applied by the
// service layer on top of ValidateParameters.
type Limits struct {
	MaxSimulations  int
	MaxPaybackYears int
}

func DefaultLimits() Limits {
	return Limits{MaxSimulations: MaxSimulationCount, MaxPaybackYears: MaxPaybackYears}
}

func (l Limits) check(p domain.SimulationParameters, count int) error {
	if l.MaxSimulations > 0 && count > l.MaxSimulations {
		return &ParameterError{Field: "simulations", Value: float64(count), Reason: "exceeds the configured maximum"}
	}
	if l.MaxPaybackYears > 0 && p.PaybackYears > l.MaxPaybackYears {
		return &ParameterError{Field: "payback_years", Value: float64(p.PaybackYears), Reason: "exceeds the configured maximum"}
	}
	if p.InitialSalary > MaxSalary {
		return &ParameterError{Field: "initial_salary", Value: p.InitialSalary, Reason: "exceeds the maximum allowed"}
	}
	if p.CurrentLoan > MaxLoanAmount {
		return &ParameterError{Field: "current_loan", Value: p.CurrentLoan, Reason: "exceeds the maximum allowed"}
	}
	return nil
}
