package service

import "student-loan-sim/domain"

// DefaultParameters returns the documented starting point offered to users.
func DefaultParameters() domain.SimulationParameters {
	return domain.SimulationParameters{
		InitialSalary:       50_000,
		CurrentLoan:         50_000,
		PaybackYears:        15,
		Threshold:           27_000,
		RepaymentRate:       0.09,
		SalaryGrowth:        0.05,
		SalaryGrowthSigma:   0.03,
		LoanRate:            0.06,
		LoanRateSigma:       0.02,
		InvestmentRate:      0.04,
		InvestmentRateSigma: 0.08,
		ChildProb:           0.10,
	}
}
