package service

import "student-loan-sim/domain"

// SimulatePath evolves one borrower future and returns its two outcomes.
// params must already be validated.
func SimulatePath(params domain.SimulationParameters, rnd RandomSource) domain.PathOutcome {
	return simulatePath(params, rnd, nil).Outcome
}

// SimulatePathTrace runs the same path as SimulatePath with the same draws
// and records the state after every simulated year.
func SimulatePathTrace(params domain.SimulationParameters, rnd RandomSource) domain.PathTrace {
	years := make([]domain.YearState, 0, params.PaybackYears)
	trace := simulatePath(params, rnd, func(y domain.YearState) {
		years = append(years, y)
	})
	trace.Years = years
	return trace
}

func simulatePath(
	params domain.SimulationParameters,
	rnd RandomSource,
	record func(domain.YearState),
) domain.PathTrace {
	salary := params.InitialSalary
	loan := params.CurrentLoan
	// Money not spent on repayment compounds from day one.
	investment := params.CurrentLoan
	totalRepayments := 0.0
	breaks := 0
	repaid := false

	for year := 1; year <= params.PaybackYears; year++ {
		if rnd.Float64() < params.ChildProb {
			breaks++
			loan *= growthFactor(rnd, params.LoanRate, params.LoanRateSigma)
			if record != nil {
				record(domain.YearState{
					Year:            year,
					CareerBreak:     true,
					Salary:          salary,
					Loan:            loan,
					Investment:      investment,
					TotalRepayments: totalRepayments,
				})
			}
			continue
		}

		salary *= growthFactor(rnd, params.SalaryGrowth, params.SalaryGrowthSigma)
		loan *= growthFactor(rnd, params.LoanRate, params.LoanRateSigma)

		payment := 0.0
		if salary > params.Threshold {
			payment = min((salary-params.Threshold)*params.RepaymentRate, loan)
			loan -= payment
			totalRepayments += payment
		}

		if loan <= 0 {
			repaid = true
			loan = 0
		} else {
			investment *= growthFactor(rnd, params.InvestmentRate, params.InvestmentRateSigma)
		}

		if record != nil {
			record(domain.YearState{
				Year:            year,
				Salary:          salary,
				Loan:            loan,
				Investment:      investment,
				Payment:         payment,
				TotalRepayments: totalRepayments,
			})
		}
		if repaid {
			break
		}
	}

	return domain.PathTrace{
		Outcome: domain.PathOutcome{
			TotalRepayments: totalRepayments,
			FinalInvestment: investment,
		},
		RepaidInFull:     repaid,
		RemainingLoan:    loan,
		CareerBreakYears: breaks,
	}
}
