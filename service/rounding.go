package service

import (
	"github.com/shopspring/decimal"

	"student-loan-sim/domain"
)

// roundTo2Decimals rounds a money amount to pence.
func roundTo2Decimals(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return f
}

// roundDistribution rounds the money fields of d. Histogram bins keep full
// precision so densities stay consistent with the bin edges.
func roundDistribution(d domain.Distribution) domain.Distribution {
	d.Mean = roundTo2Decimals(d.Mean)
	d.Median = roundTo2Decimals(d.Median)
	d.StdDev = roundTo2Decimals(d.StdDev)
	d.Min = roundTo2Decimals(d.Min)
	d.Max = roundTo2Decimals(d.Max)
	d.P5 = roundTo2Decimals(d.P5)
	d.P25 = roundTo2Decimals(d.P25)
	d.P75 = roundTo2Decimals(d.P75)
	d.P95 = roundTo2Decimals(d.P95)
	return d
}
