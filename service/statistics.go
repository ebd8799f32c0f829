package service

import (
	"math"
	"slices"

	"student-loan-sim/domain"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median of an unsorted slice; values is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return percentileSorted(sortedCopy(values), 50)
}

func sortedCopy(values []float64) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted
}

// percentileSorted uses linear interpolation between closest ranks.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// BuildHistogram bins values into equal-width buckets spanning [min, max].
// Density integrates to one.
func BuildHistogram(values []float64, bins int) domain.Histogram {
	if len(values) == 0 || bins < 1 {
		return domain.Histogram{}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	density := make([]float64, bins)
	total := float64(len(values))
	for i, c := range counts {
		density[i] = float64(c) / (total * width)
	}

	return domain.Histogram{
		Min:      lo,
		Max:      hi,
		BinWidth: width,
		Counts:   counts,
		Density:  density,
	}
}

// Describe computes summary statistics and a histogram of values.
func Describe(values []float64, bins int) domain.Distribution {
	if len(values) == 0 {
		return domain.Distribution{}
	}
	sorted := sortedCopy(values)
	return domain.Distribution{
		Mean:      mean(values),
		Median:    percentileSorted(sorted, 50),
		StdDev:    stdDev(values),
		Min:       sorted[0],
		Max:       sorted[len(sorted)-1],
		P5:        percentileSorted(sorted, 5),
		P25:       percentileSorted(sorted, 25),
		P75:       percentileSorted(sorted, 75),
		P95:       percentileSorted(sorted, 95),
		Histogram: BuildHistogram(values, bins),
	}
}
