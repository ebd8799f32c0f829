package service

import "math/rand/v2"

// RandomSource is the only source of randomness the simulator reads from.
// *rand.Rand satisfies it. Implementations are not safe for concurrent use.
type RandomSource interface {
	Float64() float64
	NormFloat64() float64
}

// NewRandomSource returns a PCG generator for one (seed, stream) pair.
// Distinct streams of the same seed are independent.
func NewRandomSource(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, splitmix64(stream)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// StdDevFromVariation maps a user-facing variation (the half-width of a ~95%
// band) to the per-year standard deviation: ±2σ covers ~95%.
func StdDevFromVariation(variation float64) float64 {
	return variation / 2
}

// growthFactor draws 1 + Normal(mean, variation/2), floored at zero so a
// balance can fall to nothing but never below.
func growthFactor(rnd RandomSource, mean, variation float64) float64 {
	f := 1 + (mean + StdDevFromVariation(variation)*rnd.NormFloat64())
	if f < 0 {
		return 0
	}
	return f
}
