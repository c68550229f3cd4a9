package sim

import "math/rand"

// Source is the random stream a population draws from. *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// NormFloat64 returns a standard normal value (mean 0, stddev 1).
	NormFloat64() float64
	// ExpFloat64 returns an exponential value with rate 1.
	ExpFloat64() float64
}

// NewSource returns a Source seeded for reproducible runs.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
