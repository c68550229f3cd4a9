// Package stats summarizes the final-money distribution of a run.
package stats

import (
	"math"
	"sort"
)

// Summary describes a set of outcome values.
type Summary struct {
	Count      int
	Mean       float64
	StdDev     float64 // sample standard deviation (n-1)
	BelowStart float64 // fraction of values strictly below the start price
	Min        float64
	Max        float64
	Median     float64
	P10        float64
	P90        float64
}

// Summarize computes a Summary over values. An empty input yields the zero Summary.
func Summarize(values []float64, startPrice float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := Mean(values)
	below := 0
	for _, v := range values {
		if v < startPrice {
			below++
		}
	}

	return Summary{
		Count:      n,
		Mean:       mean,
		StdDev:     StdDev(values, mean),
		BelowStart: float64(below) / float64(n),
		Min:        sorted[0],
		Max:        sorted[n-1],
		Median:     Percentile(sorted, 0.50),
		P10:        Percentile(sorted, 0.10),
		P90:        Percentile(sorted, 0.90),
	}
}

// Mean is the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the sample standard deviation around mean. Fewer than two
// values give 0.
func StdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := mean - v
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Percentile returns the p-th percentile (0..1) of sorted values using
// linear interpolation between closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// FeeDrag is how much mean money the transaction costs gave up.
func FeeDrag(ideal, withFees Summary) float64 {
	return ideal.Mean - withFees.Mean
}
