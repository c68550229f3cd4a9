package market

import "math"

// Price is a quote in account currency (USD) per whole unit of the asset.
type Price = float64

const (
	// StartPrice is where every simulated account begins.
	StartPrice Price = 10_000

	// DefaultLambda is the characteristic crash level of the reference
	// experiments.
	DefaultLambda Price = 100_000

	// DefaultMaxValue caps the bounded crash distribution and the survival curve.
	DefaultMaxValue Price = 1_000_000

	// DefaultTransactionCost is the fee charged per sale as a fraction of
	// holdings. Based on highs of ~$50 fees.
	DefaultTransactionCost = 0.005

	// DefaultSellMultiplier doubles the trigger price after each sale.
	DefaultSellMultiplier = 2.0
)

// LogNormalize maps p onto [0,1] on a log scale between lo and hi.
// Values outside the range are clamped.
func LogNormalize(p, lo, hi Price) float64 {
	if p <= lo {
		return 0
	}
	if p >= hi {
		return 1
	}
	return math.Log(p/lo) / math.Log(hi/lo)
}

// LogInterpolate is the inverse of LogNormalize: u=0 gives lo, u=1 gives hi.
func LogInterpolate(u float64, lo, hi Price) Price {
	return lo * math.Pow(hi/lo, u)
}
