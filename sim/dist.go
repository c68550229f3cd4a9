package sim

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tranche/market"
)

// CrashDist draws the price at which a trial's rally ends.
// Values must be >= market.StartPrice.
type CrashDist func(rng Source) market.Price

// SellDist draws the fraction of holdings an account sells at each trigger.
type SellDist func(rng Source) float64

// SurvivalFunc decides whether the price stabilizes at crashPoint instead of
// collapsing, in which case the account's residual holdings keep their value.
type SurvivalFunc func(rng Source, crashPoint market.Price) bool

// NormalCrash is |N(StartPrice, spread)|.
func NormalCrash(spread float64) CrashDist {
	return func(rng Source) market.Price {
		return math.Abs(market.StartPrice + spread*rng.NormFloat64())
	}
}

// ExponentialCrash is an exponential with the given scale (mean), shifted so
// its support starts at StartPrice.
func ExponentialCrash(scale float64) CrashDist {
	return func(rng Source) market.Price {
		return rng.ExpFloat64()*scale + market.StartPrice
	}
}

// BoundedCrash resamples Exp(rate) until it lands in [0,1], then maps it log
// linearly onto [StartPrice, maxValue]. Higher rates favor crashes near
// StartPrice.
func BoundedCrash(rate float64, maxValue market.Price) CrashDist {
	if !(rate > 0) {
		panic(fmt.Sprintf("sim: bounded crash rate %v must be > 0", rate))
	}
	if !(maxValue > market.StartPrice) {
		panic(fmt.Sprintf("sim: bounded crash max %v must exceed start price", maxValue))
	}

	return func(rng Source) market.Price {
		u := rng.ExpFloat64() / rate
		for u > 1 {
			u = rng.ExpFloat64() / rate
		}

		p := market.LogInterpolate(u, market.StartPrice, maxValue)
		if p < market.StartPrice || p > maxValue*(1+1e-12) {
			panic(fmt.Sprintf("sim: bounded crash %v outside [%v, %v]", p, market.StartPrice, maxValue))
		}
		return math.Min(p, maxValue)
	}
}

// UniformSell draws a sell fraction uniformly from [0,1).
func UniformSell() SellDist {
	return func(rng Source) float64 {
		return rng.Float64()
	}
}

// UniformSellRange draws a sell fraction uniformly from [lo,hi).
func UniformSellRange(lo, hi float64) SellDist {
	return func(rng Source) float64 {
		return lo + (hi-lo)*rng.Float64()
	}
}

// FixedSell always returns f. It does not consume randomness.
func FixedSell(f float64) SellDist {
	return func(Source) float64 {
		return f
	}
}

// SurvivalProbability is the chance that the price holds at crashPoint.
// Crash points are normalized on a log scale across [StartPrice, maxValue]
// and passed through a reversed smoothstep, so early peaks are likely to
// hold and peaks near maxValue almost always collapse. The result is always
// in [0.05, 0.95].
func SurvivalProbability(crashPoint, maxValue market.Price) float64 {
	x := market.LogNormalize(crashPoint, market.StartPrice, maxValue)
	s := x * x * (3 - 2*x)
	p := 0.05 + 0.9*(1-s)

	if !(p > 0 && p < 1) {
		panic(fmt.Sprintf("sim: survival probability %v for crash %v outside (0,1)", p, crashPoint))
	}
	return p
}

// SurvivalCurve survives with SurvivalProbability(crashPoint, maxValue).
func SurvivalCurve(maxValue market.Price) SurvivalFunc {
	if !(maxValue > market.StartPrice) {
		panic(fmt.Sprintf("sim: survival max %v must exceed start price", maxValue))
	}
	return func(rng Source, crashPoint market.Price) bool {
		return rng.Float64() < SurvivalProbability(crashPoint, maxValue)
	}
}

// FlatSurvival survives with probability p regardless of the crash point.
func FlatSurvival(p float64) SurvivalFunc {
	if !(p > 0 && p < 1) {
		panic(fmt.Sprintf("sim: survival probability %v outside (0,1)", p))
	}
	return func(rng Source, _ market.Price) bool {
		return rng.Float64() < p
	}
}
