package sim

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tranche/market"
)

// Account is one simulated holder working down a sell schedule.
// Holdings are a fraction of the original position, Cash is in USD.
type Account struct {
	ThresholdPrice  market.Price
	Holdings        float64
	Cash            float64
	SellFraction    float64
	SellMultiplier  float64
	TransactionCost float64

	Steps int // steps that advanced the threshold
	Sales int // steps that actually sold
}

// NewAccount returns an account at StartPrice holding the full position.
// It panics on parameters that would break the schedule: the caller is
// expected to have validated its configuration.
func NewAccount(sellFraction, sellMultiplier, transactionCost float64) *Account {
	if !(sellFraction >= 0 && sellFraction <= 1) {
		panic(fmt.Sprintf("sim: sell fraction %v outside [0,1]", sellFraction))
	}
	if !(sellMultiplier > 1) || math.IsInf(sellMultiplier, 1) {
		panic(fmt.Sprintf("sim: sell multiplier %v must be > 1", sellMultiplier))
	}
	if !(transactionCost >= 0 && transactionCost < 1) {
		panic(fmt.Sprintf("sim: transaction cost %v outside [0,1)", transactionCost))
	}

	return &Account{
		ThresholdPrice:  market.StartPrice,
		Holdings:        1.0,
		SellFraction:    sellFraction,
		SellMultiplier:  sellMultiplier,
		TransactionCost: transactionCost,
	}
}

// Step advances the schedule by one trigger. It returns false, leaving the
// account untouched, once the next trigger would be above crashPoint. A NaN
// crash point or a trigger that overflows to +Inf also ends the schedule.
//
// When holdings can no longer cover the fee the threshold still advances but
// nothing is sold.
func (a *Account) Step(crashPoint market.Price) bool {
	next := a.ThresholdPrice * a.SellMultiplier
	if !(next <= crashPoint) || math.IsInf(next, 1) {
		return false
	}

	a.ThresholdPrice = next
	a.Steps++

	if a.Holdings > a.TransactionCost {
		a.Holdings -= a.TransactionCost
		a.Cash += a.Holdings * a.SellFraction * a.ThresholdPrice
		a.Holdings *= 1 - a.SellFraction
		a.Sales++
	}

	return true
}

// Run steps the account until the schedule reaches crashPoint.
func (a *Account) Run(crashPoint market.Price) {
	for a.Step(crashPoint) {
	}
}

// Value is the residual holdings priced at p.
func (a *Account) Value(p market.Price) float64 {
	return a.Holdings * p
}
