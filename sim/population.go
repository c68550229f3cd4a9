package sim

import (
	"context"

	"github.com/rustyeddy/tranche/market"
)

// Outcome is the result of one trial. SellFraction and FinalMoney are what
// gets written out as the fraction,money pair; the rest is kept for journaling.
type Outcome struct {
	Trial        int
	SellFraction float64
	FinalMoney   float64

	CrashPoint market.Price
	Holdings   float64
	Steps      int
	Sales      int
	Survived   bool
}

// Population draws accounts and runs each one to its crash point.
// A Population holds no run state and can be reused.
type Population struct {
	Crash           CrashDist
	Sell            SellDist
	TransactionCost float64
	SellMultiplier  float64

	// Survival is optional. When it reports true for a crash point, the
	// residual holdings are liquidated at that price.
	Survival SurvivalFunc
}

// Simulate runs n independent trials against rng and returns one outcome
// per trial, in trial order.
func (p Population) Simulate(rng Source, n int) []Outcome {
	out := make([]Outcome, 0, max(n, 0))
	p.SimulateEach(rng, n, func(o Outcome) {
		out = append(out, o)
	})
	return out
}

// SimulateEach is Simulate without collecting: fn sees every outcome as it
// is produced.
func (p Population) SimulateEach(rng Source, n int, fn func(Outcome)) {
	_ = p.SimulateEachContext(context.Background(), rng, n, fn)
}

// SimulateEachContext is SimulateEach that checks ctx before every trial
// and returns its error once it is done. Outcomes already passed to fn stay
// valid.
func (p Population) SimulateEachContext(ctx context.Context, rng Source, n int, fn func(Outcome)) error {
	multiplier := p.SellMultiplier
	if multiplier == 0 {
		multiplier = market.DefaultSellMultiplier
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		crash := p.Crash(rng)
		fraction := p.Sell(rng)

		acct := NewAccount(fraction, multiplier, p.TransactionCost)
		acct.Run(crash)

		o := Outcome{
			Trial:        i,
			SellFraction: fraction,
			FinalMoney:   acct.Cash,
			CrashPoint:   crash,
			Holdings:     acct.Holdings,
			Steps:        acct.Steps,
			Sales:        acct.Sales,
		}
		if p.Survival != nil && p.Survival(rng, crash) {
			o.Survived = true
			o.FinalMoney += acct.Value(crash)
		}

		fn(o)
	}
	return nil
}
