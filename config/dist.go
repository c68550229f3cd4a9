package config

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tranche/market"
	"github.com/rustyeddy/tranche/sim"
)

const (
	CrashNormal      = "normal"
	CrashExponential = "exponential"
	CrashBounded     = "bounded"

	SellUniform = "uniform"
	SellFixed   = "fixed"
	SellRange   = "range"

	SurvivalNone  = "none"
	SurvivalCurve = "curve"
	SurvivalFlat  = "flat"
)

// CrashConfig selects the crash point distribution.
type CrashConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	// Lambda is the characteristic crash level for normal and exponential.
	Lambda float64 `json:"lambda,omitempty" yaml:"lambda,omitempty"`
	// Rate and MaxValue configure the bounded distribution.
	Rate     float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	MaxValue float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

// SellConfig selects the sell fraction distribution.
type SellConfig struct {
	Kind     string  `json:"kind" yaml:"kind"`
	Fraction float64 `json:"fraction,omitempty" yaml:"fraction,omitempty"`
	Min      float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// SurvivalConfig selects whether residual holdings can be liquidated at the crash price.
type SurvivalConfig struct {
	Kind        string  `json:"kind" yaml:"kind"`
	Probability float64 `json:"probability,omitempty" yaml:"probability,omitempty"`
	MaxValue    float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

type field struct {
	name  string
	value float64
}

// checkFinite rejects NaN and infinite values.
func checkFinite(fields ...field) error {
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be a finite number", f.name)
		}
	}
	return nil
}

func (c CrashConfig) Validate() error {
	if err := checkFinite(field{"lambda", c.Lambda}, field{"rate", c.Rate}, field{"max_value", c.MaxValue}); err != nil {
		return err
	}
	switch c.Kind {
	case CrashNormal, CrashExponential:
		if c.Lambda <= market.StartPrice {
			return fmt.Errorf("lambda must be greater than the start price (%.0f)", market.StartPrice)
		}
	case CrashBounded:
		if c.Rate <= 0 {
			return fmt.Errorf("rate must be positive")
		}
		if c.MaxValue <= market.StartPrice {
			return fmt.Errorf("max_value must be greater than the start price (%.0f)", market.StartPrice)
		}
	default:
		return fmt.Errorf("unknown kind %q (supported: normal, exponential, bounded)", c.Kind)
	}
	return nil
}

// Dist builds the distribution. The config must be valid.
func (c CrashConfig) Dist() sim.CrashDist {
	switch c.Kind {
	case CrashNormal:
		return sim.NormalCrash(c.Lambda - market.StartPrice)
	case CrashExponential:
		return sim.ExponentialCrash(c.Lambda - market.StartPrice)
	case CrashBounded:
		return sim.BoundedCrash(c.Rate, c.MaxValue)
	}
	panic(fmt.Sprintf("config: unknown crash kind %q", c.Kind))
}

func (c CrashConfig) String() string {
	switch c.Kind {
	case CrashNormal, CrashExponential:
		return fmt.Sprintf("%s(lambda=%g)", c.Kind, c.Lambda)
	case CrashBounded:
		return fmt.Sprintf("bounded(rate=%g,max=%g)", c.Rate, c.MaxValue)
	}
	return c.Kind
}

func (c SellConfig) Validate() error {
	if err := checkFinite(field{"fraction", c.Fraction}, field{"min", c.Min}, field{"max", c.Max}); err != nil {
		return err
	}
	switch c.Kind {
	case SellUniform:
	case SellFixed:
		if c.Fraction < 0 || c.Fraction > 1 {
			return fmt.Errorf("fraction must be between 0 and 1")
		}
	case SellRange:
		if c.Min < 0 || c.Max > 1 || c.Min >= c.Max {
			return fmt.Errorf("range must satisfy 0 <= min < max <= 1")
		}
	default:
		return fmt.Errorf("unknown kind %q (supported: uniform, fixed, range)", c.Kind)
	}
	return nil
}

func (c SellConfig) Dist() sim.SellDist {
	switch c.Kind {
	case SellUniform:
		return sim.UniformSell()
	case SellFixed:
		return sim.FixedSell(c.Fraction)
	case SellRange:
		return sim.UniformSellRange(c.Min, c.Max)
	}
	panic(fmt.Sprintf("config: unknown sell kind %q", c.Kind))
}

func (c SellConfig) String() string {
	switch c.Kind {
	case SellFixed:
		return fmt.Sprintf("fixed(%g)", c.Fraction)
	case SellRange:
		return fmt.Sprintf("range(%g,%g)", c.Min, c.Max)
	}
	return c.Kind
}

func (c SurvivalConfig) Validate() error {
	if err := checkFinite(field{"probability", c.Probability}, field{"max_value", c.MaxValue}); err != nil {
		return err
	}
	switch c.Kind {
	case SurvivalNone:
	case SurvivalCurve:
		if c.MaxValue <= market.StartPrice {
			return fmt.Errorf("max_value must be greater than the start price (%.0f)", market.StartPrice)
		}
	case SurvivalFlat:
		if c.Probability <= 0 || c.Probability >= 1 {
			return fmt.Errorf("probability must be strictly between 0 and 1")
		}
	default:
		return fmt.Errorf("unknown kind %q (supported: none, curve, flat)", c.Kind)
	}
	return nil
}

// Func builds the survival function, nil for "none".
func (c SurvivalConfig) Func() sim.SurvivalFunc {
	switch c.Kind {
	case SurvivalCurve:
		return sim.SurvivalCurve(c.MaxValue)
	case SurvivalFlat:
		return sim.FlatSurvival(c.Probability)
	}
	return nil
}

// String is empty when survival is disabled.
func (c SurvivalConfig) String() string {
	switch c.Kind {
	case SurvivalCurve:
		return fmt.Sprintf("curve(max=%g)", c.MaxValue)
	case SurvivalFlat:
		return fmt.Sprintf("flat(%g)", c.Probability)
	}
	return ""
}

// Population builds the experiment's population. The ideal population
// carries no transaction cost.
func (e Experiment) Population(ideal bool) sim.Population {
	cost := e.TransactionCost
	if ideal {
		cost = 0
	}
	return sim.Population{
		Crash:           e.Crash.Dist(),
		Sell:            e.Sell.Dist(),
		TransactionCost: cost,
		SellMultiplier:  e.SellMultiplier,
		Survival:        e.Survival.Func(),
	}
}
