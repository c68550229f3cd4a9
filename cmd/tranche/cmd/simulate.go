package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tranche/config"
	"github.com/rustyeddy/tranche/experiment"
	"github.com/rustyeddy/tranche/journal"
	"github.com/rustyeddy/tranche/market"
	"github.com/rustyeddy/tranche/sim"
	"github.com/rustyeddy/tranche/stats"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one population and write its outcomes as CSV",
	Long: `Simulate a single population without a config file. Outcomes are written
as fraction,money CSV to stdout (or -o) and the summary goes to stderr.

Examples:
  tranche simulate --trials 600 --seed 11
  tranche simulate --crash exponential --multiplier 1.2 --cost 0 -o ideal.csv
  tranche simulate --crash bounded --rate 2 --max-value 1000000 --survival curve`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

var (
	simExp    config.Experiment
	simOutput string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.StringVar(&simExp.Crash.Kind, "crash", config.CrashNormal, "crash distribution: normal|exponential|bounded")
	f.Float64Var(&simExp.Crash.Lambda, "lambda", market.DefaultLambda, "characteristic crash level for normal and exponential")
	f.Float64Var(&simExp.Crash.Rate, "rate", 1, "rate of the bounded crash distribution")
	f.Float64Var(&simExp.Crash.MaxValue, "max-value", market.DefaultMaxValue, "upper bound of the bounded crash distribution")

	f.StringVar(&simExp.Sell.Kind, "sell", config.SellUniform, "sell fraction distribution: uniform|fixed|range")
	f.Float64Var(&simExp.Sell.Fraction, "fraction", 0, "sell fraction for --sell fixed")
	f.Float64Var(&simExp.Sell.Min, "fraction-min", 0, "lower bound for --sell range")
	f.Float64Var(&simExp.Sell.Max, "fraction-max", 1, "upper bound for --sell range")

	f.StringVar(&simExp.Survival.Kind, "survival", config.SurvivalNone, "survival model: none|curve|flat")
	f.Float64Var(&simExp.Survival.Probability, "survival-p", 0, "probability for --survival flat")

	f.Float64Var(&simExp.SellMultiplier, "multiplier", market.DefaultSellMultiplier, "price multiple between sales")
	f.Float64Var(&simExp.TransactionCost, "cost", market.DefaultTransactionCost, "holdings consumed per sale")
	f.IntVar(&simExp.Trials, "trials", 600, "number of accounts")
	f.Int64Var(&simExp.Seed, "seed", 11, "random seed")

	f.StringVarP(&simOutput, "output", "o", "", "write CSV to this file instead of stdout")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	e := simExp
	e.Name = "simulate"
	if e.Survival.Kind == config.SurvivalCurve {
		e.Survival.MaxValue = e.Crash.MaxValue
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	outcomes := make([]sim.Outcome, 0, e.Trials)
	err := e.Population(false).SimulateEachContext(cmd.Context(), sim.NewSource(e.Seed), e.Trials, func(o sim.Outcome) {
		outcomes = append(outcomes, o)
	})
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if simOutput != "" {
		if err := journal.WriteOutcomesFile(simOutput, outcomes); err != nil {
			return fmt.Errorf("write outcomes: %w", err)
		}
		logger.Info("outcomes written", "path", simOutput, "trials", len(outcomes))
	} else if err := journal.WriteOutcomes(w, outcomes); err != nil {
		return fmt.Errorf("write outcomes: %w", err)
	}

	money := make([]float64, len(outcomes))
	for i, o := range outcomes {
		money[i] = o.FinalMoney
	}
	title := fmt.Sprintf("%s x%g", e.Crash.String(), e.SellMultiplier)
	experiment.PrintSummary(cmd.ErrOrStderr(), title, stats.Summarize(money, market.StartPrice))
	return nil
}

