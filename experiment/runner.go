package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/tranche/config"
	"github.com/rustyeddy/tranche/internal/id"
	"github.com/rustyeddy/tranche/journal"
	"github.com/rustyeddy/tranche/market"
	"github.com/rustyeddy/tranche/metrics"
	"github.com/rustyeddy/tranche/sim"
	"github.com/rustyeddy/tranche/stats"
)

const (
	LabelIdeal = "ideal"
	LabelReal  = "real"
)

// Run is one population run and everything derived from it.
type Run struct {
	Record   journal.RunRecord
	Outcomes []sim.Outcome
	Summary  stats.Summary
}

// Result is the ideal-vs-real comparison for one experiment.
type Result struct {
	Experiment config.Experiment
	Ideal      Run
	Real       Run
	FeeDrag    float64
	OrgPath    string
}

// Runner runs experiments and hands their outcomes to the output side:
// outcome CSVs, the plotter, the journal, metrics and the Org report.
type Runner struct {
	OutputDir string
	Journal   journal.Journal
	Plotter   Plotter
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// WriteOrg controls the per-experiment Org report.
	WriteOrg bool

	// Now is used for run timestamps; defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// RunAll runs every experiment in order, stopping at the first error.
func (r *Runner) RunAll(ctx context.Context, exps []config.Experiment) ([]Result, error) {
	results := make([]Result, 0, len(exps))
	for _, e := range exps {
		res, err := r.RunExperiment(ctx, e)
		if err != nil {
			return results, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// RunExperiment simulates the ideal (fee-free) population and then the real
// one. Both draw from a single source seeded with e.Seed, so the real run
// continues the stream unless the experiment is paired.
func (r *Runner) RunExperiment(ctx context.Context, e config.Experiment) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := e.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid experiment: %w", err)
	}

	outDir := r.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	rng := sim.NewSource(e.Seed)
	ideal, err := r.runPopulation(ctx, e, LabelIdeal, rng, outDir)
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if e.Paired {
		rng = sim.NewSource(e.Seed)
	}
	realRun, err := r.runPopulation(ctx, e, LabelReal, rng, outDir)
	if err != nil {
		return Result{}, err
	}

	plotter := r.Plotter
	if plotter == nil {
		plotter = NoopPlotter{}
	}
	png := filepath.Join(outDir, e.PlotFile)
	if e.PlotFile == "" {
		png = filepath.Join(outDir, "plot_"+e.Name+".png")
	}
	if !isNoop(plotter) {
		if err := plotter.Plot(ctx, ideal.Record.CSVPath, realRun.Record.CSVPath, png); err != nil {
			r.logger().Warn("plot failed", "experiment", e.Name, "err", err)
			realRun.Record.PlotError = err.Error()
		} else {
			ideal.Record.PlotPNG = png
			realRun.Record.PlotPNG = png
		}
	}

	j := r.Journal
	if j == nil {
		j = journal.NopJournal{}
	}
	for _, run := range []Run{ideal, realRun} {
		if err := j.RecordRun(ctx, run.Record, run.Outcomes); err != nil {
			return Result{}, fmt.Errorf("record %s run: %w", run.Record.Label, err)
		}
		if r.Metrics != nil {
			r.Metrics.ObserveRun(run.Record)
		}
	}

	res := Result{
		Experiment: e,
		Ideal:      ideal,
		Real:       realRun,
		FeeDrag:    stats.FeeDrag(ideal.Summary, realRun.Summary),
	}

	if r.WriteOrg {
		res.OrgPath = filepath.Join(outDir, e.Name+".org")
		err := journal.WriteExperimentOrg(journal.ExperimentReport{
			Experiment: e.Name,
			Created:    realRun.Record.Created,
			Ideal:      ideal.Record,
			Real:       realRun.Record,
			FeeDrag:    res.FeeDrag,
			Paired:     e.Paired,
			OrgPath:    res.OrgPath,
		})
		if err != nil {
			return Result{}, fmt.Errorf("write org report: %w", err)
		}
	}

	return res, nil
}

func (r *Runner) runPopulation(ctx context.Context, e config.Experiment, label string, rng sim.Source, outDir string) (Run, error) {
	pop := e.Population(label == LabelIdeal)

	outcomes := make([]sim.Outcome, 0, e.Trials)
	err := pop.SimulateEachContext(ctx, rng, e.Trials, func(o sim.Outcome) {
		outcomes = append(outcomes, o)
		if r.Metrics != nil {
			r.Metrics.Observe(e.Name, label, o)
		}
	})
	if err != nil {
		return Run{}, fmt.Errorf("%s run: %w", label, err)
	}

	money := make([]float64, len(outcomes))
	for i, o := range outcomes {
		money[i] = o.FinalMoney
	}
	sum := stats.Summarize(money, market.StartPrice)

	csvPath := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", e.Name, label))
	if err := journal.WriteOutcomesFile(csvPath, outcomes); err != nil {
		return Run{}, fmt.Errorf("write %s outcomes: %w", label, err)
	}

	created := r.now()
	cost := e.TransactionCost
	if label == LabelIdeal {
		cost = 0
	}

	rec := journal.RunRecord{
		RunID:           id.At(created),
		Experiment:      e.Name,
		Label:           label,
		Created:         created,
		Seed:            e.Seed,
		Trials:          e.Trials,
		CrashDist:       e.Crash.String(),
		SellDist:        e.Sell.String(),
		SurvivalDist:    e.Survival.String(),
		TransactionCost: cost,
		SellMultiplier:  e.SellMultiplier,
		Mean:            sum.Mean,
		StdDev:          sum.StdDev,
		BelowStart:      sum.BelowStart,
		Min:             sum.Min,
		Max:             sum.Max,
		Median:          sum.Median,
		CSVPath:         csvPath,
	}

	r.logger().Info("run complete",
		"experiment", e.Name,
		"label", label,
		"run_id", rec.RunID,
		"trials", len(outcomes),
		"mean", sum.Mean,
	)

	return Run{Record: rec, Outcomes: outcomes, Summary: sum}, nil
}

func isNoop(p Plotter) bool {
	switch p.(type) {
	case NoopPlotter, *NoopPlotter:
		return true
	}
	return false
}
