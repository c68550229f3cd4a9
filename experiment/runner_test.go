package experiment

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tranche/config"
	"github.com/rustyeddy/tranche/journal"
	"github.com/rustyeddy/tranche/metrics"
)

type plotCall struct {
	ideal, real, png string
}

type fakePlotter struct {
	calls []plotCall
	err   error
}

func (p *fakePlotter) Plot(_ context.Context, idealCSV, realCSV, pngPath string) error {
	p.calls = append(p.calls, plotCall{idealCSV, realCSV, pngPath})
	return p.err
}

func testExperiment(name string, trials int) config.Experiment {
	e := config.Default().Experiments[0]
	e.Name = name
	e.Trials = trials
	e.PlotFile = ""
	return e
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestRunExperimentWritesOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plotter := &fakePlotter{}
	r := &Runner{OutputDir: dir, Plotter: plotter, Now: fixedNow}

	res, err := r.RunExperiment(context.Background(), testExperiment("normal", 50))
	require.NoError(t, err)

	idealCSV := filepath.Join(dir, "normal_ideal.csv")
	realCSV := filepath.Join(dir, "normal_real.csv")
	png := filepath.Join(dir, "plot_normal.png")

	assert.Equal(t, idealCSV, res.Ideal.Record.CSVPath)
	assert.Equal(t, realCSV, res.Real.Record.CSVPath)

	rows, err := journal.ReadOutcomesFile(idealCSV)
	require.NoError(t, err)
	require.Len(t, rows, 50)
	for i, row := range rows {
		assert.Equal(t, res.Ideal.Outcomes[i].SellFraction, row.Fraction)
		assert.Equal(t, res.Ideal.Outcomes[i].FinalMoney, row.Money)
	}

	rows, err = journal.ReadOutcomesFile(realCSV)
	require.NoError(t, err)
	assert.Len(t, rows, 50)

	require.Len(t, plotter.calls, 1)
	assert.Equal(t, plotCall{idealCSV, realCSV, png}, plotter.calls[0])
	assert.Equal(t, png, res.Real.Record.PlotPNG)
	assert.Empty(t, res.Real.Record.PlotError)

	assert.Equal(t, 0.0, res.Ideal.Record.TransactionCost)
	assert.Equal(t, 0.005, res.Real.Record.TransactionCost)
	assert.Equal(t, LabelIdeal, res.Ideal.Record.Label)
	assert.Equal(t, LabelReal, res.Real.Record.Label)
	assert.NotEqual(t, res.Ideal.Record.RunID, res.Real.Record.RunID)
	assert.Equal(t, 50, res.Ideal.Summary.Count)
	assert.InDelta(t, res.Ideal.Summary.Mean-res.Real.Summary.Mean, res.FeeDrag, 1e-9)
	assert.Empty(t, res.OrgPath)
}

func TestRunExperimentReproducible(t *testing.T) {
	t.Parallel()

	e := testExperiment("normal", 40)

	a, err := (&Runner{OutputDir: t.TempDir()}).RunExperiment(context.Background(), e)
	require.NoError(t, err)
	b, err := (&Runner{OutputDir: t.TempDir()}).RunExperiment(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, a.Ideal.Outcomes, b.Ideal.Outcomes)
	assert.Equal(t, a.Real.Outcomes, b.Real.Outcomes)
}

func TestRunExperimentPaired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		paired bool
	}{
		{"continuing stream", false},
		{"paired", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := testExperiment("normal", 20)
			e.Paired = tt.paired

			res, err := (&Runner{OutputDir: t.TempDir()}).RunExperiment(context.Background(), e)
			require.NoError(t, err)

			same := true
			for i := range res.Ideal.Outcomes {
				if res.Ideal.Outcomes[i].CrashPoint != res.Real.Outcomes[i].CrashPoint ||
					res.Ideal.Outcomes[i].SellFraction != res.Real.Outcomes[i].SellFraction {
					same = false
					break
				}
			}
			assert.Equal(t, tt.paired, same)

			if tt.paired {
				for i := range res.Ideal.Outcomes {
					assert.GreaterOrEqual(t, res.Ideal.Outcomes[i].FinalMoney, res.Real.Outcomes[i].FinalMoney)
				}
			}
		})
	}
}

func TestRunExperimentPlotFailure(t *testing.T) {
	t.Parallel()

	plotter := &fakePlotter{err: errors.New("Rscript: exit status 1: no ggplot2")}
	r := &Runner{OutputDir: t.TempDir(), Plotter: plotter}

	res, err := r.RunExperiment(context.Background(), testExperiment("normal", 10))
	require.NoError(t, err)

	assert.Equal(t, "Rscript: exit status 1: no ggplot2", res.Real.Record.PlotError)
	assert.Empty(t, res.Real.Record.PlotPNG)
	assert.Empty(t, res.Ideal.Record.PlotPNG)
}

func TestRunExperimentNoopPlotterSkipsPlot(t *testing.T) {
	t.Parallel()

	for _, p := range []Plotter{nil, NoopPlotter{}, &NoopPlotter{}} {
		res, err := (&Runner{OutputDir: t.TempDir(), Plotter: p}).RunExperiment(context.Background(), testExperiment("normal", 5))
		require.NoError(t, err)
		assert.Empty(t, res.Ideal.Record.PlotPNG)
		assert.Empty(t, res.Real.Record.PlotPNG)
	}
}

func TestRunExperimentCustomPlotFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plotter := &fakePlotter{}
	e := testExperiment("normal", 5)
	e.PlotFile = "custom.png"

	_, err := (&Runner{OutputDir: dir, Plotter: plotter}).RunExperiment(context.Background(), e)
	require.NoError(t, err)

	require.Len(t, plotter.calls, 1)
	assert.Equal(t, filepath.Join(dir, "custom.png"), plotter.calls[0].png)
}

func TestRunExperimentJournalAndMetrics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := journal.NewSQLite(filepath.Join(dir, "tranche.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	m := metrics.New()
	r := &Runner{OutputDir: dir, Journal: j, Metrics: m, WriteOrg: true}

	res, err := r.RunExperiment(context.Background(), testExperiment("normal", 30))
	require.NoError(t, err)

	runs, err := j.ListRuns(context.Background(), "normal")
	require.NoError(t, err)
	require.Len(t, runs, 2)

	labels := map[string]bool{}
	for _, run := range runs {
		labels[run.Label] = true
	}
	assert.True(t, labels[LabelIdeal])
	assert.True(t, labels[LabelReal])

	outcomes, err := j.ListOutcomesByRunID(context.Background(), res.Real.Record.RunID)
	require.NoError(t, err)
	assert.Len(t, outcomes, 30)

	assert.Equal(t, 30.0, testutil.ToFloat64(m.Trials.WithLabelValues("normal", LabelIdeal)))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.Trials.WithLabelValues("normal", LabelReal)))
	assert.InDelta(t, res.Real.Summary.Mean, testutil.ToFloat64(m.RunMean.WithLabelValues("normal", LabelReal)), 1e-9)

	require.Equal(t, filepath.Join(dir, "normal.org"), res.OrgPath)
	org, err := os.ReadFile(res.OrgPath)
	require.NoError(t, err)
	assert.Contains(t, string(org), "normal")
}

func TestRunExperimentErrors(t *testing.T) {
	t.Parallel()

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := (&Runner{OutputDir: t.TempDir()}).RunExperiment(ctx, testExperiment("normal", 5))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("plot file outside output dir", func(t *testing.T) {
		t.Parallel()
		e := testExperiment("normal", 5)
		e.PlotFile = "../escape.png"

		_, err := (&Runner{OutputDir: t.TempDir(), Plotter: &fakePlotter{}}).RunExperiment(context.Background(), e)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path separators")
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		e := testExperiment("normal", 0)

		_, err := (&Runner{OutputDir: t.TempDir()}).RunExperiment(context.Background(), e)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trials must be positive")
	})
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exps := []config.Experiment{
		testExperiment("first", 5),
		testExperiment("second", 5),
	}

	results, err := (&Runner{OutputDir: dir}).RunAll(context.Background(), exps)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Experiment.Name)
	assert.Equal(t, "second", results[1].Experiment.Name)

	bad := testExperiment("bad", 5)
	bad.SellMultiplier = 1
	results, err = (&Runner{OutputDir: dir}).RunAll(context.Background(), append(exps[:1:1], bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experiment bad")
	assert.Len(t, results, 1)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plot.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRscriptPlotter(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		idealCSV := filepath.Join(dir, "ideal.csv")
		require.NoError(t, os.WriteFile(idealCSV, []byte("fraction,money\n"), 0644))
		png := filepath.Join(dir, "out.png")

		p := RscriptPlotter{Command: "sh", Script: writeScript(t, `cp "$1" "$3"`)}
		require.NoError(t, p.Plot(context.Background(), idealCSV, "real.csv", png))
		assert.FileExists(t, png)
	})

	t.Run("failure captures stderr", func(t *testing.T) {
		t.Parallel()
		p := RscriptPlotter{Command: "sh", Script: writeScript(t, "echo 'no ggplot2' >&2\nexit 3\n")}
		err := p.Plot(context.Background(), "a", "b", "c")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no ggplot2")
		assert.Contains(t, err.Error(), "exit status 3")
	})

	t.Run("missing command", func(t *testing.T) {
		t.Parallel()
		p := RscriptPlotter{Command: filepath.Join(t.TempDir(), "missing"), Script: "plot.R"}
		assert.Error(t, p.Plot(context.Background(), "a", "b", "c"))
	})
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	res, err := (&Runner{OutputDir: t.TempDir(), Now: fixedNow}).RunExperiment(context.Background(), testExperiment("normal", 10))
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintResult(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "Experiment normal")
	assert.Contains(t, out, "Ideal average:")
	assert.Contains(t, out, "Real fraction < start:")
	assert.Contains(t, out, "Crash:         normal(lambda=100000)")
	assert.Contains(t, out, "Fee drag:")
}
