package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/tranche/sim"
)

// RunsHeader is the column layout of the CSV run index.
var RunsHeader = []string{
	"run_id", "experiment", "label", "created", "seed", "trials",
	"crash_dist", "sell_dist", "survival_dist", "transaction_cost", "sell_multiplier",
	"mean", "stddev", "below_start", "min", "max", "median",
	"csv_path", "plot_png", "plot_error",
}

// CSVJournal appends one summary row per run to an index file. Outcomes
// themselves live in the per-run fraction,money files.
type CSVJournal struct {
	runs *csv.Writer
	rf   *os.File
}

// NewCSV opens (or creates) the run index at path. The header is written
// only when the file is new or empty.
func NewCSV(path string) (*CSVJournal, error) {
	needHeader := false
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		needHeader = true
	} else if err != nil {
		return nil, err
	} else if st.Size() == 0 {
		needHeader = true
	}

	rf, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(rf)
	if needHeader {
		if err := w.Write(RunsHeader); err != nil {
			rf.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			rf.Close()
			return nil, err
		}
	}

	return &CSVJournal{runs: w, rf: rf}, nil
}

func (j *CSVJournal) RecordRun(ctx context.Context, r RunRecord, _ []sim.Outcome) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Experiment,
		r.Label,
		r.Created.UTC().Format(time.RFC3339),
		strconv.FormatInt(r.Seed, 10),
		strconv.Itoa(r.Trials),
		r.CrashDist,
		r.SellDist,
		r.SurvivalDist,
		f(r.TransactionCost),
		f(r.SellMultiplier),
		f(r.Mean),
		f(r.StdDev),
		f(r.BelowStart),
		f(r.Min),
		f(r.Max),
		f(r.Median),
		r.CSVPath,
		r.PlotPNG,
		r.PlotError,
	})
	if err != nil {
		return err
	}

	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	return j.rf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
