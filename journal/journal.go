package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/tranche/sim"
)

// ErrRunNotFound is returned by lookups for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord describes one population run: its parameters and the summary of
// its outcomes.
type RunRecord struct {
	RunID      string
	Experiment string
	Label      string // "ideal" or "real"
	Created    time.Time

	Seed            int64
	Trials          int
	CrashDist       string
	SellDist        string
	SurvivalDist    string
	TransactionCost float64
	SellMultiplier  float64

	Mean       float64
	StdDev     float64
	BelowStart float64
	Min        float64
	Max        float64
	Median     float64

	CSVPath   string
	PlotPNG   string
	PlotError string
}

// Journal keeps a history of runs.
type Journal interface {
	RecordRun(ctx context.Context, run RunRecord, outcomes []sim.Outcome) error
	Close() error
}

// NopJournal discards everything.
type NopJournal struct{}

func (NopJournal) RecordRun(context.Context, RunRecord, []sim.Outcome) error { return nil }
func (NopJournal) Close() error                                              { return nil }
