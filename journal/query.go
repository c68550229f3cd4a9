package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/tranche/sim"
)

const runColumns = `run_id, experiment, label, created, seed, trials, crash_dist, sell_dist, survival_dist,
	transaction_cost, sell_multiplier, mean, stddev, below_start, min, max, median,
	csv_path, plot_png, plot_error`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID,
		&r.Experiment,
		&r.Label,
		&r.Created,
		&r.Seed,
		&r.Trials,
		&r.CrashDist,
		&r.SellDist,
		&r.SurvivalDist,
		&r.TransactionCost,
		&r.SellMultiplier,
		&r.Mean,
		&r.StdDev,
		&r.BelowStart,
		&r.Min,
		&r.Max,
		&r.Median,
		&r.CSVPath,
		&r.PlotPNG,
		&r.PlotError,
	)
	return r, err
}

// GetRun returns a single run by ID.
func (j *SQLiteJournal) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns runs for experiment in creation order, or every run when
// experiment is empty.
func (j *SQLiteJournal) ListRuns(ctx context.Context, experiment string) ([]RunRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if experiment == "" {
		rows, err = j.db.QueryContext(ctx, `
			SELECT `+runColumns+` FROM runs
			ORDER BY created ASC, run_id ASC`)
	} else {
		rows, err = j.db.QueryContext(ctx, `
			SELECT `+runColumns+` FROM runs
			WHERE experiment = ?
			ORDER BY created ASC, run_id ASC`, experiment)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOutcomesByRunID returns the outcomes of a run in trial order.
func (j *SQLiteJournal) ListOutcomesByRunID(ctx context.Context, runID string) ([]sim.Outcome, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trial, fraction, money, crash_point, holdings, steps, sales, survived
		FROM outcomes
		WHERE run_id = ?
		ORDER BY trial ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.Outcome
	for rows.Next() {
		var o sim.Outcome
		if err := rows.Scan(
			&o.Trial,
			&o.SellFraction,
			&o.FinalMoney,
			&o.CrashPoint,
			&o.Holdings,
			&o.Steps,
			&o.Sales,
			&o.Survived,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
