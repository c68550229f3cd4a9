package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tranche/sim"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

// RecordRun stores the run and all of its outcomes in one transaction.
func (j *SQLiteJournal) RecordRun(ctx context.Context, r RunRecord, outcomes []sim.Outcome) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, experiment, label, created, seed, trials, crash_dist, sell_dist, survival_dist,
		 transaction_cost, sell_multiplier, mean, stddev, below_start, min, max, median,
		 csv_path, plot_png, plot_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Experiment, r.Label, r.Created.UTC(), r.Seed, r.Trials,
		r.CrashDist, r.SellDist, r.SurvivalDist, r.TransactionCost, r.SellMultiplier,
		r.Mean, r.StdDev, r.BelowStart, r.Min, r.Max, r.Median,
		r.CSVPath, r.PlotPNG, r.PlotError,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes
		(run_id, trial, fraction, money, crash_point, holdings, steps, sales, survived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range outcomes {
		_, err := stmt.ExecContext(ctx,
			r.RunID, o.Trial, o.SellFraction, o.FinalMoney,
			o.CrashPoint, o.Holdings, o.Steps, o.Sales, o.Survived,
		)
		if err != nil {
			return fmt.Errorf("insert outcome %d: %w", o.Trial, err)
		}
	}

	return tx.Commit()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
