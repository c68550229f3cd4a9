package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	experiment TEXT NOT NULL,
	label TEXT NOT NULL,
	created DATETIME NOT NULL,
	seed INTEGER NOT NULL,
	trials INTEGER NOT NULL,
	crash_dist TEXT NOT NULL,
	sell_dist TEXT NOT NULL,
	survival_dist TEXT NOT NULL,
	transaction_cost REAL NOT NULL,
	sell_multiplier REAL NOT NULL,
	mean REAL NOT NULL,
	stddev REAL NOT NULL,
	below_start REAL NOT NULL,
	min REAL NOT NULL,
	max REAL NOT NULL,
	median REAL NOT NULL,
	csv_path TEXT NOT NULL,
	plot_png TEXT NOT NULL,
	plot_error TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	trial INTEGER NOT NULL,
	fraction REAL NOT NULL,
	money REAL NOT NULL,
	crash_point REAL NOT NULL,
	holdings REAL NOT NULL,
	steps INTEGER NOT NULL,
	sales INTEGER NOT NULL,
	survived INTEGER NOT NULL,
	PRIMARY KEY (run_id, trial)
);

CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment, created);
`
