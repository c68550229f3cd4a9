package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tranche/config"
	"github.com/rustyeddy/tranche/experiment"
	"github.com/rustyeddy/tranche/journal"
	"github.com/rustyeddy/tranche/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run experiments from a config file",
	Long: `Run every experiment in a configuration file. Each experiment simulates
a fee-free (ideal) population and a population paying the transaction cost
(real), writes both outcome files, plots them, and journals both runs.

Example:
  tranche run -f experiments.yaml
  tranche run -f experiments.yaml --only normal --no-plot`,
	RunE: runRun,
}

var (
	runConfigPath string
	runOnly       string
	runNoPlot     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "file", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runOnly, "only", "", "run only the named experiment")
	runCmd.Flags().BoolVar(&runNoPlot, "no-plot", false, "skip plotting")
	runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	exps := cfg.Experiments
	if runOnly != "" {
		e, ok := cfg.Find(runOnly)
		if !ok {
			return fmt.Errorf("no experiment named %q in %s", runOnly, runConfigPath)
		}
		exps = []config.Experiment{e}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	var plotter experiment.Plotter = experiment.NoopPlotter{}
	if cfg.Plot.Enabled && !runNoPlot {
		plotter = experiment.RscriptPlotter{Command: cfg.Plot.Command, Script: cfg.Plot.Script}
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	runner := &experiment.Runner{
		OutputDir: cfg.OutputDir,
		Journal:   j,
		Plotter:   plotter,
		Metrics:   m,
		Logger:    logger,
		WriteOrg:  true,
	}

	logger.Info("running experiments", "config", runConfigPath, "count", len(exps))

	results, err := runner.RunAll(cmd.Context(), exps)
	for _, res := range results {
		experiment.PrintResult(cmd.OutOrStdout(), res)
	}
	if err != nil {
		return err
	}

	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("metrics written", "path", cfg.MetricsFile)
	}
	return nil
}

// openJournal builds the journal selected by the config.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		if err := os.MkdirAll(filepath.Dir(jc.RunsFile), 0755); err != nil {
			return nil, err
		}
		return journal.NewCSV(jc.RunsFile)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(jc.DBPath), 0755); err != nil {
			return nil, err
		}
		return journal.NewSQLite(jc.DBPath)
	case "none":
		return journal.NopJournal{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}
