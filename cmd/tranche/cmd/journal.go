package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tranche/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the run journal",
	Long: `Query and display run records from the SQLite journal.

Subcommands:
  runs     - List runs, optionally for one experiment
  show     - Show one run as an Org block
  outcomes - Print the outcomes of one run as CSV

Examples:
  tranche journal runs --experiment normal
  tranche journal show <run-id>
  tranche journal outcomes <run-id> > normal_real.csv`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journaled runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalOutcomesCmd = &cobra.Command{
	Use:   "outcomes <run-id>",
	Short: "Print the outcomes of a run as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOutcomes,
}

var (
	journalDBPath     string
	journalExperiment string
	journalOrg        bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalOutcomesCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./out/tranche.sqlite", "path to SQLite journal DB")
	journalRunsCmd.Flags().StringVar(&journalExperiment, "experiment", "", "only runs of this experiment")
	journalRunsCmd.Flags().BoolVar(&journalOrg, "org", false, "print runs as Org blocks")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context(), journalExperiment)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if journalOrg {
		fmt.Fprintln(out, journal.FormatRunsOrg(runs))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tEXPERIMENT\tLABEL\tTRIALS\tMEAN\tSTDDEV\tBELOW START")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.4f\n",
			r.RunID, r.Experiment, r.Label, r.Trials, r.Mean, r.StdDev, r.BelowStart)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRunOrg(rec))
	return nil
}

func runJournalOutcomes(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	if _, err := j.GetRun(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	outcomes, err := j.ListOutcomesByRunID(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("query outcomes: %w", err)
	}

	return journal.WriteOutcomes(cmd.OutOrStdout(), outcomes)
}
