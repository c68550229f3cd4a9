package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tranche/experiment"
	"github.com/rustyeddy/tranche/journal"
	"github.com/rustyeddy/tranche/market"
	"github.com/rustyeddy/tranche/stats"
)

var reportCmd = &cobra.Command{
	Use:   "report <outcomes.csv>...",
	Short: "Summarize outcome CSV files",
	Long: `Read fraction,money outcome files back and print their summaries.

Example:
  tranche report out/normal_ideal.csv out/normal_real.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for i, path := range args {
		rows, err := journal.ReadOutcomesFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		experiment.PrintSummary(out, title, stats.Summarize(journal.Money(rows), market.StartPrice))
	}
	return nil
}
