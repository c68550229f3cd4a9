package experiment

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/tranche/stats"
)

// PrintSummary writes the summary block for one population.
func PrintSummary(w io.Writer, title string, s stats.Summary) {
	fmt.Fprintf(w, "%s average: %.2f\n", title, s.Mean)
	fmt.Fprintf(w, "%s stdev:   %.2f\n", title, s.StdDev)
	fmt.Fprintf(w, "%s fraction < start: %.4f\n", title, s.BelowStart)
	fmt.Fprintf(w, "%s median:  %.2f  (p10 %.2f, p90 %.2f)\n", title, s.Median, s.P10, s.P90)
	fmt.Fprintf(w, "%s range:   %.2f .. %.2f over %d trials\n", title, s.Min, s.Max, s.Count)
}

// PrintResult writes the ideal-vs-real comparison for one experiment.
func PrintResult(w io.Writer, res Result) {
	e := res.Experiment

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " Experiment %s\n", e.Name)
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Created:       %s\n", res.Real.Record.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Seed:          %d\n", e.Seed)
	fmt.Fprintf(w, "Trials:        %d\n", e.Trials)
	fmt.Fprintf(w, "Crash:         %s\n", e.Crash.String())
	fmt.Fprintf(w, "Sell:          %s\n", e.Sell.String())
	if s := e.Survival.String(); s != "" {
		fmt.Fprintf(w, "Survival:      %s\n", s)
	}
	fmt.Fprintf(w, "Multiplier:    %g\n", e.SellMultiplier)
	fmt.Fprintf(w, "Cost:          %.2f%%\n", e.TransactionCost*100)
	if e.Paired {
		fmt.Fprintln(w, "Paired:        yes")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ideal (no fees)")
	fmt.Fprintln(w, "--------------------------------------------------")
	PrintSummary(w, "Ideal", res.Ideal.Summary)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Real")
	fmt.Fprintln(w, "--------------------------------------------------")
	PrintSummary(w, "Real", res.Real.Summary)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Fee drag:      %.2f\n", res.FeeDrag)
	fmt.Fprintf(w, "Ideal CSV:     %s\n", res.Ideal.Record.CSVPath)
	fmt.Fprintf(w, "Real CSV:      %s\n", res.Real.Record.CSVPath)
	if res.Real.Record.PlotPNG != "" {
		fmt.Fprintf(w, "Plot:          %s\n", res.Real.Record.PlotPNG)
	}
	if res.Real.Record.PlotError != "" {
		fmt.Fprintf(w, "Plot error:    %s\n", res.Real.Record.PlotError)
	}
	if res.OrgPath != "" {
		fmt.Fprintf(w, "Report:        %s\n", res.OrgPath)
	}
	fmt.Fprintln(w)
}
