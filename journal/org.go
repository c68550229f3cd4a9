package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders a RunRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; the Notes/Review sections are left for the reader.
func FormatRunOrg(r RunRecord) string {
	heading := fmt.Sprintf("** Run: %s/%s (%s)", r.Experiment, r.Label, shortID(r.RunID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":EXPERIMENT: %s\n", r.Experiment))
	b.WriteString(fmt.Sprintf(":LABEL: %s\n", r.Label))
	b.WriteString(fmt.Sprintf(":CREATED: %s\n", r.Created.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":SEED: %d\n", r.Seed))
	b.WriteString(fmt.Sprintf(":TRIALS: %d\n", r.Trials))
	b.WriteString(fmt.Sprintf(":CRASH: %s\n", r.CrashDist))
	b.WriteString(fmt.Sprintf(":SELL: %s\n", r.SellDist))
	b.WriteString(fmt.Sprintf(":SURVIVAL: %s\n", orNone(r.SurvivalDist)))
	b.WriteString(fmt.Sprintf(":TRANSACTION_COST: %.4f\n", r.TransactionCost))
	b.WriteString(fmt.Sprintf(":SELL_MULTIPLIER: %.2f\n", r.SellMultiplier))
	b.WriteString(fmt.Sprintf(":MEAN: %.2f\n", r.Mean))
	b.WriteString(fmt.Sprintf(":STDDEV: %.2f\n", r.StdDev))
	b.WriteString(fmt.Sprintf(":BELOW_START: %.4f\n", r.BelowStart))
	if r.CSVPath != "" {
		b.WriteString(fmt.Sprintf(":CSV: %s\n", r.CSVPath))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatRunsOrg renders multiple runs separated by blank lines.
func FormatRunsOrg(runs []RunRecord) string {
	var b strings.Builder
	for i, r := range runs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRunOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
