package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"
)

// ExperimentReport pairs the ideal (fee-free) and real runs of one experiment.
type ExperimentReport struct {
	Experiment string
	Created    time.Time
	Ideal      RunRecord
	Real       RunRecord
	FeeDrag    float64
	Paired     bool

	OrgPath string
	Notes   []string
}

var experimentOrgFuncs = template.FuncMap{
	"pct": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"orNone": orNone,
}

// RenderExperimentOrg renders the report as an Org-mode document.
func RenderExperimentOrg(rep ExperimentReport) (string, error) {
	t, err := template.New("experiment").Funcs(experimentOrgFuncs).Parse(ExperimentOrgTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, rep); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// WriteExperimentOrg renders the report to rep.OrgPath.
func WriteExperimentOrg(rep ExperimentReport) error {
	if rep.OrgPath == "" {
		return fmt.Errorf("report has no org path")
	}
	s, err := RenderExperimentOrg(rep)
	if err != nil {
		return err
	}
	return os.WriteFile(rep.OrgPath, []byte(s), 0644)
}

const ExperimentOrgTemplate = `
* EXPERIMENT: {{.Experiment}}
:PROPERTIES:
:IDEAL_RUN:   {{if .Ideal.RunID}}{{.Ideal.RunID}}{{else}}(run-id?){{end}}
:REAL_RUN:    {{if .Real.RunID}}{{.Real.RunID}}{{else}}(run-id?){{end}}
:SEED:        {{.Real.Seed}}
:TRIALS:      {{.Real.Trials}}
:PAIRED:      {{.Paired}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Parameters
| Parameter        | Value |
|------------------+-------|
| Crash            | {{.Real.CrashDist}} |
| Sell fraction    | {{.Real.SellDist}} |
| Survival         | {{orNone .Real.SurvivalDist}} |
| Sell multiplier  | {{printf "%.2f" .Real.SellMultiplier}} |
| Transaction cost | {{printf "%.2f" (pct .Real.TransactionCost)}}% |

** Results
| Run   |       Mean |     StdDev |     Median | Below start |
|-------+------------+------------+------------+-------------|
| ideal | {{printf "%10.2f" .Ideal.Mean}} | {{printf "%10.2f" .Ideal.StdDev}} | {{printf "%10.2f" .Ideal.Median}} | {{printf "%10.2f" (pct .Ideal.BelowStart)}}% |
| real  | {{printf "%10.2f" .Real.Mean}} | {{printf "%10.2f" .Real.StdDev}} | {{printf "%10.2f" .Real.Median}} | {{printf "%10.2f" (pct .Real.BelowStart)}}% |

- Fee drag (mean): *{{printf "%.2f" .FeeDrag}}*

** Plot
{{- if .Real.PlotPNG }}
[[file:{{.Real.PlotPNG}}]]
{{- else }}
# (no plot produced)
{{- end }}
{{- if .Real.PlotError }}
# plot failed: {{.Real.PlotError}}
{{- end }}

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
