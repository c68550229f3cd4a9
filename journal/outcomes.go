package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/tranche/sim"
)

// OutcomeHeader is the column layout the plotting script reads.
var OutcomeHeader = []string{"fraction", "money"}

// OutcomeRow is one fraction,money line.
type OutcomeRow struct {
	Fraction float64
	Money    float64
}

// WriteOutcomes writes a header row and then one row per outcome, in order.
func WriteOutcomes(w io.Writer, outcomes []sim.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutcomeHeader); err != nil {
		return err
	}
	for _, o := range outcomes {
		if err := cw.Write([]string{g(o.SellFraction), g(o.FinalMoney)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOutcomesFile creates (or truncates) path and writes outcomes to it.
func WriteOutcomesFile(path string, outcomes []sim.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOutcomes(f, outcomes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadOutcomes parses a fraction,money CSV. The header row is required.
func ReadOutcomes(r io.Reader) ([]OutcomeRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty outcome file")
	}
	if err != nil {
		return nil, err
	}
	if len(header) < 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), OutcomeHeader[0]) ||
		!strings.EqualFold(strings.TrimSpace(header[1]), OutcomeHeader[1]) {
		return nil, fmt.Errorf("bad header %v (want %v)", header, OutcomeHeader)
	}

	var out []OutcomeRow
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: need 2 columns, got %d", line, len(row))
		}

		frac, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad fraction %q: %w", line, row[0], err)
		}
		money, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad money %q: %w", line, row[1], err)
		}
		out = append(out, OutcomeRow{Fraction: frac, Money: money})
	}
}

// ReadOutcomesFile opens path and parses it with ReadOutcomes.
func ReadOutcomesFile(path string) ([]OutcomeRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadOutcomes(f)
}

// Money returns the money column.
func Money(rows []OutcomeRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Money
	}
	return out
}

// shortest representation that parses back to the same float64
func g(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
