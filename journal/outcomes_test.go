package journal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tranche/market"
	"github.com/rustyeddy/tranche/sim"
)

func TestWriteOutcomes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, sampleOutcomes()))

	want := "fraction,money\n" +
		"0.5,29450\n" +
		"1,20000\n" +
		"0.25,15000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteOutcomes_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, nil))
	assert.Equal(t, "fraction,money\n", buf.String())
}

func TestOutcomesFileRoundTrip(t *testing.T) {
	t.Parallel()

	pop := sim.Population{
		Crash:           sim.NormalCrash(market.DefaultLambda - market.StartPrice),
		Sell:            sim.UniformSell(),
		TransactionCost: market.DefaultTransactionCost,
		SellMultiplier:  2,
	}
	outs := pop.Simulate(sim.NewSource(11), 100)

	path := filepath.Join(t.TempDir(), "real.csv")
	require.NoError(t, WriteOutcomesFile(path, outs))

	rows, err := ReadOutcomesFile(path)
	require.NoError(t, err)
	require.Len(t, rows, len(outs))
	for i, o := range outs {
		assert.Equal(t, o.SellFraction, rows[i].Fraction)
		assert.Equal(t, o.FinalMoney, rows[i].Money)
	}

	money := Money(rows)
	assert.Len(t, money, len(outs))
	assert.Equal(t, outs[0].FinalMoney, money[0])
}

func TestReadOutcomes_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty outcome file"},
		{"bad_header", "a,b\n1,2\n", "bad header"},
		{"short_row", "fraction,money\n0.5\n", "row 2: need 2 columns"},
		{"bad_fraction", "fraction,money\nx,2\n", "row 2: bad fraction"},
		{"bad_money", "fraction,money\n0.1,2\n0.2,y\n", "row 3: bad money"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadOutcomes(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadOutcomes_HeaderOnly(t *testing.T) {
	t.Parallel()

	rows, err := ReadOutcomes(strings.NewReader("Fraction, Money\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
