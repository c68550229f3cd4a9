package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, RunsHeader, rows[0])
}

func TestCSVJournalRecordRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	run := sampleRun("R1", "normal", "real", created)
	run.PlotPNG = "plot_normal.png"

	require.NoError(t, j.RecordRun(context.Background(), run, sampleOutcomes()))
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 2)

	want := []string{
		"R1",
		"normal",
		"real",
		created.Format(time.RFC3339),
		"11",
		"3",
		"normal(spread=90000)",
		"uniform",
		"",
		"0.005000",
		"2.000000",
		"21000.500000",
		"1234.500000",
		"0.250000",
		"0.000000",
		"40000.000000",
		"20000.000000",
		"/tmp/out.csv",
		"plot_normal.png",
		"",
	}
	assert.Equal(t, want, rows[1])
}

func TestCSVJournalAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.csv")
	ctx := context.Background()

	for _, id := range []string{"R1", "R2"} {
		j, err := NewCSV(path)
		require.NoError(t, err)
		require.NoError(t, j.RecordRun(ctx, sampleRun(id, "normal", "real", time.Now()), nil))
		require.NoError(t, j.Close())
	}

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, RunsHeader, rows[0])
	assert.Equal(t, "R1", rows[1][0])
	assert.Equal(t, "R2", rows[2][0])
}

func TestNopJournal(t *testing.T) {
	t.Parallel()

	var j Journal = NopJournal{}
	assert.NoError(t, j.RecordRun(context.Background(), RunRecord{}, sampleOutcomes()))
	assert.NoError(t, j.Close())
}
