package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tranche",
	Short: "Monte Carlo study of staged-selling strategies for an appreciating asset",
	Long: `Tranche simulates a population of accounts that each hold one unit of an
asset bought at $10,000 and sell a fraction of their holdings every time the
price multiplies, until the price crashes to zero at a random level.

It provides tools for:
  - Running configured ideal-vs-real experiments
  - Ad-hoc population runs with CSV output
  - Journaling runs to CSV or SQLite
  - Summarizing outcome files`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel string
	logJSON  bool

	logger = slog.Default()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON instead of text")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = newLogger(cmd.ErrOrStderr(), level, logJSON)
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func newLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
