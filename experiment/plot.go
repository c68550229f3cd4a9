package experiment

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Plotter renders the ideal and real outcome files into an image.
type Plotter interface {
	Plot(ctx context.Context, idealCSV, realCSV, pngPath string) error
}

// RscriptPlotter runs an external plotting program as
// <Command> <Script> <ideal.csv> <real.csv> <out.png>.
type RscriptPlotter struct {
	Command string
	Script  string
}

func (p RscriptPlotter) Plot(ctx context.Context, idealCSV, realCSV, pngPath string) error {
	command := p.Command
	if command == "" {
		command = "Rscript"
	}
	var args []string
	if p.Script != "" {
		args = append(args, p.Script)
	}
	args = append(args, idealCSV, realCSV, pngPath)

	cmd := exec.CommandContext(ctx, command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", command, err)
		}
		return fmt.Errorf("%s: %w: %s", command, err, msg)
	}
	return nil
}

// NoopPlotter skips plotting.
type NoopPlotter struct{}

func (NoopPlotter) Plot(context.Context, string, string, string) error { return nil }
