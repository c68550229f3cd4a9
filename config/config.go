package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tranche/market"
)

// Config represents a complete set of experiments and where their output goes
type Config struct {
	OutputDir   string        `json:"output_dir" yaml:"output_dir"`
	Journal     JournalConfig `json:"journal" yaml:"journal"`
	Plot        PlotConfig    `json:"plot" yaml:"plot"`
	MetricsFile string        `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	Experiments []Experiment  `json:"experiments" yaml:"experiments"`
}

// JournalConfig contains run journaling parameters
type JournalConfig struct {
	Type     string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	RunsFile string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	DBPath   string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// PlotConfig describes the external plotting program. It is invoked as
// <command> <script> <ideal.csv> <real.csv> <out.png>.
type PlotConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	Script  string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Experiment is one ideal-vs-real comparison.
type Experiment struct {
	Name   string `json:"name" yaml:"name"`
	Seed   int64  `json:"seed" yaml:"seed"`
	Trials int    `json:"trials" yaml:"trials"`

	Crash    CrashConfig    `json:"crash" yaml:"crash"`
	Sell     SellConfig     `json:"sell" yaml:"sell"`
	Survival SurvivalConfig `json:"survival" yaml:"survival"`

	SellMultiplier  float64 `json:"sell_multiplier" yaml:"sell_multiplier"`
	TransactionCost float64 `json:"transaction_cost" yaml:"transaction_cost"`

	// Paired reseeds the source before the real run so both runs see the
	// same crash points and sell fractions.
	Paired bool `json:"paired,omitempty" yaml:"paired,omitempty"`

	PlotFile string `json:"plot_file,omitempty" yaml:"plot_file,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension).
// Unknown keys are rejected so a misspelled field cannot silently fall back
// to its default.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if yerr := decodeYAML(data, cfg); yerr != nil {
		cfg = &Config{}
		if jerr := decodeJSON(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config: %w", yerr)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyDefaults fills in fields a config file may leave out. Seed and
// transaction cost are never defaulted: zero is a meaningful value for both.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Journal.Type == "" {
		c.Journal.Type = "csv"
	}
	if c.Journal.Type == "csv" && c.Journal.RunsFile == "" {
		c.Journal.RunsFile = filepath.Join(c.OutputDir, "runs.csv")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		c.Journal.DBPath = filepath.Join(c.OutputDir, "tranche.sqlite")
	}
	if c.Plot.Command == "" {
		c.Plot.Command = "Rscript"
	}
	if c.Plot.Script == "" {
		c.Plot.Script = "plot.R"
	}

	for i := range c.Experiments {
		e := &c.Experiments[i]
		if e.Trials == 0 {
			e.Trials = 600
		}
		if e.SellMultiplier == 0 {
			e.SellMultiplier = market.DefaultSellMultiplier
		}
		if e.Crash.Lambda == 0 && (e.Crash.Kind == CrashNormal || e.Crash.Kind == CrashExponential) {
			e.Crash.Lambda = market.DefaultLambda
		}
		if e.Crash.Kind == CrashBounded {
			if e.Crash.Rate == 0 {
				e.Crash.Rate = 1
			}
			if e.Crash.MaxValue == 0 {
				e.Crash.MaxValue = market.DefaultMaxValue
			}
		}
		if e.Sell.Kind == "" {
			e.Sell.Kind = SellUniform
		}
		if e.Survival.Kind == "" {
			e.Survival.Kind = SurvivalNone
		}
		if e.Survival.Kind == SurvivalCurve && e.Survival.MaxValue == 0 {
			e.Survival.MaxValue = market.DefaultMaxValue
		}
		if e.PlotFile == "" && e.Name != "" {
			e.PlotFile = "plot_" + e.Name + ".png"
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.RunsFile == "" {
			return fmt.Errorf("journal runs_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if c.Plot.Enabled && c.Plot.Command == "" {
		return fmt.Errorf("plot.command is required when plotting is enabled")
	}
	if len(c.Experiments) == 0 {
		return fmt.Errorf("at least one experiment is required")
	}

	seen := map[string]bool{}
	for i, e := range c.Experiments {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("experiments[%d]: %w", i, err)
		}
		if seen[e.Name] {
			return fmt.Errorf("experiments[%d]: duplicate name %q", i, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Validate checks one experiment.
func (e *Experiment) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(e.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", e.Name)
	}
	if strings.ContainsAny(e.PlotFile, `/\`) || e.PlotFile == "." || e.PlotFile == ".." {
		return fmt.Errorf("plot_file %q must not contain path separators", e.PlotFile)
	}
	if e.Trials <= 0 {
		return fmt.Errorf("trials must be positive")
	}
	if err := checkFinite(field{"sell_multiplier", e.SellMultiplier}, field{"transaction_cost", e.TransactionCost}); err != nil {
		return err
	}
	if !(e.SellMultiplier > 1) {
		return fmt.Errorf("sell_multiplier must be greater than 1")
	}
	if e.TransactionCost < 0 || e.TransactionCost >= 1 {
		return fmt.Errorf("transaction_cost must be in [0, 1)")
	}
	if err := e.Crash.Validate(); err != nil {
		return fmt.Errorf("crash: %w", err)
	}
	if err := e.Sell.Validate(); err != nil {
		return fmt.Errorf("sell: %w", err)
	}
	if err := e.Survival.Validate(); err != nil {
		return fmt.Errorf("survival: %w", err)
	}
	return nil
}

// Find returns the experiment with the given name.
func (c *Config) Find(name string) (Experiment, bool) {
	for _, e := range c.Experiments {
		if e.Name == name {
			return e, true
		}
	}
	return Experiment{}, false
}

// Default returns the three reference experiments: a normal crash distribution
// selling at every doubling, the same at every 20% rise, and an exponential
// crash distribution selling at every doubling.
func Default() *Config {
	base := Experiment{
		Seed:            11,
		Trials:          600,
		Sell:            SellConfig{Kind: SellUniform},
		Survival:        SurvivalConfig{Kind: SurvivalNone},
		SellMultiplier:  market.DefaultSellMultiplier,
		TransactionCost: market.DefaultTransactionCost,
	}

	normal := base
	normal.Name = "normal"
	normal.Crash = CrashConfig{Kind: CrashNormal, Lambda: market.DefaultLambda}
	normal.PlotFile = "plot_normal.png"

	normal12 := normal
	normal12.Name = "normal_1_2"
	normal12.SellMultiplier = 1.2
	normal12.PlotFile = "plot_normal_1_2.png"

	exponential := base
	exponential.Name = "exponential"
	exponential.Crash = CrashConfig{Kind: CrashExponential, Lambda: market.DefaultLambda}
	exponential.PlotFile = "plot_exponential.png"

	return &Config{
		OutputDir: "./out",
		Journal: JournalConfig{
			Type:     "csv",
			RunsFile: "./out/runs.csv",
		},
		Plot: PlotConfig{
			Enabled: true,
			Command: "Rscript",
			Script:  "plot.R",
		},
		Experiments: []Experiment{normal, normal12, exponential},
	}
}
