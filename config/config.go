// Package config loads the TOML run configuration. Every section maps to a
// typed struct; values absent from the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/jalad-shrimali/cml-linker/geo"
)

type Config struct {
	Input     InputConfig     `toml:"input"`
	Output    OutputConfig    `toml:"output"`
	Stages    StagesConfig    `toml:"stages"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Metadata  MetadataConfig  `toml:"metadata"`
	Logging   LoggingConfig   `toml:"logging"`
}

type InputConfig struct {
	RawdataDir        string   `toml:"rawdata_dir"`
	Metadata          string   `toml:"metadata"`
	MetadataDir       string   `toml:"metadata_dir"`
	SelectedLinks     string   `toml:"selected_links"`
	RawdataExtensions []string `toml:"rawdata_extensions"`
}

type OutputConfig struct {
	Root    string `toml:"root"`
	Prefix  string `toml:"prefix"`
	MaxDirs int    `toml:"max_dirs"`
	CSV     bool   `toml:"csv"`
	XLSX    bool   `toml:"xlsx"`
	SQLite  bool   `toml:"sqlite"`
}

// StagesConfig toggles the pipeline stages.
type StagesConfig struct {
	Metadata     bool `toml:"metadata"`
	Rawdata      bool `toml:"rawdata"`
	Availability bool `toml:"availability"`
}

type TelemetryConfig struct {
	// Interval in minutes; rows at any other interval are dropped.
	Interval float64 `toml:"interval"`
}

type MetadataConfig struct {
	Provider   string `toml:"provider"`
	Projection string `toml:"projection"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Input: InputConfig{
			RawdataDir:        "raw",
			Metadata:          "metadata/New_Celltable_final_converted.xls",
			MetadataDir:       "metadata",
			RawdataExtensions: []string{".txt"},
		},
		Output: OutputConfig{
			Root:    ".",
			Prefix:  "output_",
			MaxDirs: 1000,
			CSV:     true,
		},
		Stages: StagesConfig{
			Metadata:     true,
			Rawdata:      true,
			Availability: true,
		},
		Telemetry: TelemetryConfig{Interval: 15},
		Metadata: MetadataConfig{
			Provider:   "cellcom",
			Projection: "EPSG:2039",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the TOML file at path on top of the defaults and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the constraints of a loaded or flag-modified config.
func (c Config) Validate() error {
	if c.Output.Root == "" {
		return errors.New("output.root must not be empty")
	}
	if c.Output.MaxDirs < 1 {
		return errors.New("output.max_dirs must be >= 1")
	}
	if !c.Output.CSV && !c.Output.XLSX && !c.Output.SQLite {
		return errors.New("output: at least one of csv, xlsx, sqlite must be enabled")
	}
	if c.Telemetry.Interval <= 0 {
		return errors.New("telemetry.interval must be > 0")
	}
	if len(c.Input.RawdataExtensions) == 0 {
		return errors.New("input.rawdata_extensions must not be empty")
	}
	if _, err := geo.Lookup(c.Metadata.Projection); err != nil {
		return fmt.Errorf("metadata.projection: %w", err)
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}
