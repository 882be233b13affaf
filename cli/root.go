// Package cli is the cmlproc command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/jalad-shrimali/cml-linker/config"
	"github.com/jalad-shrimali/cml-linker/geo"
	"github.com/jalad-shrimali/cml-linker/output"
	"github.com/jalad-shrimali/cml-linker/pipeline"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func Run() ExitCode {
	if err := NewRootCmd().Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cmlproc",
		Short:        "Link commercial microwave link telemetry with carrier metadata.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().String("config", "", "TOML config file")

	rootCmd.AddCommand(
		NewRunCmd().Command(),
		NewBatchCmd().Command(),
	)
	return rootCmd
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

/* ──────────── shared flag handling ──────────── */

// flagTarget binds a command flag to the config field it overrides.
type flagTarget struct {
	name string
	set  func(cfg *config.Config, fs flagGetter) error
}

type flagGetter interface {
	GetString(name string) (string, error)
	GetBool(name string) (bool, error)
}

func stringFlag(name string, field func(*config.Config) *string) flagTarget {
	return flagTarget{name, func(cfg *config.Config, fs flagGetter) error {
		v, err := fs.GetString(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*field(cfg) = v
		return nil
	}}
}

func boolFlag(name string, field func(*config.Config) *bool, invert bool) flagTarget {
	return flagTarget{name, func(cfg *config.Config, fs flagGetter) error {
		v, err := fs.GetBool(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*field(cfg) = v != invert
		return nil
	}}
}

var commonFlags = []flagTarget{
	stringFlag("rawdata", func(c *config.Config) *string { return &c.Input.RawdataDir }),
	stringFlag("selected-links", func(c *config.Config) *string { return &c.Input.SelectedLinks }),
	stringFlag("output", func(c *config.Config) *string { return &c.Output.Root }),
	boolFlag("xlsx", func(c *config.Config) *bool { return &c.Output.XLSX }, false),
	boolFlag("sqlite", func(c *config.Config) *bool { return &c.Output.SQLite }, false),
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("rawdata", "", "directory of raw telemetry files")
	cmd.Flags().String("selected-links", "", "file of site1-site2 links to keep")
	cmd.Flags().String("output", "", "directory the output_<N> directories are created in")
	cmd.Flags().Bool("xlsx", false, "also write links.xlsx")
	cmd.Flags().Bool("sqlite", false, "also write links.db")
}

// setup loads the config, applies the flags that were set and builds the
// logger.
func setup(cmd *cobra.Command, flags []flagTarget) (config.Config, *slog.Logger, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return cfg, nil, err
		}
	}

	for _, f := range flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if err := f.set(&cfg, cmd.Flags()); err != nil {
			return cfg, nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	level, _ := cfg.Logging.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return cfg, newLogger(cmd.ErrOrStderr(), level), nil
}

func pipelineOptions(cfg config.Config, log *slog.Logger) (pipeline.Options, error) {
	proj, err := geo.Lookup(cfg.Metadata.Projection)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Stages: pipeline.Stages{
			Metadata:     cfg.Stages.Metadata,
			Rawdata:      cfg.Stages.Rawdata,
			Availability: cfg.Stages.Availability,
		},
		MetadataPath:  cfg.Input.Metadata,
		Provider:      cfg.Metadata.Provider,
		Projection:    proj,
		RawdataDir:    cfg.Input.RawdataDir,
		Extensions:    cfg.Input.RawdataExtensions,
		Interval:      cfg.Telemetry.Interval,
		SelectedLinks: cfg.Input.SelectedLinks,
		Logger:        log,
	}, nil
}

// openFunc allocates run directories under the configured root.
func openFunc(cfg config.Config) (pipeline.OpenFunc, error) {
	root, err := filepath.Abs(cfg.Output.Root)
	if err != nil {
		return nil, err
	}
	formats := output.Formats{CSV: cfg.Output.CSV, XLSX: cfg.Output.XLSX, SQLite: cfg.Output.SQLite}
	return func() (*output.Dir, error) {
		return output.Create(root, cfg.Output.Prefix, cfg.Output.MaxDirs, formats)
	}, nil
}
