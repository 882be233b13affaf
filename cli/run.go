package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jalad-shrimali/cml-linker/config"
	"github.com/jalad-shrimali/cml-linker/output"
	"github.com/jalad-shrimali/cml-linker/pipeline"
)

type RunCmd struct{}

func NewRunCmd() *RunCmd {
	return &RunCmd{}
}

var runFlags = append([]flagTarget{
	stringFlag("metadata", func(c *config.Config) *string { return &c.Input.Metadata }),
	boolFlag("skip-metadata", func(c *config.Config) *bool { return &c.Stages.Metadata }, true),
	boolFlag("skip-rawdata", func(c *config.Config) *bool { return &c.Stages.Rawdata }, true),
	boolFlag("skip-availability", func(c *config.Config) *bool { return &c.Stages.Availability }, true),
}, commonFlags...)

func (c *RunCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one metadata file against a telemetry directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, runFlags)
			if err != nil {
				return err
			}
			opts, err := pipelineOptions(cfg, log)
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			open, err := openFunc(cfg)
			if err != nil {
				return err
			}

			dir, err := open()
			if err != nil {
				return err
			}
			res, err := pipeline.Run(opts, dir)
			if cerr := dir.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("closing outputs: %w", cerr)
			}
			if err != nil {
				return err
			}

			log.Info("all outputs were generated", "dir", dir.Path)
			if cfg.Stages.Availability {
				output.PrintSummary(cmd.OutOrStdout(), res.Report.Relevant)
			}
			return nil
		},
	}

	addCommonFlags(cmd)
	cmd.Flags().String("metadata", "", "metadata spreadsheet or csv")
	cmd.Flags().Bool("skip-metadata", false, "do not process the metadata")
	cmd.Flags().Bool("skip-rawdata", false, "do not process the raw telemetry")
	cmd.Flags().Bool("skip-availability", false, "do not cross-reference telemetry and metadata")

	return cmd
}
