package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jalad-shrimali/cml-linker/config"
	"github.com/jalad-shrimali/cml-linker/output"
	"github.com/jalad-shrimali/cml-linker/pipeline"
)

type BatchCmd struct{}

func NewBatchCmd() *BatchCmd {
	return &BatchCmd{}
}

var batchFlags = append([]flagTarget{
	stringFlag("metadata-dir", func(c *config.Config) *string { return &c.Input.MetadataDir }),
}, commonFlags...)

func (c *BatchCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every metadata spreadsheet of a directory against one telemetry load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, batchFlags)
			if err != nil {
				return err
			}
			opts, err := pipelineOptions(cfg, log)
			if err != nil {
				return err
			}
			open, err := openFunc(cfg)
			if err != nil {
				return err
			}

			results, err := pipeline.RunBatch(opts, cfg.Input.MetadataDir, open)
			if cfg.Stages.Availability {
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", r.MetadataFile, r.Dir)
					output.PrintSummary(cmd.OutOrStdout(), r.Report.Relevant)
				}
			}
			return err
		},
	}

	addCommonFlags(cmd)
	cmd.Flags().String("metadata-dir", "", "directory of metadata spreadsheets")

	return cmd
}
