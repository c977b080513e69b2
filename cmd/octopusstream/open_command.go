package main

import (
	"github.com/spf13/cobra"

	"octopusstream/pkg/assembler"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var flags openFlags

	cmd := &cobra.Command{
		Use:   "open <header.dth>",
		Short: "Assemble a stream and show its metadata",
		Long: "Reads every chunk of the stream the header belongs to, in sequence order, " +
			"stopping at the first chunk whose data file is missing.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			flags.path = args[0]
			fe := newCLIFrontend(cfg, flags, logger, cmd.InOrStdin(), cmd.OutOrStdout())
			return assembler.NewAssembler(logger).Run(cmd.Context(), fe)
		},
	}

	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "Stack title (default: file stem)")
	cmd.Flags().IntVar(&flags.start, "start", 0, "First chunk position to import (1-based)")
	cmd.Flags().IntVar(&flags.end, "end", 0, "Last chunk position to import (1-based)")
	cmd.Flags().IntVar(&flags.frameCap, "frame-cap", -1, "Maximum frames to import, 0 for no limit (default from config)")
	cmd.Flags().BoolVar(&flags.noHeaders, "no-headers", false, "Skip per-frame header metadata")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Continue without asking when the import is large")
	cmd.Flags().StringVar(&flags.framesDir, "frames-dir", "", "Write every frame as a 16-bit PNG to this directory")
	cmd.Flags().StringVar(&flags.projection, "projection", "", "Write a max, min or mean projection over time")
	cmd.Flags().StringVar(&flags.tableStyle, "table", "", "Metadata output: table, csv or none (default from config)")
	cmd.Flags().StringVar(&flags.csvPath, "csv", "", "Write the metadata table to a CSV file")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "Store the metadata table in a SQLite database")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "Add per-frame intensity statistics to the table")

	return cmd
}
