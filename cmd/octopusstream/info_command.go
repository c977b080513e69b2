package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"octopusstream/pkg/assembler"
	"octopusstream/pkg/filename"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <header.dth>",
		Short: "Describe a stream without reading frame data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			loc, err := filename.ParseLocator(args[0])
			if err != nil {
				return err
			}
			info, err := assembler.Inspect(loc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.Summary())
			fmt.Fprintf(out, "Frames per chunk: %d\n", info.FramesPerChunk)
			fmt.Fprintf(out, "Full stream: %s\n", humanize.IBytes(info.EstimateBytes(0, 0, 0)))
			fmt.Fprintf(out, "Default import: %s (frame cap %d)\n",
				humanize.IBytes(info.EstimateBytes(cfg.Import.Start, cfg.Import.End, cfg.Import.FrameCap)),
				cfg.Import.FrameCap)
			return nil
		},
	}
}

func newChunksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chunks <header.dth>",
		Short: "List the chunk sequence numbers present for a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := filename.ParseLocator(args[0])
			if err != nil {
				return err
			}
			info, err := assembler.Inspect(loc)
			if err != nil {
				return err
			}

			rows := make([][]string, len(info.Chunks))
			for i, n := range info.Chunks {
				rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(n), loc.Stem + strconv.Itoa(n)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Position", "Chunk", "Name"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft},
			))
			if gaps := missingIndices(info.Chunks); len(gaps) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Gaps: %s\n", strings.Join(gaps, ", "))
			}
			return nil
		},
	}
}

// missingIndices lists the sequence numbers absent between the first and last chunk
func missingIndices(chunks []int) []string {
	var gaps []string
	for i := 1; i < len(chunks); i++ {
		for n := chunks[i-1] + 1; n < chunks[i]; n++ {
			gaps = append(gaps, strconv.Itoa(n))
		}
	}
	return gaps
}
