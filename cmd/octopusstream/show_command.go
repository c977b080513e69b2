package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"octopusstream/pkg/results"
)

func newShowCommand() *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "show <database> <import-id>",
		Short: "Show an import stored with open --db",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if style != "table" && style != "csv" {
				return fmt.Errorf("invalid table style %q (must be table or csv)", style)
			}

			exporter, err := results.OpenSQLite(args[0])
			if err != nil {
				return fmt.Errorf("open metadata database: %w", err)
			}
			defer exporter.Close()

			imp, err := exporter.GetImport(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			table, err := exporter.LoadTable(cmd.Context(), imp.ID)
			if err != nil {
				return err
			}

			chunks := make([]string, len(imp.Chunks))
			for i, c := range imp.Chunks {
				chunks[i] = strconv.Itoa(c)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Octopus (%s)\n", imp.Title)
			fmt.Fprintf(out, "%dx%dx%d (16-bit)\n", imp.Width, imp.Height, imp.Frames)
			fmt.Fprintf(out, "Source: %s\n", filepath.Join(imp.Dir, imp.Stem))
			fmt.Fprintf(out, "Chunks: %s\n", strings.Join(chunks, ", "))
			fmt.Fprintf(out, "Imported: %s\n", imp.CreatedAt.Local().Format(time.RFC3339))

			if style == "csv" {
				return table.WriteCSV(out)
			}
			fmt.Fprintln(out, table.Render("Octopus header metadata"))
			return nil
		},
	}
	cmd.Annotations = map[string]string{"skipConfigLoad": "true"}
	cmd.Flags().StringVar(&style, "table", "table", "Metadata output: table or csv")

	return cmd
}
