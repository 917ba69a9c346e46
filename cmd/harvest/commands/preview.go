package commands

import (
	"fmt"
	"log/slog"

	"plugin-harvester/cmd/harvest/globals"

	"github.com/spf13/cobra"
)

func init() {
	bindDirFlag(previewCmd)
	previewCmd.Flags().Int("limit", 20, "The number of rows to print, 0 prints every row.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [--dir <path>] [--limit <n>]",
	Short: "Prints the flattened snapshots as a table without writing anything.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		applyFlags(cmd, &g.Config)
		limit, _ := cmd.Flags().GetInt("limit")

		t, err := newTransformer(g, nil)
		if err != nil {
			return fmt.Errorf("failed to build field map: %w", err)
		}
		rows, err := t.Rows(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load snapshots: %w", err)
		}

		out := newTable()
		out.AppendHeader(headerRow(t.Fields().Names()))
		for i, r := range rows {
			if limit > 0 && i >= limit {
				break
			}
			out.AppendRow(valueRow(r))
		}
		out.Render()

		slog.Info("preview", "rows", len(rows))
		return nil
	},
}
