package commands

import (
	"fmt"
	"slices"

	"plugin-harvester/cmd/harvest/globals"
	"plugin-harvester/internal/search"
	"plugin-harvester/internal/sink"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	bindDBFlags(searchCmd)
	searchCmd.Flags().Int("limit", 10, "The number of matches to print.")
	searchCmd.Flags().String("column", "name", "The column to match against.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query> [--db <dsn>] [--table <name>] [--column <name>] [--limit <n>]",
	Short: "Fuzzy searches the transformed table by plugin name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		applyFlags(cmd, &g.Config)
		limit, _ := cmd.Flags().GetInt("limit")
		column, _ := cmd.Flags().GetString("column")

		fields, err := g.Config.FieldMap()
		if err != nil {
			return fmt.Errorf("failed to build field map: %w", err)
		}
		columns := fields.Names()
		index := slices.Index(columns, column)
		if index < 0 {
			return fmt.Errorf("unknown column %q, expected one of %v", column, columns)
		}

		relational := sink.NewRelational(g.Config.Transform.DB, g.Config.Transform.Table)
		rows, err := relational.Read(cmd.Context(), columns)
		if err != nil {
			return fmt.Errorf("failed to read table: %w", err)
		}

		candidates := make([]string, len(rows))
		for i, r := range rows {
			candidates[i] = r[index]
		}
		matches := search.Rank(args[0], candidates, limit)

		out := newTable()
		out.AppendHeader(append(table.Row{"similarity"}, headerRow(columns)...))
		for _, m := range matches {
			row := table.Row{fmt.Sprintf("%.3f", m.Similarity)}
			out.AppendRow(append(row, valueRow(rows[m.Index])...))
		}
		out.Render()
		return nil
	},
}
