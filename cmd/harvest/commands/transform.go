package commands

import (
	"fmt"

	"plugin-harvester/cmd/harvest/globals"

	"github.com/spf13/cobra"
)

func init() {
	bindDirFlag(transformCmd)
	bindOutputFlags(transformCmd)
	rootCmd.AddCommand(transformCmd)
}

var transformCmd = &cobra.Command{
	Use:   "transform [--dir <path>] [--csv <path>] [--db <dsn>] [--table <name>]",
	Short: "Flattens every snapshot into a CSV file and a database table.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		applyFlags(cmd, &g.Config)

		_, err := transform(cmd.Context(), g)
		if err != nil {
			return fmt.Errorf("transform failed: %w", err)
		}
		return nil
	},
}
