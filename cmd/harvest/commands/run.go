package commands

import (
	"fmt"

	"plugin-harvester/cmd/harvest/globals"

	"github.com/spf13/cobra"
)

func init() {
	bindCrawlFlags(runCmd)
	bindDirFlag(runCmd)
	bindOutputFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawls the marketplace and then transforms the snapshots.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		applyFlags(cmd, &g.Config)

		_, err := crawl(cmd.Context(), g)
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		_, err = transform(cmd.Context(), g)
		if err != nil {
			return fmt.Errorf("transform failed: %w", err)
		}
		return nil
	},
}
