package commands

import (
	"fmt"

	"plugin-harvester/cmd/harvest/globals"

	"github.com/spf13/cobra"
)

func init() {
	bindCrawlFlags(crawlCmd)
	bindDirFlag(crawlCmd)
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--pages <n>] [--page-size <n>] [--dir <path>]",
	Short: "Fetches listing pages from the marketplace and writes one snapshot per page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		applyFlags(cmd, &g.Config)

		_, err := crawl(cmd.Context(), g)
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		return nil
	},
}
