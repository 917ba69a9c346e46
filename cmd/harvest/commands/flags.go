package commands

import (
	"plugin-harvester/internal/config"

	"github.com/spf13/cobra"
)

var defaults = config.Default()

func bindDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("dir", defaults.Crawl.Dir, "The directory holding the page snapshots.")
}

func bindCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().Int("pages", defaults.Crawl.MaxPages, "The maximum number of pages to request.")
	cmd.Flags().Int("page-size", defaults.Crawl.PageSize, "The number of plugins requested per page.")
}

func bindOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("csv", defaults.Transform.CSV, "The CSV file to write, empty to skip.")
	bindDBFlags(cmd)
}

func bindDBFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", defaults.Transform.DB, "A sqlite file or a libsql://, postgres:// or mysql:// DSN, empty to skip.")
	cmd.Flags().String("table", defaults.Transform.Table, "The table the records are written to.")
}

// applyFlags overrides the configuration with the flags the user explicitly set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("dir") != nil && flags.Changed("dir") {
		cfg.Crawl.Dir, _ = flags.GetString("dir")
	}
	if flags.Lookup("pages") != nil && flags.Changed("pages") {
		cfg.Crawl.MaxPages, _ = flags.GetInt("pages")
	}
	if flags.Lookup("page-size") != nil && flags.Changed("page-size") {
		cfg.Crawl.PageSize, _ = flags.GetInt("page-size")
	}
	if flags.Lookup("csv") != nil && flags.Changed("csv") {
		cfg.Transform.CSV, _ = flags.GetString("csv")
	}
	if flags.Lookup("db") != nil && flags.Changed("db") {
		cfg.Transform.DB, _ = flags.GetString("db")
	}
	if flags.Lookup("table") != nil && flags.Changed("table") {
		cfg.Transform.Table, _ = flags.GetString("table")
	}
}
