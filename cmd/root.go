// Package cmd defines and implements the CLI commands for the
// trending-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trending-crawler",
		Short: "A daily snapshot scraper for the GitHub trending page.",
		Long: `trending-crawler retrieves the GitHub trending page, extracts
repository records, and persists one immutable snapshot per UTC day.
Scheduling is external: run it from cron or any job runner.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults and environment variables apply)")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
