// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fork-report <organization> <most-forked-count> <top-contributors-count>",
		Short: "Reports an organization's most forked repositories and their top contributors.",
		Long: `fork-report lists the repositories of a GitHub organization, ranks them by
fork count and, for the most forked ones, records the top contributors together
with their follower counts.

Two semicolon-delimited files are written: <organization>_repos.csv is replaced
on every run, while rows are appended to <organization>_users.csv so repeated
runs accumulate history.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runReport,
	}
	rootCmd.SetFlagErrorFunc(countFlagError)

	rootCmd.Flags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.Flags().StringP("out-dir", "d", "", "Directory for the report files (default $FORK_REPORT_OUT_DIR or the working directory)")
	rootCmd.Flags().String("base-url", "", "GitHub REST API URL (default $GITHUB_API_URL or https://api.github.com/)")
	rootCmd.Flags().Bool("graphql-followers", false, "Read follower totals through the GraphQL API (requires GITHUB_TOKEN)")
	rootCmd.Flags().Bool("wait-rate-limit", false, "Sleep through GitHub secondary rate limits instead of failing")
	return rootCmd
}

// Execute builds the root command and runs it with the process arguments.
// This is called by main.main(). Any error is reported as a single line.
func Execute() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), describe(err))
		os.Exit(1)
	}
}
