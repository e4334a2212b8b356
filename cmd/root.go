// Package cmd contains the site-cms command line.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "site-cms",
	Short: "Content API for the marketing and docs site",
	Long: `site-cms serves the public article API, the admin editing API and the
sitemap for the marketing site. Articles live in PostgreSQL.

Example usage:
  site-cms                     # same as "site-cms serve"
  site-cms migrate             # create or update the articles table
  site-cms hash-password       # print ADMIN_PASSWORD_HASH_B64 for a password`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the command selected by os.Args.
func Execute() error {
	return rootCmd.Execute()
}
