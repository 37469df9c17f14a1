// Package cmd provides the command-line interface for uffdcachectl.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "uffdcachectl",
	Short: "uffdcachectl demonstrates and monitors a userfaultfd-backed cache.",
	Long: `uffdcachectl builds a uffdcache.Cache over an in-memory backend and ` +
		`either runs a scripted access pattern against it ("demo") or exposes ` +
		`it for live HTTP inspection ("serve").`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "path to a .env file to load configuration from")
	rootCmd.PersistentFlags().Int("cache-size", 0, "cache size in bytes (unset uses the configured default)")
	rootCmd.PersistentFlags().Int("backend-size", 0, "backend size in bytes (unset uses the configured default)")
	rootCmd.PersistentFlags().String("event-log", "", "path to a SQLite event log (empty disables it)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable the fault engine's diagnostic log trail")
}
