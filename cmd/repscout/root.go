package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "repscout",
	Short: "Build a contact directory of direct-sales representatives",
	Long: `repscout scrapes public sources for independent direct-sales
representatives and assembles a deduplicated contact directory.

For each configured company it tries the official representative locator
first, then falls back to web search and public social profiles. Results
are exported as JSON, CSV and a Markdown report, and can be served over a
small HTTP API.

All outbound traffic is rate limited per target. Configure per-company
budgets in companies.yaml.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .repscout.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`repscout {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags builds the flag override map handed to config.Load.
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if quiet {
		flags["log-level"] = "error"
	} else if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}
