// assetforge loads and validates game asset definitions through the
// staged readiness pipeline.
//
// Usage:
//
//	assetforge list              - List discovered asset definitions
//	assetforge load              - Run the pipeline to quiescence and report
//	assetforge watch             - Run the pipeline with a live TUI
//	assetforge runs              - Show recorded pipeline runs
//
// Global flags:
//
//	--config <path>     - Path to tool config YAML
//	--assets <dir>      - Asset definitions root (overrides config)
//	--db <path>         - Run database path (overrides config)
//	--log-level <lvl>   - Logger verbosity: debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagAssets   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "assetforge",
	Short: "Assetforge - Staged loading for game asset definitions",
	Long: `Assetforge discovers YAML and JSON asset definitions, runs them
through the per-category loading pipeline, and reports which assets are
ready for the simulation to use.

Available commands:
  list     - Show discovered asset definitions
  load     - Run the pipeline to quiescence and print a report
  watch    - Run the pipeline with a live readiness table
  runs     - Inspect recorded pipeline runs

Examples:
  assetforge list
  assetforge load --assets ./assets
  assetforge watch
  assetforge runs --limit 5
  assetforge runs 3`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to tool config YAML")
	rootCmd.PersistentFlags().StringVar(&flagAssets, "assets", "", "Asset definitions root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runsCmd)
}
