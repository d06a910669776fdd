package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calder-games/assetforge/internal/platform/tui"
)

var flagInterval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline with a live readiness table",
	Long: `Discovers asset definitions and runs the pipeline in a terminal UI,
one tick per interval, until every asset settles.

Controls:
  Up/Down    - Scroll the table
  Q/Ctrl+C   - Quit

Examples:
  assetforge watch
  assetforge watch --interval 200`,
	Run: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagInterval, "interval", 0, "Milliseconds between ticks (0 = config value)")
}

func runWatch(cmd *cobra.Command, args []string) {
	cfg, err := loadToolConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	coord, assets, err := buildPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(assets) == 0 {
		fmt.Printf("No asset definitions found under %s.\n", cfg.Assets.Root)
		return
	}

	interval := flagInterval
	if interval <= 0 {
		interval = cfg.Pipeline.TickIntervalMS
	}

	if err := tui.RunWatch(coord, cfg.Assets.Root, interval, cfg.Pipeline.MaxTicks); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
