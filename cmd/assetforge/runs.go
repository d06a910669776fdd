package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/calder-games/assetforge/internal/storage"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show recorded pipeline runs",
	Long: `Without an argument, lists recent runs. With a run ID, shows the
per-asset results of that run.

Examples:
  assetforge runs
  assetforge runs --limit 5
  assetforge runs 3`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) {
	cfg, err := loadToolConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid run ID %q\n", args[0])
			os.Exit(1)
		}
		showRun(store, runID)
		return
	}

	runs, err := store.RecentRuns(flagRunsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'assetforge load' to record the first one.")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-19s  %-6s  %-8s  %-6s  %s\n", "Run", "Date", "Ticks", "Complete", "Failed", "Root")
	fmt.Printf("  %-4s  %-19s  %-6s  %-8s  %-6s  %s\n", "---", "----", "-----", "--------", "------", "----")

	// Print runs
	for _, r := range runs {
		dateStr := r.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-19s  %-6d  %-8d  %-6d  %s\n", r.ID, dateStr, r.Ticks, r.Complete, r.Failed, r.Root)
	}

	fmt.Println()
	fmt.Println("Run 'assetforge runs <id>' for per-asset results.")
}

// showRun prints the per-asset results of one run.
func showRun(store *storage.Store, runID int64) {
	run, err := store.RunByID(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving run: %v\n", err)
		os.Exit(1)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "Error: no run with ID %d\n", runID)
		os.Exit(1)
	}

	results, err := store.AssetResults(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving asset results: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %d over %s (%d ticks, %s)\n", run.ID, run.Root, run.Ticks, run.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Println()

	for _, r := range results {
		line := r.State
		if r.ReasonCode != "" {
			line = fmt.Sprintf("%s   %s", r.State, r.ReasonCode)
			if r.ReasonDetail != "" {
				line += ": " + r.ReasonDetail
			}
		}
		fmt.Printf("  %-28s %-10s %s\n", r.Slug, r.Kind, line)
	}

	fmt.Println()
	fmt.Printf("%d assets: %d complete, %d failed\n", run.Total, run.Complete, run.Failed)
}
