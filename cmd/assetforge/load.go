package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/calder-games/assetforge/internal/stage"
	"github.com/calder-games/assetforge/internal/storage"
)

var (
	flagMaxTicks int
	flagNoSave   bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the pipeline to quiescence and report",
	Long: `Discovers asset definitions, runs pipeline ticks until every asset
settles as complete or failed, prints the readiness report, and records
the run in the database.

Examples:
  assetforge load
  assetforge load --assets ./assets --max-ticks 32
  assetforge load --no-save`,
	Run: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Tick bound before the run is declared stuck (0 = config value)")
	loadCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record this run in the database")
}

var (
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runLoad(cmd *cobra.Command, args []string) {
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

	maxTicks := flagMaxTicks
	if maxTicks <= 0 {
		maxTicks = cfg.Pipeline.MaxTicks
	}

	ticks := 0
	for ; ticks < maxTicks; ticks++ {
		coord.Tick()
		if coord.Settled() {
			ticks++
			break
		}
	}
	if !coord.Settled() {
		logger.Warn("run did not settle", "ticks", ticks)
	}

	// Report
	fmt.Printf("Pipeline run over %s (%d ticks)\n", cfg.Assets.Root, ticks)
	fmt.Println()

	var results []storage.AssetResult
	complete, failed := 0, 0
	for _, a := range coord.Assets() {
		st := coord.Status(a.ID)

		var rendered string
		switch st.State {
		case stage.StateComplete:
			complete++
			rendered = completeStyle.Render("complete")
		case stage.StateFailed:
			failed++
			rendered = failedStyle.Render("failed   " + st.Reason.String())
		default:
			rendered = pendingStyle.Render("pending")
		}
		fmt.Printf("  %-28s %-10s %s\n", a.Slug, a.Kind, rendered)

		r := storage.AssetResult{
			Slug:  a.Slug.String(),
			Kind:  a.Kind.String(),
			State: st.State.String(),
		}
		if st.State == stage.StateFailed {
			r.ReasonCode = st.Reason.Code.String()
			r.ReasonDetail = st.Reason.Detail
		}
		results = append(results, r)
	}

	fmt.Println()
	fmt.Printf("%d assets: %d complete, %d failed\n", len(results), complete, failed)

	if !flagNoSave {
		store, err := storage.Open(cfg.Database.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open run database: %v\n", err)
		} else {
			report := storage.RunReport{
				Root:     cfg.Assets.Root,
				Ticks:    uint64(ticks),
				Total:    len(results),
				Complete: complete,
				Failed:   failed,
			}
			runID, err := store.SaveRun(report, results)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not record run: %v\n", err)
			} else {
				fmt.Printf("Recorded as run %d.\n", runID)
			}
			store.Close()
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
