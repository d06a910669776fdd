package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered asset definitions",
	Long:  `Scans the asset root and shows every definition it finds, without running the pipeline.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	cfg, err := loadToolConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	_, assets, err := buildPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(assets) == 0 {
		fmt.Printf("No asset definitions found under %s.\n", cfg.Assets.Root)
		return
	}

	fmt.Printf("Assets under %s:\n", cfg.Assets.Root)
	fmt.Println()

	// Calculate column widths
	maxSlugLen := 4 // "Slug" header
	for _, a := range assets {
		if len(a.Slug) > maxSlugLen {
			maxSlugLen = len(a.Slug)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-10s  %s\n", maxSlugLen, "Slug", "Kind", "Categories")
	fmt.Printf("  %-*s  %-10s  %s\n", maxSlugLen, "----", "----", "----------")

	// Print assets
	for _, a := range assets {
		cats := make([]string, len(a.Required))
		for i, c := range a.Required {
			cats[i] = c.String()
		}
		fmt.Printf("  %-*s  %-10s  %s\n", maxSlugLen, a.Slug, a.Kind, strings.Join(cats, ", "))
	}

	fmt.Println()
	fmt.Println("Run 'assetforge load' to check readiness.")
}
