package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/calder-games/assetforge/internal/catalog"
	"github.com/calder-games/assetforge/internal/config"
	"github.com/calder-games/assetforge/internal/discovery"
	"github.com/calder-games/assetforge/internal/loaders"
	"github.com/calder-games/assetforge/internal/pipeline"
	"github.com/calder-games/assetforge/internal/stage"
)

// loadToolConfig loads the config file and applies flag overrides.
func loadToolConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagAssets != "" {
		cfg.Assets.Root = flagAssets
	}
	if flagDBPath != "" {
		cfg.Database.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the stderr logger at the configured level.
func newLogger(cfg config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// buildPipeline scans the asset root and admits everything it finds into
// a fresh coordinator.
func buildPipeline(cfg config.Config, logger *log.Logger) (*pipeline.Coordinator, []discovery.Asset, error) {
	cat := catalog.New()
	tracker := stage.NewTracker()
	deps := &loaders.Deps{
		Catalog: cat,
		Tracker: tracker,
		Sprites: loaders.NewStaticSprites(cfg.Assets.Sprites...),
		Logger:  logger,
	}
	set := loaders.NewSet(deps)
	coord := pipeline.NewCoordinator(cat, tracker, set, logger)

	scanner := discovery.NewScanner(cfg.Assets.Root, cat, logger)
	assets, err := scanner.Scan()
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", cfg.Assets.Root, err)
	}
	coord.Admit(assets)
	return coord, assets, nil
}
