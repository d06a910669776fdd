package config

import (
	_ "embed"
)

//go:embed defaults/config.yaml
var defaultConfigYAML []byte

// DefaultConfig returns the default tool configuration.
func DefaultConfig() Config {
	return Config{
		Assets: AssetsConfig{
			Root: "assets",
		},
		Pipeline: PipelineConfig{
			TickIntervalMS: 50,
			MaxTicks:       64,
		},
		Database: DatabaseConfig{
			Path: "~/.assetforge/runs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
