// Package config provides YAML-based tool configuration loading for the
// asset pipeline.
package config

// Config contains all configuration for the assetforge tool.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// AssetsConfig defines where definition files live and which sprite
// names may be acquired.
type AssetsConfig struct {
	Root    string   `yaml:"root"`
	Sprites []string `yaml:"sprites"` // empty = accept any sprite name
}

// PipelineConfig defines tick pacing and the quiescence bound.
type PipelineConfig struct {
	TickIntervalMS int `yaml:"tick_interval_ms"`
	MaxTicks       int `yaml:"max_ticks"` // ticks before a run is declared stuck
}

// DatabaseConfig defines where run reports are persisted.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig defines logger verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}
