package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads tool configuration.
// Search order: customPath -> ~/.assetforge/config.yaml -> ./assetforge.yaml -> embedded default
func Load(customPath string) (Config, error) {
	var cfg Config

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return withDefaults(cfg), nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return withDefaults(cfg), nil
			}
		}
	}

	// Try working directory
	if data, err := os.ReadFile("assetforge.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return withDefaults(cfg), nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if
// home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".assetforge", filename)
}

// withDefaults fills fields the loaded file left zero.
func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Assets.Root == "" {
		cfg.Assets.Root = def.Assets.Root
	}
	if cfg.Pipeline.TickIntervalMS <= 0 {
		cfg.Pipeline.TickIntervalMS = def.Pipeline.TickIntervalMS
	}
	if cfg.Pipeline.MaxTicks <= 0 {
		cfg.Pipeline.MaxTicks = def.Pipeline.MaxTicks
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = def.Database.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	return cfg
}
