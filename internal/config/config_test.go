package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Assets.Root == "" {
		t.Error("default assets root is empty")
	}
	if cfg.Pipeline.MaxTicks <= 0 {
		t.Errorf("default max_ticks = %d, want positive", cfg.Pipeline.MaxTicks)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("assets:\n  root: /srv/defs\n  sprites: [hero_idle, hero_run]\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}
	if cfg.Assets.Root != "/srv/defs" {
		t.Errorf("assets root = %q", cfg.Assets.Root)
	}
	if len(cfg.Assets.Sprites) != 2 || cfg.Assets.Sprites[0] != "hero_idle" {
		t.Errorf("sprites = %v", cfg.Assets.Sprites)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// Unset fields fall back to defaults.
	if cfg.Pipeline.MaxTicks != DefaultConfig().Pipeline.MaxTicks {
		t.Errorf("max_ticks = %d, want default", cfg.Pipeline.MaxTicks)
	}
	if cfg.Database.Path == "" {
		t.Error("database path not defaulted")
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit path did not fail")
	}
}

func TestLoadMalformedCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("assets: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with malformed yaml did not fail")
	}
}
