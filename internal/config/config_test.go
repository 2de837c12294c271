package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Scoring.Threshold != 71 {
		t.Fatalf("expected default threshold 71, got %d", cfg.Scoring.Threshold)
	}
	if cfg.Scoring.Pacing() != 500*time.Millisecond {
		t.Fatalf("unexpected pacing: %v", cfg.Scoring.Pacing())
	}
	if len(cfg.Keywords.All()) == 0 {
		t.Fatal("default keyword clusters are empty")
	}
	if len(cfg.Sources.Reddit.Subreddits) == 0 {
		t.Fatal("default subreddits are empty")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(anthropicAPIKeyEnv, "sk-test")
	t.Setenv(scoreThresholdEnv, "60")
	t.Setenv(databasePathEnv, "/tmp/other.db")

	cfg := Load()

	if cfg.Claude.APIKey != "sk-test" {
		t.Fatalf("api key override not applied: %q", cfg.Claude.APIKey)
	}
	if cfg.Scoring.Threshold != 60 {
		t.Fatalf("threshold override not applied: %d", cfg.Scoring.Threshold)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Fatalf("database path override not applied: %q", cfg.Database.Path)
	}
}

func TestLoadFileMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
scoring:
  threshold: 80
sources:
  reddit:
    subreddits: ["datasets"]
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Scoring.Threshold != 80 {
		t.Fatalf("file threshold not applied: %d", cfg.Scoring.Threshold)
	}
	if len(cfg.Sources.Reddit.Subreddits) != 1 || cfg.Sources.Reddit.Subreddits[0] != "datasets" {
		t.Fatalf("subreddits not overridden: %v", cfg.Sources.Reddit.Subreddits)
	}
	// Unset sections keep defaults.
	if cfg.Claude.Model == "" {
		t.Fatal("default model lost in merge")
	}
}

func TestInvalidThresholdEnvKeepsDefault(t *testing.T) {
	t.Setenv(scoreThresholdEnv, "not-a-number")

	cfg := Load()
	if cfg.Scoring.Threshold != 71 {
		t.Fatalf("expected default threshold kept, got %d", cfg.Scoring.Threshold)
	}
}
