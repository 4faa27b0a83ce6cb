package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.TranscriptBucket != cfg.VideoBucket || cfg.HighlightsBucket != cfg.VideoBucket {
		t.Error("bucket defaults did not fall back to the video bucket")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VIDEO_BUCKET", "uploads")
	t.Setenv("HIGHLIGHTS_BUCKET", "derived")
	t.Setenv("MAX_RETRIES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VideoBucket != "uploads" {
		t.Errorf("VideoBucket = %q, want uploads", cfg.VideoBucket)
	}
	if cfg.HighlightsBucket != "derived" {
		t.Errorf("HighlightsBucket = %q, want derived", cfg.HighlightsBucket)
	}
	if cfg.TranscriptBucket != "uploads" {
		t.Errorf("TranscriptBucket = %q, want the video bucket fallback", cfg.TranscriptBucket)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	body := "model_id: amazon.nova-premier-v1:0\nbackoff_multiplier: 2.5\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModelID != "amazon.nova-premier-v1:0" {
		t.Errorf("ModelID = %q, want the file override", cfg.ModelID)
	}
	if cfg.BackoffMultiplier != 2.5 {
		t.Errorf("BackoffMultiplier = %v, want 2.5", cfg.BackoffMultiplier)
	}
	// Settings absent from the file keep their defaults.
	if cfg.LanguageCode != "en-US" {
		t.Errorf("LanguageCode = %q, want en-US", cfg.LanguageCode)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded with a missing config file")
	}
}
