package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Output != "buyersguide.csv" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Fetch.Mode != "browser" {
		t.Errorf("Fetch.Mode = %q", cfg.Fetch.Mode)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.yaml")
	data := []byte("start_url: https://file.example/guide\noutput: from-file.csv\nretry:\n  attempts: 7\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GUIDE_OUTPUT", "from-env.csv")
	t.Setenv("GUIDE_RETRY_BASE_DELAY", "250ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StartURL != "https://file.example/guide" {
		t.Errorf("StartURL = %q", cfg.StartURL)
	}
	if cfg.Output != "from-env.csv" {
		t.Errorf("Output = %q, env should win over file", cfg.Output)
	}
	if cfg.Retry.Attempts != 7 {
		t.Errorf("Retry.Attempts = %d, want 7 from file", cfg.Retry.Attempts)
	}
	if cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("Retry.BaseDelay = %v, want 250ms from env", cfg.Retry.BaseDelay)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("empty start URL should not validate")
	}

	cfg.StartURL = "https://example.com/guide"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.Fetch.Mode = "teleport"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown fetch mode should not validate")
	}
}
