package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:5555" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if cfg.InitialClockSeconds != 600 {
		t.Fatalf("InitialClockSeconds = %v", cfg.InitialClockSeconds)
	}
	if cfg.TickInterval != time.Second {
		t.Fatalf("TickInterval = %v", cfg.TickInterval)
	}
	if cfg.CleanupInterval() != 30*time.Second {
		t.Fatalf("CleanupInterval = %v", cfg.CleanupInterval())
	}
	if cfg.FinishedRetention() != 10*time.Minute {
		t.Fatalf("FinishedRetention = %v", cfg.FinishedRetention())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "host: 127.0.0.1\nport: 6666\ninitial_clock_seconds: 300\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:6666" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if cfg.InitialClockSeconds != 300 {
		t.Fatalf("InitialClockSeconds = %v", cfg.InitialClockSeconds)
	}
	// Unset fields keep their defaults.
	if cfg.CleanupIntervalSeconds != 30 {
		t.Fatalf("CleanupIntervalSeconds = %v", cfg.CleanupIntervalSeconds)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "10.0.0.1")
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("INITIAL_CLOCK_SECONDS", "120")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr() != "10.0.0.1:7777" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if cfg.InitialClockSeconds != 120 {
		t.Fatalf("InitialClockSeconds = %v", cfg.InitialClockSeconds)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig accepted a missing file")
	}
}

func TestSanitizeRejectsNonsense(t *testing.T) {
	cfg := Config{Host: "", Port: -1, InitialClockSeconds: -5}
	cfg.sanitize()
	d := DefaultConfig()
	if cfg.Host != d.Host || cfg.Port != d.Port || cfg.InitialClockSeconds != d.InitialClockSeconds {
		t.Fatalf("sanitized config = %+v", cfg)
	}
}
