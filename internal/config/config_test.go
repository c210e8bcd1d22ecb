package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/autofeedr/autofeedr/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("AUTOFEEDR_ADDR")
	_ = os.Unsetenv("AUTOFEEDR_JWT_SECRET")
	_ = os.Unsetenv("AUTOFEEDR_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "autofeedr.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "autofeedr.db")
	}
	if cfg.Worker.PollInterval != 15*time.Second {
		t.Fatalf("unexpected PollInterval: got %v want %v", cfg.Worker.PollInterval, 15*time.Second)
	}
	if cfg.Worker.BatchSize != 10 {
		t.Fatalf("unexpected BatchSize: got %d want 10", cfg.Worker.BatchSize)
	}
	if cfg.LeetCode.DefaultMaxAttempts != 5 {
		t.Fatalf("unexpected DefaultMaxAttempts: got %d want 5", cfg.LeetCode.DefaultMaxAttempts)
	}
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("unexpected LLM provider: got %q want %q", cfg.LLM.Provider, "openai")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ndefault_timezone: \"UTC\"\nworker:\n  poll_interval: \"30s\"\n  retry_base_minutes: 5\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.DefaultTimezone != "UTC" {
		t.Fatalf("unexpected DefaultTimezone: got %q want %q", cfg.DefaultTimezone, "UTC")
	}
	if cfg.Worker.PollInterval != 30*time.Second {
		t.Fatalf("unexpected PollInterval: got %v want %v", cfg.Worker.PollInterval, 30*time.Second)
	}
	if cfg.Worker.RetryBaseMinutes != 5 {
		t.Fatalf("unexpected RetryBaseMinutes: got %d want 5", cfg.Worker.RetryBaseMinutes)
	}
}

func TestLoadConfig_PollIntervalAboveCronGranularity(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("worker:\n  poll_interval: \"2m\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected error for poll_interval above 60s, got nil")
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
