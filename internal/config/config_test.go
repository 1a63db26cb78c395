package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-screenshot-optimizer/internal/optimizer"
)

// noConfigFile points CONFIG_FILE at a path that does not exist so tests
// exercise defaults and environment only
func noConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	noConfigFile(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host 127.0.0.1, got %q", cfg.Host)
	}
	if cfg.Port != "8317" {
		t.Errorf("Expected default port 8317, got %q", cfg.Port)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("Expected default sweep interval 1m, got %s", cfg.SweepInterval)
	}
	if cfg.Policy.Format != optimizer.FormatWEBP {
		t.Errorf("Expected default policy format webp, got %q", cfg.Policy.Format)
	}
	if cfg.Uploader != "none" {
		t.Errorf("Expected default uploader none, got %q", cfg.Uploader)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	noConfigFile(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CAPTURE_DIR", "/var/captures")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("SWEEP_WORKERS", "4")
	t.Setenv("OPTIMIZE_FORMAT", "jpeg")
	t.Setenv("OPTIMIZE_QUALITY", "60")
	t.Setenv("OPTIMIZE_STRIP_METADATA", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %q", cfg.Port)
	}
	if cfg.CaptureDir != "/var/captures" {
		t.Errorf("Expected capture dir /var/captures, got %q", cfg.CaptureDir)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("Expected sweep interval 30s, got %s", cfg.SweepInterval)
	}
	if cfg.SweepWorkers != 4 {
		t.Errorf("Expected 4 sweep workers, got %d", cfg.SweepWorkers)
	}
	if cfg.Policy.Format != optimizer.FormatJPEG {
		t.Errorf("Expected policy format jpeg, got %q", cfg.Policy.Format)
	}
	if cfg.Policy.Quality != 60 {
		t.Errorf("Expected policy quality 60, got %d", cfg.Policy.Quality)
	}
	if cfg.Policy.StripMetadata {
		t.Error("Expected metadata stripping disabled")
	}
}

func TestLoadYAMLFileWithEnvWinning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	content := []byte(`
host: 0.0.0.0
port: "8400"
capture_dir: /from/file
policy:
  format: png
  quality: 90
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CAPTURE_DIR", "/from/env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected host from file, got %q", cfg.Host)
	}
	if cfg.Port != "8400" {
		t.Errorf("Expected port from file, got %q", cfg.Port)
	}
	if cfg.CaptureDir != "/from/env" {
		t.Errorf("Expected environment to win over file, got %q", cfg.CaptureDir)
	}
	if cfg.Policy.Format != optimizer.FormatPNG || cfg.Policy.Quality != 90 {
		t.Errorf("Expected policy from file, got %+v", cfg.Policy)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	if err := os.WriteFile(path, []byte("host: [unterminated"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("Expected an error for a malformed config file")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"quality out of range", "OPTIMIZE_QUALITY", "150"},
		{"unknown uploader", "UPLOADER", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noConfigFile(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected validation error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadAzureUploaderRequiresCredentials(t *testing.T) {
	noConfigFile(t)
	t.Setenv("UPLOADER", "azure")

	if _, err := Load(); err == nil {
		t.Error("Expected an error when azure uploader has no credentials")
	}

	t.Setenv("AZURE_STORAGE_ACCOUNT", "devaccount")
	t.Setenv("AZURE_STORAGE_KEY", "ZGV2a2V5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed with credentials set: %v", err)
	}
	if cfg.AzureContainer != "screenshots" {
		t.Errorf("Expected default container, got %q", cfg.AzureContainer)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: " 8317 "}
	if got := cfg.ServerAddress(); got != "127.0.0.1:8317" {
		t.Errorf("Expected trimmed address, got %q", got)
	}
}
