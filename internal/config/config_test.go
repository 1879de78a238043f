package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CRMADMIN_GATEWAY_URL", "")
	t.Setenv("CRMADMIN_API_KEY", "")
	t.Setenv("NO_COLOR", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Output.Format != "table" || cfg.Defaults.PageSize != 20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if errs := cfg.Validate(); len(errs) != 1 {
		t.Fatalf("expected missing gateway url error, got %v", errs)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
gateway:
  url: https://gw.example.com/api
  api_key: file-key
  timeout: 15s
output:
  format: json
  color: never
defaults:
  page_size: 50
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CRMADMIN_GATEWAY_URL", "")
	t.Setenv("CRMADMIN_API_KEY", "env-key")
	t.Setenv("NO_COLOR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Gateway.URL != "https://gw.example.com/api" {
		t.Fatalf("unexpected url: %s", cfg.Gateway.URL)
	}
	if cfg.Gateway.APIKey != "env-key" {
		t.Fatalf("env should override file api key, got %s", cfg.Gateway.APIKey)
	}
	if time.Duration(cfg.Gateway.Timeout) != 15*time.Second {
		t.Fatalf("unexpected timeout: %v", time.Duration(cfg.Gateway.Timeout))
	}
	if cfg.Output.Format != "json" || cfg.Defaults.PageSize != 50 {
		t.Fatalf("unexpected output settings: %+v", cfg)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gateway:\n  timeout: soon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Gateway.URL = "ftp://nope"
	cfg.Output.Color = "sometimes"
	cfg.Log.Level = "loud"
	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	if err != nil || lvl != slog.LevelDebug {
		t.Fatalf("unexpected level %v %v", lvl, err)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Gateway.APIKey = "sk_live_abcdef1234"
	red := cfg.Redacted()
	if !strings.HasSuffix(red.Gateway.APIKey, "1234") || strings.Contains(red.Gateway.APIKey, "abcdef") {
		t.Fatalf("api key not masked: %s", red.Gateway.APIKey)
	}
	if cfg.Gateway.APIKey != "sk_live_abcdef1234" {
		t.Fatal("Redacted must not modify the receiver")
	}
}
