package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("port = %d, want default 3000", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Fatalf("default env should be development")
	}
	if cfg.CountryCode != "52" {
		t.Fatalf("country code = %q, want 52", cfg.CountryCode)
	}
	if cfg.RateLimit.ScanEmergency.Limit != 3 || cfg.RateLimit.ScanEmergency.Window() != time.Hour {
		t.Fatalf("unexpected scan-emergency quota %+v", cfg.RateLimit.ScanEmergency)
	}
	if cfg.RateLimit.Login.Window() != 15*time.Minute {
		t.Fatalf("login window = %v, want 15m", cfg.RateLimit.Login.Window())
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
port: 8080
env: production
jwt_secret: from-file
rate_limit:
  request_device:
    limit: 2
    window_minutes: 30
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RC_JWT_SECRET", "from-env")
	t.Setenv("RC_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("port = %d, env must win over the file", cfg.Port)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("jwt secret = %q, env must win over the file", cfg.JWTSecret)
	}
	if cfg.IsDev() {
		t.Fatalf("env production must not count as dev")
	}
	if cfg.RateLimit.RequestDevice.Limit != 2 || cfg.RateLimit.RequestDevice.Window() != 30*time.Minute {
		t.Fatalf("unexpected request-device quota %+v", cfg.RateLimit.RequestDevice)
	}
	// Quotas not mentioned in the file keep their defaults.
	if cfg.RateLimit.VerifyDevice.Limit != 10 {
		t.Fatalf("verify-device limit = %d, want default 10", cfg.RateLimit.VerifyDevice.Limit)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("prot: 8080\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("typoed keys must be rejected")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("RC_PORT", "99999")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("out-of-range port must be rejected")
	}
}
