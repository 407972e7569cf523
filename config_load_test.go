package bff

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Valid(t *testing.T) {
	data := `{
		"upstream": {"base_url": "http://localhost:8000", "timeout_seconds": 15},
		"cache": {"enabled": true, "ttl_seconds": 120, "capacity": 500},
		"rate_limit": {"max_requests": 30, "window_seconds": 60}
	}`
	path := writeTempFile(t, "config.json", data)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://localhost:8000" {
		t.Errorf("expected base_url %q, got %q", "http://localhost:8000", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.TimeoutSeconds != 15 {
		t.Errorf("expected timeout 15, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled")
	}
	if cfg.RateLimit.MaxRequests != 30 {
		t.Errorf("expected max_requests 30, got %d", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("/tmp/does-not-exist-config-12345.json")
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, "bad.json", `{invalid`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	data := `
upstream:
  base_url: http://backend:8000
cache:
  enabled: true
  ttl_seconds: 300
rate_limit:
  max_requests: 60
  window_seconds: 60
audit:
  driver: sqlite
  dsn: audit.db
cors_origins:
  - http://localhost:3000
`
	path := writeTempFile(t, "config.yaml", data)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://backend:8000" {
		t.Errorf("expected base_url %q, got %q", "http://backend:8000", cfg.Upstream.BaseURL)
	}
	if cfg.Audit.Driver != "sqlite" {
		t.Errorf("expected audit driver sqlite, got %q", cfg.Audit.Driver)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Errorf("expected 1 CORS origin, got %d", len(cfg.CORSOrigins))
	}
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "config.toml", "key = value")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := Config{
		Upstream: UpstreamConfig{BaseURL: "http://localhost:8000"},
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateConfig_MissingBaseURL(t *testing.T) {
	if err := ValidateConfig(Config{}); err == nil {
		t.Fatal("expected error for missing base_url")
	}
}

func TestValidateConfig_InvalidBaseURL(t *testing.T) {
	cfg := Config{
		Upstream: UpstreamConfig{BaseURL: "not a url"},
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for invalid base_url")
	}
}

func TestValidateConfig_NegativeValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "negative timeout",
			cfg: Config{
				Upstream: UpstreamConfig{BaseURL: "http://x:1", TimeoutSeconds: -1},
			},
		},
		{
			name: "negative cache ttl",
			cfg: Config{
				Upstream: UpstreamConfig{BaseURL: "http://x:1"},
				Cache:    CacheConfig{TTLSeconds: -5},
			},
		},
		{
			name: "negative rate limit window",
			cfg: Config{
				Upstream:  UpstreamConfig{BaseURL: "http://x:1"},
				RateLimit: RateLimitConfig{WindowSeconds: -60},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateConfig(tt.cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateConfig_Audit(t *testing.T) {
	base := UpstreamConfig{BaseURL: "http://localhost:8000"}

	cfg := Config{Upstream: base, Audit: AuditConfig{Driver: "mysql", DSN: "x"}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for unknown audit driver")
	}

	cfg = Config{Upstream: base, Audit: AuditConfig{Driver: "sqlite"}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for missing audit dsn")
	}

	cfg = Config{Upstream: base, Audit: AuditConfig{Driver: "postgres", DSN: "postgres://u@h/db"}}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}
