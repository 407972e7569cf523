package bff

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

// ValidateConfig validates a Config for correctness.
func ValidateConfig(cfg Config) error {
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base_url is required")
	}
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream base_url %q is not a valid URL", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream timeout_seconds must not be negative")
	}

	if cfg.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache ttl_seconds must not be negative")
	}
	if cfg.Cache.Capacity < 0 {
		return fmt.Errorf("cache capacity must not be negative")
	}

	if cfg.RateLimit.MaxRequests < 0 {
		return fmt.Errorf("rate_limit max_requests must not be negative")
	}
	if cfg.RateLimit.WindowSeconds < 0 {
		return fmt.Errorf("rate_limit window_seconds must not be negative")
	}
	if cfg.RateLimit.MaxClients < 0 {
		return fmt.Errorf("rate_limit max_clients must not be negative")
	}

	switch cfg.Audit.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown audit driver: %q", cfg.Audit.Driver)
	}
	if cfg.Audit.Driver != "" && cfg.Audit.DSN == "" {
		return fmt.Errorf("audit driver %q requires a dsn", cfg.Audit.Driver)
	}

	return nil
}
