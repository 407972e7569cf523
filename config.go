// Package bff wires the building blocks of the sports-betting
// backend-for-frontend: the upstream call gateway, the sliding-window rate
// limiter, and the audit trail. Create an App with New at process start and
// hand it to the route layer; call Close at shutdown.
//
// Configuration can be loaded from a YAML or JSON file with LoadConfig and
// checked with ValidateConfig.
package bff

import "time"

// Config holds the configuration for the BFF.
type Config struct {
	// Upstream is the external betting API the BFF fronts.
	Upstream UpstreamConfig `json:"upstream" yaml:"upstream"`
	// Cache controls the gateway response cache.
	Cache CacheConfig `json:"cache" yaml:"cache"`
	// RateLimit bounds inbound requests per client.
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	// Audit configures the money-moving audit trail (optional).
	Audit AuditConfig `json:"audit,omitempty" yaml:"audit,omitempty"`
	// Admin configures the operator API (optional).
	Admin AdminConfig `json:"admin,omitempty" yaml:"admin,omitempty"`
	// CORSOrigins lists allowed browser origins; empty means allow any.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// UpstreamConfig points the gateway at the betting backend.
type UpstreamConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	// TimeoutSeconds bounds each outbound call. Default 30.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// CacheConfig controls the gateway response cache.
type CacheConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// TTLSeconds is the lifetime of a cached response. Default 300.
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	// Capacity bounds the cache entry count. Default 1000.
	Capacity int `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// RateLimitConfig bounds requests per client within a rolling window.
type RateLimitConfig struct {
	// MaxRequests per window. Default 60.
	MaxRequests int `json:"max_requests,omitempty" yaml:"max_requests,omitempty"`
	// WindowSeconds is the rolling window size. Default 60.
	WindowSeconds int `json:"window_seconds,omitempty" yaml:"window_seconds,omitempty"`
	// MaxClients bounds the number of tracked client identifiers. Default 10000.
	MaxClients int `json:"max_clients,omitempty" yaml:"max_clients,omitempty"`
}

// AdminConfig protects the operator API. The surface is only mounted when a
// token is set.
type AdminConfig struct {
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// AuditConfig selects the audit storage backend.
type AuditConfig struct {
	// Driver is "sqlite", "postgres", or "" to disable persistence.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	// DSN is the database path (sqlite) or connection string (postgres).
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Timeout returns the configured upstream timeout as a duration.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// TTL returns the configured cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Window returns the configured rate-limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}
