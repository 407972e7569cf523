package main

import (
	"net/http"
	"time"

	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/version"
)

// handleHealth probes the backend and reports the service health. Answers
// 503 when the backend is unreachable so load balancers can act on it.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backendHealthy := true
	if err := s.app.CheckUpstream(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("backend health check failed", "error", err.Error())
		backendHealthy = false
	}

	stats := s.app.Upstream.Stats()

	status := "healthy"
	code := http.StatusOK
	if !backendHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeData(w, code, "Health check", map[string]any{
		"status":    status,
		"version":   version.Short(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"backend": map[string]any{
			"healthy":           backendHealthy,
			"url":               stats.BackendURL,
			"response_time_avg": stats.AverageResponseTime,
			"cache_hit_rate":    stats.CacheHitRate,
		},
		"cache": map[string]any{
			"enabled":     s.app.Config.Cache.Enabled,
			"size":        stats.CacheSize,
			"ttl_seconds": s.app.Config.Cache.TTLSeconds,
		},
	})
}

// handleRoot describes the service and its endpoint families.
func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "Sports Betting BFF", map[string]any{
		"name":         "betting-bff",
		"version":      version.String(),
		"description":  "Backend for Frontend for the sports betting system",
		"health_check": "/health",
		"endpoints": map[string]string{
			"authentication": "/api/auth",
			"events":         "/api/events",
			"betting":        "/api/bets",
		},
		"status": "operational",
	})
}

// handleAPIStats exposes the gateway counters for monitoring and debugging.
func (s *server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "API statistics", map[string]any{
		"backend_service": s.app.Upstream.Stats(),
		"application": map[string]any{
			"version":       version.Short(),
			"cache_enabled": s.app.Config.Cache.Enabled,
			"cors_origins":  len(s.app.Config.CORSOrigins),
		},
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}
