// Package admin exposes the operator surface of the BFF: recent audit
// entries, gateway counters, limiter occupancy, and cache control. Every
// route requires the static operator token configured at startup; the
// surface is not mounted at all when no token is set.
package admin

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kurax-labs/betting-bff/internal/audit"
	"github.com/kurax-labs/betting-bff/internal/ratelimit"
	"github.com/kurax-labs/betting-bff/internal/upstream"
)

// Handlers holds the operator API dependencies. Audit is nil when auditing
// runs on the no-op writer; the audit route answers 404 in that case.
type Handlers struct {
	Token   string
	Audit   *audit.SQLWriter
	Gateway *upstream.Client
	Limiter *ratelimit.Store
}

// Routes returns the operator router, authentication included.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requireToken)
	r.Get("/audit", h.recentAudit)
	r.Get("/gateway", h.gatewayStats)
	r.Get("/limiter", h.limiterStats)
	r.Post("/cache/clear", h.clearCache)
	return r
}

// requireToken rejects requests without the operator bearer token. The
// comparison is constant time.
func (h *Handlers) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			writeError(w, http.StatusUnauthorized, "missing operator token")
			return
		}
		token := auth[len(prefix):]
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid operator token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) recentAudit(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeError(w, http.StatusNotFound, "audit store not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.Audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading audit store failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *Handlers) gatewayStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Gateway.Stats())
}

func (h *Handlers) limiterStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tracked_clients": h.Limiter.Len(),
	})
}

func (h *Handlers) clearCache(w http.ResponseWriter, r *http.Request) {
	h.Gateway.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{
		"cleared_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
