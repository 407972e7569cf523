package main

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/metrics"
	"github.com/kurax-labs/betting-bff/internal/ratelimit"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.bytes += n
	return n, err
}

// requestLogMiddleware logs every request with its duration and emits the
// X-Process-Time header in milliseconds. It also feeds the request metrics,
// labelled by the chi route pattern rather than the raw path so per-ID URLs
// do not explode the label space.
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := logging.FromContext(r.Context())

		log.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientKey(r),
			"user_agent", r.UserAgent(),
		)

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		elapsed := time.Since(start)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.RequestsTotal.WithLabelValues(route, r.Method, fmt.Sprintf("%d", sr.status)).Inc()
		metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"duration_ms", elapsed.Milliseconds(),
			"bytes", sr.bytes,
		)
	})
}

// processTimeMiddleware stamps the X-Process-Time header with the handler
// duration in milliseconds. It buffers nothing; the header is written just
// before the first byte of the response.
func processTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		pw := &processTimeWriter{ResponseWriter: w, start: start}
		next.ServeHTTP(pw, r)
	})
}

type processTimeWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (pw *processTimeWriter) WriteHeader(status int) {
	if !pw.wroteHeader {
		pw.wroteHeader = true
		ms := float64(time.Since(pw.start).Microseconds()) / 1000
		pw.Header().Set("X-Process-Time", fmt.Sprintf("%.2f", ms))
	}
	pw.ResponseWriter.WriteHeader(status)
}

func (pw *processTimeWriter) Write(p []byte) (int, error) {
	if !pw.wroteHeader {
		pw.WriteHeader(http.StatusOK)
	}
	return pw.ResponseWriter.Write(p)
}

// clientKey derives the rate-limit bucket for a request: the remote host,
// or the shared "unknown" bucket when the address cannot be parsed.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}

// rateLimitPaths that are never rate limited: health probes and metrics
// scrapes must not consume client budget.
var rateLimitExempt = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// rateLimitMiddleware gates requests through the sliding-window limiter.
// A denied request is answered with 429 and does not reach the handler.
func rateLimitMiddleware(store *ratelimit.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rateLimitExempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			key := clientKey(r)
			if !store.Allow(key) {
				metrics.RateLimitRejections.Inc()
				logging.FromContext(r.Context()).Warn("rate limit exceeded",
					"client_ip", key, "path", r.URL.Path)
				writeError(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
