// Package metrics registers the Prometheus metrics used by the BFF.
// Import this package (via blank import) from the server entry point to
// register all metrics before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts completed inbound requests labelled by route
	// pattern, method, and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bff_requests_total",
			Help: "Total number of inbound requests handled by the BFF.",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration observes end-to-end inbound request latency in seconds.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bff_request_duration_seconds",
			Help:    "End-to-end inbound request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	// UpstreamDuration observes outbound betting-API call latency in seconds.
	// Cache hits are not observed.
	UpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bff_upstream_duration_seconds",
			Help:    "Outbound upstream call duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// UpstreamErrors counts upstream failures by surfaced status code
	// (504 timeout, 503 connection failure, upstream 4xx/5xx passthrough).
	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bff_upstream_errors_total",
			Help: "Total upstream call failures by surfaced status code.",
		},
		[]string{"status"},
	)

	// CacheHits counts gateway dispatches served from the response cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bff_cache_hits_total",
			Help: "Total gateway dispatches served from the response cache.",
		},
	)

	// RateLimitRejections counts requests rejected by the sliding-window
	// rate limiter.
	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bff_rate_limit_rejections_total",
			Help: "Total requests rejected by rate limiting.",
		},
	)

	// AuditWriteFailures counts audit entries that could not be persisted.
	// Audit failures never fail the request, so this is the only signal.
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bff_audit_write_failures_total",
			Help: "Total audit entries that failed to persist.",
		},
	)
)
