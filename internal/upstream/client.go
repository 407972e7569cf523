// Package upstream implements the single choke point for every outbound call
// to the external betting API. All calls go through Client.Do, which applies
// response caching, circuit breaking, timeout and connection-error
// translation, and rolling response-time bookkeeping uniformly.
// The gateway never retries: transient
// failures are surfaced to the caller, because betting operations must not be
// silently duplicated.
package upstream

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kurax-labs/betting-bff/internal/cache"
	"github.com/kurax-labs/betting-bff/internal/circuitbreaker"
	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/metrics"
)

// Defaults applied by NewClient for zero values.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheCapacity = 1000
)

// noCachePaths lists endpoint substrings whose responses are user-specific
// or time-critical and therefore never cached.
var noCachePaths = []string{
	"/api/bets/my-bets",
	"/api/auth/profile",
	"/health",
}

// Config holds the settings for a Client.
type Config struct {
	// BaseURL is the upstream betting API root, without trailing slash.
	BaseURL string
	// Timeout bounds each outbound call. Defaults to 30s.
	Timeout time.Duration
	// CacheEnabled toggles response caching for eligible requests.
	CacheEnabled bool
	// CacheTTL is the time-to-live of a cached response. Defaults to 5m.
	CacheTTL time.Duration
	// CacheCapacity bounds the cache; the oldest entry is evicted once full.
	// Defaults to 1000.
	CacheCapacity int
	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit. Defaults to 5.
	BreakerThreshold int
	// BreakerCooldown is how long the circuit stays open before probing the
	// backend again. Defaults to 30s.
	BreakerCooldown time.Duration
}

// Request describes one outbound call.
type Request struct {
	Method string
	Path   string
	// Body is JSON-encoded when non-nil.
	Body any
	// Query parameters, appended to the URL in sorted order.
	Query url.Values
	// Header entries merged over the defaults; commonly the bearer credential.
	Header map[string]string
	// Cacheable is the caller's hint. Only GETs to paths outside the
	// denylist are actually cached, regardless of this value.
	Cacheable bool
}

// Stats is a read-only snapshot of the gateway counters.
//
// RequestsMade counts Do calls (cache hits included); NetworkCalls counts
// calls that reached the wire. The hit rate divides by RequestsMade, so it
// can never exceed 100%.
type Stats struct {
	RequestsMade        int64   `json:"requests_made"`
	NetworkCalls        int64   `json:"network_calls"`
	CacheHits           int64   `json:"cache_hits"`
	Errors              int64   `json:"errors"`
	AverageResponseTime float64 `json:"average_response_time"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	CacheSize           int     `json:"cache_size"`
	CircuitState        string  `json:"circuit_state"`
	BackendURL          string  `json:"backend_url"`
}

// Client dispatches calls to the upstream betting API. Construct one at
// process start and inject it into the route layer; there is no package-level
// instance.
type Client struct {
	baseURL      string
	timeout      time.Duration
	cacheEnabled bool
	httpClient   *http.Client
	cache        *cache.Memory
	breaker      *circuitbreaker.Breaker

	mu           sync.Mutex
	requestsMade int64
	networkCalls int64
	cacheHits    int64
	errorCount   int64
	avgResponse  float64 // seconds, incremental average over network calls
}

// NewClient creates a Client for the given upstream.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = DefaultCacheCapacity
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:      cfg.Timeout,
		cacheEnabled: cfg.CacheEnabled,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache:   cache.NewMemory(cfg.CacheCapacity, cfg.CacheTTL),
		breaker: circuitbreaker.New(cfg.BreakerThreshold, 1, cfg.BreakerCooldown),
	}
}

// Do performs one dispatch: cache lookup, outbound call, error normalization.
// On success the caller receives exactly the decoded JSON payload; no
// envelope wrapping or unwrapping happens at this layer. On failure the
// returned error is always an *Error.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	c.requestsMade++
	c.mu.Unlock()

	var key string
	if c.shouldCache(req) {
		key = cacheKey(req.Method, req.Path, req.Query, req.Header["Authorization"])
		if body, ok := c.cache.Get(key); ok {
			c.mu.Lock()
			c.cacheHits++
			c.mu.Unlock()
			metrics.CacheHits.Inc()
			log.Debug("cache hit", "method", req.Method, "path", req.Path)
			return body, nil
		}
	}

	body, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	if key != "" {
		c.cache.Set(key, body)
	}
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) (json.RawMessage, error) {
	log := logging.FromContext(ctx)

	if !c.breaker.Allow() {
		log.Warn("circuit open, rejecting upstream call", "method", req.Method, "path", req.Path)
		return nil, c.fail(&Error{Status: http.StatusServiceUnavailable, Message: "backend service unavailable"})
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var payload io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, c.fail(&Error{Status: http.StatusInternalServerError, Message: "internal server error"})
		}
		payload = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, payload)
	if err != nil {
		return nil, c.fail(&Error{Status: http.StatusInternalServerError, Message: "internal server error"})
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	log.Info("dispatching upstream request", "method", req.Method, "url", u)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("upstream request failed", "method", req.Method, "url", u, "error", err)
		c.breaker.Failure()
		return nil, c.fail(classifyTransportError(err))
	}
	defer resp.Body.Close()

	// Only transport failures and 5xx responses count against the breaker;
	// a 4xx means the backend is up and rejecting this particular request.
	if resp.StatusCode >= 500 {
		c.breaker.Failure()
	} else {
		c.breaker.Success()
	}

	elapsed := time.Since(start).Seconds()
	c.recordLatency(elapsed)
	metrics.UpstreamDuration.Observe(elapsed)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&Error{Status: http.StatusInternalServerError, Message: "internal server error"})
	}

	if herr := mapStatus(resp.StatusCode, data); herr != nil {
		log.Warn("upstream error response",
			"method", req.Method, "url", u, "status", resp.StatusCode)
		metrics.UpstreamErrors.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil, c.fail(herr)
	}

	if !json.Valid(data) {
		return nil, c.fail(&Error{Status: http.StatusInternalServerError, Message: "internal server error"})
	}
	return json.RawMessage(data), nil
}

// classifyTransportError translates transport failures into the error
// taxonomy: timeout → 504, connection failure → 503, anything else → 500.
func classifyTransportError(err error) *Error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Status: http.StatusGatewayTimeout, Message: "backend service timeout"}
	}
	if errors.As(err, &uerr) {
		return &Error{Status: http.StatusServiceUnavailable, Message: "backend service unavailable"}
	}
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
}

// mapStatus maps a non-2xx upstream status to its caller-visible condition.
// 400 and 409 pass the original body through; 401 gets a generic message.
func mapStatus(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	detail := json.RawMessage(nil)
	if json.Valid(body) {
		detail = json.RawMessage(body)
	}

	switch status {
	case http.StatusBadRequest:
		return &Error{Status: status, Message: "bad request", Body: detail}
	case http.StatusUnauthorized:
		return &Error{Status: status, Message: "unauthorized"}
	case http.StatusNotFound:
		return &Error{Status: status, Message: "resource not found", Body: detail}
	case http.StatusConflict:
		return &Error{Status: status, Message: "conflict", Body: detail}
	default:
		return &Error{Status: status, Message: fmt.Sprintf("backend error: %d", status), Body: detail}
	}
}

func (c *Client) shouldCache(req Request) bool {
	if !c.cacheEnabled || !req.Cacheable || req.Method != http.MethodGet {
		return false
	}
	for _, p := range noCachePaths {
		if strings.Contains(req.Path, p) {
			return false
		}
	}
	return true
}

// cacheKey derives a deterministic fingerprint from the normalized request.
// Query parameters are encoded in sorted order; the auth credential is part
// of the key so one user's cached response can never serve another.
func cacheKey(method, path string, query url.Values, auth string) string {
	h := sha256.New()
	io.WriteString(h, method)
	io.WriteString(h, "\n")
	io.WriteString(h, path)
	io.WriteString(h, "\n")
	io.WriteString(h, query.Encode())
	io.WriteString(h, "\n")
	io.WriteString(h, auth)
	return hex.EncodeToString(h.Sum(nil))
}

// fail counts the error and returns it, so every failure path passes through
// the same bookkeeping.
func (c *Client) fail(err *Error) *Error {
	c.mu.Lock()
	c.errorCount++
	c.mu.Unlock()
	return err
}

// recordLatency updates the incremental average over network calls only;
// cache hits never touch it.
func (c *Client) recordLatency(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.networkCalls++
	n := float64(c.networkCalls)
	c.avgResponse = (c.avgResponse*(n-1) + seconds) / n
}

// Stats returns a snapshot of the gateway counters. Read-only.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	requests := c.requestsMade
	if requests < 1 {
		requests = 1
	}
	rate := float64(c.cacheHits) / float64(requests) * 100

	return Stats{
		RequestsMade:        c.requestsMade,
		NetworkCalls:        c.networkCalls,
		CacheHits:           c.cacheHits,
		Errors:              c.errorCount,
		AverageResponseTime: c.avgResponse,
		CacheHitRate:        round2(rate),
		CacheSize:           c.cache.Len(),
		CircuitState:        c.breaker.State().String(),
		BackendURL:          c.baseURL,
	}
}

// ClearCache empties the response cache unconditionally. Counters are not
// reset; used at shutdown and between test cases.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
