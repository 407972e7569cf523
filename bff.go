package bff

import (
	"context"
	"fmt"

	"github.com/kurax-labs/betting-bff/internal/audit"
	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/ratelimit"
	"github.com/kurax-labs/betting-bff/internal/upstream"
)

// App bundles the long-lived components of the BFF: the upstream gateway,
// the per-client rate limiter, and the audit writer. It is safe for
// concurrent use.
type App struct {
	Config   Config
	Upstream *upstream.Client
	Limiter  *ratelimit.Store
	Audit    audit.Writer
}

// New builds an App from a validated configuration.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := upstream.NewClient(upstream.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		Timeout:       cfg.Upstream.Timeout(),
		CacheEnabled:  cfg.Cache.Enabled,
		CacheTTL:      cfg.Cache.TTL(),
		CacheCapacity: cfg.Cache.Capacity,
	})

	limiter := ratelimit.NewStore(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window(), cfg.RateLimit.MaxClients)

	var writer audit.Writer = audit.NoopWriter{}
	if cfg.Audit.Driver != "" {
		w, err := audit.NewSQLWriter(cfg.Audit.Driver, cfg.Audit.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening audit store: %w", err)
		}
		writer = w
	}

	return &App{
		Config:   cfg,
		Upstream: client,
		Limiter:  limiter,
		Audit:    writer,
	}, nil
}

// CheckUpstream probes the backend health endpoint. A failure is not fatal
// at startup; callers typically log a warning and continue.
func (a *App) CheckUpstream(ctx context.Context) error {
	if _, err := a.Upstream.Health(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return nil
}

// Close flushes the response cache and releases the audit store.
func (a *App) Close(ctx context.Context) error {
	log := logging.FromContext(ctx)
	a.Upstream.ClearCache()
	if err := a.Audit.Close(); err != nil {
		log.Error("closing audit store", "error", err.Error())
		return err
	}
	return nil
}
