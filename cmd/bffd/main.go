package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	bff "github.com/kurax-labs/betting-bff"
	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/version"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	// Load and validate config if BFF_CONFIG is set; env vars override.
	var cfg bff.Config
	if cfgPath := os.Getenv("BFF_CONFIG"); cfgPath != "" {
		loaded, err := bff.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	} else {
		// Caching defaults on when no config file says otherwise.
		cfg.Cache.Enabled = true
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := bff.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	app, err := bff.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	// Warn-only connectivity check: the BFF can start ahead of the backend.
	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := app.CheckUpstream(startupCtx); err != nil {
		log.Printf("Warning: %v", err)
	} else {
		log.Printf("Backend connectivity verified: %s", cfg.Upstream.BaseURL)
	}
	cancel()

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(app),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		if err := app.Close(shutdownCtx); err != nil {
			log.Printf("Cleanup error: %v", err)
		}
	}()

	log.Printf("Betting BFF %s listening on %s (backend: %s)", version.Short(), addr, cfg.Upstream.BaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err) //nolint:gocritic
	}
	log.Println("Server stopped.")
}

// applyEnvOverrides lets the environment win over the config file, matching
// container deployments where everything is injected per instance.
func applyEnvOverrides(cfg *bff.Config) {
	if v := os.Getenv("BACKEND_API_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := envInt("BACKEND_TIMEOUT_SECONDS"); v > 0 {
		cfg.Upstream.TimeoutSeconds = v
	}
	if v := os.Getenv("ENABLE_CACHE"); v != "" {
		cfg.Cache.Enabled = v == "true" || v == "1"
	}
	if v := envInt("CACHE_TTL_SECONDS"); v > 0 {
		cfg.Cache.TTLSeconds = v
	}
	if v := envInt("RATE_LIMIT_PER_MINUTE"); v > 0 {
		cfg.RateLimit.MaxRequests = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("AUDIT_DRIVER"); v != "" {
		cfg.Audit.Driver = v
	}
	if v := os.Getenv("AUDIT_DSN"); v != "" {
		cfg.Audit.DSN = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
}

func applyDefaults(cfg *bff.Config) {
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:8000"
	}
	if cfg.Upstream.TimeoutSeconds == 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 60
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
