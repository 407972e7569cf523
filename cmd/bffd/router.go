package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bff "github.com/kurax-labs/betting-bff"
	"github.com/kurax-labs/betting-bff/internal/admin"
	"github.com/kurax-labs/betting-bff/internal/audit"
	"github.com/kurax-labs/betting-bff/internal/logging"
)

// server holds the handler dependencies. now is injectable so tests can pin
// the clock used for enrichment.
type server struct {
	app *bff.App
	now func() time.Time
}

func newServer(app *bff.App) *server {
	return &server{app: app, now: time.Now}
}

// newRouter builds the HTTP router with the full middleware stack.
func newRouter(app *bff.App) http.Handler {
	return newServer(app).routes()
}

func (s *server) routes() http.Handler {
	app := s.app

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(requestLogMiddleware)
	r.Use(processTimeMiddleware)
	r.Use(corsMiddleware(app.Config.CORSOrigins...))
	r.Use(rateLimitMiddleware(app.Limiter))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/stats", s.handleAPIStats)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/profile", s.handleProfile)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", s.handleEvents)
		r.Get("/trending/popular", s.handleTrendingEvents)
		r.Get("/{eventID}", s.handleEventDetail)
	})

	if app.Config.Admin.Token != "" {
		adminHandlers := &admin.Handlers{
			Token:   app.Config.Admin.Token,
			Gateway: app.Upstream,
			Limiter: app.Limiter,
		}
		if w, ok := app.Audit.(*audit.SQLWriter); ok {
			adminHandlers.Audit = w
		}
		r.Mount("/admin", adminHandlers.Routes())
	}

	r.Route("/api/bets", func(r chi.Router) {
		r.Post("/", s.handleCreateBet)
		r.Post("/preview", s.handleBetPreview)
		r.Get("/my-bets", s.handleMyBets)
		r.Get("/my-stats", s.handleMyStats)
		r.Get("/dashboard", s.handleDashboard)
		r.Delete("/{betID}", s.handleCancelBet)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
