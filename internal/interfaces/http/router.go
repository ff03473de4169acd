// Package http assembles the chi route tree and the HTTP server of the API
// service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil members are skipped.
type RouterConfig struct {
	// Handlers
	GiftingHandler *handlers.GiftingHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	Logging LoggingOptions
	Metrics middleware.HTTPMetricsRecorder

	// MetricsHandler serves the Prometheus exposition at MetricsPath.
	MetricsHandler http.Handler
	MetricsPath    string

	Logger logging.Logger
}

// LoggingOptions configures request logging; a zero value uses the defaults.
type LoggingOptions struct {
	Disabled bool
	Config   *middleware.LoggingConfig
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimw.Recoverer)

	if !cfg.Logging.Disabled {
		lc := middleware.DefaultLoggingConfig()
		if cfg.Logging.Config != nil {
			lc = *cfg.Logging.Config
		}
		r.Use(middleware.RequestLogging(logging.OrNop(cfg.Logger).Named("http"), lc))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// --- Probes ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(chimw.AllowContentType("application/json"))
		if cfg.GiftingHandler != nil {
			cfg.GiftingHandler.RegisterRoutes(api)
		}
	})

	return r
}

//Personal.AI order the ending
