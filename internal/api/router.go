// Package api serves the latest parking snapshot over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/nutcparking/parkspace/internal/metrics"
	"github.com/nutcparking/parkspace/internal/storage"
)

// DefaultKeepAlive is the interval between comment lines on an idle event stream
const DefaultKeepAlive = 15 * time.Second

// Refresher triggers an immediate refresh of the snapshot
type Refresher interface {
	RefreshOnce(ctx context.Context) (storage.State, error)
}

// RouterConfig holds the dependencies of the router.
type RouterConfig struct {
	Logger    zerolog.Logger
	Store     *storage.Store
	Refresher Refresher        // nil disables POST /v1/refresh
	Metrics   *metrics.Metrics // nil serves 404 on /metrics
	// RateLimit is the number of /v1 requests per minute allowed from one
	// client IP. Zero or less disables the limit.
	RateLimit int
	// BreakerState reports the upstream circuit breaker state for /healthz
	BreakerState func() string
	KeepAlive    time.Duration
}

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = DefaultKeepAlive
	}
	if cfg.BreakerState == nil {
		cfg.BreakerState = func() string { return "disabled" }
	}

	h := &handler{
		store:        cfg.Store,
		refresher:    cfg.Refresher,
		breakerState: cfg.BreakerState,
		keepAlive:    cfg.KeepAlive,
		logger:       cfg.Logger,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(recoverer(cfg.Logger))

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(rateLimitByIP(cfg.RateLimit, time.Minute))
		}

		r.Get("/lots", h.listLots)
		r.Get("/lots/stream", h.stream)
		r.Get("/lots/{name}", h.getLot)
		if cfg.Refresher != nil {
			r.Post("/refresh", h.refresh)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func rateLimitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
		}),
	)
}
