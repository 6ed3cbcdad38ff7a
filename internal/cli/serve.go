package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nutcparking/parkspace/internal/api"
	"github.com/nutcparking/parkspace/internal/metrics"
	"github.com/nutcparking/parkspace/internal/notifier"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
	"github.com/nutcparking/parkspace/internal/worker"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	addr         string
	notify       bool
	notifyDryRun bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest snapshot over HTTP",
		Long: `Refresh the parking status in the background and serve it over HTTP.

Routes:
  GET  /healthz             readiness and circuit breaker state
  GET  /v1/lots             lots, filtered by type, name, min_available, known_capacity; sort
  GET  /v1/lots/{name}      one lot by exact name
  GET  /v1/lots/stream      server-sent events on every refresh
  POST /v1/refresh          refresh now
  GET  /metrics             Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, 0.0.0.0:8080)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Also post availability notifications, subject to the cooldown")
	cmd.Flags().BoolVar(&opts.notifyDryRun, "notify-dry-run", false, "With --notify, print notifications instead of posting")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	addr := opts.addr
	if addr == "" {
		addr = root.cfg.HTTP.Addr()
	}

	var n notifier.Notifier
	if opts.notify {
		var err error
		if n, err = root.newNotifier(opts.notifyDryRun, ""); err != nil {
			return err
		}
	}

	sc, err := root.newScraper()
	if err != nil {
		return err
	}

	m := metrics.New()
	store := storage.New(scraper.UserMessage)
	refresher := worker.New(sc, store,
		worker.WithInterval(root.cfg.Refresh.Interval),
		worker.WithMetrics(m),
		worker.WithLogger(root.log.Component("worker")),
	)

	router := api.NewRouter(api.RouterConfig{
		Logger:       root.log.Component("api"),
		Store:        store,
		Refresher:    refresher,
		Metrics:      m,
		RateLimit:    root.cfg.HTTP.RateLimit,
		BreakerState: sc.BreakerState,
	})

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s := &server{
		handler:   router,
		store:     store,
		refresher: refresher,
		notifier:  n,
		limit:     root.cfg.Notify.Limit,
		cooldown:  root.cfg.Notify.Cooldown,
		metrics:   m,
		log:       root.log.Component("server"),
	}
	return s.run(ctx, ln)
}

// server ties the refresher, the optional notifier and the HTTP API together
type server struct {
	handler   http.Handler
	store     *storage.Store
	refresher runner
	notifier  notifier.Notifier // nil disables notifications
	limit     int
	cooldown  time.Duration
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// run serves on ln until ctx is done, then shuts the server down. Open event
// streams end with ctx.
func (s *server) run(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stopRefresher := startRunner(ctx, s.refresher)
	defer stopRefresher()

	if s.notifier != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			notifyOnUpdates(ctx, s.store, notifier.NewThrottled(s.notifier, s.cooldown), s.limit, s.metrics)
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	s.log.Info().Msg("server stopped")
	return nil
}
