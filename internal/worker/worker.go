// Package worker keeps the snapshot store fresh by fetching the status page on
// an interval.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/nutcparking/parkspace/internal/metrics"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
)

// DefaultInterval is the time between two scheduled refreshes
const DefaultInterval = 60 * time.Second

// Fetcher fetches one snapshot; *scraper.Scraper implements it
type Fetcher interface {
	Fetch(ctx context.Context) (*scraper.Result, error)
}

// Refresher fetches snapshots and publishes them to a store
type Refresher struct {
	fetcher  Fetcher
	store    *storage.Store
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
	now      func() time.Time
}

// Option configures a Refresher
type Option func(*Refresher)

// WithInterval sets the time between scheduled refreshes
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithMetrics records every refresh in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Refresher) { r.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(r *Refresher) { r.logger = l }
}

// New creates a Refresher publishing to store
func New(fetcher Fetcher, store *storage.Store, opts ...Option) *Refresher {
	r := &Refresher{
		fetcher:  fetcher,
		store:    store,
		logger:   zerolog.Nop(),
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the time between scheduled refreshes
func (r *Refresher) Interval() time.Duration {
	return r.interval
}

// RefreshOnce fetches one snapshot. On success the lots are published; on
// failure the error is recorded and the previous lots stay in place. A
// canceled context leaves the store untouched. Calls may overlap; the last
// one to finish wins.
func (r *Refresher) RefreshOnce(ctx context.Context) (storage.State, error) {
	start := r.now()
	result, err := r.fetcher.Fetch(ctx)
	r.metrics.ObserveFetch(scraper.Kind(err), r.now().Sub(start))

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return r.store.Current(), err
		}

		st := r.store.Fail(err, r.now())
		r.logger.Error().
			Err(err).
			Str("kind", scraper.Kind(err)).
			Bool("stale", st.Stale()).
			Msg("refresh failed")
		return st, err
	}

	st := r.store.Publish(result.Lots, result.FetchedAt)
	r.metrics.ObserveSnapshot(st.Lots, st.UpdatedAt)

	r.logger.Info().
		Int("lots", len(st.Lots)).
		Int("warnings", len(result.Warnings)).
		Dur("took", r.now().Sub(start)).
		Msg("refresh finished")
	return st, nil
}

// Run refreshes immediately and then on every interval until ctx is done.
// After a failure the next attempt comes sooner, backing off exponentially up
// to the regular interval.
func (r *Refresher) Run(ctx context.Context) error {
	bo := r.newBackOff()

	for {
		_, err := r.RefreshOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}

		wait := r.nextDelay(bo, err)
		r.logger.Debug().Dur("wait", wait).Msg("next refresh scheduled")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (r *Refresher) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.interval / 12
	if bo.InitialInterval < time.Millisecond {
		bo.InitialInterval = time.Millisecond
	}
	bo.MaxInterval = r.interval
	bo.MaxElapsedTime = 0
	bo.RandomizationFactor = 0
	bo.Reset()
	return bo
}

// nextDelay is the regular interval after a success and the next backoff
// step, never longer than the interval, after a failure
func (r *Refresher) nextDelay(bo *backoff.ExponentialBackOff, err error) time.Duration {
	if err == nil {
		bo.Reset()
		return r.interval
	}

	wait := bo.NextBackOff()
	if wait == backoff.Stop || wait > r.interval {
		return r.interval
	}
	return wait
}
