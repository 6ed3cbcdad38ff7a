// Package metrics exposes refresh and availability metrics in the Prometheus format.
//
// Every Metrics value owns its registry, so tests and multiple servers in one
// process do not collide. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutcparking/parkspace/internal/lot"
)

const namespace = "parkspace"

// OutcomeSuccess labels fetches that produced lots
const OutcomeSuccess = "success"

// Metrics holds the collectors of one process
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	lots          *prometheus.GaugeVec
	available     *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
	notifications *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Status page fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and parsing the status page.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		lots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lots",
			Help:      "Parking lots in the latest snapshot.",
		}, []string{"type"}),
		available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available_spaces",
			Help:      "Available spaces summed over all lots of a type.",
		}, []string{"type"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the latest successful refresh.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Availability notifications by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches,
		m.fetchDuration,
		m.lots,
		m.available,
		m.lastSuccess,
		m.notifications,
	)

	return m
}

// Registry returns the registry the collectors live in
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one fetch. kind is an error kind, or empty for success.
func (m *Metrics) ObserveFetch(kind string, d time.Duration) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = OutcomeSuccess
	}
	m.fetches.WithLabelValues(kind).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// ObserveSnapshot updates the per-type gauges from a published snapshot
func (m *Metrics) ObserveSnapshot(lots []lot.Lot, at time.Time) {
	if m == nil {
		return
	}

	counts := lot.CountByType(lots)
	sums := lot.AvailableByType(lots)
	for _, typ := range lot.Types() {
		m.lots.WithLabelValues(string(typ)).Set(float64(counts[typ]))
		m.available.WithLabelValues(string(typ)).Set(float64(sums[typ]))
	}
	m.lastSuccess.Set(float64(at.Unix()))
}

// ObserveNotification counts one notification attempt by result ("sent", "throttled", "failed")
func (m *Metrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
