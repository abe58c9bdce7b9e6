package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"bistro/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer or when disabled; every recorder is then a no-op.
type Metrics struct {
	decisions      *prometheus.CounterVec
	decideDuration prometheus.Histogram
	transitions    *prometheus.CounterVec
	promotions     prometheus.Counter
	sweepRuns      prometheus.Counter
	sweepExpired   *prometheus.CounterVec
	sweepErrors    *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
	notifyFailures prometheus.Counter
	floorplanLoads *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec

	registry *prometheus.Registry
}

func NewMetrics(cfg config.MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{}
	}
	ns := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "decisions_total",
				Help:      "Reservation requests decided, by outcome and rejection reason",
			},
			[]string{"outcome", "reason"},
		),
		decideDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "decide_duration_seconds",
				Help:      "Time spent deciding a reservation request, lock wait included",
				Buckets:   prometheus.DefBuckets,
			},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "transitions_total",
				Help:      "Lifecycle transitions applied",
			},
			[]string{"from", "to"},
		),
		promotions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "waitlist_promotions_total",
				Help:      "Waiting reservations promoted to approved",
			},
		),
		sweepRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "sweep_runs_total",
				Help:      "Reconciliation passes executed",
			},
		),
		sweepExpired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "sweep_expired_total",
				Help:      "Reservations expired by the sweep",
			},
			[]string{"kind"},
		),
		sweepErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "sweep_errors_total",
				Help:      "Per-record failures during reconciliation",
			},
			[]string{"stage"},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of a reconciliation pass",
				Buckets:   prometheus.DefBuckets,
			},
		),
		notifyFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "notification_failures_total",
				Help:      "Notifications that could not be delivered",
			},
		),
		floorplanLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "floorplan_loads_total",
				Help:      "Floor plan load attempts by result",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "HTTP requests served, by route template and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route template",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.decisions,
		m.decideDuration,
		m.transitions,
		m.promotions,
		m.sweepRuns,
		m.sweepExpired,
		m.sweepErrors,
		m.sweepDuration,
		m.notifyFailures,
		m.floorplanLoads,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) enabled() bool { return m != nil && m.registry != nil }

func (m *Metrics) RecordDecision(outcome, reason string, took time.Duration) {
	if !m.enabled() {
		return
	}
	m.decisions.WithLabelValues(outcome, reason).Inc()
	m.decideDuration.Observe(took.Seconds())
}

func (m *Metrics) RecordTransition(from, to string) {
	if !m.enabled() {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordPromotions(n int) {
	if !m.enabled() || n <= 0 {
		return
	}
	m.promotions.Add(float64(n))
}

func (m *Metrics) RecordSweep(noShows, diningExpired int, took time.Duration) {
	if !m.enabled() {
		return
	}
	m.sweepRuns.Inc()
	m.sweepExpired.WithLabelValues("no_show").Add(float64(noShows))
	m.sweepExpired.WithLabelValues("dining").Add(float64(diningExpired))
	m.sweepDuration.Observe(took.Seconds())
}

func (m *Metrics) RecordSweepError(stage string) {
	if !m.enabled() {
		return
	}
	m.sweepErrors.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordNotifyFailure() {
	if !m.enabled() {
		return
	}
	m.notifyFailures.Inc()
}

func (m *Metrics) RecordFloorplanLoad(ok bool) {
	if !m.enabled() {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.floorplanLoads.WithLabelValues(result).Inc()
}

// RecordHTTPRequest labels by route template, never by raw path, to keep cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, took time.Duration) {
	if !m.enabled() {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// Registry exposes the underlying registry, nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
