// Package metrics exposes Prometheus metrics for the scoring service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Player kinds used as label values.
const (
	KindGuest = "guest"
	KindUser  = "user"
)

// Manager owns every metric the service reports.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	attempts          *prometheus.CounterVec
	scoringLatency    prometheus.Histogram
	scoreDistribution prometheus.Histogram
	persistFailures   prometheus.Counter
	persistRetries    prometheus.Counter
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	refreshDropped    prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithRegistry registers metrics on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithHistogramBuckets sets the latency buckets, in seconds.
func WithHistogramBuckets(b []float64) Option {
	return func(m *Manager) { m.buckets = b }
}

// NewManager creates a metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "dancerank",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.attempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "attempts_total",
		Help:      "Scored attempts by player kind.",
	}, []string{"kind"})
	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "latency_seconds",
		Help:      "Time spent grading one attempt.",
		Buckets:   m.buckets,
	})
	m.scoreDistribution = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "score_percent",
		Help:      "Distribution of attempt scores.",
		Buckets:   []float64{40, 60, 70, 80, 90, 95, 100},
	})
	m.persistFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "persistence",
		Name:      "failures_total",
		Help:      "Attempts that could not be stored after all retries.",
	})
	m.persistRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "persistence",
		Name:      "retries_total",
		Help:      "Store attempts beyond the first one.",
	})
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "cache_hits_total",
		Help:      "Rankings served from cache.",
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "cache_misses_total",
		Help:      "Rankings loaded from storage.",
	})
	m.refreshDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "refresh_dropped_total",
		Help:      "Cache refresh jobs dropped because the queue was full.",
	})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   m.buckets,
	}, []string{"method", "route"})
	return m
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) ObserveAttempt(kind string, score float64, took time.Duration) {
	m.attempts.WithLabelValues(kind).Inc()
	m.scoreDistribution.Observe(score)
	m.scoringLatency.Observe(took.Seconds())
}

func (m *Manager) PersistFailed()  { m.persistFailures.Inc() }
func (m *Manager) PersistRetried() { m.persistRetries.Inc() }
func (m *Manager) CacheHit()       { m.cacheHits.Inc() }
func (m *Manager) CacheMiss()      { m.cacheMisses.Inc() }
func (m *Manager) RefreshDropped() { m.refreshDropped.Inc() }

func (m *Manager) ObserveHTTP(method, route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
