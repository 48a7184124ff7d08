package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. They live on their own registry so that several servers
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	LLMCallsTotal        *prometheus.CounterVec
	ResolutionsTotal     *prometheus.CounterVec
	FallbacksTotal       prometheus.Counter
	FloodRejectionsTotal *prometheus.CounterVec
	QueueBuildDuration   prometheus.Histogram
	QueueBuildTracks     prometheus.Histogram
	ActiveSessions       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtune_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moodtune_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		LLMCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtune_llm_calls_total",
				Help: "Total number of recommendation calls by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtune_resolutions_total",
				Help: "Total number of song to video resolutions",
			},
			[]string{"status"},
		),
		FallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "moodtune_fallbacks_total",
				Help: "Total number of recommendations answered from the fallback list",
			},
		),
		FloodRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodtune_flood_rejections_total",
				Help: "Total number of requests rejected by the flood limiter",
			},
			[]string{"scope"},
		),
		QueueBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "moodtune_queue_build_duration_seconds",
				Help:    "Time spent resolving a batch of suggestions into a queue",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		QueueBuildTracks: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "moodtune_queue_build_tracks",
				Help:    "Number of playable tracks produced by a queue build",
				Buckets: prometheus.LinearBuckets(0, 5, 11),
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "moodtune_active_sessions",
				Help: "Number of live playback sessions",
			},
		),
	}

	registry.MustRegister(
		metrics.RequestsTotal,
		metrics.RequestDuration,
		metrics.LLMCallsTotal,
		metrics.ResolutionsTotal,
		metrics.FallbacksTotal,
		metrics.FloodRejectionsTotal,
		metrics.QueueBuildDuration,
		metrics.QueueBuildTracks,
		metrics.ActiveSessions,
	)

	return metrics
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordRequest(route string, code int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMCall(provider, status string) {
	m.LLMCallsTotal.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordResolve(status string) {
	m.ResolutionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordFallback() {
	m.FallbacksTotal.Inc()
}

func (m *Metrics) RecordFloodRejection(scope string) {
	m.FloodRejectionsTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) ObserveQueueBuild(duration time.Duration, resolved int) {
	m.QueueBuildDuration.Observe(duration.Seconds())
	m.QueueBuildTracks.Observe(float64(resolved))
}

func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}
