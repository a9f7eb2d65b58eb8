package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is registered on its own registry so tests can build as many
// servers as they like.
type Metrics struct {
	registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	LookupsTotal     *prometheus.CounterVec
	FallbacksTotal   prometheus.Counter
	LookupDuration   *prometheus.HistogramVec
	RateLimitedTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beatbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beatbridge_lookups_total",
				Help: "Total number of audio lookups",
			},
			[]string{"kind", "outcome"},
		),
		FallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "beatbridge_lookup_fallbacks_total",
				Help: "Queries that missed the catalog and resolved to the default entry",
			},
		),
		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beatbridge_lookup_duration_seconds",
				Help:    "Time spent resolving lookups",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "beatbridge_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.LookupsTotal,
		m.FallbacksTotal,
		m.LookupDuration,
		m.RateLimitedTotal,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(route, status string) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

func (m *Metrics) RecordLookup(kind, outcome string, fallback bool, duration time.Duration) {
	m.LookupsTotal.WithLabelValues(kind, outcome).Inc()
	m.LookupDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if fallback {
		m.FallbacksTotal.Inc()
	}
}

func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}
