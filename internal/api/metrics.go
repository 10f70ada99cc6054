package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "netinv"

// Metrics holds the collectors exposed on /metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CascadesTotal   *prometheus.CounterVec
}

// CacheStats reports the listing cache counters.
type CacheStats interface {
	Stats() (hits, misses uint64)
}

// NewMetrics registers the HTTP and workflow collectors on reg. cache may be
// nil.
func NewMetrics(reg prometheus.Registerer, cache CacheStats) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		CascadesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "inventory",
				Name:      "cascade_deletes_total",
				Help:      "Site cascade deletes by mode and outcome",
			},
			[]string{"mode", "status"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.CascadesTotal)

	if cache != nil {
		reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Listing reads served from the cache",
			}, func() float64 { h, _ := cache.Stats(); return float64(h) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Listing reads that went to the database",
			}, func() float64 { _, m := cache.Stats(); return float64(m) }),
		)
	}
	return m
}
