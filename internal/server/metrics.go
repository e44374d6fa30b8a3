package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics holds the server's Prometheus instruments on a private registry
// so multiple servers in one process never collide on registration.
type metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	lookups    *prometheus.CounterVec
	batchItems *prometheus.CounterVec
	batchRuns  prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	m := &metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "http_requests_total",
			Help:      "HTTP requests received, by method and route.",
		}, []string{"method", "route"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "lookups_total",
			Help:      "Metadata lookups served via the API, by outcome.",
		}, []string{"outcome"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "batch_items_total",
			Help:      "Batch items processed via the API, by outcome.",
		}, []string{"outcome"}),
		batchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "batch_runs_total",
			Help:      "Batch runs started via the API.",
		}),
	}
	registry.MustRegister(
		m.requests,
		m.lookups,
		m.batchItems,
		m.batchRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
