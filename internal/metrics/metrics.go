package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, path and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmsoc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmsoc_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LifecycleTransitionsTotal counts applied equipment lifecycle
	// transitions by kind and resulting status.
	LifecycleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmsoc_lifecycle_transitions_total",
			Help: "Applied equipment lifecycle transitions",
		},
		[]string{"kind", "status"},
	)

	// WSClientsConnected tracks currently connected live-update clients.
	WSClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmsoc_ws_clients_connected",
			Help: "Connected websocket clients",
		},
	)
)
