// Package metrics declares the Prometheus collectors for the ToolBridge
// server. Collectors register on the default registry; the HTTP server
// exposes them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolbridge",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration observes HTTP request latency by method and route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "toolbridge",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// ChatTurnsTotal counts chat turns by outcome (ok, error, rejected).
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolbridge",
			Name:      "chat_turns_total",
			Help:      "Total chat turns processed",
		},
		[]string{"outcome"},
	)

	// ToolExecutionsTotal counts direct tool executions by tool and outcome.
	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolbridge",
			Name:      "tool_executions_total",
			Help:      "Total tool executions via the REST surface",
		},
		[]string{"tool", "outcome"},
	)
)
