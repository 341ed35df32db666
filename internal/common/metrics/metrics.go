// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyflow_generations_total",
			Help: "Total number of generation requests by category and method",
		},
		[]string{"category", "method"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyflow_generation_failures_total",
			Help: "Total number of failed generation requests",
		},
		[]string{"category", "error_code"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copyflow_generation_duration_seconds",
			Help:    "Duration of the full generation pipeline in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"category", "method"},
	)

	BackendAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyflow_backend_attempts_total",
			Help: "Individual backend attempts by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyflow_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copyflow_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
