package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	completionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completions_recorded_total",
			Help: "Total number of completion events written through the API",
		},
		[]string{"outcome"}, // outcome: completed, skipped
	)

	summaryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_events_total",
			Help: "Summary cache lookups by result",
		},
		[]string{"view", "result"}, // view: weekly, monthly; result: hit, miss
	)
)

func recordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func recordCompletion(completed bool) {
	outcome := "skipped"
	if completed {
		outcome = "completed"
	}
	completionsRecorded.WithLabelValues(outcome).Inc()
}

func recordCacheLookup(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	summaryCacheHits.WithLabelValues(view, result).Inc()
}
