package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	AuthAttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempt_count",
			Help: "Total number of register/login attempts",
		},
		[]string{"operation", "status"}, // status: success, failed
	)

	ProjectOpCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_op_count",
			Help: "Total number of project operations",
		},
		[]string{"operation", "status"},
	)

	TaskOpCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_op_count",
			Help: "Total number of task operations",
		},
		[]string{"operation", "status"},
	)

	CacheHitCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_cache_hit_count",
			Help: "Project cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit, miss, error
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementAuthAttempt(operation, status string) {
	AuthAttemptCount.WithLabelValues(operation, status).Inc()
}

func IncrementProjectOp(operation, status string) {
	ProjectOpCount.WithLabelValues(operation, status).Inc()
}

func IncrementTaskOp(operation, status string) {
	TaskOpCount.WithLabelValues(operation, status).Inc()
}

func IncrementCacheLookup(outcome string) {
	CacheHitCount.WithLabelValues(outcome).Inc()
}
