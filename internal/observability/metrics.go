// Package observability exposes Prometheus metrics for the service.
package observability

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SearchQueries counts full-text search requests.
	SearchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_search_queries_total",
		Help: "Total number of full-text post searches",
	})

	// MarkUpserts counts mark submissions by outcome.
	MarkUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_mark_upserts_total",
		Help: "Total number of mark upserts by outcome",
	}, []string{"outcome"})

	// CacheRequests counts cache lookups by key class and result.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_requests_total",
		Help: "Total number of cache lookups by key class and hit/miss",
	}, []string{"class", "result"})
)

// InitMetrics creates the fiberprometheus middleware for HTTP-level metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
