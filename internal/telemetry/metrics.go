package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_cache_hits_total",
			Help: "Query cache lookups answered from a fresh entry",
		},
		[]string{"resource"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_cache_misses_total",
			Help: "Query cache lookups that went upstream",
		},
		[]string{"resource"},
	)
	CacheSharedFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_cache_shared_fetches_total",
			Help: "Lookups that joined an in-flight fetch for the same key",
		},
		[]string{"resource"},
	)
	CacheRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_cache_retries_total",
			Help: "Fetch attempts repeated after a transient failure",
		},
		[]string{"resource"},
	)
	CacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_cache_invalidations_total",
			Help: "Resource invalidations after successful mutations",
		},
		[]string{"resource"},
	)
	CacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metaladmin_cache_evictions_total",
			Help: "Entries dropped after their gc window",
		},
	)
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_upstream_requests_total",
			Help: "Requests sent to the commerce API by method and status",
		},
		[]string{"method", "status"},
	)
	BulkUpdateRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaladmin_bulk_update_rows_total",
			Help: "Spreadsheet rows reported by bulk updates, by outcome",
		},
		[]string{"outcome"},
	)
	ViewSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "metaladmin_view_sessions",
			Help: "Open list-view sessions",
		},
	)
)

var registerOnce sync.Once

// RegisterMetrics registers the collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheHits,
			CacheMisses,
			CacheSharedFetches,
			CacheRetries,
			CacheInvalidations,
			CacheEvictions,
			UpstreamRequests,
			BulkUpdateRows,
			ViewSessions,
		)
	})
}

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
