// Package metrics provides Prometheus metrics collection for selector caches.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// SelectorCallsTotal tracks selector calls by outcome (hit, reuse, miss, error).
	SelectorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_calls_total",
			Help: "Total number of memoized selector calls",
		},
		[]string{"selector", "outcome"},
	)

	// SelectorCallDuration tracks the duration of selector calls, hits included.
	SelectorCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "selector_call_duration_seconds",
			Help:    "Memoized selector call duration in seconds",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"selector"},
	)

	// SelectorEvictionsTotal tracks LRU evictions.
	SelectorEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_evictions_total",
			Help: "Total number of selector cache evictions",
		},
		[]string{"selector"},
	)

	// SelectorHitRatio is the hit ratio seen by the last monitor pass.
	SelectorHitRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "selector_hit_ratio",
			Help: "Selector cache hit ratio at the last collection",
		},
		[]string{"selector"},
	)

	// SelectorAvgExecution is the average call duration seen by the last monitor pass.
	SelectorAvgExecution = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "selector_avg_execution_seconds",
			Help: "Average selector call duration at the last collection",
		},
		[]string{"selector"},
	)

	// SelectorCacheSize is the number of stored entries seen by the last monitor pass.
	SelectorCacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "selector_cache_size",
			Help: "Selector cache entries at the last collection",
		},
		[]string{"selector"},
	)

	// SelectorFlagged marks selectors classified as slow or inefficient.
	SelectorFlagged = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "selector_flagged",
			Help: "1 when the selector was flagged at the last collection",
		},
		[]string{"selector", "reason"},
	)

	// MonitorCollectionsTotal tracks monitor collection passes.
	MonitorCollectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "selector_monitor_collections_total",
			Help: "Total number of monitor collection passes",
		},
	)

	// MonitorCollectionFailuresTotal tracks selectors skipped during a collection pass.
	MonitorCollectionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_monitor_collection_failures_total",
			Help: "Total number of selectors skipped because their metrics could not be read",
		},
		[]string{"selector"},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordSelectorCall records one memoized selector call.
func RecordSelectorCall(selector, outcome string, duration time.Duration) {
	SelectorCallsTotal.WithLabelValues(selector, outcome).Inc()
	if duration > 0 {
		SelectorCallDuration.WithLabelValues(selector).Observe(duration.Seconds())
	}
}

// RecordSelectorEviction records an LRU eviction.
func RecordSelectorEviction(selector string) {
	SelectorEvictionsTotal.WithLabelValues(selector).Inc()
}

// UpdateSelectorGauges publishes the per-selector view of a collection pass.
func UpdateSelectorGauges(selector string, hitRatio float64, avg time.Duration, size int, slow, inefficient bool) {
	SelectorHitRatio.WithLabelValues(selector).Set(hitRatio)
	SelectorAvgExecution.WithLabelValues(selector).Set(avg.Seconds())
	SelectorCacheSize.WithLabelValues(selector).Set(float64(size))
	SelectorFlagged.WithLabelValues(selector, "slow").Set(boolToFloat(slow))
	SelectorFlagged.WithLabelValues(selector, "inefficient").Set(boolToFloat(inefficient))
}

// DeleteSelectorGauges drops the gauges of an unregistered selector.
func DeleteSelectorGauges(selector string) {
	SelectorHitRatio.DeleteLabelValues(selector)
	SelectorAvgExecution.DeleteLabelValues(selector)
	SelectorCacheSize.DeleteLabelValues(selector)
	SelectorFlagged.DeleteLabelValues(selector, "slow")
	SelectorFlagged.DeleteLabelValues(selector, "inefficient")
}

// RecordCollection records a monitor collection pass.
func RecordCollection() {
	MonitorCollectionsTotal.Inc()
}

// RecordCollectionFailure records a selector skipped during a collection pass.
func RecordCollectionFailure(selector string) {
	MonitorCollectionFailuresTotal.WithLabelValues(selector).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
