// Package metrics holds the Prometheus collectors of the API. Collectors are
// registered on the default registry and exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapcollection_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mapcollection_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapcollection_cache_lookups_total",
			Help: "Stale-while-revalidate outcomes: fresh, stale or miss",
		},
		[]string{"outcome"},
	)

	// Feed
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapcollection_feed_requests_total",
			Help: "Feed and search requests by kind and whether personalisation was applied",
		},
		[]string{"kind", "personalised"},
	)

	FeedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mapcollection_feed_candidates",
			Help:    "Number of posts considered per feed or search request",
			Buckets: []float64{0, 10, 50, 100, 200, 300},
		},
	)

	// Assistant
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapcollection_assistant_requests_total",
			Help: "Generative-text requests by result: ok, error, rejected or disabled",
		},
		[]string{"result"},
	)

	AssistantDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mapcollection_assistant_request_duration_seconds",
			Help:    "Generative-text call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mapcollection_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Uploads
	PhotoUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapcollection_photo_uploads_total",
			Help: "Photo uploads by target: spot, stop or profile",
		},
		[]string{"target"},
	)

	PhotoBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mapcollection_photo_stored_bytes",
			Help:    "Size of re-encoded photos in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
		},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordFeed records a feed or search request over n candidates.
func RecordFeed(kind string, personalised bool, n int) {
	FeedRequests.WithLabelValues(kind, strconv.FormatBool(personalised)).Inc()
	FeedCandidates.Observe(float64(n))
}

// RecordAssistant records one generative-text call outcome.
func RecordAssistant(result string, duration time.Duration) {
	AssistantRequests.WithLabelValues(result).Inc()
	if duration > 0 {
		AssistantDuration.Observe(duration.Seconds())
	}
}

// RecordPhoto records a stored photo of size bytes.
func RecordPhoto(target string, size int) {
	PhotoUploads.WithLabelValues(target).Inc()
	PhotoBytes.Observe(float64(size))
}
