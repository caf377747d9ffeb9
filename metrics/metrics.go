// Package metrics provides Prometheus metrics collection for the
// diagnosis search service. It exports HTTP server metrics plus
// search-specific collectors:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - search_requests_total: Counter with a mode label (text, filter, combined)
//   - search_duration_seconds: Histogram of query evaluation latency
//   - vocabulary_terms: Gauge of terms in the published snapshot
//   - vocabulary_last_reload_timestamp_seconds: Gauge of the last swap time
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen recently)",
		},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total search queries by mode (text, filter, combined)",
		},
		[]string{"mode"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Search query evaluation latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	VocabularyTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vocabulary_terms",
			Help: "Number of terms in the published vocabulary snapshot",
		},
	)

	VocabularyLastReload = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vocabulary_last_reload_timestamp_seconds",
			Help: "Unix timestamp of the last snapshot swap",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(VocabularyTerms)
	prometheus.MustRegister(VocabularyLastReload)
}
