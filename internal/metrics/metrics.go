// Package metrics registers the Prometheus metrics used by the gateway.
// Import this package (via blank import or direct use) from the server
// entry point to register all metrics before the /metrics handler is
// mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request-level counters and histograms.
var (
	// RequestsTotal counts completed requests labelled by capability and
	// outcome ("success", "fallback", "rejected", "error").
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicegate_requests_total",
			Help: "Total number of requests processed by the gateway.",
		},
		[]string{"capability", "status"},
	)

	// RequestDuration observes end-to-end request latency in seconds.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voicegate_request_duration_seconds",
			Help:    "End-to-end request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"capability"},
	)

	// RateLimitRejections counts requests rejected by the fixed-window
	// rate limiter, labelled by endpoint class.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicegate_rate_limit_rejections_total",
			Help: "Total requests rejected by rate limiting.",
		},
		[]string{"class"},
	)

	// KillSwitchTrips counts requests short-circuited by a disabled
	// capability group.
	KillSwitchTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicegate_kill_switch_trips_total",
			Help: "Total requests refused because a capability was disabled.",
		},
		[]string{"capability"},
	)

	// UpstreamTimeouts counts upstream calls cut off by the timeout guard.
	UpstreamTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicegate_upstream_timeouts_total",
			Help: "Total upstream calls that exceeded their deadline.",
		},
		[]string{"capability"},
	)

	// UpstreamErrors counts generic upstream failures (non-timeout).
	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicegate_upstream_errors_total",
			Help: "Total upstream failures other than timeouts.",
		},
		[]string{"capability"},
	)

	// OriginRejections counts requests refused for a disallowed origin.
	OriginRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voicegate_origin_rejections_total",
			Help: "Total requests refused for a disallowed Origin header.",
		},
	)
)
