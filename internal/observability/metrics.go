package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
// All recording methods are no-ops on a nil receiver.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	rateLimitRejected  *prometheus.CounterVec
	storeFallbacks     *prometheus.CounterVec
	lockoutsTotal      prometheus.Counter
	authFailures       *prometheus.CounterVec
	tokensIssued       prometheus.Counter
	downstreamRequests *prometheus.CounterVec
	downstreamDuration *prometheus.HistogramVec
	startTime          prometheus.Gauge
	registry           *prometheus.Registry
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "route", "status"},
	)

	m.rateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	m.storeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_store_fallback_total",
			Help: "Total number of calls served from local state " +
				"after a counter store call failed",
		},
		[]string{"component"},
	)

	m.lockoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lockouts_total",
			Help:      "Total number of account lockouts",
		},
	)

	m.authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected bearer tokens by reason",
		},
		[]string{"reason"},
	)

	m.tokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of issued session tokens",
		},
	)

	m.downstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downstream_requests_total",
			Help:      "Total number of document service requests",
		},
		[]string{"operation", "status"},
	)

	m.downstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "downstream_request_duration_seconds",
			Help:      "Document service request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help:      "Start time of the gateway in unix seconds",
		},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.rateLimitRejected,
		m.storeFallbacks,
		m.lockoutsTotal,
		m.authFailures,
		m.tokensIssued,
		m.downstreamRequests,
		m.downstreamDuration,
		m.startTime,
	)

	m.startTime.SetToCurrentTime()

	return m
}

// RecordRequest records a completed HTTP request.
// The route parameter should be the matched route pattern,
// not the raw request path, to prevent cardinality explosion.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, route, statusStr).Inc()
	m.requestDuration.WithLabelValues(method, route, statusStr).Observe(duration.Seconds())
}

// RecordRateLimitRejection records a request rejected by the rate limiter.
// Uses the route label instead of the client address to keep cardinality
// bounded; addresses belong in logs.
func (m *Metrics) RecordRateLimitRejection(route string) {
	if m == nil {
		return
	}
	m.rateLimitRejected.WithLabelValues(route).Inc()
}

// RecordFallback records a call served from local state after a counter
// store error.
func (m *Metrics) RecordFallback(component string) {
	if m == nil {
		return
	}
	m.storeFallbacks.WithLabelValues(component).Inc()
}

// RecordLockout records an account transitioning to locked.
func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.lockoutsTotal.Inc()
}

// RecordAuthFailure records a rejected bearer token.
func (m *Metrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

// RecordTokenIssued records an issued session token.
func (m *Metrics) RecordTokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

// RecordDownstreamRequest records a document service call. A status of 0
// means the request never got a response.
func (m *Metrics) RecordDownstreamRequest(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.downstreamRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.downstreamDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint. It serves the
// gateway registry together with the default registry, which carries the
// runtime collectors and the counter store metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{m.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
