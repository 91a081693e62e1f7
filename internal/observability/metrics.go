// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the validation server.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fluxbase-eu/gqlvalidate/internal/validation"
)

// Metrics holds every collector exported by the server. Each instance owns
// its registry, so tests can create as many as they need.
//
// Metrics:
//   - <ns>_validation_runs_total: validation runs by mutation and outcome
//   - <ns>_validation_errors_total: reported entries by mutation and code
//   - <ns>_validation_duration_seconds: time spent in validators
//   - <ns>_http_requests_total: HTTP requests by method, path and status class
//   - <ns>_http_request_duration_seconds: HTTP request latency
//   - <ns>_rate_limit_hits_total: requests rejected by a rate limiter
type Metrics struct {
	registry *prometheus.Registry

	validationRuns     *prometheus.CounterVec
	validationErrors   *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	rateLimitHits *prometheus.CounterVec
}

var _ validation.Recorder = (*Metrics)(nil)

// NewMetrics creates and registers all collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gqlvalidate"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		validationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_runs_total",
				Help:      "Total number of mutation validation runs",
			},
			[]string{"mutation", "outcome"},
		),

		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors reported to clients",
			},
			[]string{"mutation", "code"},
		),

		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of mutation input validation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to ~330ms
			},
			[]string{"mutation"},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		rateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),
	}

	m.registry.MustRegister(
		m.validationRuns,
		m.validationErrors,
		m.validationDuration,
		m.httpRequests,
		m.httpDuration,
		m.rateLimitHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveValidation implements validation.Recorder.
func (m *Metrics) ObserveValidation(mutation string, outcome validation.Outcome, entries []validation.Entry, elapsed time.Duration) {
	m.validationRuns.WithLabelValues(mutation, string(outcome)).Inc()
	m.validationDuration.WithLabelValues(mutation).Observe(elapsed.Seconds())
	for _, entry := range entries {
		m.validationErrors.WithLabelValues(mutation, entry.Detail.Code).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	path = normalizePath(path)
	m.httpRequests.WithLabelValues(method, path, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimitHit counts one request rejected by the named limiter.
func (m *Metrics) RecordRateLimitHit(limiter string) {
	m.rateLimitHits.WithLabelValues(limiter).Inc()
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}

// normalizePath bounds label cardinality for unexpected paths.
func normalizePath(path string) string {
	if len(path) > 50 {
		return "long_path"
	}
	return path
}
