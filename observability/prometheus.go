package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "unifi"

// prometheusRecorder exports client metrics to a Prometheus registry.
type prometheusRecorder struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	reauths       *prometheus.CounterVec
	rateLimitWait *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// NewPrometheusRecorder registers the controller client metrics on reg.
// Passing prometheus.DefaultRegisterer exposes them on the default /metrics handler.
// Registering twice on the same registry panics.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewPrometheusRecorder(reg prometheus.Registerer) MetricsRecorder {
	factory := promauto.With(reg)

	return &prometheusRecorder{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Controller HTTP requests by method, normalized path and status code.",
		}, []string{"method", "path", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Controller HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		reauths: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "session_reauth_total",
			Help:      "Re-logins triggered by an expired controller session.",
		}, []string{"endpoint"}),
		rateLimitWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting on the client-side rate limiter.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"endpoint"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Errors by operation and error class.",
		}, []string{"operation", "type"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "logins_total",
			Help:      "Login attempts by controller flavor and outcome.",
		}, []string{"flavor", "outcome"}),
	}
}

func (p *prometheusRecorder) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	p.requests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	p.duration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (p *prometheusRecorder) RecordReauth(endpoint string) {
	p.reauths.WithLabelValues(endpoint).Inc()
}

func (p *prometheusRecorder) RecordRateLimit(endpoint string, wait time.Duration) {
	p.rateLimitWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

func (p *prometheusRecorder) RecordError(operation, errorType string) {
	p.errors.WithLabelValues(operation, errorType).Inc()
}

func (p *prometheusRecorder) RecordLogin(flavor, outcome string) {
	p.logins.WithLabelValues(flavor, outcome).Inc()
}
