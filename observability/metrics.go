package observability

import "time"

// Login outcomes passed to RecordLogin.
const (
	LoginSuccess  = "success"
	LoginRejected = "rejected"
	LoginFailed   = "failed"
)

// MetricsRecorder is an interface for recording controller client metrics.
// NewPrometheusRecorder provides the bundled implementation.
type MetricsRecorder interface {
	// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordReauth records a re-login triggered by an expired session on endpoint.
	RecordReauth(endpoint string)

	// RecordRateLimit records a rate limit wait event.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordError records an error occurrence.
	RecordError(operation, errorType string)

	// RecordLogin records a login attempt for a controller flavor
	// ("standard" or "os") with one of the Login* outcomes.
	RecordLogin(flavor, outcome string)
}

// noopMetricsRecorder is a no-operation metrics recorder that does nothing.
type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a metrics recorder that does nothing.
// This is the default recorder used when none is provided.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordReauth(string)                                  {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}
func (m *noopMetricsRecorder) RecordLogin(string, string)                           {}
