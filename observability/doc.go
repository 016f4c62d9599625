// Package observability provides the logging and metrics hooks used by the
// UniFi controller client and the MCP tool layer.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs.
// NewZerolog builds the bundled zerolog implementation:
//
//	logger, err := observability.NewZerolog(os.Stderr, "info", observability.FormatJSON)
//	client, err := network.NewWithConfig(&network.ClientConfig{
//		ControllerURL: "https://192.168.1.1",
//		Username:      user,
//		Password:      pass,
//		Logger:        logger,
//	})
//
// Credentials, session cookies and CSRF tokens are never passed to the logger.
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks controller client metrics:
//   - HTTP request count, status codes, and duration
//   - Re-logins caused by expired sessions
//   - Login attempts per controller flavor and outcome
//   - Rate limiting wait times
//   - Error occurrences by type
//
// NewPrometheusRecorder registers these as Prometheus collectors.
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events.
package observability
