package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that configures TLS for HTTPS connections.
// It replaces the wrapped transport with a clone carrying config, so it must
// be the innermost middleware in a chain.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		transport, ok := next.(*http.Transport)
		if !ok {
			defaultTransport, ok := http.DefaultTransport.(*http.Transport)
			if !ok {
				return next
			}
			transport = defaultTransport.Clone()
			transport.ForceAttemptHTTP2 = true
		} else {
			transport = transport.Clone()
		}

		transport.TLSClientConfig = config

		return transport
	}
}

// ControllerTLS returns the TLS configuration for talking to a controller.
// Controllers ship self-signed certificates, so verification can be turned
// off explicitly; it stays on otherwise.
func ControllerTLS(verify bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !verify, //nolint:gosec // Opt-in for controllers with self-signed certificates
	}
}
