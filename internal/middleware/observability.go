package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/lexfrei/unifi-mcp/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// Credentials live in headers and bodies; neither is logged.
	urlStr := req.URL.String()

	t.logger.Debug("http request started",
		observability.F("method", req.Method),
		observability.F("url", urlStr),
	)

	// Make request
	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		// Log error
		t.logger.Warn("http request failed",
			observability.F("method", req.Method),
			observability.F("url", urlStr),
			observability.F("duration", duration),
			observability.F("error", err.Error()),
		)

		t.metrics.RecordError("http_request", "connection")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	// Log response
	fields := []observability.Field{
		observability.F("method", req.Method),
		observability.F("url", urlStr),
		observability.F("status", resp.StatusCode),
		observability.F("duration", duration),
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	// Record metrics with normalized path to avoid unbounded cardinality
	normalizedPath := NormalizePath(req.URL.Path)
	t.metrics.RecordHTTPRequest(req.Method, normalizedPath, resp.StatusCode, duration)

	return resp, nil
}

var (
	// combinedIDPattern matches UUIDs, ObjectIDs, or numeric IDs in a single pattern.
	// Order matters: UUID first (most specific), then ObjectID, then numeric.
	combinedIDPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|[0-9a-f]{24}|/\d{5,}(?:/|$)`)
	// siteNamePattern matches site names in legacy API paths: /api/s/{name}/ → /api/s/:site/.
	siteNamePattern = regexp.MustCompile(`/api/s/[^/]+(/|$)`)

	// normalizedPathCache caches normalized paths to avoid repeated regex operations.
	// A controller client hits a handful of endpoints, so the cache stays small.
	normalizedPathCache sync.Map
)

// NormalizePath replaces dynamic path segments (site names, ObjectIDs, UUIDs,
// numeric IDs) with placeholders to keep metric label cardinality bounded.
//
// Examples:
//   - /proxy/network/api/s/default/stat/device → /proxy/network/api/s/:site/stat/device
//   - /api/s/lab/rest/user/507f1f77bcf86cd799439011 → /api/s/:site/rest/user/:id
//   - /api/self/sites → /api/self/sites
func NormalizePath(path string) string {
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings, type assertion is safe
		return cached.(string)
	}

	normalized := combinedIDPattern.ReplaceAllStringFunc(path, func(match string) string {
		// Numeric IDs start with / and end with / or EOL
		if match[0] == '/' {
			if match[len(match)-1] == '/' {
				return "/:id/"
			}
			return "/:id"
		}
		return ":id"
	})

	normalized = siteNamePattern.ReplaceAllString(normalized, "/api/s/:site$1")

	normalizedPathCache.Store(path, normalized)

	return normalized
}
