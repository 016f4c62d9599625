// Package retry classifies controller responses for callers that implement
// their own retry policy. The controller client itself never retries a
// transport failure; it only surfaces these hints on its errors.
package retry

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ShouldRetry returns true if the HTTP status code indicates a transient
// condition:
//   - 429 (Too Many Requests), the controller's login throttling
//   - 5xx, typically the Network application restarting behind UniFi OS
func ShouldRetry(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests
}

// ParseRetryAfter parses the Retry-After HTTP header and returns the duration to wait.
// Both forms are accepted:
//   - delay-seconds (e.g., "120")
//   - HTTP-date (e.g., "Wed, 21 Oct 2015 07:28:00 GMT"), relative to now
//
// Returns 0 if the header is empty, cannot be parsed, or lies in the past.
func ParseRetryAfter(retryAfterHeader string) time.Duration {
	return parseRetryAfterAt(retryAfterHeader, time.Now())
}

func parseRetryAfterAt(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	when, err := http.ParseTime(header)
	if err != nil {
		return 0
	}

	if wait := when.Sub(now); wait > 0 {
		return wait
	}

	return 0
}
