// Package ratelimit builds the client-side token bucket that keeps tool calls
// from hammering a controller.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a limiter allowing requestsPerMinute requests, refilled
// continuously at requestsPerMinute/60 tokens per second. The burst is one
// second's worth of requests (at least 1), so a tool that fans out into a
// couple of calls is never delayed while a runaway loop is.
//
// A non-positive requestsPerMinute disables limiting and returns nil; the
// RateLimit middleware treats a nil limiter as pass-through.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	burst := (requestsPerMinute + 59) / 60

	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}
