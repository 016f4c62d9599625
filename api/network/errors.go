package network

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/unifi-mcp/internal/retry"
)

// Error kinds. Every error returned by APIClient and SessionManager matches
// exactly one of these with errors.Is.
var (
	// ErrConnection marks transport-level failures: DNS, TLS handshake,
	// connection refused, timeouts.
	ErrConnection = errors.New("controller unreachable")

	// ErrAuthentication marks rejected logins and sessions that could not be
	// refreshed.
	ErrAuthentication = errors.New("authentication failed")

	// ErrController marks non-success responses from business endpoints.
	ErrController = errors.New("controller error")

	// ErrNotFound marks operations that referenced an entity the controller
	// does not know about. It is a refinement of ErrController.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks arguments rejected locally before any request is sent.
	ErrValidation = errors.New("invalid argument")
)

// ControllerError carries the HTTP status and the controller-provided message
// of a failed business request.
type ControllerError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the envelope meta.msg, verbatim (e.g. "api.err.UnknownDevice").
	Message string

	// Path is the request path, useful when diagnosing prefix problems.
	Path string

	// RetryAfter is the server hint from a 429/503 response, zero otherwise.
	// The client never acts on it; it is surfaced for the caller's own policy.
	RetryAfter time.Duration
}

func (e *ControllerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("controller returned status %d for %s: %s", e.StatusCode, e.Path, e.Message)
	}

	return fmt.Sprintf("controller returned status %d for %s", e.StatusCode, e.Path)
}

// Is lets errors.Is(err, ErrController) and, for unknown-entity responses,
// errors.Is(err, ErrNotFound) succeed.
func (e *ControllerError) Is(target error) bool {
	switch target { //nolint:errorlint // Comparing against package sentinels
	case ErrController:
		return true
	case ErrNotFound:
		return e.NotFound()
	default:
		return false
	}
}

// NotFound reports whether the response describes a missing entity.
func (e *ControllerError) NotFound() bool {
	msg := strings.ToLower(e.Message)
	if strings.HasPrefix(msg, "api.err.unknown") || strings.HasPrefix(msg, "api.err.nosuch") {
		return true
	}

	return e.StatusCode == http.StatusNotFound && e.Message != ""
}

// Transient reports whether the status is one a caller may reasonably retry.
func (e *ControllerError) Transient() bool {
	return retry.ShouldRetry(e.StatusCode)
}

func newControllerError(resp *http.Response, path, message string) *ControllerError {
	return &ControllerError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Path:       path,
		RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// connectionError marks a transport failure while keeping the cause chain, so
// errors.Is(err, context.DeadlineExceeded) keeps working.
func connectionError(err error, method, path string) error {
	return errors.Mark(errors.Wrapf(err, "%s %s", method, path), ErrConnection)
}

func authenticationError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrAuthentication)
}

func validationError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func notFoundError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}
