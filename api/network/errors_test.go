package network

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestControllerErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           *ControllerError
		wantNotFound  bool
		wantTransient bool
	}{
		{
			name:         "unknown device",
			err:          &ControllerError{StatusCode: http.StatusBadRequest, Message: "api.err.UnknownDevice"},
			wantNotFound: true,
		},
		{
			name:         "no such command",
			err:          &ControllerError{StatusCode: http.StatusOK, Message: "api.err.NoSuchCommand"},
			wantNotFound: true,
		},
		{
			name:         "404 with message",
			err:          &ControllerError{StatusCode: http.StatusNotFound, Message: "api.err.NotFound"},
			wantNotFound: true,
		},
		{
			name: "404 without message is a wrong path",
			err:  &ControllerError{StatusCode: http.StatusNotFound},
		},
		{
			name: "invalid payload",
			err:  &ControllerError{StatusCode: http.StatusBadRequest, Message: "api.err.InvalidPayload"},
		},
		{
			name:          "server error",
			err:           &ControllerError{StatusCode: http.StatusBadGateway},
			wantTransient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := errors.Wrap(tt.err, "failed to do something")

			assert.True(t, errors.Is(wrapped, ErrController))
			assert.Equal(t, tt.wantNotFound, errors.Is(wrapped, ErrNotFound))
			assert.False(t, errors.Is(wrapped, ErrAuthentication))
			assert.False(t, errors.Is(wrapped, ErrConnection))
			assert.Equal(t, tt.wantTransient, tt.err.Transient())

			var cerr *ControllerError
			assert.True(t, errors.As(wrapped, &cerr))
			assert.Equal(t, tt.err.StatusCode, cerr.StatusCode)
		})
	}
}

func TestControllerErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ControllerError{StatusCode: 400, Message: "api.err.Invalid", Path: "/api/s/default/cmd/stamgr"}
	assert.Equal(t, "controller returned status 400 for /api/s/default/cmd/stamgr: api.err.Invalid", err.Error())

	err = &ControllerError{StatusCode: 502, Path: "/api/s/default/stat/device"}
	assert.Equal(t, "controller returned status 502 for /api/s/default/stat/device", err.Error())
}

func TestNewControllerErrorRetryAfter(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"30"}}}
	err := newControllerError(resp, "/api/s/default/stat/sta", "")

	assert.Equal(t, 30*time.Second, err.RetryAfter)
	assert.True(t, err.Transient())
}

func TestConnectionErrorKeepsCause(t *testing.T) {
	t.Parallel()

	err := connectionError(context.DeadlineExceeded, http.MethodGet, "/api/s/default/stat/device")

	assert.True(t, errors.Is(err, ErrConnection))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "GET /api/s/default/stat/device")
}
