// Package response decodes controller responses into typed envelopes so that
// callers never inspect raw JSON.
package response

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// MaxBodySize bounds how much of a response body is read.
const MaxBodySize = 16 << 20

// Return codes used in Meta.RC.
const (
	RCOK    = "ok"
	RCError = "error"
)

// Meta is the status part of the controller envelope.
type Meta struct {
	RC  string `json:"rc"`
	Msg string `json:"msg,omitempty"`
}

// Envelope is a decoded {meta, data} response. Data is always a slice:
// endpoints that answer with a single object yield a one-element slice.
type Envelope[T any] struct {
	Meta Meta
	Data []T
}

// Present reports whether the body carried an envelope at all. UniFi OS
// authentication endpoints answer with bare JSON objects instead.
func (e *Envelope[T]) Present() bool {
	return e.Meta.RC != ""
}

// Failed reports whether the envelope explicitly signals an error.
func (e *Envelope[T]) Failed() bool {
	return e.Meta.RC == RCError
}

type rawEnvelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Decode parses body into an Envelope. An empty body decodes to an empty
// envelope without error, since command endpoints sometimes answer 200 with
// no content.
func Decode[T any](body []byte) (*Envelope[T], error) {
	env := &Envelope[T]{}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return env, nil
	}

	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode response envelope")
	}

	env.Meta = raw.Meta

	data := bytes.TrimSpace(raw.Data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		env.Data = []T{}
	case data[0] == '[':
		if err := json.Unmarshal(data, &env.Data); err != nil {
			return nil, errors.Wrap(err, "failed to decode response data")
		}
	default:
		var single T
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, errors.Wrap(err, "failed to decode response data")
		}
		env.Data = []T{single}
	}

	return env, nil
}

// ReadBody reads and closes the response body, refusing bodies larger than
// MaxBodySize.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if len(body) > MaxBodySize {
		return nil, errors.Newf("response body exceeds %d bytes", MaxBodySize)
	}

	return body, nil
}

// Success reports whether the HTTP status is in the 2xx range.
func Success(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
