package response_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/lexfrei/unifi-mcp/internal/response"
)

// mockData is a test type for response data.
type mockData struct {
	MAC   string `json:"mac"`
	Model string `json:"model"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("ok with list", func(t *testing.T) {
		t.Parallel()

		body := `{"meta":{"rc":"ok"},"data":[{"mac":"001122334455","model":"U6-Pro"}]}`

		env, err := response.Decode[mockData]([]byte(body))
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil", err)
		}

		if !env.Present() || env.Failed() {
			t.Fatalf("Decode() meta = %+v, want rc=ok", env.Meta)
		}

		if len(env.Data) != 1 || env.Data[0].Model != "U6-Pro" {
			t.Errorf("Decode() data = %+v, want one U6-Pro", env.Data)
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		t.Parallel()

		env, err := response.Decode[mockData]([]byte(`{"meta":{"rc":"ok"},"data":[]}`))
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil", err)
		}

		if env.Data == nil || len(env.Data) != 0 {
			t.Errorf("Decode() data = %#v, want empty non-nil slice", env.Data)
		}
	})

	t.Run("single object data", func(t *testing.T) {
		t.Parallel()

		env, err := response.Decode[mockData]([]byte(`{"meta":{"rc":"ok"},"data":{"mac":"aa"}}`))
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil", err)
		}

		if len(env.Data) != 1 || env.Data[0].MAC != "aa" {
			t.Errorf("Decode() data = %+v, want single element", env.Data)
		}
	})

	t.Run("error envelope", func(t *testing.T) {
		t.Parallel()

		env, err := response.Decode[mockData]([]byte(`{"meta":{"rc":"error","msg":"api.err.LoginRequired"},"data":[]}`))
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil", err)
		}

		if !env.Failed() {
			t.Error("Failed() = false, want true")
		}

		if env.Meta.Msg != "api.err.LoginRequired" {
			t.Errorf("Meta.Msg = %q, want api.err.LoginRequired", env.Meta.Msg)
		}
	})

	t.Run("bare object without envelope", func(t *testing.T) {
		t.Parallel()

		env, err := response.Decode[mockData]([]byte(`{"unique_id":"abc","username":"admin"}`))
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil", err)
		}

		if env.Present() {
			t.Error("Present() = true, want false for bare object")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		env, err := response.Decode[mockData](nil)
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil", err)
		}

		if env.Present() {
			t.Error("Present() = true, want false")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		_, err := response.Decode[mockData]([]byte(`<html>502 Bad Gateway</html>`))
		if err == nil {
			t.Fatal("Decode() error = nil, want error")
		}
	})

	t.Run("data of wrong shape", func(t *testing.T) {
		t.Parallel()

		_, err := response.Decode[mockData]([]byte(`{"meta":{"rc":"ok"},"data":[1,2]}`))
		if err == nil {
			t.Fatal("Decode() error = nil, want error")
		}
	})
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"meta":{"rc":"ok"}}`)),
	}

	body, err := response.ReadBody(resp)
	if err != nil {
		t.Fatalf("ReadBody() error = %v, want nil", err)
	}

	if string(body) != `{"meta":{"rc":"ok"}}` {
		t.Errorf("ReadBody() = %q", body)
	}
}

func TestSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, true},
		{http.StatusNoContent, true},
		{http.StatusMovedPermanently, false},
		{http.StatusUnauthorized, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		if got := response.Success(tt.status); got != tt.want {
			t.Errorf("Success(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
