package observability_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/unifi-mcp/observability"
)

func TestNoopMetricsRecorder(t *testing.T) {
	t.Parallel()

	recorder := observability.NoopMetricsRecorder()

	// All methods should execute without panicking
	recorder.RecordHTTPRequest("GET", "/test", 200, time.Second)
	recorder.RecordReauth("/api/s/:site/stat/device")
	recorder.RecordRateLimit("/endpoint", time.Millisecond*100)
	recorder.RecordError("operation", "NetworkError")
	recorder.RecordLogin("os", observability.LoginSuccess)
}

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder := observability.NewPrometheusRecorder(reg)

	recorder.RecordHTTPRequest("GET", "/api/s/:site/stat/device", 200, 50*time.Millisecond)
	recorder.RecordHTTPRequest("GET", "/api/s/:site/stat/device", 200, 70*time.Millisecond)
	recorder.RecordHTTPRequest("POST", "/api/s/:site/cmd/stamgr", 401, 10*time.Millisecond)
	recorder.RecordReauth("/api/s/:site/cmd/stamgr")
	recorder.RecordRateLimit("/api/s/:site/stat/sta", 20*time.Millisecond)
	recorder.RecordError("list_devices", "connection")
	recorder.RecordLogin("standard", observability.LoginSuccess)
	recorder.RecordLogin("standard", observability.LoginRejected)
	recorder.RecordLogin("standard", observability.LoginRejected)

	expected := `
# HELP unifi_logins_total Login attempts by controller flavor and outcome.
# TYPE unifi_logins_total counter
unifi_logins_total{flavor="standard",outcome="rejected"} 2
unifi_logins_total{flavor="standard",outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "unifi_logins_total"))

	count, err := testutil.GatherAndCount(reg, "unifi_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per method/path/status")

	count, err = testutil.GatherAndCount(reg,
		"unifi_session_reauth_total", "unifi_errors_total", "unifi_rate_limit_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPrometheusRecorderDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	observability.NewPrometheusRecorder(reg)

	assert.Panics(t, func() {
		observability.NewPrometheusRecorder(reg)
	})
}

// BenchmarkNoopMetricsRecorder measures the overhead of noop metrics recorder calls.
func BenchmarkNoopMetricsRecorder(b *testing.B) {
	recorder := observability.NoopMetricsRecorder()

	b.Run("RecordHTTPRequest", func(b *testing.B) {
		for range b.N {
			recorder.RecordHTTPRequest("GET", "/test", 200, time.Second)
		}
	})

	b.Run("RecordReauth", func(b *testing.B) {
		for range b.N {
			recorder.RecordReauth("/endpoint")
		}
	})

	b.Run("RecordRateLimit", func(b *testing.B) {
		for range b.N {
			recorder.RecordRateLimit("/endpoint", time.Millisecond*100)
		}
	})

	b.Run("RecordError", func(b *testing.B) {
		for range b.N {
			recorder.RecordError("operation", "NetworkError")
		}
	})
}
