package tools

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/unifi-mcp/observability"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  []observability.Field
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *captureLogger) log(level, msg string, fields []observability.Field) {
	entry := logEntry{level: level, msg: msg, fields: map[string]any{}}
	for _, f := range append(append([]observability.Field{}, l.fields...), fields...) {
		entry.fields[f.Key] = f.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, entry)
}

func (l *captureLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), *l.entries...)
}

func (l *captureLogger) Debug(msg string, fields ...observability.Field) { l.log("debug", msg, fields) }
func (l *captureLogger) Info(msg string, fields ...observability.Field)  { l.log("info", msg, fields) }
func (l *captureLogger) Warn(msg string, fields ...observability.Field)  { l.log("warn", msg, fields) }
func (l *captureLogger) Error(msg string, fields ...observability.Field) { l.log("error", msg, fields) }

//nolint:ireturn // Test double satisfies Logger interface
func (l *captureLogger) With(fields ...observability.Field) observability.Logger {
	return &captureLogger{
		mu:      l.mu,
		entries: l.entries,
		fields:  append(append([]observability.Field{}, l.fields...), fields...),
	}
}

func TestInstrument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		wantStatus string
		wantLevel  string
		wantErr    bool
	}{
		{
			name: "success",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("ok"), nil
			},
			wantStatus: StatusSuccess,
			wantLevel:  "info",
		},
		{
			name: "tool error result",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultError("Error: boom"), nil
			},
			wantStatus: StatusError,
			wantLevel:  "warn",
		},
		{
			name: "handler error",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, errors.New("boom")
			},
			wantStatus: StatusError,
			wantLevel:  "warn",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := prometheus.NewRegistry()
			metrics := NewMetrics(reg)
			logger := newCaptureLogger()

			wrapped := Instrument("get_devices", tt.handler, metrics, logger)

			_, err := wrapped(context.Background(), mcp.CallToolRequest{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.InDelta(t, 1, testutil.ToFloat64(metrics.calls.WithLabelValues("get_devices", tt.wantStatus)), 0)
			assert.InDelta(t, 0, testutil.ToFloat64(metrics.active.WithLabelValues("get_devices")), 0)
			assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))

			entries := logger.all()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].level)
			assert.Equal(t, "get_devices", entries[0].fields["tool"])
			assert.Equal(t, tt.wantStatus, entries[0].fields["status"])
			assert.NotEmpty(t, entries[0].fields["request_id"])
		})
	}
}

func TestInstrumentUniqueRequestIDs(t *testing.T) {
	t.Parallel()

	logger := newCaptureLogger()
	wrapped := Instrument("get_sites", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}, nil, logger)

	for range 3 {
		_, err := wrapped(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
	}

	seen := map[any]bool{}
	for _, e := range logger.all() {
		seen[e.fields["request_id"]] = true
	}
	assert.Len(t, seen, 3)
}

func TestToolsetRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	tools := New(&fakeClient{}, nil, NewMetrics(reg)).Tools()

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]any{"mac": "bad"}

	_, err := findTool(t, tools, ToolBlockClient).Handler(context.Background(), request)
	require.NoError(t, err)

	expected := `
# HELP mcp_tool_calls_total Total number of MCP tool calls by tool name and status
# TYPE mcp_tool_calls_total counter
mcp_tool_calls_total{status="error",tool_name="block_client"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mcp_tool_calls_total"))
}
