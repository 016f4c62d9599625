package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lexfrei/unifi-mcp/observability"
)

// Tool call outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the Prometheus collectors for tool calls.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	active   *prometheus.GaugeVec
}

// NewMetrics registers the tool call collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_tool_calls_total",
				Help: "Total number of MCP tool calls by tool name and status",
			},
			[]string{"tool_name", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_tool_duration_seconds",
				Help:    "Duration of MCP tool calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),
		active: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcp_tool_active_calls",
				Help: "Number of currently active MCP tool calls",
			},
			[]string{"tool_name"},
		),
	}
}

// Instrument wraps a tool handler with metrics and a structured log line
// carrying a per-call request id. A result flagged IsError counts as an error.
// Either m or logger may be nil.
func Instrument(name string, handler server.ToolHandlerFunc, m *Metrics, logger observability.Logger) server.ToolHandlerFunc {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		log := logger.With(
			observability.F("tool", name),
			observability.F("request_id", uuid.NewString()),
		)

		if m != nil {
			m.active.WithLabelValues(name).Inc()
			defer m.active.WithLabelValues(name).Dec()
		}

		result, err := handler(ctx, request)

		duration := time.Since(start)
		status := StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = StatusError
		}

		if m != nil {
			m.duration.WithLabelValues(name).Observe(duration.Seconds())
			m.calls.WithLabelValues(name, status).Inc()
		}

		fields := []observability.Field{
			observability.F("status", status),
			observability.F("duration", duration),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err))
		}
		if status == StatusError {
			log.Warn("tool call failed", fields...)
		} else {
			log.Info("tool call completed", fields...)
		}

		return result, err
	}
}
