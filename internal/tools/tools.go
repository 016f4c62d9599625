// Package tools exposes the controller operations as MCP tools. Every tool
// answers with human-readable text; controller failures become tool error
// results rather than protocol errors.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lexfrei/unifi-mcp/api/network"
	"github.com/lexfrei/unifi-mcp/observability"
)

// Tool names.
const (
	ToolGetDevices        = "get_devices"
	ToolRestartDevice     = "restart_device"
	ToolGetDeviceActivity = "get_device_activity"
	ToolGetClients        = "get_clients"
	ToolBlockClient       = "block_client"
	ToolUnblockClient     = "unblock_client"
	ToolDisconnectClient  = "disconnect_client"
	ToolGetSites          = "get_sites"
	ToolGetSiteHealth     = "get_site_health"
	ToolGetNetworks       = "get_networks"
)

// Toolset binds the MCP tools to one controller client.
type Toolset struct {
	client  network.ControllerAPIClient
	logger  observability.Logger
	metrics *Metrics
}

// New creates a Toolset. logger and metrics may be nil.
func New(client network.ControllerAPIClient, logger observability.Logger, metrics *Metrics) *Toolset {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &Toolset{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// Tools returns every tool with its instrumented handler.
func (t *Toolset) Tools() []server.ServerTool {
	tools := []server.ServerTool{
		t.getDevices(),
		t.restartDevice(),
		t.getDeviceActivity(),
		t.getClients(),
		t.blockClient(),
		t.unblockClient(),
		t.disconnectClient(),
		t.getSites(),
		t.getSiteHealth(),
		t.getNetworks(),
	}

	for i := range tools {
		tools[i].Handler = Instrument(tools[i].Tool.Name, tools[i].Handler, t.metrics, t.logger)
	}

	return tools
}

// Register adds every tool to s.
func (t *Toolset) Register(s *server.MCPServer) {
	s.AddTools(t.Tools()...)
}

func macArgument(description string) mcp.ToolOption {
	return mcp.WithString("mac",
		mcp.Required(),
		mcp.Description(description),
	)
}

// errorResult renders err as a tool error result. The handler itself never
// returns a Go error for controller failures.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}
