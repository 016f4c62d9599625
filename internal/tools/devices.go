package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) getDevices() server.ServerTool {
	tool := mcp.NewTool(ToolGetDevices,
		mcp.WithDescription("Get all UniFi network devices (access points, switches, gateways)"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		devices, err := t.client.ListDevices(ctx)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(FormatDevices(devices)), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func (t *Toolset) restartDevice() server.ServerTool {
	tool := mcp.NewTool(ToolRestartDevice,
		mcp.WithDescription("Restart a UniFi network device by its MAC address"),
		macArgument("MAC address of the device to restart (e.g., '00:11:22:33:44:55')"),
		mcp.WithDestructiveHintAnnotation(true),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mac, err := request.RequireString("mac")
		if err != nil {
			return errorResult(err), nil
		}

		result, err := t.client.RestartDevice(ctx, mac)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText("Restart command sent to device " + result.MAC), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func (t *Toolset) getDeviceActivity() server.ServerTool {
	tool := mcp.NewTool(ToolGetDeviceActivity,
		mcp.WithDescription("Get a device together with the clients connected to it and their combined traffic"),
		macArgument("MAC address of the access point, switch or gateway"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mac, err := request.RequireString("mac")
		if err != nil {
			return errorResult(err), nil
		}

		record, err := t.client.DeviceActivity(ctx, mac)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(FormatDeviceActivity(record)), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}
