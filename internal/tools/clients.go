package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lexfrei/unifi-mcp/api/network"
)

func (t *Toolset) getClients() server.ServerTool {
	tool := mcp.NewTool(ToolGetClients,
		mcp.WithDescription("Get all currently connected clients on the UniFi network"),
		mcp.WithBoolean("include_offline",
			mcp.Description("Include offline/historical clients"),
			mcp.DefaultBool(false),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := network.ClientsActive
		if request.GetBool("include_offline", false) {
			filter = network.ClientsAll
		}

		clients, err := t.client.ListClients(ctx, filter)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(FormatClients(clients)), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

type clientCommand func(ctx context.Context, mac string) (*network.CommandResult, error)

// clientCommandTool builds the block/unblock/disconnect tools, which differ
// only in the command and the confirmation text.
func clientCommandTool(name, description, macDescription, done string, run clientCommand) server.ServerTool {
	tool := mcp.NewTool(name,
		mcp.WithDescription(description),
		macArgument(macDescription),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mac, err := request.RequireString("mac")
		if err != nil {
			return errorResult(err), nil
		}

		result, err := run(ctx, mac)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText("Client " + result.MAC + " " + done), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func (t *Toolset) blockClient() server.ServerTool {
	return clientCommandTool(ToolBlockClient,
		"Block a client from accessing the network",
		"MAC address of the client to block",
		"has been blocked from the network.",
		t.client.BlockClient,
	)
}

func (t *Toolset) unblockClient() server.ServerTool {
	return clientCommandTool(ToolUnblockClient,
		"Unblock a previously blocked client",
		"MAC address of the client to unblock",
		"has been unblocked.",
		t.client.UnblockClient,
	)
}

func (t *Toolset) disconnectClient() server.ServerTool {
	return clientCommandTool(ToolDisconnectClient,
		"Force disconnect a client from the network (it may reconnect immediately)",
		"MAC address of the client to disconnect",
		"has been disconnected.",
		t.client.DisconnectClient,
	)
}
