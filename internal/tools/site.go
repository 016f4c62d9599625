package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) getSites() server.ServerTool {
	tool := mcp.NewTool(ToolGetSites,
		mcp.WithDescription("Get all UniFi sites configured on the controller"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sites, err := t.client.ListSites(ctx)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(FormatSites(sites)), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func (t *Toolset) getSiteHealth() server.ServerTool {
	tool := mcp.NewTool(ToolGetSiteHealth,
		mcp.WithDescription("Get health status for the current site"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		health, err := t.client.SiteHealth(ctx)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(FormatHealth(health)), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}

func (t *Toolset) getNetworks() server.ServerTool {
	tool := mcp.NewTool(ToolGetNetworks,
		mcp.WithDescription("Get all network configurations for the current site"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	handler := func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		networks, err := t.client.ListNetworks(ctx)
		if err != nil {
			return errorResult(err), nil
		}

		return mcp.NewToolResultText(FormatNetworks(networks)), nil
	}

	return server.ServerTool{Tool: tool, Handler: handler}
}
