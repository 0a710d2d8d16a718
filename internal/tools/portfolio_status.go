package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PortfolioStatusTool handles the portfolio_status MCP tool.
type PortfolioStatusTool struct {
	factory PortfolioFactory
}

// NewPortfolioStatusTool creates a PortfolioStatusTool with the given
// client factory.
func NewPortfolioStatusTool(factory PortfolioFactory) *PortfolioStatusTool {
	return &PortfolioStatusTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *PortfolioStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("portfolio_status",
		mcp.WithDescription(
			"Check whether your GitHub portfolio repository exists and its "+
				"visibility. Requires GITHUB_TOKEN. Does not create anything.",
		),
	)
}

// Handle processes the portfolio_status tool call.
func (t *PortfolioStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := t.factory()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status, err := client.CheckStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("checking portfolio: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Portfolio Status\n\n")
	sb.WriteString(fmt.Sprintf("**Repository:** %s\n", status.Repo))
	sb.WriteString(fmt.Sprintf("**URL:** %s\n", status.URL))
	if status.Exists {
		visibility := "public"
		if status.Private {
			visibility = "private"
		}
		sb.WriteString(fmt.Sprintf("**Visibility:** %s\n", visibility))
	} else {
		sb.WriteString("\nThe repository does not exist yet — the first `sync_portfolio` call will create it.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
