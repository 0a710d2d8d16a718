package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/collection"
)

// RefreshIndexTool handles the refresh_collection_index MCP tool.
type RefreshIndexTool struct {
	manager *collection.IndexManager
}

// NewRefreshIndexTool creates a RefreshIndexTool backed by the collection
// index cache.
func NewRefreshIndexTool(manager *collection.IndexManager) *RefreshIndexTool {
	return &RefreshIndexTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *RefreshIndexTool) Definition() mcp.Tool {
	return mcp.NewTool("refresh_collection_index",
		mcp.WithDescription(
			"Force a synchronous refresh of the collection index from upstream, "+
				"bypassing the TTL. Falls back to the cached copy if the fetch fails.",
		),
	)
}

// Handle processes the refresh_collection_index tool call.
func (t *RefreshIndexTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := t.manager.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Collection index refreshed: version %s, %d elements.",
		index.Version, index.TotalElements,
	)), nil
}
