package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/collection"
)

// ClearCacheTool handles the clear_collection_cache MCP tool.
type ClearCacheTool struct {
	manager *collection.IndexManager
}

// NewClearCacheTool creates a ClearCacheTool backed by the collection
// index cache.
func NewClearCacheTool(manager *collection.IndexManager) *ClearCacheTool {
	return &ClearCacheTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *ClearCacheTool) Definition() mcp.Tool {
	return mcp.NewTool("clear_collection_cache",
		mcp.WithDescription(
			"Drop the collection index cache from memory and disk, and reset the "+
				"circuit breaker. The next collection call will fetch from upstream.",
		),
	)
}

// Handle processes the clear_collection_cache tool call.
func (t *ClearCacheTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.manager.ClearCache(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clearing cache: %v", err)), nil
	}
	return mcp.NewToolResultText("Collection cache cleared."), nil
}
