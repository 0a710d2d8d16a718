package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/collection"
)

// CacheStatsTool handles the collection_cache_stats MCP tool.
type CacheStatsTool struct {
	manager *collection.IndexManager
}

// NewCacheStatsTool creates a CacheStatsTool backed by the collection
// index cache.
func NewCacheStatsTool(manager *collection.IndexManager) *CacheStatsTool {
	return &CacheStatsTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *CacheStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("collection_cache_stats",
		mcp.WithDescription(
			"Report the collection index cache state: validity, age, version, "+
				"refresh activity, and circuit breaker status. Read-only.",
		),
	)
}

// Handle processes the collection_cache_stats tool call.
func (t *CacheStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := t.manager.Stats()

	var sb strings.Builder
	sb.WriteString("## Collection Cache\n\n")
	if !stats.HasCache {
		sb.WriteString("No cached index yet — the first `browse_collection` or " +
			"`refresh_collection_index` call will fetch it.\n")
	} else {
		sb.WriteString(fmt.Sprintf("**Valid:** %t\n", stats.IsValid))
		sb.WriteString(fmt.Sprintf("**Age:** %s\n", formatAge(stats.Age)))
		sb.WriteString(fmt.Sprintf("**Version:** %s\n", stats.Version))
		sb.WriteString(fmt.Sprintf("**Elements:** %d\n", stats.TotalElements))
	}
	sb.WriteString(fmt.Sprintf("**Refreshing:** %t\n", stats.IsRefreshing))
	sb.WriteString(fmt.Sprintf("**Breaker failures:** %d\n", stats.BreakerFailures))
	sb.WriteString(fmt.Sprintf("**Breaker open:** %t\n", stats.BreakerOpen))

	return mcp.NewToolResultText(sb.String()), nil
}
