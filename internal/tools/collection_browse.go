package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/collection"
)

// BrowseCollectionTool handles the browse_collection MCP tool.
type BrowseCollectionTool struct {
	manager *collection.IndexManager
}

// NewBrowseCollectionTool creates a BrowseCollectionTool backed by the
// collection index cache.
func NewBrowseCollectionTool(manager *collection.IndexManager) *BrowseCollectionTool {
	return &BrowseCollectionTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *BrowseCollectionTool) Definition() mcp.Tool {
	return mcp.NewTool("browse_collection",
		mcp.WithDescription(
			"Browse the community collection of elements by category. "+
				"Served from the local index cache; a stale cache is refreshed in "+
				"the background without blocking this call.",
		),
		mcp.WithString("category",
			mcp.Description("Category to browse (personas, skills, templates, agents, memories). Omit to list all categories."),
		),
	)
}

// Handle processes the browse_collection tool call.
func (t *BrowseCollectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := t.manager.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	category := strings.TrimSpace(req.GetString("category", ""))

	var sb strings.Builder
	sb.WriteString("## Community Collection\n\n")
	sb.WriteString(fmt.Sprintf("**Version:** %s — %d elements\n\n", index.Version, index.TotalElements))

	if category != "" {
		entries, ok := index.Index[category]
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf(
				"unknown category %q — available: %s",
				category, strings.Join(categoryNames(index), ", "),
			)), nil
		}
		writeCategory(&sb, category, entries)
	} else {
		for _, cat := range categoryNames(index) {
			writeCategory(&sb, cat, index.Index[cat])
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// categoryNames returns the index's categories in sorted order.
func categoryNames(index *collection.CollectionIndex) []string {
	names := make([]string, 0, len(index.Index))
	for cat := range index.Index {
		names = append(names, cat)
	}
	sort.Strings(names)
	return names
}

func writeCategory(sb *strings.Builder, category string, entries []collection.IndexEntry) {
	sb.WriteString(fmt.Sprintf("### %s (%d)\n\n", category, len(entries)))
	for _, e := range entries {
		writeEntryLine(sb, e.Name, e.Version, e.Description)
	}
	sb.WriteString("\n")
}
