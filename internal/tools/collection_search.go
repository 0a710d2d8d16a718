package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/collection"
	"github.com/curatormcp/curator/internal/validation"
)

// SearchCollectionTool handles the search_collection MCP tool.
type SearchCollectionTool struct {
	manager *collection.IndexManager
}

// NewSearchCollectionTool creates a SearchCollectionTool backed by the
// collection index cache.
func NewSearchCollectionTool(manager *collection.IndexManager) *SearchCollectionTool {
	return &SearchCollectionTool{manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchCollectionTool) Definition() mcp.Tool {
	return mcp.NewTool("search_collection",
		mcp.WithDescription(
			"Search the community collection by name, description, or tag. "+
				"Matching is case-insensitive substring search over the cached index.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithString("category",
			mcp.Description("Restrict the search to one category"),
		),
	)
}

// Handle processes the search_collection tool call.
func (t *SearchCollectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if err := validation.SearchQuery(query); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid query: %v", err)), nil
	}

	index, err := t.manager.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	category := strings.TrimSpace(req.GetString("category", ""))
	needle := strings.ToLower(query)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for %q\n\n", query))

	matches := 0
	for _, cat := range categoryNames(index) {
		if category != "" && cat != category {
			continue
		}
		var hits []collection.IndexEntry
		for _, e := range index.Index[cat] {
			if entryMatches(e, needle) {
				hits = append(hits, e)
			}
		}
		if len(hits) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", cat))
		for _, e := range hits {
			writeEntryLine(&sb, e.Name, e.Version, e.Description)
			matches++
		}
		sb.WriteString("\n")
	}

	if matches == 0 {
		sb.WriteString("No matches. Try a broader query or `browse_collection` to see everything.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// entryMatches reports whether an entry's name, description, or any tag
// contains the lowercased needle.
func entryMatches(e collection.IndexEntry, needle string) bool {
	if strings.Contains(strings.ToLower(e.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Description), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
