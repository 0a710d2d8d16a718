package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/elements"
)

// ListElementsTool handles the list_elements MCP tool.
type ListElementsTool struct {
	store *elements.Store
}

// NewListElementsTool creates a ListElementsTool with the given store.
func NewListElementsTool(store *elements.Store) *ListElementsTool {
	return &ListElementsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListElementsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_elements",
		mcp.WithDescription(
			"List locally installed elements. Optionally filter by element type "+
				"(personas, skills, templates, agents, memories).",
		),
		mcp.WithString("type",
			mcp.Description("Element type to list. Omit to list all types."),
		),
	)
}

// Handle processes the list_elements tool call.
func (t *ListElementsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := elements.Type(req.GetString("type", ""))
	types := elements.Types
	if filter != "" {
		if !elements.ValidType(filter) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown element type %q", filter)), nil
		}
		types = []elements.Type{filter}
	}

	var sb strings.Builder
	sb.WriteString("## Local Elements\n\n")

	total := 0
	for _, typ := range types {
		list, err := t.store.List(typ)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing %s: %v", typ, err)), nil
		}
		if len(list) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", typ))
		for _, el := range list {
			writeEntryLine(&sb, el.Metadata.Name, el.Metadata.Version, el.Metadata.Description)
			total++
		}
		sb.WriteString("\n")
	}

	if total == 0 {
		sb.WriteString("No elements installed yet. Use `create_element` to make one, " +
			"or `browse_collection` to discover community elements.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
