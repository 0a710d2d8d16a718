package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/elements"
	"github.com/curatormcp/curator/internal/validation"
)

// DeleteElementTool handles the delete_element MCP tool.
type DeleteElementTool struct {
	store *elements.Store
}

// NewDeleteElementTool creates a DeleteElementTool with the given store.
func NewDeleteElementTool(store *elements.Store) *DeleteElementTool {
	return &DeleteElementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteElementTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_element",
		mcp.WithDescription("Delete a locally installed element file."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Element type (personas, skills, templates, agents, memories)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Element name or slug"),
		),
	)
}

// Handle processes the delete_element tool call.
func (t *DeleteElementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := elements.Type(req.GetString("type", ""))
	if !elements.ValidType(typ) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown element type %q", typ)), nil
	}

	name := strings.TrimSpace(req.GetString("name", ""))
	if err := validation.ElementName(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid name: %v", err)), nil
	}

	slug := validation.Slugify(name)
	if err := t.store.Delete(typ, slug); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deleting element: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s/%s.", typ, slug)), nil
}
