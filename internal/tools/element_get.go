package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/elements"
	"github.com/curatormcp/curator/internal/validation"
)

// GetElementTool handles the get_element MCP tool.
type GetElementTool struct {
	store *elements.Store
}

// NewGetElementTool creates a GetElementTool with the given store.
func NewGetElementTool(store *elements.Store) *GetElementTool {
	return &GetElementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetElementTool) Definition() mcp.Tool {
	return mcp.NewTool("get_element",
		mcp.WithDescription(
			"Read a locally installed element, including its metadata and full body.",
		),
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

// Handle processes the get_element tool call.
func (t *GetElementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := elements.Type(req.GetString("type", ""))
	if !elements.ValidType(typ) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown element type %q", typ)), nil
	}

	name := strings.TrimSpace(req.GetString("name", ""))
	if err := validation.ElementName(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid name: %v", err)), nil
	}

	el, err := t.store.Load(typ, validation.Slugify(name))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading element: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", el.Metadata.Name))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", el.Metadata.Type))
	if el.Metadata.Description != "" {
		sb.WriteString(fmt.Sprintf("**Description:** %s\n", el.Metadata.Description))
	}
	if el.Metadata.Version != "" {
		sb.WriteString(fmt.Sprintf("**Version:** %s\n", el.Metadata.Version))
	}
	if el.Metadata.Author != "" {
		sb.WriteString(fmt.Sprintf("**Author:** %s\n", el.Metadata.Author))
	}
	if len(el.Metadata.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("**Tags:** %s\n", strings.Join(el.Metadata.Tags, ", ")))
	}
	sb.WriteString("\n---\n\n")
	sb.WriteString(el.Body)

	return mcp.NewToolResultText(sb.String()), nil
}
