package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/elements"
)

// CreateElementTool handles the create_element MCP tool.
type CreateElementTool struct {
	store *elements.Store
}

// NewCreateElementTool creates a CreateElementTool with the given store.
func NewCreateElementTool(store *elements.Store) *CreateElementTool {
	return &CreateElementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateElementTool) Definition() mcp.Tool {
	return mcp.NewTool("create_element",
		mcp.WithDescription(
			"Create a new local element. Provide the metadata and the full markdown "+
				"body — the tool writes the element file and assigns it an ID.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Human-readable element name"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Element type (personas, skills, templates, agents, memories)"),
		),
		mcp.WithString("description",
			mcp.Description("One-line description of what the element does"),
		),
		mcp.WithString("body",
			mcp.Description("Markdown body of the element"),
		),
		mcp.WithString("author",
			mcp.Description("Author attribution"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
	)
}

// Handle processes the create_element tool call.
func (t *CreateElementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	el := &elements.Element{
		Metadata: elements.Metadata{
			Name:        strings.TrimSpace(req.GetString("name", "")),
			Type:        elements.Type(req.GetString("type", "")),
			Description: strings.TrimSpace(req.GetString("description", "")),
			Author:      strings.TrimSpace(req.GetString("author", "")),
			Tags:        splitTags(req.GetString("tags", "")),
			Version:     "1.0.0",
		},
		Body: req.GetString("body", ""),
	}

	slug, err := t.store.Save(el)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving element: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Element Created\n\n")
	sb.WriteString(fmt.Sprintf("**Name:** %s\n", el.Metadata.Name))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", el.Metadata.Type))
	sb.WriteString(fmt.Sprintf("**Slug:** %s\n", slug))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", el.Metadata.ID))
	sb.WriteString("\nUse `sync_portfolio` to publish it to your GitHub portfolio.\n")

	return mcp.NewToolResultText(sb.String()), nil
}
