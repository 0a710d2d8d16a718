package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/memory"
	"github.com/curatormcp/curator/internal/validation"
)

// MemoryAddTool handles the memory_add_entry MCP tool.
type MemoryAddTool struct {
	store *memory.Store
}

// NewMemoryAddTool creates a MemoryAddTool with the given entry store.
func NewMemoryAddTool(store *memory.Store) *MemoryAddTool {
	return &MemoryAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *MemoryAddTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_add_entry",
		mcp.WithDescription(
			"Append an entry to a memory element. Entries default to untrusted — "+
				"content from external sources should stay untrusted until reviewed. "+
				"Retention and per-memory entry caps are enforced automatically.",
		),
		mcp.WithString("memory",
			mcp.Required(),
			mcp.Description("Slug of the memory element to append to"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Entry content"),
		),
		mcp.WithString("source",
			mcp.Description("Where the content came from (conversation, collection, portfolio)"),
		),
		mcp.WithString("trust",
			mcp.Description("Trust level: untrusted (default), validated, or trusted"),
		),
		mcp.WithNumber("retention_days",
			mcp.Description("Days to keep the entry; 0 (default) keeps it indefinitely"),
		),
	)
}

// Handle processes the memory_add_entry tool call.
func (t *MemoryAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := strings.TrimSpace(req.GetString("memory", ""))
	if err := validation.ElementSlug(slug); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid memory slug: %v", err)), nil
	}

	entry, err := t.store.AddEntry(memory.AddEntryParams{
		MemorySlug:    slug,
		Content:       req.GetString("content", ""),
		Source:        strings.TrimSpace(req.GetString("source", "")),
		Trust:         memory.TrustLevel(req.GetString("trust", "")),
		RetentionDays: int(req.GetFloat("retention_days", 0)),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("## Entry Added\n\n")
	sb.WriteString(fmt.Sprintf("**Memory:** %s\n", entry.MemorySlug))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", entry.ID))
	sb.WriteString(fmt.Sprintf("**Trust:** %s\n", entry.Trust))
	if entry.RetentionDays > 0 {
		sb.WriteString(fmt.Sprintf("**Retention:** %d days\n", entry.RetentionDays))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
