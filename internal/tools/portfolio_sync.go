package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/elements"
	"github.com/curatormcp/curator/internal/portfolio"
	"github.com/curatormcp/curator/internal/validation"
)

// PortfolioClient is the subset of the GitHub client the portfolio tools
// depend on.
type PortfolioClient interface {
	EnsureRepo(ctx context.Context) (*portfolio.RepoInfo, error)
	Upload(ctx context.Context, path string, content []byte, message string) error
	CheckStatus(ctx context.Context) (*portfolio.Status, error)
	RepoURL() string
}

// PortfolioFactory builds a PortfolioClient on demand. Construction is
// deferred to call time so the server starts fine without a GitHub token —
// the error surfaces only when a portfolio tool is actually used.
type PortfolioFactory func() (PortfolioClient, error)

// SyncPortfolioTool handles the sync_portfolio MCP tool.
type SyncPortfolioTool struct {
	store   *elements.Store
	factory PortfolioFactory
}

// NewSyncPortfolioTool creates a SyncPortfolioTool with the given element
// store and client factory.
func NewSyncPortfolioTool(store *elements.Store, factory PortfolioFactory) *SyncPortfolioTool {
	return &SyncPortfolioTool{store: store, factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *SyncPortfolioTool) Definition() mcp.Tool {
	return mcp.NewTool("sync_portfolio",
		mcp.WithDescription(
			"Upload a local element to your GitHub portfolio repository. "+
				"Creates the repository (private) on first use. Requires GITHUB_TOKEN.",
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

// Handle processes the sync_portfolio tool call.
func (t *SyncPortfolioTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := elements.Type(req.GetString("type", ""))
	if !elements.ValidType(typ) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown element type %q", typ)), nil
	}

	name := strings.TrimSpace(req.GetString("name", ""))
	if err := validation.ElementName(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid name: %v", err)), nil
	}

	slug := validation.Slugify(name)
	el, err := t.store.Load(typ, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading element: %v", err)), nil
	}

	content, err := el.Render()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering element: %v", err)), nil
	}

	client, err := t.factory()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := client.EnsureRepo(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preparing portfolio repo: %v", err)), nil
	}

	remotePath := fmt.Sprintf("%s/%s.md", typ, slug)
	message := fmt.Sprintf("Sync %s %q", typ, el.Metadata.Name)
	if err := client.Upload(ctx, remotePath, content, message); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("uploading element: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Synced %s to %s/%s.", el.Metadata.Name, client.RepoURL(), remotePath,
	)), nil
}
