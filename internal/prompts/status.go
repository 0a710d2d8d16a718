package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the curator-status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("curator-status",
		mcp.WithPromptDescription(
			"Show a health overview: installed elements, collection cache "+
				"state, and portfolio sync status.",
		),
	)
}

// Handle processes the curator-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "curator health overview",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Give me a curator status overview.\n\n" +
						"Please:\n" +
						"1. Run `list_elements` and summarize what's installed per type\n" +
						"2. Run `collection_cache_stats` and flag anything unhealthy (stale cache, open circuit breaker)\n" +
						"3. Run `portfolio_status` if GITHUB_TOKEN is configured; otherwise note that portfolio sync is unavailable\n" +
						"4. Condense everything into a short status table",
				),
			},
		},
	}, nil
}
