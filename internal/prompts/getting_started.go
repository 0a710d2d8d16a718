// Package prompts implements curator's MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// GettingStartedPrompt handles the getting-started MCP prompt.
// It walks a new user through browsing the collection and creating
// their first element.
type GettingStartedPrompt struct{}

// NewGettingStartedPrompt creates a GettingStartedPrompt.
func NewGettingStartedPrompt() *GettingStartedPrompt {
	return &GettingStartedPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *GettingStartedPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("getting-started",
		mcp.WithPromptDescription(
			"Get started with curator: browse the community collection, "+
				"create your first element, and set up a GitHub portfolio.",
		),
		mcp.WithArgument("interest",
			mcp.ArgumentDescription("What you want to customize (e.g. 'code review', 'writing')"),
		),
	)
}

// Handle processes the getting-started prompt request.
func (p *GettingStartedPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	interest := "general productivity"
	if args := req.Params.Arguments; args != nil {
		if v, ok := args["interest"]; ok && v != "" {
			interest = v
		}
	}

	return &mcp.GetPromptResult{
		Description: "Get started with curator",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I'm new to curator and interested in %s.\n\n"+
						"Please:\n"+
						"1. Run `search_collection` with a query related to my interest and show me what the community has published\n"+
						"2. Run `list_elements` to show what I already have installed locally\n"+
						"3. Help me create my first element with `create_element` — ask me what it should do first\n"+
						"4. Mention that `sync_portfolio` can publish my elements to GitHub once I set GITHUB_TOKEN\n\n"+
						"Keep it short — one step at a time.",
					interest,
				)),
			},
		},
	}, nil
}
