// Package resources implements curator's MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (curator://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curatormcp/curator/internal/collection"
)

// Handler manages curator resource endpoints.
type Handler struct {
	manager *collection.IndexManager
}

// NewHandler creates a resource Handler backed by the collection index cache.
func NewHandler(manager *collection.IndexManager) *Handler {
	return &Handler{manager: manager}
}

// IndexResource returns the MCP resource definition for the collection index.
func (h *Handler) IndexResource() mcp.Resource {
	return mcp.NewResource(
		"curator://collection/index",
		"Collection Index",
		mcp.WithResourceDescription("Summary of the cached community collection index: version, categories, and element counts"),
		mcp.WithMIMEType("application/json"),
	)
}

// indexSummary is the JSON shape served by the index resource.
type indexSummary struct {
	Version       string         `json:"version"`
	Generated     string         `json:"generated"`
	TotalElements int            `json:"total_elements"`
	Categories    map[string]int `json:"categories"`
}

// HandleIndex serves the collection index summary. The cache's
// stale-while-revalidate semantics apply: a stale index is served
// immediately while a refresh runs in the background.
func (h *Handler) HandleIndex(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	index, err := h.manager.Get(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	summary := indexSummary{
		Version:       index.Version,
		Generated:     index.Generated,
		TotalElements: index.TotalElements,
		Categories:    make(map[string]int, len(index.Index)),
	}
	for cat, entries := range index.Index {
		summary.Categories[cat] = len(entries)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling index summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource carrying an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
