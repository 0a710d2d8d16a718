// Package tools implements curator's MCP tool handlers.
//
// Each tool is a struct that receives its dependencies through a constructor
// and exposes Definition() for registration plus Handle() compatible with
// mcp-go's CallToolRequest signature. One file per tool.
package tools

import (
	"fmt"
	"strings"
	"time"
)

// formatAge renders a cache age for tool output, rounding to whole seconds.
func formatAge(age time.Duration) string {
	if age < time.Second {
		return "just now"
	}
	return age.Round(time.Second).String()
}

// splitTags parses a comma-separated tag list, trimming whitespace and
// dropping empties.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// writeEntryLine renders one collection entry as a markdown bullet.
func writeEntryLine(sb *strings.Builder, name, version, description string) {
	sb.WriteString(fmt.Sprintf("- **%s**", name))
	if version != "" {
		sb.WriteString(fmt.Sprintf(" (v%s)", version))
	}
	if description != "" {
		sb.WriteString(" — " + description)
	}
	sb.WriteString("\n")
}
