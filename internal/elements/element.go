// Package elements implements curator's element model: AI customization
// units (personas, skills, templates, agents, memories) stored as markdown
// files with a YAML frontmatter block.
package elements

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Type identifies an element kind. Values double as directory and collection
// category names, so they are plural.
type Type string

const (
	TypePersona  Type = "personas"
	TypeSkill    Type = "skills"
	TypeTemplate Type = "templates"
	TypeAgent    Type = "agents"
	TypeMemory   Type = "memories"
)

// Types lists all element kinds in display order.
var Types = []Type{TypePersona, TypeSkill, TypeTemplate, TypeAgent, TypeMemory}

// ValidType reports whether t names a known element kind.
func ValidType(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Metadata is the YAML frontmatter block of an element file.
type Metadata struct {
	ID          string   `yaml:"id,omitempty"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Type        Type     `yaml:"type"`
	Version     string   `yaml:"version,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	Created     string   `yaml:"created,omitempty"`
	Updated     string   `yaml:"updated,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// Element is a parsed element document: frontmatter plus markdown body.
type Element struct {
	Metadata Metadata
	Body     string
}

const frontmatterDelimiter = "---"

// Parse decodes a markdown-with-frontmatter document. The file must open
// with a frontmatter block; the body is everything after the closing
// delimiter, with one leading newline trimmed.
func Parse(data []byte) (*Element, error) {
	text := string(data)

	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") && text != frontmatterDelimiter {
		return nil, fmt.Errorf("element document missing frontmatter block")
	}

	rest := strings.TrimPrefix(text, frontmatterDelimiter+"\n")
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return nil, fmt.Errorf("element frontmatter is not terminated")
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return nil, fmt.Errorf("parsing element frontmatter: %w", err)
	}
	if meta.Name == "" {
		return nil, fmt.Errorf("element frontmatter missing name")
	}
	if meta.Type == "" {
		return nil, fmt.Errorf("element frontmatter missing type")
	}
	if !ValidType(meta.Type) {
		return nil, fmt.Errorf("unknown element type %q", meta.Type)
	}

	body := rest[end+len("\n"+frontmatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	return &Element{Metadata: meta, Body: body}, nil
}

// Render serializes an element back to its on-disk document form.
func (e *Element) Render() ([]byte, error) {
	meta, err := yaml.Marshal(&e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("serializing element frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter + "\n")
	b.Write(meta)
	b.WriteString(frontmatterDelimiter + "\n")
	if e.Body != "" {
		b.WriteString("\n")
		b.WriteString(e.Body)
	}
	return []byte(b.String()), nil
}

// Touch stamps Updated (and Created, if unset) with the current UTC time.
func (e *Element) Touch(now time.Time) {
	stamp := now.UTC().Format(time.RFC3339)
	if e.Metadata.Created == "" {
		e.Metadata.Created = stamp
	}
	e.Metadata.Updated = stamp
}
