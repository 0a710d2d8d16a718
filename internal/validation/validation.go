// Package validation guards every externally supplied string before it
// reaches the filesystem, the GitHub API, or a regex.
//
// Two hardening rules apply throughout:
//   - Length is checked before any pattern match, and every pattern is
//     anchored with no nested quantifiers, so no input can trigger
//     catastrophic regex backtracking.
//   - Invisible and direction-override Unicode (zero-width characters, bidi
//     controls) is rejected outright — it has no legitimate use in names or
//     paths and is the raw material of homograph tricks.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxNameLength caps element names.
	MaxNameLength = 100

	// MaxQueryLength caps collection search queries.
	MaxQueryLength = 256

	// MaxPathLength caps relative element paths.
	MaxPathLength = 1024
)

var (
	// ErrEmpty is returned for blank required input.
	ErrEmpty = errors.New("must not be empty")

	// ErrHiddenCharacters is returned when input carries invisible or
	// direction-override Unicode.
	ErrHiddenCharacters = errors.New("contains hidden or control characters")
)

// Anchored, linear-time patterns. GitHub's own rules: owners are
// alphanumeric plus inner hyphens, max 39; repos allow dots and underscores.
var (
	githubOwnerPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,38})?$`)
	githubRepoPattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
	elementSlugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,98})?$`)
)

// hiddenRune reports whether r is a control, zero-width, or bidi-override
// character.
func hiddenRune(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u200e', '\u200f', // zero-width + marks
		'\u202a', '\u202b', '\u202c', '\u202d', '\u202e', // bidi embedding/override
		'\u2060', '\ufeff': // word joiner, BOM
		return true
	}
	return false
}

func containsHidden(s string) bool {
	return strings.ContainsFunc(s, hiddenRune)
}

// ElementName validates a human-readable element name.
func ElementName(name string) error {
	if name == "" {
		return fmt.Errorf("element name %w", ErrEmpty)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("element name exceeds %d characters", MaxNameLength)
	}
	if containsHidden(name) {
		return fmt.Errorf("element name %w", ErrHiddenCharacters)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("element name %w", ErrEmpty)
	}
	return nil
}

// ElementSlug validates a filename-safe element identifier.
func ElementSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("element slug %w", ErrEmpty)
	}
	if len(slug) > MaxNameLength {
		return fmt.Errorf("element slug exceeds %d characters", MaxNameLength)
	}
	if !elementSlugPattern.MatchString(slug) {
		return fmt.Errorf("element slug %q must be lowercase alphanumeric with hyphens", slug)
	}
	return nil
}

// RelativePath validates a collection or portfolio file path. Absolute
// paths, parent traversal, and Windows separators are all rejected.
func RelativePath(path string) error {
	if path == "" {
		return fmt.Errorf("path %w", ErrEmpty)
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("path exceeds %d characters", MaxPathLength)
	}
	if containsHidden(path) {
		return fmt.Errorf("path %w", ErrHiddenCharacters)
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return fmt.Errorf("path %q must be relative with forward slashes", path)
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return fmt.Errorf("path %q must not traverse parent directories", path)
		}
		if segment == "" {
			return fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return nil
}

// GitHubOwner validates a GitHub user or organization name.
func GitHubOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("github owner %w", ErrEmpty)
	}
	if !githubOwnerPattern.MatchString(owner) {
		return fmt.Errorf("invalid github owner %q", owner)
	}
	return nil
}

// GitHubRepo validates a GitHub repository name.
func GitHubRepo(repo string) error {
	if repo == "" {
		return fmt.Errorf("github repository %w", ErrEmpty)
	}
	if !githubRepoPattern.MatchString(repo) {
		return fmt.Errorf("invalid github repository %q", repo)
	}
	return nil
}

// SearchQuery validates a collection search query.
func SearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query %w", ErrEmpty)
	}
	if len(query) > MaxQueryLength {
		return fmt.Errorf("search query exceeds %d characters", MaxQueryLength)
	}
	if containsHidden(query) {
		return fmt.Errorf("search query %w", ErrHiddenCharacters)
	}
	return nil
}

// Slugify derives a filename-safe slug from a display name. Characters
// outside [a-z0-9] collapse into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
