package elements

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curatormcp/curator/internal/validation"
)

// Store persists elements as markdown files under a root directory, one
// subdirectory per element type: <root>/<type>/<slug>.md.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore creates a file-backed element store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir, now: time.Now}
}

// path returns the file location for an element slug of the given type.
func (s *Store) path(typ Type, slug string) string {
	return filepath.Join(s.root, string(typ), slug+".md")
}

// Save validates, stamps, and writes an element. The slug is derived from
// the element name; a missing ID gets a fresh UUID. Returns the slug the
// element was stored under.
func (s *Store) Save(el *Element) (string, error) {
	if err := validation.ElementName(el.Metadata.Name); err != nil {
		return "", err
	}
	if !ValidType(el.Metadata.Type) {
		return "", fmt.Errorf("unknown element type %q", el.Metadata.Type)
	}

	slug := validation.Slugify(el.Metadata.Name)
	if err := validation.ElementSlug(slug); err != nil {
		return "", fmt.Errorf("deriving slug from %q: %w", el.Metadata.Name, err)
	}

	if el.Metadata.ID == "" {
		el.Metadata.ID = uuid.NewString()
	}
	el.Touch(s.now())

	data, err := el.Render()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, string(el.Metadata.Type))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating element directory: %w", err)
	}
	if err := os.WriteFile(s.path(el.Metadata.Type, slug), data, 0o644); err != nil {
		return "", fmt.Errorf("writing element: %w", err)
	}
	return slug, nil
}

// Load reads one element by type and slug.
func (s *Store) Load(typ Type, slug string) (*Element, error) {
	if !ValidType(typ) {
		return nil, fmt.Errorf("unknown element type %q", typ)
	}
	if err := validation.ElementSlug(slug); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(typ, slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("element %s/%s not found", typ, slug)
		}
		return nil, fmt.Errorf("reading element: %w", err)
	}

	el, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("element %s/%s: %w", typ, slug, err)
	}
	return el, nil
}

// List returns the parsed elements of one type, sorted by name. Files that
// fail to parse are skipped — one broken element must not hide the rest.
func (s *Store) List(typ Type) ([]*Element, error) {
	if !ValidType(typ) {
		return nil, fmt.Errorf("unknown element type %q", typ)
	}

	entries, err := os.ReadDir(filepath.Join(s.root, string(typ)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing elements: %w", err)
	}

	var out []*Element
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, string(typ), entry.Name()))
		if err != nil {
			continue
		}
		el, err := Parse(data)
		if err != nil {
			continue
		}
		out = append(out, el)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata.Name < out[j].Metadata.Name
	})
	return out, nil
}

// Delete removes one element file.
func (s *Store) Delete(typ Type, slug string) error {
	if !ValidType(typ) {
		return fmt.Errorf("unknown element type %q", typ)
	}
	if err := validation.ElementSlug(slug); err != nil {
		return err
	}

	err := os.Remove(s.path(typ, slug))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("element %s/%s not found", typ, slug)
		}
		return fmt.Errorf("deleting element: %w", err)
	}
	return nil
}
