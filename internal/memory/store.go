// Package memory implements the entry store behind curator's memory
// elements.
//
// A memory element's markdown file describes the memory; its entries live in
// SQLite. Each entry carries a trust level — content arriving from external
// sources (collection downloads, portfolio pulls) starts untrusted and is
// promoted explicitly. The store enforces a retention policy per memory:
// entries past their retention window are pruned, and when a memory exceeds
// its entry cap, the oldest lowest-trust entries are evicted first.
package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// TrustLevel classifies how much an entry's content can be relied on.
type TrustLevel string

const (
	TrustUntrusted TrustLevel = "untrusted"
	TrustValidated TrustLevel = "validated"
	TrustTrusted   TrustLevel = "trusted"
)

// ValidTrust reports whether t is a known trust level.
func ValidTrust(t TrustLevel) bool {
	return t == TrustUntrusted || t == TrustValidated || t == TrustTrusted
}

// MaxContentLength caps a single entry's content.
const MaxContentLength = 4096

// Entry is one record inside a memory element.
type Entry struct {
	ID            string     `json:"id"`
	MemorySlug    string     `json:"memory_slug"`
	Content       string     `json:"content"`
	Source        string     `json:"source,omitempty"`
	Trust         TrustLevel `json:"trust"`
	RetentionDays int        `json:"retention_days,omitempty"`
	CreatedAt     string     `json:"created_at"`
}

// AddEntryParams holds the input for creating a new entry.
type AddEntryParams struct {
	MemorySlug    string
	Content       string
	Source        string
	Trust         TrustLevel
	RetentionDays int
}

// Stats holds aggregate counts for introspection.
type Stats struct {
	TotalEntries int            `json:"total_entries"`
	ByTrust      map[string]int `json:"by_trust"`
}

// Config holds memory store configuration.
type Config struct {
	DataDir string

	// MaxEntriesPerMemory caps each memory's entry count; exceeding it
	// evicts oldest lowest-trust entries.
	MaxEntriesPerMemory int
}

// DefaultConfig returns the default configuration for the memory store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:             filepath.Join(home, ".curator"),
		MaxEntriesPerMemory: 1000,
	}
}

// Store is the entry store backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
	now func() time.Time
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.MaxEntriesPerMemory <= 0 {
		cfg.MaxEntriesPerMemory = DefaultConfig().MaxEntriesPerMemory
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("memory: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, "memory.db"))
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("memory: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id             TEXT PRIMARY KEY,
			memory_slug    TEXT NOT NULL,
			content        TEXT NOT NULL,
			source         TEXT,
			trust          TEXT NOT NULL DEFAULT 'untrusted',
			retention_days INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_memory  ON entries(memory_slug);
		CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// trustRank orders trust levels for eviction: lower ranks go first.
const trustRank = `CASE trust WHEN 'trusted' THEN 2 WHEN 'validated' THEN 1 ELSE 0 END`

// AddEntry validates and inserts an entry, then enforces the memory's
// retention policy. Entries default to untrusted.
func (s *Store) AddEntry(p AddEntryParams) (*Entry, error) {
	if p.MemorySlug == "" {
		return nil, fmt.Errorf("memory: entry needs a memory slug")
	}
	if p.Content == "" {
		return nil, fmt.Errorf("memory: entry content must not be empty")
	}
	if len(p.Content) > MaxContentLength {
		return nil, fmt.Errorf("memory: entry content exceeds %d bytes", MaxContentLength)
	}
	if p.Trust == "" {
		p.Trust = TrustUntrusted
	}
	if !ValidTrust(p.Trust) {
		return nil, fmt.Errorf("memory: unknown trust level %q", p.Trust)
	}
	if p.RetentionDays < 0 {
		return nil, fmt.Errorf("memory: retention days must not be negative")
	}

	entry := &Entry{
		ID:            uuid.NewString(),
		MemorySlug:    p.MemorySlug,
		Content:       p.Content,
		Source:        p.Source,
		Trust:         p.Trust,
		RetentionDays: p.RetentionDays,
		CreatedAt:     s.now().UTC().Format(time.RFC3339Nano),
	}

	_, err := s.db.Exec(
		`INSERT INTO entries (id, memory_slug, content, source, trust, retention_days, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.MemorySlug, entry.Content, entry.Source,
		string(entry.Trust), entry.RetentionDays, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: insert entry: %w", err)
	}

	if err := s.enforceRetention(p.MemorySlug); err != nil {
		return nil, err
	}
	return entry, nil
}

// enforceRetention prunes expired entries, then evicts down to the cap —
// oldest lowest-trust first.
func (s *Store) enforceRetention(memorySlug string) error {
	nowStr := s.now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.Exec(
		`DELETE FROM entries
		 WHERE memory_slug = ?
		   AND retention_days > 0
		   AND julianday(?) - julianday(created_at) > retention_days`,
		memorySlug, nowStr,
	)
	if err != nil {
		return fmt.Errorf("memory: prune expired entries: %w", err)
	}

	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM entries WHERE memory_slug = ?`, memorySlug,
	).Scan(&count); err != nil {
		return fmt.Errorf("memory: count entries: %w", err)
	}

	excess := count - s.cfg.MaxEntriesPerMemory
	if excess <= 0 {
		return nil
	}

	_, err = s.db.Exec(
		`DELETE FROM entries WHERE id IN (
			SELECT id FROM entries
			WHERE memory_slug = ?
			ORDER BY `+trustRank+` ASC, created_at ASC
			LIMIT ?
		)`,
		memorySlug, excess,
	)
	if err != nil {
		return fmt.Errorf("memory: evict entries: %w", err)
	}
	return nil
}

// Entries returns a memory's entries, newest first. A limit <= 0 means all.
func (s *Store) Entries(memorySlug string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(
		`SELECT id, memory_slug, content, source, trust, retention_days, created_at
		 FROM entries
		 WHERE memory_slug = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		memorySlug, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var source sql.NullString
		var trust string
		if err := rows.Scan(&e.ID, &e.MemorySlug, &e.Content, &source,
			&trust, &e.RetentionDays, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("memory: scan entry: %w", err)
		}
		e.Source = source.String
		e.Trust = TrustLevel(trust)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetTrust changes an entry's trust level.
func (s *Store) SetTrust(id string, trust TrustLevel) error {
	if !ValidTrust(trust) {
		return fmt.Errorf("memory: unknown trust level %q", trust)
	}

	res, err := s.db.Exec(`UPDATE entries SET trust = ? WHERE id = ?`, string(trust), id)
	if err != nil {
		return fmt.Errorf("memory: update trust: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("memory: entry %s not found", id)
	}
	return nil
}

// DeleteEntry removes one entry.
func (s *Store) DeleteEntry(id string) error {
	res, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("memory: delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("memory: entry %s not found", id)
	}
	return nil
}

// MemoryStats returns aggregate counts for one memory.
func (s *Store) MemoryStats(memorySlug string) (*Stats, error) {
	rows, err := s.db.Query(
		`SELECT trust, COUNT(*) FROM entries WHERE memory_slug = ? GROUP BY trust`,
		memorySlug,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &Stats{ByTrust: map[string]int{}}
	for rows.Next() {
		var trust string
		var n int
		if err := rows.Scan(&trust, &n); err != nil {
			return nil, fmt.Errorf("memory: scan stats: %w", err)
		}
		stats.ByTrust[trust] = n
		stats.TotalEntries += n
	}
	return stats, rows.Err()
}
