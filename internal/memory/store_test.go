package memory

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddEntryDefaults(t *testing.T) {
	s := newTestStore(t, Config{})

	e, err := s.AddEntry(AddEntryParams{MemorySlug: "project-notes", Content: "ship friday"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if e.Trust != TrustUntrusted {
		t.Errorf("default trust = %q, want %q", e.Trust, TrustUntrusted)
	}
	if e.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}

	got, err := s.Entries("project-notes", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 1 || got[0].Content != "ship friday" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestAddEntryValidation(t *testing.T) {
	s := newTestStore(t, Config{})

	long := make([]byte, MaxContentLength+1)
	for i := range long {
		long[i] = 'a'
	}

	cases := []struct {
		name   string
		params AddEntryParams
	}{
		{"missing slug", AddEntryParams{Content: "x"}},
		{"empty content", AddEntryParams{MemorySlug: "m"}},
		{"oversized content", AddEntryParams{MemorySlug: "m", Content: string(long)}},
		{"unknown trust", AddEntryParams{MemorySlug: "m", Content: "x", Trust: "absolute"}},
		{"negative retention", AddEntryParams{MemorySlug: "m", Content: "x", RetentionDays: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.AddEntry(tc.params); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEntriesNewestFirstAndLimit(t *testing.T) {
	s := newTestStore(t, Config{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, content := range []string{"first", "second", "third"} {
		offset := time.Duration(i) * time.Minute
		s.now = func() time.Time { return base.Add(offset) }
		if _, err := s.AddEntry(AddEntryParams{MemorySlug: "log", Content: content}); err != nil {
			t.Fatalf("AddEntry: %v", err)
		}
	}

	got, err := s.Entries("log", 2)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 2 || got[0].Content != "third" || got[1].Content != "second" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestRetentionPrunesExpired(t *testing.T) {
	s := newTestStore(t, Config{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	if _, err := s.AddEntry(AddEntryParams{
		MemorySlug: "scratch", Content: "ephemeral", RetentionDays: 7,
	}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if _, err := s.AddEntry(AddEntryParams{
		MemorySlug: "scratch", Content: "permanent",
	}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	// Ten days later, adding a new entry triggers pruning.
	s.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	if _, err := s.AddEntry(AddEntryParams{MemorySlug: "scratch", Content: "fresh"}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	got, err := s.Entries("scratch", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(got), got)
	}
	for _, e := range got {
		if e.Content == "ephemeral" {
			t.Error("expired entry should be pruned")
		}
	}
}

func TestEvictionPrefersOldLowTrust(t *testing.T) {
	s := newTestStore(t, Config{MaxEntriesPerMemory: 3})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	add := func(content string, trust TrustLevel, offset time.Duration) {
		t.Helper()
		s.now = func() time.Time { return base.Add(offset) }
		if _, err := s.AddEntry(AddEntryParams{
			MemorySlug: "facts", Content: content, Trust: trust,
		}); err != nil {
			t.Fatalf("AddEntry(%s): %v", content, err)
		}
	}

	add("old-trusted", TrustTrusted, 0)
	add("old-untrusted", TrustUntrusted, time.Minute)
	add("new-untrusted", TrustUntrusted, 2*time.Minute)
	add("new-validated", TrustValidated, 3*time.Minute)

	got, err := s.Entries("facts", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(got), got)
	}
	for _, e := range got {
		if e.Content == "old-untrusted" {
			t.Error("oldest untrusted entry should be evicted first")
		}
	}
}

func TestSetTrust(t *testing.T) {
	s := newTestStore(t, Config{})

	e, err := s.AddEntry(AddEntryParams{MemorySlug: "facts", Content: "checked twice"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	if err := s.SetTrust(e.ID, TrustValidated); err != nil {
		t.Fatalf("SetTrust: %v", err)
	}
	got, err := s.Entries("facts", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got[0].Trust != TrustValidated {
		t.Errorf("trust = %q, want %q", got[0].Trust, TrustValidated)
	}

	if err := s.SetTrust(e.ID, "gospel"); err == nil {
		t.Error("expected error for unknown trust level")
	}
	if err := s.SetTrust("no-such-id", TrustTrusted); err == nil {
		t.Error("expected error for missing entry")
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t, Config{})

	e, err := s.AddEntry(AddEntryParams{MemorySlug: "facts", Content: "obsolete"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := s.DeleteEntry(e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := s.DeleteEntry(e.ID); err == nil {
		t.Error("expected error deleting missing entry")
	}

	got, err := s.Entries("facts", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %+v", got)
	}
}

func TestMemoryStats(t *testing.T) {
	s := newTestStore(t, Config{})

	for _, trust := range []TrustLevel{TrustUntrusted, TrustUntrusted, TrustTrusted} {
		if _, err := s.AddEntry(AddEntryParams{
			MemorySlug: "facts", Content: "x", Trust: trust,
		}); err != nil {
			t.Fatalf("AddEntry: %v", err)
		}
	}
	if _, err := s.AddEntry(AddEntryParams{MemorySlug: "other", Content: "y"}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	stats, err := s.MemoryStats("facts")
	if err != nil {
		t.Fatalf("MemoryStats: %v", err)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("total = %d, want 3", stats.TotalEntries)
	}
	if stats.ByTrust["untrusted"] != 2 || stats.ByTrust["trusted"] != 1 {
		t.Errorf("unexpected trust counts: %+v", stats.ByTrust)
	}
}
