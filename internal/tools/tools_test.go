package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/curatormcp/curator/internal/collection"
	"github.com/curatormcp/curator/internal/elements"
	"github.com/curatormcp/curator/internal/memory"
	"github.com/curatormcp/curator/internal/portfolio"
)

// --- Test helpers ---

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// seedElement writes an element into a fresh store and returns the store.
func seedElement(t *testing.T, typ elements.Type, name string) *elements.Store {
	t.Helper()
	store := elements.NewStore(t.TempDir())
	_, err := store.Save(&elements.Element{
		Metadata: elements.Metadata{
			Name:        name,
			Type:        typ,
			Description: "test element",
			Version:     "1.0.0",
		},
		Body: "element body",
	})
	if err != nil {
		t.Fatalf("seed element: %v", err)
	}
	return store
}

// newTestManager builds a collection index manager backed by an httptest
// server that serves one sample index.
func newTestManager(t *testing.T) *collection.IndexManager {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version":        "2.1.0",
			"generated":      "2026-03-01T00:00:00Z",
			"total_elements": 3,
			"index": map[string]any{
				"personas": []map[string]any{
					{"path": "personas/editor.md", "type": "personas", "name": "Editor",
						"description": "Edits prose", "version": "1.2.0", "tags": []string{"writing"}},
					{"path": "personas/critic.md", "type": "personas", "name": "Critic",
						"description": "Reviews drafts"},
				},
				"skills": []map[string]any{
					{"path": "skills/summarize.md", "type": "skills", "name": "Summarize",
						"description": "Condenses documents", "tags": []string{"writing", "analysis"}},
				},
			},
			"metadata": map[string]any{},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := collection.DefaultConfig()
	cfg.IndexURL = srv.URL
	cfg.CacheDir = t.TempDir()
	cfg.MaxRetries = 0
	return collection.NewIndexManager(cfg, srv.Client(), time.Now, zerolog.Nop())
}

// fakePortfolio implements PortfolioClient in memory.
type fakePortfolio struct {
	ensureErr error
	uploadErr error
	uploads   map[string][]byte
	status    *portfolio.Status
}

func (f *fakePortfolio) EnsureRepo(ctx context.Context) (*portfolio.RepoInfo, error) {
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	return &portfolio.RepoInfo{FullName: "octocat/curator-portfolio", Private: true}, nil
}

func (f *fakePortfolio) Upload(ctx context.Context, path string, content []byte, message string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[path] = content
	return nil
}

func (f *fakePortfolio) CheckStatus(ctx context.Context) (*portfolio.Status, error) {
	return f.status, nil
}

func (f *fakePortfolio) RepoURL() string {
	return "https://github.com/octocat/curator-portfolio"
}

func fixedFactory(c PortfolioClient, err error) PortfolioFactory {
	return func() (PortfolioClient, error) { return c, err }
}

// --- Element tools ---

func TestCreateElementTool_Handle_Success(t *testing.T) {
	store := elements.NewStore(t.TempDir())
	tool := NewCreateElementTool(store)

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"name":        "Code Reviewer",
		"type":        "personas",
		"description": "Reviews pull requests",
		"body":        "Be thorough but kind.",
		"tags":        "review, code",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "code-reviewer") {
		t.Errorf("result should contain the slug, got: %s", text)
	}

	el, err := store.Load(elements.TypePersona, "code-reviewer")
	if err != nil {
		t.Fatalf("element should be on disk: %v", err)
	}
	if el.Metadata.ID == "" {
		t.Error("element should have an assigned ID")
	}
	if len(el.Metadata.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", el.Metadata.Tags)
	}
}

func TestCreateElementTool_Handle_InvalidType(t *testing.T) {
	tool := NewCreateElementTool(elements.NewStore(t.TempDir()))

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"name": "Thing",
		"type": "gadgets",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error for unknown type")
	}
}

func TestListElementsTool_Handle(t *testing.T) {
	store := seedElement(t, elements.TypeSkill, "Summarize Text")
	tool := NewListElementsTool(store)

	result, err := tool.Handle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "Summarize Text") {
		t.Errorf("listing should contain the element, got: %s", text)
	}

	// Filter by a type with no elements.
	result, err = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "agents",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "No elements installed") {
		t.Error("empty filter should report no elements")
	}

	result, _ = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "bogus",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error for unknown type filter")
	}
}

func TestGetElementTool_Handle(t *testing.T) {
	store := seedElement(t, elements.TypePersona, "Editor")
	tool := NewGetElementTool(store)

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "personas",
		"name": "Editor",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "element body") {
		t.Errorf("result should include the body, got: %s", text)
	}

	result, _ = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "personas",
		"name": "Missing",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error for missing element")
	}
}

func TestDeleteElementTool_Handle(t *testing.T) {
	store := seedElement(t, elements.TypeTemplate, "Meeting Notes")
	tool := NewDeleteElementTool(store)

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "templates",
		"name": "Meeting Notes",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	if _, err := store.Load(elements.TypeTemplate, "meeting-notes"); err == nil {
		t.Error("element should be gone after delete")
	}

	// Deleting again is an error.
	result, _ = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "templates",
		"name": "Meeting Notes",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error deleting a missing element")
	}
}

// --- Collection tools ---

func TestBrowseCollectionTool_Handle(t *testing.T) {
	tool := NewBrowseCollectionTool(newTestManager(t))

	result, err := tool.Handle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	for _, want := range []string{"2.1.0", "Editor", "Summarize", "personas", "skills"} {
		if !strings.Contains(text, want) {
			t.Errorf("browse output missing %q: %s", want, text)
		}
	}

	result, err = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"category": "skills",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text = getResultText(result)
	if strings.Contains(text, "Editor") {
		t.Error("category filter should exclude personas")
	}

	result, _ = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"category": "widgets",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error for unknown category")
	}
}

func TestSearchCollectionTool_Handle(t *testing.T) {
	tool := NewSearchCollectionTool(newTestManager(t))

	// Tag match reaches entries in multiple categories.
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"query": "writing",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "Editor") || !strings.Contains(text, "Summarize") {
		t.Errorf("tag search should match both entries, got: %s", text)
	}

	result, err = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"query": "no-such-thing",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "No matches") {
		t.Error("expected no-matches message")
	}

	result, _ = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"query": "",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error for empty query")
	}
}

func TestCacheLifecycleTools(t *testing.T) {
	mgr := newTestManager(t)

	statsTool := NewCacheStatsTool(mgr)
	result, err := statsTool.Handle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("stats Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(result), "No cached index yet") {
		t.Errorf("cold cache should report no index: %s", getResultText(result))
	}

	refreshTool := NewRefreshIndexTool(mgr)
	result, err = refreshTool.Handle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("refresh Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("refresh failed: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "version 2.1.0") {
		t.Errorf("refresh should report the new version: %s", getResultText(result))
	}

	result, _ = statsTool.Handle(context.Background(), callRequest(nil))
	text := getResultText(result)
	if !strings.Contains(text, "**Valid:** true") {
		t.Errorf("stats after refresh should be valid: %s", text)
	}

	clearTool := NewClearCacheTool(mgr)
	result, err = clearTool.Handle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("clear Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("clear failed: %s", getResultText(result))
	}

	result, _ = statsTool.Handle(context.Background(), callRequest(nil))
	if !strings.Contains(getResultText(result), "No cached index yet") {
		t.Error("stats after clear should report no index")
	}
}

// --- Portfolio tools ---

func TestSyncPortfolioTool_Handle_Success(t *testing.T) {
	store := seedElement(t, elements.TypePersona, "Editor")
	client := &fakePortfolio{}
	tool := NewSyncPortfolioTool(store, fixedFactory(client, nil))

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "personas",
		"name": "Editor",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	content, ok := client.uploads["personas/editor.md"]
	if !ok {
		t.Fatalf("expected upload at personas/editor.md, got %v", client.uploads)
	}
	if !strings.Contains(string(content), "name: Editor") {
		t.Errorf("uploaded file should carry frontmatter: %s", content)
	}
}

func TestSyncPortfolioTool_Handle_NoToken(t *testing.T) {
	store := seedElement(t, elements.TypePersona, "Editor")
	tool := NewSyncPortfolioTool(store, fixedFactory(nil, portfolio.ErrNoToken))

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "personas",
		"name": "Editor",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected tool error without a token")
	}
	if !strings.Contains(getResultText(result), "GITHUB_TOKEN") {
		t.Errorf("error should mention the env var: %s", getResultText(result))
	}
}

func TestSyncPortfolioTool_Handle_UploadFailure(t *testing.T) {
	store := seedElement(t, elements.TypePersona, "Editor")
	client := &fakePortfolio{uploadErr: fmt.Errorf("GitHub API returned 502")}
	tool := NewSyncPortfolioTool(store, fixedFactory(client, nil))

	result, _ := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"type": "personas",
		"name": "Editor",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error when upload fails")
	}
}

func TestPortfolioStatusTool_Handle(t *testing.T) {
	client := &fakePortfolio{status: &portfolio.Status{
		Repo:    "octocat/curator-portfolio",
		URL:     "https://github.com/octocat/curator-portfolio",
		Exists:  true,
		Private: true,
	}}
	tool := NewPortfolioStatusTool(fixedFactory(client, nil))

	result, err := tool.Handle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "private") {
		t.Errorf("status should report visibility: %s", text)
	}

	client.status = &portfolio.Status{Repo: "octocat/curator-portfolio", URL: client.RepoURL()}
	result, _ = tool.Handle(context.Background(), callRequest(nil))
	if !strings.Contains(getResultText(result), "does not exist yet") {
		t.Error("status should report a missing repo")
	}
}

// --- Memory tools ---

func newToolMemoryStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.New(memory.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemoryAddTool_Handle(t *testing.T) {
	store := newToolMemoryStore(t)
	tool := NewMemoryAddTool(store)

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"memory":         "project-notes",
		"content":        "prefers tabs over spaces",
		"source":         "conversation",
		"trust":          "validated",
		"retention_days": float64(30),
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "validated") {
		t.Errorf("result should report trust level: %s", getResultText(result))
	}

	entries, err := store.Entries("project-notes", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries[0].RetentionDays != 30 {
		t.Fatalf("unexpected stored entries: %+v", entries)
	}
}

func TestMemoryAddTool_Handle_InvalidSlug(t *testing.T) {
	tool := NewMemoryAddTool(newToolMemoryStore(t))

	result, _ := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"memory":  "Not A Slug!",
		"content": "x",
	}))
	if !isErrorResult(result) {
		t.Error("expected tool error for invalid slug")
	}
}

func TestMemoryEntriesTool_Handle(t *testing.T) {
	store := newToolMemoryStore(t)
	if _, err := store.AddEntry(memory.AddEntryParams{
		MemorySlug: "project-notes",
		Content:    "deadline moved to friday",
		Source:     "collection",
	}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	tool := NewMemoryEntriesTool(store)
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"memory": "project-notes",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "deadline moved to friday") {
		t.Errorf("entries output missing content: %s", text)
	}
	if !strings.Contains(text, "untrusted") {
		t.Errorf("entries output should show trust level: %s", text)
	}
	if !strings.Contains(text, "1 entries total") {
		t.Errorf("entries output should show totals: %s", text)
	}

	result, _ = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"memory": "empty-memory",
	}))
	if !strings.Contains(getResultText(result), "No entries yet") {
		t.Error("empty memory should report no entries")
	}
}
