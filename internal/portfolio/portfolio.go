// Package portfolio syncs local elements to a user-owned GitHub
// repository via the REST contents API. Authentication uses a personal
// access token from GITHUB_TOKEN; all requests are conditional where
// possible so that repeated status checks do not burn rate limit quota.
package portfolio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/curatormcp/curator/internal/validation"
)

const (
	defaultAPIBase = "https://api.github.com"
	tokenEnv       = "GITHUB_TOKEN"

	// DefaultRepoName is the repository created for a user's portfolio
	// when none is configured.
	DefaultRepoName = "curator-portfolio"

	requestTimeout = 30 * time.Second
)

// ErrNoToken is returned when GITHUB_TOKEN is not set.
var ErrNoToken = fmt.Errorf("GitHub token not set (export %s)", tokenEnv)

// Client talks to the GitHub REST API for one portfolio repository.
type Client struct {
	apiBase string
	token   string
	owner   string
	repo    string
	http    *http.Client
	etags   *etagCache
	logger  zerolog.Logger
}

// NewClient builds a Client for owner/repo. The token is read from
// GITHUB_TOKEN; ErrNoToken is returned when it is absent.
func NewClient(owner, repo string, logger zerolog.Logger) (*Client, error) {
	if err := validation.GitHubOwner(owner); err != nil {
		return nil, err
	}
	if repo == "" {
		repo = DefaultRepoName
	}
	if err := validation.GitHubRepo(repo); err != nil {
		return nil, err
	}
	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, ErrNoToken
	}
	return &Client{
		apiBase: defaultAPIBase,
		token:   token,
		owner:   owner,
		repo:    repo,
		http:    &http.Client{Timeout: requestTimeout},
		etags:   newETagCache(),
		logger:  logger.With().Str("component", "portfolio").Logger(),
	}, nil
}

// RepoURL returns the HTML URL of the portfolio repository.
func (c *Client) RepoURL() string {
	return "https://github.com/" + c.owner + "/" + c.repo
}

// do sends an authenticated API request and returns the response.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "curator/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet {
		if etag := c.etags.get(path); etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
	}

	return c.http.Do(req)
}

// getJSON performs a conditional GET and decodes the response into out.
// On 304 the cached body is decoded instead. Returns the status code of
// the live response (304 is reported as 200 since cached data is valid).
func (c *Client) getJSON(ctx context.Context, path string, out any) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		cached := c.etags.body(path)
		if cached == nil {
			return 0, fmt.Errorf("GitHub returned 304 but no cached response for %s", path)
		}
		return http.StatusOK, json.Unmarshal(cached, out)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		c.etags.put(path, resp.Header.Get("ETag"), data)
		return resp.StatusCode, json.Unmarshal(data, out)
	}
	return resp.StatusCode, nil
}

// RepoInfo holds the fields we read from the repos API.
type RepoInfo struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Private  bool   `json:"private"`
}

// EnsureRepo verifies the portfolio repository exists, creating a
// private repo under the authenticated user when it does not.
func (c *Client) EnsureRepo(ctx context.Context) (*RepoInfo, error) {
	var info RepoInfo
	status, err := c.getJSON(ctx, "/repos/"+c.owner+"/"+c.repo, &info)
	if err != nil {
		return nil, fmt.Errorf("checking portfolio repo: %w", err)
	}
	if status == http.StatusOK {
		return &info, nil
	}
	if status != http.StatusNotFound {
		return nil, fmt.Errorf("GitHub API returned %d checking repo", status)
	}

	c.logger.Info().Str("repo", c.owner+"/"+c.repo).Msg("creating portfolio repository")
	resp, err := c.do(ctx, http.MethodPost, "/user/repos", map[string]any{
		"name":        c.repo,
		"description": "Element portfolio managed by curator",
		"private":     true,
		"auto_init":   true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating portfolio repo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("GitHub API returned %d creating repo", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("parsing created repo: %w", err)
	}
	return &info, nil
}

// contentsFile is the contents API representation of a file.
type contentsFile struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// fileSHA looks up the blob SHA for a path, or "" if the file is absent.
func (c *Client) fileSHA(ctx context.Context, path string) (string, error) {
	var file contentsFile
	status, err := c.getJSON(ctx, c.contentsPath(path), &file)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		return file.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("GitHub API returned %d for %s", status, path)
	}
}

func (c *Client) contentsPath(path string) string {
	return "/repos/" + c.owner + "/" + c.repo + "/contents/" + path
}

// Upload creates or updates a file in the portfolio repository. The
// contents API requires the existing blob SHA when updating, so absent
// files are created and present ones overwritten.
func (c *Client) Upload(ctx context.Context, path string, content []byte, message string) error {
	if err := validation.RelativePath(path); err != nil {
		return err
	}

	sha, err := c.fileSHA(ctx, path)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", path, err)
	}

	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if sha != "" {
		body["sha"] = sha
	}

	resp, err := c.do(ctx, http.MethodPut, c.contentsPath(path), body)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("GitHub API returned %d uploading %s", resp.StatusCode, path)
	}
	c.logger.Debug().Str("path", path).Msg("uploaded element to portfolio")
	return nil
}

// Download fetches a file's raw content from the portfolio repository.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	if err := validation.RelativePath(path); err != nil {
		return nil, err
	}

	var file contentsFile
	status, err := c.getJSON(ctx, c.contentsPath(path), &file)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", path, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%s not found in portfolio", path)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d for %s", status, path)
	}
	if file.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected encoding %q for %s", file.Encoding, path)
	}
	return base64.StdEncoding.DecodeString(file.Content)
}

// Status summarizes the portfolio repository's state.
type Status struct {
	Repo    string `json:"repo"`
	URL     string `json:"url"`
	Private bool   `json:"private"`
	Exists  bool   `json:"exists"`
}

// CheckStatus reports whether the portfolio repository exists and its
// visibility, without creating anything.
func (c *Client) CheckStatus(ctx context.Context) (*Status, error) {
	var info RepoInfo
	status, err := c.getJSON(ctx, "/repos/"+c.owner+"/"+c.repo, &info)
	if err != nil {
		return nil, fmt.Errorf("checking portfolio repo: %w", err)
	}
	out := &Status{Repo: c.owner + "/" + c.repo, URL: c.RepoURL()}
	switch status {
	case http.StatusOK:
		out.Exists = true
		out.Private = info.Private
		return out, nil
	case http.StatusNotFound:
		return out, nil
	default:
		return nil, fmt.Errorf("GitHub API returned %d checking repo", status)
	}
}
