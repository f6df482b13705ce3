package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const userAgent = "depscan/1.0"

// repoURLRe matches HTTPS and SSH-style GitHub repository URLs.
var repoURLRe = regexp.MustCompile(`github\.com[/:]([^/]+)/([^/\.]+)`)

// Client talks to the GitHub REST API. Only public repositories are
// supported; a token merely raises the rate limit.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	// OnRequest, when set, observes the outcome of every API call:
	// "success", "http_error" or "error".
	OnRequest func(outcome string)
}

// NewClient creates a GitHub API client. token may be empty.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: "https://api.github.com",
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Default branch is unknown up front, so both common names are tried.
var branchCandidates = []string{"main", "master"}

// ListFiles returns the complete recursive file listing of the
// repository's default branch, using the Git Trees API.
func (c *Client) ListFiles(ctx context.Context, owner, repo string) ([]string, error) {
	for _, branch := range branchCandidates {
		url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.BaseURL, owner, repo, branch)

		var data struct {
			Tree []struct {
				Path string `json:"path"`
				Type string `json:"type"`
			} `json:"tree"`
		}
		ok, err := c.getJSON(ctx, url, &data)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		var files []string
		for _, item := range data.Tree {
			// "blob" is a file; "tree" entries are directories.
			if item.Type == "blob" {
				files = append(files, item.Path)
			}
		}
		slog.Debug("fetched repository tree", "owner", owner, "repo", repo, "branch", branch, "files", len(files))
		return files, nil
	}
	return nil, fmt.Errorf("could not fetch repository tree for %s/%s", owner, repo)
}

// ReadFile returns the raw text content of one file, decoded from the
// Contents API's base64 payload.
func (c *Client) ReadFile(ctx context.Context, owner, repo, path string) (string, error) {
	for _, branch := range branchCandidates {
		url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.BaseURL, owner, repo, path, branch)

		var data struct {
			Content string `json:"content"`
		}
		ok, err := c.getJSON(ctx, url, &data)
		if err != nil {
			return "", err
		}
		if !ok || data.Content == "" {
			continue
		}

		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(data.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return string(decoded), nil
	}
	return "", fmt.Errorf("file not found: %s", path)
}

// RepoInfo is display metadata for a repository.
type RepoInfo struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
	Avatar      string `json:"avatar"`
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
func ParseRepoURL(repoURL string) (owner, name string, ok bool) {
	m := repoURLRe.FindStringSubmatch(repoURL)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSuffix(m[2], ".git"), true
}

// RepoInfo parses a repository URL and enriches it with metadata from
// the API. Metadata failures are silent: the owner and name from the
// URL are enough to run a scan.
func (c *Client) RepoInfo(ctx context.Context, repoURL string) RepoInfo {
	info := RepoInfo{
		Name:     "Unknown",
		Owner:    "Unknown",
		Platform: "Unknown",
		URL:      repoURL,
	}

	owner, name, ok := ParseRepoURL(repoURL)
	if !ok {
		return info
	}
	info.Owner = owner
	info.Name = name
	info.Platform = "GitHub"

	var data struct {
		Description string `json:"description"`
		Stars       int    `json:"stargazers_count"`
		Language    string `json:"language"`
		Owner       struct {
			AvatarURL string `json:"avatar_url"`
		} `json:"owner"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s", c.BaseURL, owner, name)
	if ok, err := c.getJSON(ctx, url, &data); err != nil || !ok {
		slog.Debug("repository metadata lookup failed", "url", url, "error", err)
		return info
	}

	info.Description = data.Description
	info.Stars = data.Stars
	info.Language = data.Language
	info.Avatar = data.Owner.AvatarURL
	return info
}

// getJSON performs one authenticated GET. It returns (false, nil) on a
// non-success status so callers can fall through to another branch, and
// an error only for transport-level failures.
func (c *Client) getJSON(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.observe("error")
		return false, fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.observe("http_error")
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.observe("error")
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	c.observe("success")
	return true, nil
}

func (c *Client) observe(outcome string) {
	if c.OnRequest != nil {
		c.OnRequest(outcome)
	}
}
