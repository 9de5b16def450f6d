// Package github talks to the GitHub REST API: the issue-tracker source for
// the issues driver and repository metadata for enrichment.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Issue is an open intake issue: its title/body text carries the tool link.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
}

// RepoMetadata is the optional partial record a github.com link enriches
// from. Absence is never fatal.
type RepoMetadata struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Language    string `json:"language"`
}

// Client is a minimal REST v3 client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient registers the API token. A zero timeout falls back to 10s.
func NewClient(token string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// SetBaseURL overrides the API host; tests point it at a local server.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// ListOpenIssues returns open issues carrying the intake label.
func (c *Client) ListOpenIssues(ctx context.Context, repo, label string) ([]Issue, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/issues?state=open&labels=%s", c.baseURL, repo, label)
	var issues []Issue
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &issues); err != nil {
		return nil, fmt.Errorf("list issues for %s: %w", repo, err)
	}
	return issues, nil
}

// GetRepo fetches repository metadata for an owner/name pair.
func (c *Client) GetRepo(ctx context.Context, fullName string) (*RepoMetadata, error) {
	endpoint := fmt.Sprintf("%s/repos/%s", c.baseURL, fullName)
	var meta RepoMetadata
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &meta); err != nil {
		return nil, fmt.Errorf("get repo %s: %w", fullName, err)
	}
	return &meta, nil
}

// CommentOnIssue posts a confirmation comment. This is a required side
// effect of a successful ingest; failures propagate.
func (c *Client) CommentOnIssue(ctx context.Context, repo string, number int, body string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.baseURL, repo, number)
	payload := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, endpoint, payload, nil); err != nil {
		return fmt.Errorf("comment on issue #%d: %w", number, err)
	}
	return nil
}

// CloseIssue marks an ingested issue closed. Also a required side effect.
func (c *Client) CloseIssue(ctx context.Context, repo string, number int) error {
	endpoint := fmt.Sprintf("%s/repos/%s/issues/%d", c.baseURL, repo, number)
	payload := map[string]string{"state": "closed"}
	if err := c.do(ctx, http.MethodPatch, endpoint, payload, nil); err != nil {
		return fmt.Errorf("close issue #%d: %w", number, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("github error %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ParseRepoURL extracts "owner/name" from a github.com repository URL,
// returning false for anything else.
func ParseRepoURL(rawURL string) (string, bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if !strings.HasPrefix(trimmed, "github.com/") {
		return "", false
	}
	parts := strings.Split(strings.TrimPrefix(trimmed, "github.com/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	name := strings.TrimSuffix(parts[1], ".git")
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", false
	}
	return parts[0] + "/" + name, true
}
