// Package github provides a client for the GitHub repository contents API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Content item types
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Client is a GitHub contents API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Config represents GitHub client configuration.
type Config struct {
	BaseURL string        // Defaults to DefaultBaseURL
	Token   string        // Optional; unauthenticated requests are rate limited
	Timeout time.Duration // Per request
}

// ContentItem represents one entry of the contents API.
type ContentItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// APIError represents an error response from the GitHub API
// (not found, rate limited, ...).
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
}

// Error implements error.
func (e *APIError) Error() string {
	return e.Message
}

// New creates a new GitHub client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "invalid github base url")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// GetFile retrieves and decodes a file.
// Reference: https://docs.github.com/en/rest/repos/contents
func (c *Client) GetFile(ctx context.Context, owner, repo, filePath, ref string) ([]byte, error) {
	body, err := c.getContents(ctx, owner, repo, filePath, ref)
	if err != nil {
		return nil, err
	}

	if isJSONArray(body) {
		return nil, errors.Newf("%s is a directory, not a file", filePath)
	}

	var item ContentItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	if item.Type != TypeFile {
		return nil, errors.Newf("%s is a %s, not a file", filePath, item.Type)
	}
	if item.Encoding != "" && item.Encoding != "base64" {
		return nil, errors.Newf("unsupported content encoding: %s", item.Encoding)
	}

	// The API wraps base64 content at 60 characters.
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode file content")
	}
	return data, nil
}

// ListDirectory retrieves the entries of a directory.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, dirPath, ref string) ([]ContentItem, error) {
	body, err := c.getContents(ctx, owner, repo, dirPath, ref)
	if err != nil {
		return nil, err
	}

	if !isJSONArray(body) {
		return nil, errors.Newf("%s is not a directory", dirPath)
	}

	var items []ContentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	return items, nil
}

// ContentsURL builds the API URL for a repository path.
func (c *Client) ContentsURL(owner, repo, p, ref string) string {
	segments := []string{"repos", url.PathEscape(owner), url.PathEscape(repo), "contents"}
	for _, s := range strings.Split(path.Clean("/"+p), "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}

	u := c.baseURL + "/" + strings.Join(segments, "/")
	if ref != "" {
		u += "?" + url.Values{"ref": []string{ref}}.Encode()
	}
	return u
}

func (c *Client) getContents(ctx context.Context, owner, repo, p, ref string) ([]byte, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("owner and repo are required")
	}

	reqURL := c.ContentsURL(owner, repo, p, ref)
	zlog.Debug().Msgf("github: fetching contents: url=%s", reqURL)

	var body []byte
	err := c.retry(ctx, func() error {
		b, err := c.do(ctx, reqURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	// Error responses (rate limit, not found) carry a message.
	if resp.StatusCode >= http.StatusBadRequest || !isJSONArray(body) {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			apiErr.StatusCode = resp.StatusCode
			return nil, &apiErr
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("github API returned %s", resp.Status),
			}
		}
	}

	return body, nil
}

// retry retries an operation with linear backoff.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		zlog.Warn().Msgf("github: request failed (attempt %d/%d): %v", i+1, c.maxRetries, err)
		if i < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// Server errors and secondary rate limits are retryable
		return apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}
