// pkg/api/api.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jobsaddah/jobharvest/pkg/types"
)

// Client is a thin HTTP client for a running JobHarvest service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates an API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Ingest submits one notice page URL for ingestion.
func (c *Client) Ingest(ctx context.Context, pageURL string) (*IngestResult, error) {
	var result IngestResult
	err := c.do(ctx, "POST", "/api/v1/ingest", map[string]string{"url": pageURL}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SyncCategories triggers a full category sync and waits for its stats.
func (c *Client) SyncCategories(ctx context.Context) (*SyncStats, error) {
	var stats SyncStats
	if err := c.do(ctx, "POST", "/api/v1/categories/sync", map[string]string{}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetPosting fetches a stored posting by its source path, e.g.
// "/jobs/ssc-cgl-2025".
func (c *Client) GetPosting(ctx context.Context, sourcePath string) (*types.StoredPosting, error) {
	var posting types.StoredPosting
	path := "/api/v1/postings/" + strings.TrimLeft(sourcePath, "/")
	if err := c.do(ctx, "GET", path, nil, &posting); err != nil {
		return nil, err
	}
	return &posting, nil
}

// Health reports whether the service answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "GET", "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
