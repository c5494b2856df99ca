// Package embedding is the client for the optional text-embedding
// collaborator. Failure or absence degrades the recall engine to its
// keyword path; nothing here is fatal.
package embedding

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"disruption-response/pkg/platform"
)

// maxTextLen bounds what we ship to the embedder per request.
const maxTextLen = 8000

// Client calls the embedding service over HTTP with retry and backoff.
type Client struct {
	endpoint   string
	dimensions int
	http       *platform.HTTPClient
}

// NewClient returns a client for the embedder at endpoint, or nil when no
// embedder is configured. A nil *Client is a valid "embedder absent"
// value; Available reports it.
func NewClient(endpoint string, dimensions int) *Client {
	if endpoint == "" {
		return nil
	}
	return &Client{
		endpoint:   endpoint,
		dimensions: dimensions,
		http:       platform.NewHTTPClient(2, 15*time.Second),
	}
}

// Available reports whether an embedder is configured.
func (c *Client) Available() bool {
	return c != nil
}

// Embed converts text into a fixed-dimension vector.
func (c *Client) Embed(text string) ([]float64, error) {
	if c == nil {
		return nil, fmt.Errorf("embedding service not configured")
	}
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}

	body, err := json.Marshal(map[string]any{
		"text":       text,
		"dimensions": c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embed request: %w", err)
	}

	resp, err := c.http.PostJSON(c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var out struct {
		Vector []float64 `json:"vector"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid embedding response: %w", err)
	}
	if len(out.Vector) == 0 {
		return nil, fmt.Errorf("embedding service returned empty vector")
	}
	return out.Vector, nil
}
