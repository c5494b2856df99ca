// Package vector is the client for the optional similarity index
// collaborator: a vector store keyed by event id holding a fixed-dimension
// embedding plus the full event payload. Absence or failure of the index
// must degrade gracefully; callers treat every error here as a signal to
// fall back, never as a reason to fail the operation.
package vector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"disruption-response/internal/ledger"
	"disruption-response/pkg/platform"
)

// Collection and embedding dimensionality match the indexer's side.
const (
	Collection   = "disruption_events"
	EmbeddingDim = 768
)

// Point is one indexed event.
type Point struct {
	ID      string       `json:"id"`
	Vector  []float64    `json:"vector"`
	Payload ledger.Event `json:"payload"`
}

// Hit is one nearest-neighbor result, ordered by similarity descending.
type Hit struct {
	ID      string       `json:"id"`
	Score   float64      `json:"score"`
	Payload ledger.Event `json:"payload"`
}

// Client talks to the index over HTTP with retry and backoff.
type Client struct {
	baseURL string
	http    *platform.HTTPClient
}

// NewClient returns a client for the index at baseURL, or nil when no
// index is configured (empty URL). A nil *Client is a valid "index
// absent" value; Available reports it.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		http:    platform.NewHTTPClient(2, 10*time.Second),
	}
}

// Available reports whether an index is configured and answering.
func (c *Client) Available() bool {
	if c == nil {
		return false
	}
	resp, err := c.http.GetJSON(c.baseURL + "/healthz")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// EnsureCollection creates the event collection if it does not exist.
func (c *Client) EnsureCollection() error {
	body, _ := json.Marshal(map[string]any{
		"name":        Collection,
		"vector_size": EmbeddingDim,
		"distance":    "cosine",
	})
	resp, err := c.http.PostJSON(c.baseURL+"/collections", body)
	if err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	defer resp.Body.Close()
	// 409 means it already exists
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("ensure collection returned status %d", resp.StatusCode)
	}
	return nil
}

// Count returns how many points the collection holds. A zero count on a
// non-empty ledger triggers lazy backfill.
func (c *Client) Count() (int, error) {
	resp, err := c.http.GetJSON(fmt.Sprintf("%s/collections/%s/count", c.baseURL, Collection))
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count returned status %d", resp.StatusCode)
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("invalid count response: %w", err)
	}
	return out.Count, nil
}

// Upsert indexes points keyed by event id. Re-upserting an id replaces its
// vector and payload.
func (c *Client) Upsert(points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body, err := json.Marshal(map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}
	resp, err := c.http.PostJSON(fmt.Sprintf("%s/collections/%s/points", c.baseURL, Collection), body)
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upsert returned status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// Search returns up to limit nearest neighbors of the query vector,
// ordered by similarity descending.
func (c *Client) Search(queryVector []float64, limit int) ([]Hit, error) {
	body, err := json.Marshal(map[string]any{
		"vector": queryVector,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search: %w", err)
	}
	resp, err := c.http.PostJSON(fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, Collection), body)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var out struct {
		Result []Hit `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid search response: %w", err)
	}
	return out.Result, nil
}
