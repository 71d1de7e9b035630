// Package vectorstore is a thin client for Qdrant's REST API, covering the
// handful of operations the sample-document similarity index needs.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Point is a vector with its payload.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Result is a single search hit.
type Result struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Client talks to one Qdrant instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Qdrant client. baseURL defaults to http://localhost:6333.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CollectionExists checks whether a collection is already present.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.doRaw(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, string(body))
	}
	return true, nil
}

// CreateCollection creates a cosine-distance collection with the given
// vector dimensionality.
func (c *Client) CreateCollection(ctx context.Context, name string, dimensions int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	_, err := c.do(ctx, http.MethodPut, "/collections/"+name, body)
	return err
}

// Upsert writes points into a collection, waiting for the write to land.
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	body := map[string]any{"points": points}
	_, err := c.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body)
	return err
}

// Count returns the number of points in a collection.
func (c *Client) Count(ctx context.Context, collection string) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/count", map[string]any{})
	if err != nil {
		return 0, err
	}
	result, ok := resp["result"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("unexpected count response format")
	}
	count, _ := result["count"].(float64)
	return int64(count), nil
}

// Search finds the points most similar to the query vector. docType
// optionally restricts hits to points whose doc_type payload field matches.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, docType string) ([]Result, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if docType != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "doc_type", "match": map[string]any{"value": docType}},
			},
		}
	}

	resp, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body)
	if err != nil {
		return nil, err
	}

	raw, ok := resp["result"].([]any)
	if !ok {
		return nil, nil
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		rm, ok := r.(map[string]any)
		if !ok {
			continue
		}

		var hit Result
		switch id := rm["id"].(type) {
		case string:
			hit.ID = id
		case float64:
			hit.ID = fmt.Sprintf("%d", int64(id))
		}
		if score, ok := rm["score"].(float64); ok {
			hit.Score = float32(score)
		}
		if payload, ok := rm["payload"].(map[string]any); ok {
			hit.Payload = payload
		}
		results = append(results, hit)
	}
	return results, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	resp, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}
