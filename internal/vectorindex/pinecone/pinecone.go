package pinecone

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

// Client is a minimal REST client to a Pinecone index. All calls target a
// single index host and namespace; similarity search itself runs remotely.
type Client struct {
	host       string
	apiKey     string
	namespace  string
	httpClient *http.Client
}

type Config struct {
	Host      string
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

// Vector is one record in the index. Metadata carries the chunk text and the
// local document reference so query results are self-describing.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Match is a single nearest-neighbor result.
type Match struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		namespace:  cfg.Namespace,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upsert writes vectors into the configured namespace.
func (c *Client) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	body := map[string]any{
		"vectors":   vectors,
		"namespace": c.namespace,
	}
	var resp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := c.postJSON(ctx, "/vectors/upsert", body, &resp); err != nil {
		return err
	}
	if resp.UpsertedCount != len(vectors) {
		return fmt.Errorf("pinecone upserted %d of %d vectors", resp.UpsertedCount, len(vectors))
	}
	return nil
}

// Query returns the topK nearest matches for the vector, with metadata.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"namespace":       c.namespace,
		"includeMetadata": true,
	}
	var resp struct {
		Matches []Match `json:"matches"`
	}
	if err := c.postJSON(ctx, "/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// VectorCount returns the number of vectors in the configured namespace.
func (c *Client) VectorCount(ctx context.Context) (int, error) {
	var resp struct {
		Namespaces map[string]struct {
			VectorCount int `json:"vectorCount"`
		} `json:"namespaces"`
	}
	if err := c.postJSON(ctx, "/describe_index_stats", map[string]any{}, &resp); err != nil {
		return 0, err
	}
	if ns, ok := resp.Namespaces[c.namespace]; ok {
		return ns.VectorCount, nil
	}
	return 0, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal pinecone request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build pinecone request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read pinecone response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone %s status %d: %s", path, resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse pinecone response failed: %w", err)
		}
	}
	return nil
}
