package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docchunk/pkg/types"
)

// QdrantConfig contains connection details for a Qdrant instance.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Qdrant is a minimal REST client to a Qdrant vector database. It
// assumes cosine distance and creates the collection if missing.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// NewQdrant creates a Qdrant-backed store.
func NewQdrant(cfg QdrantConfig) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if it does not exist.
func (q *Qdrant) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("vectorstore: invalid dimension %d", dimension)
	}
	q.dimension = dimension

	exists, err := q.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.putJSON(ctx, fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil)
}

func (q *Qdrant) collectionExists(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/collections/%s", q.url, q.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("vectorstore: create request: %w", err)
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("vectorstore: GET %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("vectorstore: GET %s failed: %s", url, resp.Status)
	}
}

// Upsert writes points with their chunk payloads.
func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	if q.dimension == 0 {
		return ErrNotInitialized
	}
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]map[string]any, len(points))
	for i, p := range points {
		if len(p.Vector) != q.dimension {
			return fmt.Errorf("%w: point %s has %d dimensions, want %d",
				ErrDimensionMismatch, p.ID, len(p.Vector), q.dimension)
		}
		qdrantPoints[i] = map[string]any{
			"id":     pointID(p.ID),
			"vector": p.Vector,
			"payload": map[string]any{
				"chunk_id":          p.Chunk.ID,
				"content":           p.Chunk.Content,
				"contextual_prefix": p.Chunk.ContextualPrefix,
				"source_type":       string(p.Chunk.SourceType),
				"book_title":        p.Chunk.BookTitle,
				"chapter":           p.Chunk.Chapter,
				"section":           p.Chunk.Section,
				"page":              p.Chunk.Page,
				"chunk_index":       p.Chunk.Index,
			},
		}
	}

	body := map[string]any{"points": qdrantPoints}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
	return q.putJSON(ctx, url, body, nil)
}

// Search runs a similarity query and decodes chunk payloads.
func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	reqBody := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.postJSON(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, SearchResult{
			Chunk: chunkFromPayload(r.Payload),
			Score: r.Score,
		})
	}
	return results, nil
}

// Count reports the number of points in the collection.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", q.url, q.collection)
	if err := q.postJSON(ctx, url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Close is a no-op for the REST client.
func (q *Qdrant) Close() error {
	q.client.CloseIdleConnections()
	return nil
}

func chunkFromPayload(payload map[string]any) types.Chunk {
	chunk := types.Chunk{}
	if v, ok := payload["chunk_id"].(string); ok {
		chunk.ID = v
	}
	if v, ok := payload["content"].(string); ok {
		chunk.Content = v
	}
	if v, ok := payload["contextual_prefix"].(string); ok {
		chunk.ContextualPrefix = v
	}
	if v, ok := payload["source_type"].(string); ok {
		chunk.SourceType = types.SourceType(v)
	}
	if v, ok := payload["book_title"].(string); ok {
		chunk.BookTitle = v
	}
	if v, ok := payload["chapter"].(string); ok {
		chunk.Chapter = v
	}
	if v, ok := payload["section"].(string); ok {
		chunk.Section = v
	}
	if v, ok := payload["page"].(float64); ok {
		chunk.Page = int(v)
	}
	if v, ok := payload["chunk_index"].(float64); ok {
		chunk.Index = int(v)
	}
	return chunk
}

// pointID derives a numeric point ID from the chunk ID, since Qdrant
// accepts only unsigned integers or UUIDs as point identifiers.
func pointID(chunkID string) uint64 {
	// FNV-1a over the chunk ID keeps IDs stable across runs.
	var h uint64 = 14695981039346656037
	for i := 0; i < len(chunkID); i++ {
		h ^= uint64(chunkID[i])
		h *= 1099511628211
	}
	return h
}

func (q *Qdrant) putJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPut, url, body, out)
}

func (q *Qdrant) postJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPost, url, body, out)
}

func (q *Qdrant) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("vectorstore: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("vectorstore: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("vectorstore: %s %s: %w", method, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vectorstore: %s %s failed: %s: %s", method, url, resp.Status, string(bodyBytes))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
