package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL        string // e.g. http://localhost:6333
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// QdrantStore is a minimal REST client to Qdrant implementing
// port.VectorStore. It assumes cosine distance.
type QdrantStore struct {
	cfg    QdrantConfig
	client *http.Client
}

var _ port.VectorStore = (*QdrantStore)(nil)

// NewQdrantStore creates a Qdrant-backed vector store.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}
	return &QdrantStore{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if missing and verifies the
// dimension of an existing one. Safe to call repeatedly.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}

	status, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, &info)
	if err != nil {
		return fmt.Errorf("%w: qdrant get collection: %v", port.ErrStore, err)
	}

	if status == http.StatusOK {
		if got := info.Result.Config.Params.Vectors.Size; got != s.cfg.Dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, want %d",
				port.ErrStore, s.cfg.Collection, got, s.cfg.Dimension)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.cfg.Dimension,
			"distance": "Cosine",
		},
	}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return fmt.Errorf("%w: qdrant create collection: %v", port.ErrStore, err)
	}
	return nil
}

// Upsert writes points with wait=true so the batch is searchable (or
// rejected) as a whole before the call returns.
func (s *QdrantStore) Upsert(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	if _, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("%w: qdrant upsert: %v", port.ErrStore, err)
	}
	return nil
}

// Search returns up to topK hits scoring at or above threshold, ordered by
// descending similarity.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]domain.SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":          vector,
		"limit":           topK,
		"score_threshold": threshold,
		"with_payload":    true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload domain.Payload `json:"payload"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), body, &resp); err != nil {
		return nil, fmt.Errorf("%w: qdrant search: %v", port.ErrStore, err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{Payload: r.Payload, Score: r.Score})
	}
	return hits, nil
}

// Count reports the exact number of stored points. A missing collection
// counts as zero.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, fmt.Errorf("%w: qdrant count: %v", port.ErrStore, err)
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	return resp.Result.Count, nil
}

// Drop deletes the collection and all its points.
func (s *QdrantStore) Drop(ctx context.Context) error {
	if _, err := s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil); err != nil {
		return fmt.Errorf("%w: qdrant drop: %v", port.ErrStore, err)
	}
	return nil
}

func (s *QdrantStore) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.cfg.URL, s.cfg.Collection, suffix)
}

// do performs one JSON request. 404 responses are returned to the caller
// (status code) rather than treated as errors, since EnsureCollection and
// Count need to distinguish "absent" from "broken".
func (s *QdrantStore) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		data, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("qdrant %s %s: %s: %s", method, url, resp.Status, string(data))
	}

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
