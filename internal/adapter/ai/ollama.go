package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// OllamaEndpointConfig holds the configuration for a single Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string // e.g. all-minilm, qwen3
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaEmbedder implements port.Embedder using the Ollama REST API.
// One instance (one model) serves both ingestion and query embedding, and
// every returned vector is L2-normalized to unit length.
type OllamaEmbedder struct {
	cfg        OllamaEndpointConfig
	dimension  int
	httpClient *http.Client
}

// NewOllamaEmbedder creates an Ollama-backed embedder producing vectors of
// the given dimension.
func NewOllamaEmbedder(cfg OllamaEndpointConfig, dimension int) *OllamaEmbedder {
	return &OllamaEmbedder{
		cfg:        cfg,
		dimension:  dimension,
		httpClient: &http.Client{},
	}
}

// ModelName returns the embedding model identifier.
func (o *OllamaEmbedder) ModelName() string { return o.cfg.Model }

// Dimension returns the configured vector dimension.
func (o *OllamaEmbedder) Dimension() int { return o.dimension }

// Embed generates a normalized vector embedding for the given text.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call. Output
// order matches input order; any failure returns no vectors at all.
func (o *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]interface{}{
		"model": o.cfg.Model,
		"input": texts,
	}

	body, err := post(ctx, o.httpClient, o.cfg, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama embed: %v", port.ErrEmbedding, err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: ollama embed decode: %v", port.ErrEmbedding, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: ollama embed: got %d vectors for %d inputs",
			port.ErrEmbedding, len(resp.Embeddings), len(texts))
	}

	for i, vec := range resp.Embeddings {
		if len(vec) != o.dimension {
			return nil, fmt.Errorf("%w: ollama embed: vector %d has dimension %d, want %d",
				port.ErrEmbedding, i, len(vec), o.dimension)
		}
		normalize(vec)
	}

	return resp.Embeddings, nil
}

// normalize scales a vector to unit L2 length in place. Zero vectors are
// left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}

// OllamaGenerator implements port.Generator using the Ollama chat API.
type OllamaGenerator struct {
	cfg        OllamaEndpointConfig
	httpClient *http.Client
}

// NewOllamaGenerator creates an Ollama-backed generator.
func NewOllamaGenerator(cfg OllamaEndpointConfig) *OllamaGenerator {
	return &OllamaGenerator{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// ModelName returns the chat model identifier.
func (o *OllamaGenerator) ModelName() string { return o.cfg.Model }

// Generate sends the prompts and returns the complete response.
func (o *OllamaGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": userPrompt},
	}

	payload := map[string]interface{}{
		"model":    o.cfg.Model,
		"messages": messages,
		"stream":   false,
	}

	body, err := post(ctx, o.httpClient, o.cfg, "/api/chat", payload)
	if err != nil {
		return "", fmt.Errorf("%w: ollama chat: %v", port.ErrSynthesis, err)
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: ollama chat decode: %v", port.ErrSynthesis, err)
	}

	return resp.Message.Content, nil
}

// post is a helper for POST requests to an Ollama endpoint (with optional
// bearer token).
func post(ctx context.Context, client *http.Client, cfg OllamaEndpointConfig, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
