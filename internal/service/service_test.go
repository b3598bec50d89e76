package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// hashEmbedder is a deterministic bag-of-words embedder for tests. Texts
// sharing words get high cosine similarity, which is enough to exercise
// the retrieval pipeline without a model server.
type hashEmbedder struct {
	dim    int
	failOn string // EmbedBatch fails when any text contains this marker
}

var _ port.Embedder = (*hashEmbedder)(nil)

func newHashEmbedder(dim int) *hashEmbedder { return &hashEmbedder{dim: dim} }

func (e *hashEmbedder) ModelName() string { return "hash-test" }

func (e *hashEmbedder) Dimension() int { return e.dim }

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if e.failOn != "" && strings.Contains(text, e.failOn) {
			return nil, fmt.Errorf("%w: backend rejected input", port.ErrEmbedding)
		}
		vectors[i] = e.vectorize(text)
	}
	return vectors, nil
}

func (e *hashEmbedder) vectorize(text string) []float32 {
	vec := make([]float64, e.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[int(h.Sum32())%e.dim]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, e.dim)
	if norm == 0 {
		return out
	}
	inv := 1 / math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v * inv)
	}
	return out
}

// stubGenerator implements port.Generator with canned behavior.
type stubGenerator struct {
	answer string
	err    error
	calls  int
}

var _ port.Generator = (*stubGenerator)(nil)

func (g *stubGenerator) ModelName() string { return "stub" }

func (g *stubGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	g.calls++
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrSynthesis, err)
	}
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// failingStore wraps a VectorStore and fails selected operations.
type failingStore struct {
	port.VectorStore
	upsertErr error
	searchErr error
}

func (s *failingStore) Upsert(ctx context.Context, points []domain.Point) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.VectorStore.Upsert(ctx, points)
}

func (s *failingStore) Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]domain.SearchHit, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.VectorStore.Search(ctx, vector, topK, threshold)
}

var errDown = fmt.Errorf("%w: connection refused", port.ErrStore)
