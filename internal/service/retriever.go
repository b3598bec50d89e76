package service

import (
	"context"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// Default retrieval policy.
const (
	DefaultTopK           = 5
	DefaultScoreThreshold = 0.3
)

// Retriever turns a query vector into a ranked candidate list. It is a
// thin policy layer over the vector store and the place where future
// filtering by source or metadata would live.
type Retriever struct {
	store     port.VectorStore
	topK      int
	threshold float64
}

// NewRetriever creates a retriever with the given top-k and score
// threshold; non-positive top-k and negative thresholds fall back to
// defaults.
func NewRetriever(store port.VectorStore, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold < 0 {
		threshold = DefaultScoreThreshold
	}
	return &Retriever{store: store, topK: topK, threshold: threshold}
}

// Retrieve returns the highest-similarity stored chunks for the query
// vector. An empty result is a normal outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32) ([]domain.SearchHit, error) {
	return r.store.Search(ctx, queryVector, r.topK, r.threshold)
}
