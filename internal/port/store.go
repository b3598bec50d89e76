package port

import (
	"context"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
)

// VectorStore is the durable nearest-neighbor index over embedded chunks.
// The store is the single source of truth; the core keeps no cache of
// points.
type VectorStore interface {
	// EnsureCollection creates the backing collection if absent, with the
	// configured dimension and cosine distance. It is idempotent, and fails
	// when an existing collection has a mismatched dimension.
	EnsureCollection(ctx context.Context) error

	// Upsert writes a batch of points, replacing any prior point with the
	// same id. The batch is applied all-or-nothing from the caller's
	// perspective: on error nothing from the batch becomes searchable.
	Upsert(ctx context.Context, points []domain.Point) error

	// Search returns up to topK points ordered by descending similarity to
	// vector, excluding scores below threshold. Ties keep insertion order.
	Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]domain.SearchHit, error)

	// Count reports the number of stored points.
	Count(ctx context.Context) (int, error)

	// Drop removes the collection and everything in it.
	Drop(ctx context.Context) error
}
