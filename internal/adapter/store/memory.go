package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// MemoryStore is an in-process vector store using brute-force cosine
// similarity. It backs tests and single-node runs without external
// services. Vectors are assumed L2-normalized, so similarity is a dot
// product.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	order     []string // insertion order, for stable tie-breaking
	points    map[string]domain.Point
}

var _ port.VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates a memory-backed vector store for the given
// dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		points:    make(map[string]domain.Point),
	}
}

// EnsureCollection is a no-op for the in-memory backend.
func (s *MemoryStore) EnsureCollection(_ context.Context) error {
	if s.dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", port.ErrStore, s.dimension)
	}
	return nil
}

// Upsert validates the whole batch before writing, so a dimension error
// leaves the store untouched.
func (s *MemoryStore) Upsert(_ context.Context, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("%w: point %s has dimension %d, want %d",
				port.ErrStore, p.ID, len(p.Vector), s.dimension)
		}
	}
	for _, p := range points {
		if _, exists := s.points[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.points[p.ID] = p
	}
	return nil
}

// Search scans all points and returns the topK above threshold, ordered by
// descending score with insertion order breaking ties.
func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int, threshold float64) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	hits := make([]domain.SearchHit, 0, len(s.order))
	for _, id := range s.order {
		p := s.points[id]
		score := dot(p.Vector, vector)
		if score < threshold {
			continue
		}
		hits = append(hits, domain.SearchHit{Payload: p.Payload, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count reports the number of stored points.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

// Drop removes all points.
func (s *MemoryStore) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.points = make(map[string]domain.Point)
	return nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
