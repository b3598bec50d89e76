package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/OptionalMoth/Document-Chatbot/internal/chunker"
	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// IngestService orchestrates chunking, embedding, and indexing for one
// document at a time. Failures are atomic at document granularity: the
// whole batch of points is materialized before a single upsert call, so a
// failed document writes nothing.
type IngestService struct {
	chunker  *chunker.Chunker
	embedder port.Embedder
	store    port.VectorStore

	mu      sync.Mutex
	ensured bool
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(ch *chunker.Chunker, embedder port.Embedder, store port.VectorStore) *IngestService {
	return &IngestService{chunker: ch, embedder: embedder, store: store}
}

// Ingest processes one document end to end and reports how many chunks
// were indexed. Empty or whitespace-only text is a non-error outcome with
// zero chunks.
func (s *IngestService) Ingest(ctx context.Context, doc domain.Document) (domain.IngestResult, error) {
	chunks := s.chunker.Chunk(doc)
	if len(chunks) == 0 {
		slog.Info("nothing to index", "source", doc.Source)
		return domain.IngestResult{Source: doc.Source, ChunkCount: 0, Status: domain.IngestStatusEmpty}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return failed(doc, err), fmt.Errorf("embed document %s: %w", doc.Source, err)
	}

	if err := s.ensureCollection(ctx); err != nil {
		return failed(doc, err), fmt.Errorf("ensure collection: %w", err)
	}

	points := make([]domain.Point, len(chunks))
	for i, c := range chunks {
		points[i] = domain.NewPoint(c, vectors[i])
	}

	if err := s.store.Upsert(ctx, points); err != nil {
		return failed(doc, err), fmt.Errorf("index document %s: %w", doc.Source, err)
	}

	slog.Info("document indexed", "source", doc.Source, "chunks", len(points))
	return domain.IngestResult{Source: doc.Source, ChunkCount: len(points), Status: domain.IngestStatusIndexed}, nil
}

// IngestAll ingests documents concurrently with at most limit workers.
// Each document succeeds or fails on its own; results come back in input
// order. Failed documents are not retried automatically — the summary
// tells the caller what to re-upload.
func (s *IngestService) IngestAll(ctx context.Context, docs []domain.Document, limit int) []domain.IngestResult {
	if limit <= 0 {
		limit = 1
	}

	results := make([]domain.IngestResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, doc := range docs {
		g.Go(func() error {
			res, err := s.Ingest(gctx, doc)
			if err != nil {
				slog.Error("ingestion failed", "source", doc.Source, "error", err)
			}
			results[i] = res
			// Sibling documents keep going regardless.
			return nil
		})
	}
	g.Wait()
	return results
}

// ensureCollection creates the collection once per process. A failed
// attempt is retried on the next ingest rather than latched.
func (s *IngestService) ensureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s.store.EnsureCollection(ctx); err != nil {
		return err
	}
	s.ensured = true
	return nil
}

func failed(doc domain.Document, err error) domain.IngestResult {
	return domain.IngestResult{
		Source: doc.Source,
		Status: domain.IngestStatusFailed,
		Error:  messageFor(err),
	}
}

// messageFor maps an error to the short human-readable message for its
// taxonomy kind.
func messageFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, port.ErrValidation):
		return "invalid input"
	case errors.Is(err, port.ErrExtraction):
		return "text extraction failed"
	case errors.Is(err, port.ErrEmbedding):
		return "embedding service unavailable"
	case errors.Is(err, port.ErrStore):
		return "vector store unavailable"
	default:
		return "internal error"
	}
}
