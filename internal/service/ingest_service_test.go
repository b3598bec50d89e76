package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OptionalMoth/Document-Chatbot/internal/adapter/store"
	"github.com/OptionalMoth/Document-Chatbot/internal/chunker"
	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

const testDim = 256

func newIngestUnderTest(t *testing.T) (*IngestService, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore(testDim)
	svc := NewIngestService(chunker.New(), newHashEmbedder(testDim), mem)
	return svc, mem
}

func TestIngest_IndexesDocument(t *testing.T) {
	ctx := context.Background()
	svc, mem := newIngestUnderTest(t)

	doc := domain.NewFileDocument("guide.txt", "Paris is the capital of France. It is known for the Eiffel Tower.")
	res, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatusIndexed, res.Status)
	assert.Equal(t, 1, res.ChunkCount)
	assert.Equal(t, "guide.txt", res.Source)

	n, err := mem.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngest_EmptyDocumentIsNotAnError(t *testing.T) {
	ctx := context.Background()
	svc, mem := newIngestUnderTest(t)

	res, err := svc.Ingest(ctx, domain.NewFileDocument("blank.txt", "  \n\t "))
	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatusEmpty, res.Status)
	assert.Equal(t, 0, res.ChunkCount)

	n, err := mem.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestIngest_ReingestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, mem := newIngestUnderTest(t)

	doc := domain.NewFileDocument("guide.txt", "Paris is the capital of France.")
	_, err := svc.Ingest(ctx, doc)
	require.NoError(t, err)
	first, err := mem.Count(ctx)
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, doc)
	require.NoError(t, err)
	second, err := mem.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-ingesting the same document must not duplicate points")
}

func TestIngest_EmbedFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(testDim)
	emb := newHashEmbedder(testDim)
	emb.failOn = "poison"
	svc := NewIngestService(chunker.New(), emb, mem)

	res, err := svc.Ingest(ctx, domain.NewFileDocument("bad.txt", "this text is poison for the embedder"))
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrEmbedding)
	assert.Equal(t, domain.IngestStatusFailed, res.Status)
	assert.Equal(t, "embedding service unavailable", res.Error)

	n, err := mem.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "no partial upsert after an embedding failure")
}

func TestIngest_StoreFailureIsReported(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(testDim)
	svc := NewIngestService(chunker.New(), newHashEmbedder(testDim), &failingStore{VectorStore: mem, upsertErr: errDown})

	res, err := svc.Ingest(ctx, domain.NewFileDocument("guide.txt", "Some indexable text."))
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrStore)
	assert.Equal(t, domain.IngestStatusFailed, res.Status)
	assert.Equal(t, "vector store unavailable", res.Error)
}

func TestIngestAll_FailuresDoNotAbortSiblings(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(testDim)
	emb := newHashEmbedder(testDim)
	emb.failOn = "poison"
	svc := NewIngestService(chunker.New(), emb, mem)

	docs := []domain.Document{
		domain.NewFileDocument("a.txt", "The first document talks about rivers."),
		domain.NewFileDocument("b.txt", "poison"),
		domain.NewFileDocument("c.txt", "The third document talks about mountains."),
	}

	results := svc.IngestAll(ctx, docs, 2)
	require.Len(t, results, 3)
	assert.Equal(t, domain.IngestStatusIndexed, results[0].Status)
	assert.Equal(t, domain.IngestStatusFailed, results[1].Status)
	assert.Equal(t, domain.IngestStatusIndexed, results[2].Status)
	assert.Equal(t, "a.txt", results[0].Source)
	assert.Equal(t, "b.txt", results[1].Source)
	assert.Equal(t, "c.txt", results[2].Source)
}

func TestIngestAll_ConcurrentDocumentsKeepTheirSources(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(testDim)
	emb := newHashEmbedder(testDim)
	svc := NewIngestService(chunker.New(), emb, mem)

	const n = 8
	docs := make([]domain.Document, n)
	for i := range docs {
		name := fmt.Sprintf("doc%d.txt", i)
		docs[i] = domain.NewFileDocument(name, fmt.Sprintf("keyword%d appears only in this document.", i))
	}

	results := svc.IngestAll(ctx, docs, 4)
	for _, res := range results {
		require.Equal(t, domain.IngestStatusIndexed, res.Status)
	}

	// Each document's unique keyword must come back attributed to its own
	// source label.
	for i := 0; i < n; i++ {
		vec, err := emb.Embed(ctx, fmt.Sprintf("keyword%d", i))
		require.NoError(t, err)
		hits, err := mem.Search(ctx, vec, 1, 0.1)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, fmt.Sprintf("doc%d.txt", i), hits[0].Payload.Source)
	}
}
