package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OptionalMoth/Document-Chatbot/internal/adapter/store"
	"github.com/OptionalMoth/Document-Chatbot/internal/chunker"
	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

func newPipelinesUnderTest(t *testing.T, gen port.Generator) (*IngestService, *QueryService) {
	t.Helper()
	mem := store.NewMemoryStore(testDim)
	emb := newHashEmbedder(testDim)
	ingest := NewIngestService(chunker.New(), emb, mem)
	query := NewQueryService(emb, NewRetriever(mem, DefaultTopK, DefaultScoreThreshold), NewSynthesizer(gen, DefaultMaxContext), time.Second)
	return ingest, query
}

func TestAnswerQuery_RejectsBlankQuery(t *testing.T) {
	_, query := newPipelinesUnderTest(t, nil)

	_, err := query.AnswerQuery(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrValidation)
}

func TestAnswerQuery_EmptyStoreAnswersGracefully(t *testing.T) {
	_, query := newPipelinesUnderTest(t, nil)

	answer, err := query.AnswerQuery(context.Background(), "anything at all?")
	require.NoError(t, err)
	assert.Equal(t, NoInfoAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
}

func TestAnswerQuery_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ingest, query := newPipelinesUnderTest(t, nil)

	_, err := ingest.Ingest(ctx, domain.NewFileDocument("france.txt",
		"Paris is the capital of France. It is known for the Eiffel Tower."))
	require.NoError(t, err)

	answer, err := query.AnswerQuery(ctx, "What is the capital of France?")
	require.NoError(t, err)
	require.NotEmpty(t, answer.Sources)

	top := answer.Sources[0]
	assert.Contains(t, top.Text, "Paris is the capital of France")
	assert.Equal(t, "france.txt", top.Source)
	assert.Greater(t, top.Score, 0.5)
}

func TestAnswerQuery_TopRankedChunkWins(t *testing.T) {
	ctx := context.Background()
	ingest, query := newPipelinesUnderTest(t, nil)

	_, err := ingest.Ingest(ctx, domain.NewFileDocument("animals.txt",
		"Wolves hunt in packs across the northern forests."))
	require.NoError(t, err)
	_, err = ingest.Ingest(ctx, domain.NewFileDocument("space.txt",
		"Jupiter is the largest planet in the solar system."))
	require.NoError(t, err)

	answer, err := query.AnswerQuery(ctx, "Which is the largest planet in the solar system?")
	require.NoError(t, err)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "space.txt", answer.Sources[0].Source)
}

func TestAnswerQuery_EmbeddingFailureIsAnError(t *testing.T) {
	mem := store.NewMemoryStore(testDim)
	emb := newHashEmbedder(testDim)
	emb.failOn = "?"
	query := NewQueryService(emb, NewRetriever(mem, 5, 0.3), NewSynthesizer(nil, 3), time.Second)

	_, err := query.AnswerQuery(context.Background(), "does this fail?")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrEmbedding)
}

func TestAnswerQuery_StoreFailureIsAnError(t *testing.T) {
	mem := store.NewMemoryStore(testDim)
	emb := newHashEmbedder(testDim)
	query := NewQueryService(emb,
		NewRetriever(&failingStore{VectorStore: mem, searchErr: errDown}, 5, 0.3),
		NewSynthesizer(nil, 3), time.Second)

	_, err := query.AnswerQuery(context.Background(), "is the store up?")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrStore)
}

func TestAnswerQuery_GeneratorTimeoutFallsBack(t *testing.T) {
	ctx := context.Background()
	slowGen := &blockingGenerator{}
	ingest, query := newPipelinesUnderTest(t, slowGen)

	_, err := ingest.Ingest(ctx, domain.NewFileDocument("facts.txt",
		"Honey never spoils when stored properly."))
	require.NoError(t, err)

	answer, err := query.AnswerQuery(ctx, "Does honey spoil when stored?")
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "Based on the available information:")
	assert.NotEmpty(t, answer.Sources)
}

// blockingGenerator waits for the context to expire, standing in for a
// hung generative backend.
type blockingGenerator struct{}

func (g *blockingGenerator) ModelName() string { return "blocking" }

func (g *blockingGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", fmt.Errorf("%w: %v", port.ErrSynthesis, ctx.Err())
}
