package port

import "context"

// Embedder maps text to fixed-dimension dense vectors. One model backs the
// whole process: the same embedder instance is used for chunks at ingestion
// and for the query at retrieval time, which keeps the vector space
// comparable. Vectors are L2-normalized, so cosine similarity reduces to a
// dot product.
type Embedder interface {
	// ModelName returns the identifier of the embedding model.
	ModelName() string

	// Dimension returns the fixed vector dimension D.
	Dimension() int

	// Embed generates a normalized vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds multiple texts in one call, preserving input order.
	// On error no partial results are returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator abstracts the optional generative answering backend.
// Implementations can target Ollama, OpenAI, or any compatible API.
type Generator interface {
	// ModelName returns the identifier of the generation model.
	ModelName() string

	// Generate produces a completion for the given prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
