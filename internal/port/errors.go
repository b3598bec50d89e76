package port

import "errors"

// Error kinds used across ports. Handlers map these to HTTP statuses and
// short human-readable messages; callers never see a raw lower-level error.
var (
	// ErrValidation marks empty files, blank queries, and other malformed
	// input. Nothing is attempted after it.
	ErrValidation = errors.New("invalid input")

	// ErrExtraction marks a text-extraction failure for an uploaded file.
	// Empty extracted text is not an extraction error; it ingests as zero
	// chunks.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding marks an embedding backend failure. It is fatal to the
	// current batch or query; no partial embeddings are ever used.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore marks a vector store failure: unreachable service, schema
	// mismatch, rejected write.
	ErrStore = errors.New("vector store failed")

	// ErrSynthesis marks a generative backend failure. It is never surfaced
	// to callers; the synthesizer degrades to its fallback answer instead.
	ErrSynthesis = errors.New("answer synthesis failed")
)
