package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// DefaultQueryTimeout bounds waiting on the generative backend.
const DefaultQueryTimeout = 30 * time.Second

// QueryService answers natural-language questions from indexed content.
// Failures before retrieval (validation, embedding, store) surface as
// errors; once retrieval has succeeded the caller always gets an answer,
// degrading to the synthesizer's fallback on timeout or generation
// failure.
type QueryService struct {
	embedder  port.Embedder
	retriever *Retriever
	synth     *Synthesizer
	timeout   time.Duration
}

// NewQueryService creates the query pipeline.
func NewQueryService(embedder port.Embedder, retriever *Retriever, synth *Synthesizer, timeout time.Duration) *QueryService {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &QueryService{embedder: embedder, retriever: retriever, synth: synth, timeout: timeout}
}

// AnswerQuery embeds the query, retrieves candidates, and synthesizes a
// cited answer.
func (s *QueryService) AnswerQuery(ctx context.Context, query string) (domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, fmt.Errorf("%w: query cannot be empty", port.ErrValidation)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.retriever.Retrieve(ctx, vector)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve candidates: %w", err)
	}

	// The timeout scopes waiting on the generative backend only; the
	// synthesizer falls back rather than failing when it expires.
	synthCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer := s.synth.Synthesize(synthCtx, query, hits)
	slog.Info("query answered", "citations", len(answer.Sources))
	return answer, nil
}
