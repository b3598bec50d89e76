package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// Answer templates for the deterministic fallback path.
const (
	NoInfoAnswer = "I couldn't find any relevant information in the documents. " +
		"Please try a different question or upload more relevant documents."
	fallbackPrefix = "Based on the available information: "
)

// DefaultMaxContext is how many candidates are included in the prompt and
// cited in the answer.
const DefaultMaxContext = 3

// snippetLimit bounds citation text length; truncation prefers a sentence
// boundary.
const snippetLimit = 250

const answerSystemPrompt = `You are a document assistant. Answer the user's question using only the provided document excerpts.
If the answer cannot be found in the excerpts, say "I don't have enough information to answer that question based on the provided documents."
Answer in clear, complete sentences. Do not use bullet points or numbered lists.
If excerpts conflict, mention any uncertainties.`

// Synthesizer turns a query and ranked candidates into a cited answer.
// When a generator is configured it produces a grounded answer; otherwise,
// or on any generator failure, it degrades to a deterministic fallback.
// Synthesize never fails: callers can always depend on getting an answer.
type Synthesizer struct {
	gen        port.Generator // nil = fallback only
	maxContext int
}

// NewSynthesizer creates a synthesizer. gen may be nil, in which case only
// the fallback path is used.
func NewSynthesizer(gen port.Generator, maxContext int) *Synthesizer {
	if maxContext <= 0 {
		maxContext = DefaultMaxContext
	}
	return &Synthesizer{gen: gen, maxContext: maxContext}
}

// Synthesize composes an answer for the query from the ranked candidates.
// Every candidate included in the prompt becomes a citation, carrying its
// verbatim text, source label, and score.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, hits []domain.SearchHit) domain.Answer {
	if len(hits) == 0 {
		return domain.Answer{Text: NoInfoAnswer, Sources: []domain.Citation{}}
	}

	used := hits
	if len(used) > s.maxContext {
		used = used[:s.maxContext]
	}

	citations := make([]domain.Citation, len(used))
	for i, hit := range used {
		citations[i] = domain.Citation{
			Text:   truncateAtSentence(hit.Payload.Text, snippetLimit),
			Source: hit.Payload.Source,
			Score:  hit.Score,
		}
	}

	if s.gen == nil {
		return domain.Answer{Text: fallbackPrefix + used[0].Payload.Text, Sources: citations}
	}

	answer, err := s.gen.Generate(ctx, answerSystemPrompt, buildPrompt(query, used))
	if err != nil || strings.TrimSpace(answer) == "" {
		slog.Warn("generation failed, using fallback answer", "error", err)
		return domain.Answer{Text: fallbackPrefix + used[0].Payload.Text, Sources: citations}
	}

	return domain.Answer{Text: polishAnswer(answer), Sources: citations}
}

// buildPrompt tags each candidate with its source and appends the question.
func buildPrompt(query string, hits []domain.SearchHit) string {
	var b strings.Builder
	b.WriteString("DOCUMENT EXCERPTS:\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "\n[Excerpt %d, from %s]: %s\n", i+1, hit.Payload.Source, hit.Payload.Text)
	}
	fmt.Fprintf(&b, "\nQUESTION: %s\n", query)
	return b.String()
}

// polishAnswer trims the generated text and ensures closing punctuation.
func polishAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return answer
	}
	switch answer[len(answer)-1] {
	case '.', '!', '?':
		return answer
	}
	return answer + "."
}

// truncateAtSentence shortens text to at most limit runes, preferring to
// cut after the last sentence end past the halfway mark.
func truncateAtSentence(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	window := string(runes[:limit])
	if idx := strings.LastIndex(window, ". "); idx > limit/2 {
		return window[:idx+1] + "..."
	}
	return string(runes[:limit-3]) + "..."
}
