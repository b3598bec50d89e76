// Package chunker splits document text into bounded, overlapping fragments
// suitable for retrieval indexing.
package chunker

import (
	"regexp"
	"strings"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
)

// Defaults match common sentence-embedding context sizes.
const (
	DefaultMaxSize = 800
	DefaultOverlap = 100
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	manyDotsRE   = regexp.MustCompile(`\.{2,}`)
)

// Chunker splits text into chunks of at most MaxSize runes with Overlap
// runes shared between consecutive chunks. Splitting prefers sentence
// boundaries when one falls inside the size budget and hard-cuts otherwise.
// It is a pure function of its input and configuration.
type Chunker struct {
	maxSize int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxSize sets the maximum chunk size in runes.
func WithMaxSize(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in runes.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxSize: DefaultMaxSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.maxSize {
		c.overlap = c.maxSize / 4
	}
	return c
}

// MaxSize returns the configured maximum chunk size.
func (c *Chunker) MaxSize() int { return c.maxSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits the document's text into ordered chunks carrying the
// document's source label and metadata. Empty or whitespace-only text
// yields no chunks; text that fits in one chunk is returned whole.
func (c *Chunker) Chunk(doc domain.Document) []domain.Chunk {
	pieces := c.Split(doc.Text)
	chunks := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Index:      i,
			Text:       p.Text,
			Start:      p.Start,
			End:        p.End,
			Source:     doc.Source,
			SourceType: doc.SourceType,
			Metadata:   doc.Metadata,
		}
	}
	return chunks
}

// Piece is a text fragment with its rune span in the normalized input.
type Piece struct {
	Text  string
	Start int
	End   int
}

// Split cuts normalized text into pieces of at most MaxSize runes. The
// window advances by MaxSize-Overlap so consecutive pieces share at least
// Overlap runes, except when the text fits in a single piece.
func (c *Chunker) Split(text string) []Piece {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	runes := []rune(norm)
	if len(runes) <= c.maxSize {
		return []Piece{{Text: norm, Start: 0, End: len(runes)}}
	}

	var pieces []Piece
	start := 0
	for start < len(runes) {
		end := start + c.maxSize
		if end >= len(runes) {
			end = len(runes)
		} else if b := lastSentenceEnd(runes, start+c.maxSize/2, end); b > start {
			end = b
		}
		pieces = append(pieces, Piece{
			Text:  strings.TrimSpace(string(runes[start:end])),
			Start: start,
			End:   end,
		})
		if end == len(runes) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return pieces
}

// Normalize collapses runs of whitespace to single spaces and strips
// leading/trailing space, matching what is fed to the embedder.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\f", "")
	text = manyDotsRE.ReplaceAllString(text, "...")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// lastSentenceEnd returns the rune index just past the last sentence-ending
// punctuation followed by a space in runes[lo:hi], or -1 when none exists.
// The lower bound keeps chunks from collapsing below half the size budget.
func lastSentenceEnd(runes []rune, lo, hi int) int {
	if lo < 1 {
		lo = 1
	}
	for i := hi - 1; i >= lo; i-- {
		if runes[i] != ' ' {
			continue
		}
		switch runes[i-1] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}
