package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source type constants.
const (
	SourceTypeFile = "file"
	SourceTypeCMS  = "cms"
)

// docNamespace is the UUID namespace used to derive deterministic document
// and point ids. Re-ingesting the same source yields the same ids, which
// makes upserts replace prior points instead of duplicating them.
var docNamespace = uuid.MustParse("2b9acb0e-6a94-4e41-9f27-3c6f2e8d5a10")

// Document is a named unit of source text, either an uploaded file or a
// CMS import. Text is expected to be already-extracted plain text.
type Document struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	SourceType string         `json:"source_type"`
	Text       string         `json:"-"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ImportedAt time.Time      `json:"imported_at"`
}

// NewFileDocument builds a document for an uploaded file. The id is derived
// from the source type and filename.
func NewFileDocument(filename, text string) Document {
	return newDocument(filename, SourceTypeFile, text, nil)
}

// NewCMSDocument builds a document for externally imported CMS text.
func NewCMSDocument(source, text string, metadata map[string]any) Document {
	if source == "" {
		source = "cms"
	}
	return newDocument(source, SourceTypeCMS, text, metadata)
}

func newDocument(source, sourceType, text string, metadata map[string]any) Document {
	return Document{
		ID:         uuid.NewSHA1(docNamespace, []byte(sourceType+":"+source)).String(),
		Source:     source,
		SourceType: sourceType,
		Text:       text,
		Metadata:   metadata,
		ImportedAt: time.Now().UTC(),
	}
}

// ChunkID derives the unique chunk id from its document id and sequence
// index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s:%d", documentID, index)
}

// Chunk is an ordered fragment of a document's text, the unit of retrieval.
// Start and End are rune offsets into the document's normalized text.
type Chunk struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Index      int            `json:"index"`
	Text       string         `json:"text"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
	Source     string         `json:"source"`
	SourceType string         `json:"source_type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PointID returns the deterministic vector-store id for this chunk.
func (c Chunk) PointID() string {
	return uuid.NewSHA1(docNamespace, []byte(c.ID)).String()
}

// Payload is the data stored alongside a vector in the index.
type Payload struct {
	ChunkID    string         `json:"chunk_id"`
	DocumentID string         `json:"document_id"`
	Index      int            `json:"index"`
	Text       string         `json:"text"`
	Source     string         `json:"source"`
	SourceType string         `json:"source_type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Point is the persisted unit in the vector store: one embedded chunk.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// NewPoint pairs a chunk with its embedding vector.
func NewPoint(c Chunk, vector []float32) Point {
	return Point{
		ID:     c.PointID(),
		Vector: vector,
		Payload: Payload{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Index:      c.Index,
			Text:       c.Text,
			Source:     c.Source,
			SourceType: c.SourceType,
			Metadata:   c.Metadata,
		},
	}
}

// SearchHit is a stored point matched by a similarity search.
type SearchHit struct {
	Payload Payload `json:"payload"`
	Score   float64 `json:"score"`
}
