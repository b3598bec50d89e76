package domain

// Citation is a retrieved chunk presented alongside an answer. Text is the
// verbatim chunk text (possibly truncated at a sentence boundary), never a
// paraphrase, so callers can judge relevance themselves.
type Citation struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Answer is the result of a chat query: free text plus the citations that
// back it. Sources may be empty when nothing relevant was found.
type Answer struct {
	Text    string     `json:"answer"`
	Sources []Citation `json:"sources"`
}

// Ingestion status constants.
const (
	IngestStatusIndexed = "indexed"
	IngestStatusEmpty   = "empty"
	IngestStatusFailed  = "failed"
)

// IngestResult reports the outcome of ingesting one document.
type IngestResult struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunks"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}
