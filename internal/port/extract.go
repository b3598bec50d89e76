package port

// TextExtractor turns an uploaded file into plain text. Rich-format parsing
// (PDF, DOCX) is an external collaborator; the bundled implementation only
// handles plain-text formats and rejects everything else up front.
type TextExtractor interface {
	// Supports reports whether the filename's extension can be extracted.
	Supports(filename string) bool

	// SupportedExtensions lists accepted extensions, for error messages.
	SupportedExtensions() []string

	// Extract returns the file's plain text.
	Extract(filename string, data []byte) (string, error)
}
