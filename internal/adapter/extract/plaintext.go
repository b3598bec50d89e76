// Package extract implements the text-extraction boundary for uploads.
// Rich formats (PDF, DOCX) belong to an external extraction service; this
// adapter covers the plain-text family and decodes common encodings.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// PlainText extracts text from plain-text file formats.
type PlainText struct {
	extensions map[string]bool
}

var _ port.TextExtractor = (*PlainText)(nil)

// NewPlainText creates an extractor accepting .txt, .md, .csv and .log
// files.
func NewPlainText() *PlainText {
	return &PlainText{
		extensions: map[string]bool{
			".txt": true,
			".md":  true,
			".csv": true,
			".log": true,
		},
	}
}

// Supports reports whether the filename's extension is handled.
func (p *PlainText) Supports(filename string) bool {
	return p.extensions[strings.ToLower(filepath.Ext(filename))]
}

// SupportedExtensions lists accepted extensions in a fixed order.
func (p *PlainText) SupportedExtensions() []string {
	return []string{".txt", ".md", ".csv", ".log"}
}

// Extract decodes the file content as UTF-8, falling back to Latin-1 for
// legacy files. Empty content is returned as an empty string, not an
// error; the ingestion pipeline reports it as zero chunks.
func (p *PlainText) Extract(filename string, data []byte) (string, error) {
	if !p.Supports(filename) {
		return "", fmt.Errorf("%w: unsupported file type %q, use one of %s",
			port.ErrValidation, filepath.Ext(filename), strings.Join(p.SupportedExtensions(), ", "))
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	// Latin-1 maps every byte to the code point of the same value.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
