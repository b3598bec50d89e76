package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

func TestPlainText_Supports(t *testing.T) {
	p := NewPlainText()
	assert.True(t, p.Supports("notes.txt"))
	assert.True(t, p.Supports("README.MD"))
	assert.True(t, p.Supports("data.csv"))
	assert.False(t, p.Supports("report.pdf"))
	assert.False(t, p.Supports("contract.docx"))
	assert.False(t, p.Supports("archive"))
}

func TestPlainText_ExtractUTF8(t *testing.T) {
	p := NewPlainText()
	text, err := p.Extract("notes.txt", []byte("héllo wörld"))
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", text)
}

func TestPlainText_ExtractLatin1Fallback(t *testing.T) {
	p := NewPlainText()
	// 0xE9 is é in Latin-1 and invalid standalone UTF-8.
	text, err := p.Extract("legacy.txt", []byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestPlainText_RejectsUnsupported(t *testing.T) {
	p := NewPlainText()
	_, err := p.Extract("report.pdf", []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrValidation)
}

func TestPlainText_EmptyFile(t *testing.T) {
	p := NewPlainText()
	text, err := p.Extract("empty.txt", nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}
