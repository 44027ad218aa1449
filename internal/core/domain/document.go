package domain

import (
	"time"
	"unicode/utf8"
)

// PreviewLength is the number of characters kept when previewing document text.
const PreviewLength = 100

// Document represents a stored text and its embedding.
// Documents are immutable once created.
type Document struct {
	// ID is the unique identifier, assigned at creation and never reused.
	ID string

	// Seq is the collection sequence number assigned at creation.
	// It increases strictly with insertion order.
	Seq uint64

	// Text is the indexed content. Never empty.
	Text string

	// Embedding is the vector supplied for Text.
	// All documents in one collection share its length.
	Embedding []float32

	// Metadata is captured at insertion.
	Metadata Metadata
}

// Metadata holds the per-document attributes captured at insertion.
type Metadata struct {
	// CreatedAt is when the document was ingested (UTC).
	CreatedAt time.Time `json:"createdAt"`

	// Category is an optional free-form label.
	Category string `json:"category,omitempty"`

	// Length is the character count of the text.
	Length int `json:"length"`
}

// DocumentView is a document as returned to callers, without its embedding.
type DocumentView struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	c := d
	if d.Embedding != nil {
		c.Embedding = make([]float32, len(d.Embedding))
		copy(c.Embedding, d.Embedding)
	}
	return c
}

// View returns the caller-facing representation of the document.
func (d Document) View() DocumentView {
	return DocumentView{
		ID:       d.ID,
		Text:     d.Text,
		Metadata: d.Metadata,
	}
}

// TextLength returns the number of characters in text.
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}

// Preview returns at most n characters of text, followed by "..." when truncated.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
