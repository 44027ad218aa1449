package domain

import (
	"fmt"
	"time"
)

// DefaultStatsPreview is the number of recent documents included in a stats response.
const DefaultStatsPreview = 5

// IngestRequest is the input to ingestion.
type IngestRequest struct {
	// Text is the content to store. Required.
	Text string `json:"text"`

	// Category is an optional label.
	Category string `json:"category,omitempty"`

	// Embedding is the vector for Text. When empty, the configured
	// embedding provider computes it.
	Embedding []float32 `json:"embedding,omitempty"`
}

// IngestResponse is the output of ingestion.
type IngestResponse struct {
	ID       string        `json:"id"`
	Preview  string        `json:"preview"`
	Metadata Metadata      `json:"metadata"`
	Stats    CorpusStats   `json:"stats"`
	Elapsed  time.Duration `json:"elapsed"`
}

// StatsResponse reports corpus statistics and the most recent documents.
type StatsResponse struct {
	Stats CorpusStats `json:"stats"`

	// Recent holds the newest documents first, with previews of their text.
	Recent []DocumentView `json:"recent"`

	// Dimensions is the recorded corpus dimensionality (0 when empty).
	Dimensions int `json:"dimensions"`

	// Recoveries counts reads that fell back to an empty corpus
	// because the persisted collection was unreadable.
	Recoveries int64 `json:"recoveries"`
}

// BatchError reports which request of a batch failed.
type BatchError struct {
	// Index is the zero-based position of the failed request.
	Index int

	// Err is the failure.
	Err error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("document %d: %v", e.Index+1, e.Err)
}

// Unwrap returns the underlying failure.
func (e *BatchError) Unwrap() error {
	return e.Err
}
