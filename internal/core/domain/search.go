package domain

import "time"

// DefaultSearchLimit is the number of results returned when no limit is given.
const DefaultSearchLimit = 10

// SearchResult is a single scored document. It is never persisted.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Similarity is the cosine similarity to the query, in [-1, 1].
	Similarity float64

	// ProcessingTime is the elapsed time from the start of scoring
	// until this result was finalised.
	ProcessingTime time.Duration
}

// SearchRequest is the input to a search.
type SearchRequest struct {
	// QueryEmbedding is the vector to compare against the corpus.
	QueryEmbedding []float32

	// Query is optional query text. It is embedded by the provider
	// when QueryEmbedding is empty.
	Query string

	// Limit is the maximum number of results.
	// Nil selects DefaultSearchLimit; explicit values must be positive.
	Limit *int
}

// ResultView is a search result as returned to callers.
type ResultView struct {
	Document       DocumentView  `json:"document"`
	Similarity     float64       `json:"similarity"`
	ProcessingTime time.Duration `json:"processingTime"`
}

// SearchResponse is the output of a search.
type SearchResponse struct {
	Results []ResultView  `json:"results"`
	Elapsed time.Duration `json:"elapsed"`
}

// IntPtr returns a pointer to v, for optional request fields.
func IntPtr(v int) *int {
	return &v
}
