// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input and ranked results.
	ViewSearch ViewType = iota
	// ViewDocuments pages through the collection in insertion order.
	ViewDocuments
	// ViewDocument shows one document in full.
	ViewDocument
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewDocument:
		return "document"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries a search response back to the model.
type SearchCompleted struct {
	Response *domain.SearchResponse
	Err      error
}

// StatsLoaded carries corpus statistics for the status bar.
type StatsLoaded struct {
	Stats *domain.StatsResponse
	Err   error
}

// StatsTick triggers a periodic stats refresh.
type StatsTick struct{}

// DocumentsLoaded carries one page of the collection.
type DocumentsLoaded struct {
	Offset    int
	Documents []domain.DocumentView
	Err       error
}

// DocumentSelected opens a document; Back is the view to return to.
type DocumentSelected struct {
	Document domain.DocumentView
	Back     ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
