// Package mcp provides an MCP (Model Context Protocol) server adapter for vecdocs.
// It lets AI assistants ingest documents into and search the local corpus.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

// toolError tags err with its stable kind. The SDK reports errors returned
// from tool handlers as results with IsError set, so the kind reaches the client.
func toolError(err error) error {
	return fmt.Errorf("[%s] %w", domain.KindOf(err), err)
}
