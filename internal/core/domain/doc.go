// Package domain defines the core business entities for vecdocs.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A stored text with its embedding and metadata
//   - Collection: The persisted, versioned set of documents
//   - SearchResult: A scored document produced by a query
//   - CorpusStats: Aggregate statistics derived from the corpus
//
// It also holds the pure vector math used for ranking.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
