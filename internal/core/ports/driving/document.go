package driving

import (
	"context"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// DocumentService manages ingestion and inspection of the corpus.
type DocumentService interface {
	// Ingest stores a new document and returns its identity and refreshed stats.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResponse, error)

	// IngestBatch ingests requests in order, stopping at the first failure.
	// It returns the responses for the documents that were stored.
	IngestBatch(ctx context.Context, reqs []domain.IngestRequest) ([]domain.IngestResponse, error)

	// Stats returns corpus statistics and the most recent documents.
	Stats(ctx context.Context, preview int) (*domain.StatsResponse, error)

	// Get retrieves a document by ID, without its embedding.
	Get(ctx context.Context, id string) (*domain.DocumentView, error)

	// List returns documents in insertion order, without embeddings.
	List(ctx context.Context, offset, limit int) ([]domain.DocumentView, error)
}
