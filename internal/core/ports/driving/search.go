package driving

import (
	"context"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// SearchService provides similarity search to external actors.
type SearchService interface {
	// Search ranks the corpus against the request's query embedding.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}
