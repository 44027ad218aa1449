package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driving"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService validates search requests, ranks the corpus and shapes results.
type SearchService struct {
	corpus       *Corpus
	ranker       *Ranker
	embedder     driven.EmbeddingService
	embedCache   driven.EmbeddingCache
	defaultLimit int
}

// NewSearchService creates a new search service.
// The embedder is optional (can be nil); it is only used for text queries.
func NewSearchService(corpus *Corpus, ranker *Ranker, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		corpus:       corpus,
		ranker:       ranker,
		embedder:     embedder,
		defaultLimit: domain.DefaultSearchLimit,
	}
}

// SetEmbeddingCache sets the cache used for text query embeddings.
func (s *SearchService) SetEmbeddingCache(cache driven.EmbeddingCache) {
	s.embedCache = cache
}

// SetDefaultLimit sets the limit used when a request does not specify one.
func (s *SearchService) SetDefaultLimit(limit int) {
	if limit > 0 {
		s.defaultLimit = limit
	}
}

// Search ranks the corpus against the query and returns results without embeddings.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	start := time.Now()

	limit := s.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
		if limit <= 0 {
			return nil, domain.NewValidationError("limit must be a positive integer, got %d", limit)
		}
	}
	logger.Debug("Limit: %d", limit)

	query := req.QueryEmbedding
	if len(query) == 0 {
		var err error
		query, err = s.embedQuery(ctx, req.Query)
		if err != nil {
			return nil, err
		}
	}
	if err := domain.ValidateEmbedding(query); err != nil {
		return nil, err
	}

	col, err := s.corpus.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Corpus: %d documents, %d dimensions", len(col.Documents), col.Dimensions)

	if col.Dimensions > 0 && len(query) != col.Dimensions {
		logger.Warn("Query has %d dimensions, corpus has %d", len(query), col.Dimensions)
		return nil, fmt.Errorf("search: %w", domain.NewDimensionMismatch(col.Dimensions, len(query)))
	}

	results, err := s.ranker.Rank(ctx, query, col.Documents, limit)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	resp := &domain.SearchResponse{
		Results: make([]domain.ResultView, len(results)),
	}
	for i := range results {
		resp.Results[i] = domain.ResultView{
			Document:       results[i].Document.View(),
			Similarity:     results[i].Similarity,
			ProcessingTime: results[i].ProcessingTime,
		}
	}
	resp.Elapsed = time.Since(start)

	logger.Info("Final results: %d in %v", len(resp.Results), resp.Elapsed)
	return resp, nil
}

// embedQuery turns query text into an embedding through the provider.
func (s *SearchService) embedQuery(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("query embedding is required")
	}
	if s.embedder == nil {
		return nil, domain.NewValidationError("query embedding is required when no embedding provider is configured")
	}

	key := s.embedder.ModelName() + "\x00" + text
	if s.embedCache != nil {
		if vec, ok := s.embedCache.Get(key); ok {
			logger.Debug("Query embedding cache hit")
			return vec, nil
		}
	}

	logger.Debug("Embedding query with %s", s.embedder.ModelName())
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("Embedding provider failed: %v", err)
		return nil, domain.NewProviderUnavailable("embed query", err)
	}

	if s.embedCache != nil {
		s.embedCache.Put(key, vec)
	}
	return vec, nil
}
