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

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService validates ingestion requests and shapes corpus responses.
type DocumentService struct {
	corpus   *Corpus
	embedder driven.EmbeddingService
}

// NewDocumentService creates a new document service.
// The embedder is optional; without it every request must carry an embedding.
func NewDocumentService(corpus *Corpus, embedder driven.EmbeddingService) *DocumentService {
	return &DocumentService{
		corpus:   corpus,
		embedder: embedder,
	}
}

// Ingest stores a new document and returns its identity, metadata and refreshed stats.
func (s *DocumentService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResponse, error) {
	logger.Section("Ingest")
	start := time.Now()

	if err := validateIngest(req); err != nil {
		return nil, err
	}

	embedding := req.Embedding
	if len(embedding) == 0 {
		if s.embedder == nil {
			return nil, domain.NewValidationError("embedding is required when no embedding provider is configured")
		}
		logger.Debug("No embedding supplied, using %s", s.embedder.ModelName())

		var err error
		embedding, err = s.embedder.Embed(ctx, req.Text)
		if err != nil {
			logger.Warn("Embedding provider failed: %v", err)
			return nil, domain.NewProviderUnavailable("embed text", err)
		}
	}

	return s.store(ctx, req, embedding, start)
}

// IngestBatch ingests requests in order and stops at the first failure.
// All texts are validated, and missing embeddings computed, before anything is stored.
// Failures tied to one request are reported as *domain.BatchError.
func (s *DocumentService) IngestBatch(
	ctx context.Context, reqs []domain.IngestRequest,
) ([]domain.IngestResponse, error) {
	logger.Section("Batch Ingest")
	logger.Debug("Documents: %d", len(reqs))

	var pending []int
	for i := range reqs {
		if err := validateIngest(reqs[i]); err != nil {
			return nil, &domain.BatchError{Index: i, Err: err}
		}
		if len(reqs[i].Embedding) == 0 {
			pending = append(pending, i)
		}
	}

	embeddings := make([][]float32, len(reqs))
	for i := range reqs {
		embeddings[i] = reqs[i].Embedding
	}

	if len(pending) > 0 {
		if s.embedder == nil {
			return nil, &domain.BatchError{
				Index: pending[0],
				Err:   domain.NewValidationError("embedding is required when no embedding provider is configured"),
			}
		}

		texts := make([]string, len(pending))
		for j, i := range pending {
			texts[j] = reqs[i].Text
		}
		logger.Debug("Embedding %d texts with %s", len(texts), s.embedder.ModelName())

		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, domain.NewProviderUnavailable("embed batch", err)
		}
		if len(vecs) != len(pending) {
			return nil, domain.NewProviderUnavailable("embed batch",
				fmt.Errorf("provider returned %d embeddings for %d texts", len(vecs), len(pending)))
		}
		for j, i := range pending {
			embeddings[i] = vecs[j]
		}
	}

	out := make([]domain.IngestResponse, 0, len(reqs))
	for i := range reqs {
		resp, err := s.store(ctx, reqs[i], embeddings[i], time.Now())
		if err != nil {
			return out, &domain.BatchError{Index: i, Err: err}
		}
		out = append(out, *resp)
	}

	logger.Info("Ingested %d documents", len(out))
	return out, nil
}

func (s *DocumentService) store(
	ctx context.Context, req domain.IngestRequest, embedding []float32, start time.Time,
) (*domain.IngestResponse, error) {
	meta := domain.Metadata{Category: strings.TrimSpace(req.Category)}

	doc, err := s.corpus.AddDocument(ctx, req.Text, embedding, meta)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	resp := &domain.IngestResponse{
		ID:       doc.ID,
		Preview:  domain.Preview(doc.Text, domain.PreviewLength),
		Metadata: doc.Metadata,
		Stats:    s.corpus.GetStats(ctx),
		Elapsed:  time.Since(start),
	}

	logger.Info("Ingested %s in %v", doc.ID, resp.Elapsed)
	return resp, nil
}

func validateIngest(req domain.IngestRequest) error {
	if req.Text == "" {
		return domain.NewValidationError("text is required")
	}
	if len(req.Embedding) > 0 {
		return domain.ValidateEmbedding(req.Embedding)
	}
	return nil
}

// Stats returns corpus statistics and up to preview of the newest documents.
func (s *DocumentService) Stats(ctx context.Context, preview int) (*domain.StatsResponse, error) {
	if preview < 0 {
		return nil, domain.NewValidationError("preview must not be negative, got %d", preview)
	}

	col, err := s.corpus.Read(ctx)
	if err != nil {
		return nil, err
	}
	recent := recentDocuments(col.Documents, preview)

	views := make([]domain.DocumentView, len(recent))
	for i := range recent {
		views[i] = recent[i].View()
		views[i].Text = domain.Preview(views[i].Text, domain.PreviewLength)
	}

	return &domain.StatsResponse{
		Stats:      domain.ComputeStats(col.Documents),
		Recent:     views,
		Dimensions: col.Dimensions,
		Recoveries: s.corpus.Recoveries(),
	}, nil
}

// Get retrieves a document by ID, without its embedding.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.DocumentView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("document id is required")
	}

	doc, err := s.corpus.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view := doc.View()
	return &view, nil
}

// List returns documents in insertion order, without embeddings.
// A limit of 0 returns every document from offset onwards.
func (s *DocumentService) List(ctx context.Context, offset, limit int) ([]domain.DocumentView, error) {
	if offset < 0 || limit < 0 {
		return nil, domain.NewValidationError("offset and limit must not be negative")
	}

	col, err := s.corpus.Read(ctx)
	if err != nil {
		return nil, err
	}
	docs := applyPagination(col.Documents, offset, limit)

	views := make([]domain.DocumentView, len(docs))
	for i := range docs {
		views[i] = docs[i].View()
	}
	return views, nil
}

// applyPagination returns the window [offset, offset+limit) of docs.
func applyPagination(docs []domain.Document, offset, limit int) []domain.Document {
	if offset >= len(docs) {
		return []domain.Document{}
	}
	docs = docs[offset:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
