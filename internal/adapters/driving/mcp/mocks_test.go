package mcp

import (
	"context"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	resp    *domain.SearchResponse
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.SearchResponse{Results: []domain.ResultView{}}, nil
	}
	return m.resp, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	ingestResp  *domain.IngestResponse
	stats       *domain.StatsResponse
	document    *domain.DocumentView
	err         error
	lastIngest  domain.IngestRequest
	lastPreview int
}

func (m *mockDocumentService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResponse, error) {
	m.lastIngest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.ingestResp, nil
}

func (m *mockDocumentService) IngestBatch(_ context.Context, _ []domain.IngestRequest) ([]domain.IngestResponse, error) {
	return nil, m.err
}

func (m *mockDocumentService) Stats(_ context.Context, preview int) (*domain.StatsResponse, error) {
	m.lastPreview = preview
	if m.err != nil {
		return nil, m.err
	}
	if m.stats == nil {
		return &domain.StatsResponse{}, nil
	}
	return m.stats, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.DocumentView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) List(_ context.Context, _, _ int) ([]domain.DocumentView, error) {
	return nil, m.err
}
