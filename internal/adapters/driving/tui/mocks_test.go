package tui

import (
	"context"
	"time"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

type mockSearchService struct {
	resp *domain.SearchResponse
	err  error
	last domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.SearchResponse{Results: []domain.ResultView{}}, nil
	}
	return m.resp, nil
}

type mockDocumentService struct {
	docs  []domain.DocumentView
	stats *domain.StatsResponse
}

func (m *mockDocumentService) Ingest(context.Context, domain.IngestRequest) (*domain.IngestResponse, error) {
	return &domain.IngestResponse{}, nil
}

func (m *mockDocumentService) IngestBatch(context.Context, []domain.IngestRequest) ([]domain.IngestResponse, error) {
	return nil, nil
}

func (m *mockDocumentService) Stats(context.Context, int) (*domain.StatsResponse, error) {
	if m.stats == nil {
		return &domain.StatsResponse{Stats: domain.CorpusStats{TotalDocuments: len(m.docs)}}, nil
	}
	return m.stats, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.DocumentView, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context, offset, limit int) ([]domain.DocumentView, error) {
	if offset >= len(m.docs) {
		return []domain.DocumentView{}, nil
	}
	end := len(m.docs)
	if limit > 0 {
		end = min(offset+limit, end)
	}
	return m.docs[offset:end], nil
}

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDoc(id, text string) domain.DocumentView {
	return domain.DocumentView{
		ID:       id,
		Text:     text,
		Metadata: domain.Metadata{CreatedAt: testCreatedAt, Length: domain.TextLength(text)},
	}
}
