package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

func TestDocumentService_Ingest(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()

	resp, err := service.Ingest(ctx, domain.IngestRequest{
		Text:      "The quick brown fox",
		Category:  "  animals ",
		Embedding: []float32{0.1, 0.2, 0.3},
	})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", resp.ID)
	assert.Equal(t, "The quick brown fox", resp.Preview)
	assert.Equal(t, "animals", resp.Metadata.Category)
	assert.Equal(t, 19, resp.Metadata.Length)
	assert.Equal(t, 1, resp.Stats.TotalDocuments)
	assert.Equal(t, []string{"animals"}, resp.Stats.Categories)
	assert.Positive(t, resp.Elapsed)
}

func TestDocumentService_Ingest_PreviewTruncated(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	text := strings.Repeat("é", domain.PreviewLength+20)

	resp, err := service.Ingest(context.Background(), domain.IngestRequest{Text: text, Embedding: []float32{1}})

	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", domain.PreviewLength)+"...", resp.Preview)
	assert.Equal(t, domain.PreviewLength+20, resp.Metadata.Length)
}

func TestDocumentService_Ingest_EmptyTextLeavesStatsUnchanged(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()
	addDocs(t, corpus, []float32{1, 0})
	before := corpus.GetStats(ctx)

	_, err := service.Ingest(ctx, domain.IngestRequest{Text: "", Embedding: []float32{1, 0}})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, before, corpus.GetStats(ctx))
}

func TestDocumentService_Ingest_MissingEmbeddingWithoutProvider(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)

	_, err := service.Ingest(context.Background(), domain.IngestRequest{Text: "x"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDocumentService_Ingest_UsesProvider(t *testing.T) {
	corpus, _ := newTestCorpus()
	embedder := &mockEmbeddingService{embedding: []float32{0.5, 0.5}}
	service := NewDocumentService(corpus, embedder)
	ctx := context.Background()

	resp, err := service.Ingest(ctx, domain.IngestRequest{Text: "embed me"})

	require.NoError(t, err)
	doc, err := corpus.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, doc.Embedding)
	assert.Equal(t, 1, embedder.callCount())
}

func TestDocumentService_Ingest_SuppliedEmbeddingSkipsProvider(t *testing.T) {
	corpus, _ := newTestCorpus()
	embedder := &mockEmbeddingService{embedding: []float32{0.5, 0.5}}
	service := NewDocumentService(corpus, embedder)

	_, err := service.Ingest(context.Background(), domain.IngestRequest{Text: "x", Embedding: []float32{1, 2}})

	require.NoError(t, err)
	assert.Zero(t, embedder.callCount())
}

func TestDocumentService_Ingest_ProviderFailure(t *testing.T) {
	corpus, _ := newTestCorpus()
	cause := errors.New("connection refused")
	service := NewDocumentService(corpus, &mockEmbeddingService{embedErr: cause})
	ctx := context.Background()

	_, err := service.Ingest(ctx, domain.IngestRequest{Text: "x"})

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.KindProviderUnavailable, domain.KindOf(err))
	assert.Empty(t, corpus.GetAllDocuments(ctx))
}

func TestDocumentService_Ingest_DimensionMismatch(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()
	addDocs(t, corpus, []float32{1, 0})

	_, err := service.Ingest(ctx, domain.IngestRequest{Text: "x", Embedding: []float32{1, 0, 0}})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Len(t, corpus.GetAllDocuments(ctx), 1)
}

func TestDocumentService_IngestBatch(t *testing.T) {
	corpus, _ := newTestCorpus()
	embedder := &mockEmbeddingService{embedding: []float32{1, 1}}
	service := NewDocumentService(corpus, embedder)
	ctx := context.Background()

	out, err := service.IngestBatch(ctx, []domain.IngestRequest{
		{Text: "one", Embedding: []float32{1, 0}},
		{Text: "two"},
		{Text: "three", Category: "c"},
	})

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 3, out[2].Stats.TotalDocuments)
	assert.Equal(t, 1, embedder.callCount())

	docs := corpus.GetAllDocuments(ctx)
	require.Len(t, docs, 3)
	assert.Equal(t, "one", docs[0].Text)
	assert.Equal(t, []float32{1, 1}, docs[1].Embedding)
}

func TestDocumentService_IngestBatch_ValidatesBeforeStoring(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()

	out, err := service.IngestBatch(ctx, []domain.IngestRequest{
		{Text: "one", Embedding: []float32{1}},
		{Text: "", Embedding: []float32{1}},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "document 2")
	assert.Empty(t, out)
	assert.Empty(t, corpus.GetAllDocuments(ctx))
}

func TestDocumentService_IngestBatch_StopsAtFirstStoreFailure(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()

	out, err := service.IngestBatch(ctx, []domain.IngestRequest{
		{Text: "one", Embedding: []float32{1, 0}},
		{Text: "two", Embedding: []float32{1, 0, 0}},
		{Text: "three", Embedding: []float32{0, 1}},
	})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "document 2")
	assert.Len(t, out, 1)
	assert.Len(t, corpus.GetAllDocuments(ctx), 1)
}

func TestDocumentService_Stats(t *testing.T) {
	corpus, store := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, domain.IngestRequest{Text: "aa", Category: "x", Embedding: []float32{1, 0}})
	require.NoError(t, err)
	_, err = service.Ingest(ctx, domain.IngestRequest{Text: "bbbb", Category: "y", Embedding: []float32{0, 1}})
	require.NoError(t, err)
	_, err = service.Ingest(ctx, domain.IngestRequest{Text: "cccccc", Category: "x", Embedding: []float32{1, 1}})
	require.NoError(t, err)

	resp, err := service.Stats(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Stats.TotalDocuments)
	assert.InDelta(t, 4.0, resp.Stats.AverageTextLength, 1e-9)
	assert.Equal(t, []string{"x", "y"}, resp.Stats.Categories)
	assert.Equal(t, 2, resp.Dimensions)
	require.Len(t, resp.Recent, 2)
	assert.Equal(t, "cccccc", resp.Recent[0].Text)
	assert.Equal(t, "bbbb", resp.Recent[1].Text)

	store.loadErr = domain.ErrCorrupt
	resp, err = service.Stats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Stats.TotalDocuments)
	assert.Equal(t, int64(1), resp.Recoveries)
}

func TestDocumentService_Stats_NegativePreview(t *testing.T) {
	corpus, _ := newTestCorpus()

	_, err := NewDocumentService(corpus, nil).Stats(context.Background(), -1)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDocumentService_Get(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()
	addDocs(t, corpus, []float32{1})

	view, err := service.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "text 1", view.Text)

	_, err = service.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Get(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDocumentService_List(t *testing.T) {
	corpus, _ := newTestCorpus()
	service := NewDocumentService(corpus, nil)
	ctx := context.Background()
	addDocs(t, corpus, []float32{1}, []float32{2}, []float32{3}, []float32{4})

	tests := []struct {
		name          string
		offset, limit int
		wantIDs       []string
	}{
		{"all", 0, 0, []string{"doc-1", "doc-2", "doc-3", "doc-4"}},
		{"first page", 0, 2, []string{"doc-1", "doc-2"}},
		{"second page", 2, 2, []string{"doc-3", "doc-4"}},
		{"past end", 10, 2, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := service.List(ctx, tt.offset, tt.limit)
			require.NoError(t, err)
			ids := make([]string, len(views))
			for i, v := range views {
				ids[i] = v.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, err := service.List(ctx, -1, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDocumentService_ExpiredContext(t *testing.T) {
	corpus, _ := newTestCorpus()
	addDocs(t, corpus, []float32{1}, []float32{2})
	service := NewDocumentService(corpus, nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	stats, err := service.Stats(ctx, 5)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	views, err := service.List(ctx, 0, 0)
	assert.Nil(t, views)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = service.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
