package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu        sync.Mutex
	embedding []float32
	vectors   map[string][]float32
	embedErr  error
	calls     int
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.embedding
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockCollectionStore wraps the memory store with injectable failures.
type mockCollectionStore struct {
	*memory.CollectionStore

	loadErr   error
	updateErr error
	loads     int
}

func newMockCollectionStore() *mockCollectionStore {
	return &mockCollectionStore{CollectionStore: memory.NewCollectionStore()}
}

func (m *mockCollectionStore) Load(ctx context.Context) (*domain.Collection, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.CollectionStore.Load(ctx)
}

func (m *mockCollectionStore) Update(ctx context.Context, fn driven.UpdateFunc) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	return m.CollectionStore.Update(ctx, fn)
}

// mockSnapshotCache implements driven.SnapshotCache for testing.
type mockSnapshotCache struct {
	mu          sync.Mutex
	col         *domain.Collection
	puts        int
	invalidates int
}

func (m *mockSnapshotCache) Get() (*domain.Collection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.col, m.col != nil
}

func (m *mockSnapshotCache) Put(c *domain.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.col = c
	m.puts++
}

func (m *mockSnapshotCache) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.col = nil
	m.invalidates++
}

// mockEmbeddingCache implements driven.EmbeddingCache for testing.
type mockEmbeddingCache struct {
	entries map[string][]float32
}

func newMockEmbeddingCache() *mockEmbeddingCache {
	return &mockEmbeddingCache{entries: make(map[string][]float32)}
}

func (m *mockEmbeddingCache) Get(key string) ([]float32, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *mockEmbeddingCache) Put(key string, embedding []float32) {
	m.entries[key] = embedding
}

// --- Helpers ---

// newTestCorpus returns a corpus over an in-memory store with sequential IDs.
func newTestCorpus() (*Corpus, *mockCollectionStore) {
	store := newMockCollectionStore()
	corpus := NewCorpus(store)

	var mu sync.Mutex
	n := 0
	corpus.SetIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("doc-%d", n)
	})
	return corpus, store
}

// addDocs stores one document per embedding with text "text N", N from 1.
func addDocs(t *testing.T, corpus *Corpus, embeddings ...[]float32) {
	t.Helper()
	for i, e := range embeddings {
		_, err := corpus.AddDocument(context.Background(), fmt.Sprintf("text %d", i+1), e, domain.Metadata{})
		require.NoError(t, err)
	}
}
