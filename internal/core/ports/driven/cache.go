package driven

import "github.com/custodia-labs/vecdocs/internal/core/domain"

// SnapshotCache holds the most recent collection snapshot.
// Callers treat cached collections as read-only.
type SnapshotCache interface {
	// Get returns the cached collection, if any.
	Get() (*domain.Collection, bool)

	// Put replaces the cached collection.
	Put(c *domain.Collection)

	// Invalidate drops the cached collection.
	Invalidate()
}

// EmbeddingCache memoises query embeddings by key.
type EmbeddingCache interface {
	// Get returns the cached embedding for key, if any.
	Get(key string) ([]float32, bool)

	// Put stores an embedding under key. It may be dropped under memory pressure.
	Put(key string, embedding []float32)
}
