// Package ristretto implements the snapshot and query-embedding caches on
// dgraph-io/ristretto.
package ristretto

import (
	"fmt"

	rcache "github.com/dgraph-io/ristretto/v2"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
)

// snapshotKey is the only key the snapshot cache holds.
const snapshotKey = "collection"

// Ensure caches implement the interfaces.
var (
	_ driven.SnapshotCache  = (*SnapshotCache)(nil)
	_ driven.EmbeddingCache = (*EmbeddingCache)(nil)
)

// SnapshotCache holds the most recently loaded collection.
type SnapshotCache struct {
	c *rcache.Cache[string, *domain.Collection]
}

// NewSnapshotCache creates a snapshot cache.
func NewSnapshotCache() (*SnapshotCache, error) {
	c, err := rcache.NewCache(&rcache.Config[string, *domain.Collection]{
		NumCounters:        100,
		MaxCost:            10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}
	return &SnapshotCache{c: c}, nil
}

// Get returns the cached collection.
func (s *SnapshotCache) Get() (*domain.Collection, bool) {
	return s.c.Get(snapshotKey)
}

// Put caches col. It is visible to Get once Put returns.
func (s *SnapshotCache) Put(col *domain.Collection) {
	if s.c.Set(snapshotKey, col, 1) {
		s.c.Wait()
	}
}

// Invalidate drops the cached collection.
func (s *SnapshotCache) Invalidate() {
	s.c.Del(snapshotKey)
}

// Close stops the cache's background goroutines.
func (s *SnapshotCache) Close() {
	s.c.Close()
}

// EmbeddingCache memoises query embeddings, bounded by the total number of
// float32 values stored.
type EmbeddingCache struct {
	c *rcache.Cache[string, []float32]
}

// NewEmbeddingCache creates an embedding cache holding at most maxCost float32 values.
func NewEmbeddingCache(maxCost int64) (*EmbeddingCache, error) {
	if maxCost <= 0 {
		return nil, fmt.Errorf("embedding cache max cost must be positive, got %d", maxCost)
	}

	// Ten counters per expected entry, assuming ~1024-dimension vectors.
	counters := maxCost / 1024 * 10
	if counters < 1000 {
		counters = 1000
	}

	c, err := rcache.NewCache(&rcache.Config[string, []float32]{
		NumCounters:        counters,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &EmbeddingCache{c: c}, nil
}

// Get returns a copy of the cached embedding for key.
func (e *EmbeddingCache) Get(key string) ([]float32, bool) {
	vec, ok := e.c.Get(key)
	if !ok {
		return nil, false
	}
	return append([]float32(nil), vec...), true
}

// Put stores a copy of vec under key. Admission is best effort.
func (e *EmbeddingCache) Put(key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if e.c.Set(key, append([]float32(nil), vec...), int64(len(vec))) {
		e.c.Wait()
	}
}

// Close stops the cache's background goroutines.
func (e *EmbeddingCache) Close() {
	e.c.Close()
}
