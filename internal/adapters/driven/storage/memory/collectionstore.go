package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore keeps the collection in process memory.
// Nothing survives a restart.
type CollectionStore struct {
	mu  sync.Mutex
	col *domain.Collection
}

// NewCollectionStore creates an empty in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{}
}

// Load returns a copy of the stored collection.
func (s *CollectionStore) Load(ctx context.Context) (*domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col == nil {
		return nil, domain.ErrNotFound
	}
	return s.col.Clone(), nil
}

// Update applies fn to a working copy and keeps it if fn succeeds.
func (s *CollectionStore) Update(ctx context.Context, fn driven.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := domain.NewCollection()
	if s.col != nil {
		working = s.col.Clone()
	}

	if err := fn(working); err != nil {
		return err
	}
	if err := working.Validate(); err != nil {
		return err
	}

	s.col = working
	return nil
}

// Location returns ":memory:".
func (s *CollectionStore) Location() string {
	return ":memory:"
}

// Close is a no-op.
func (s *CollectionStore) Close() error {
	return nil
}
