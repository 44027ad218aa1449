package driven

import (
	"context"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

// UpdateFunc mutates a working copy of the collection.
// Returning an error aborts the update and nothing is persisted.
type UpdateFunc func(c *domain.Collection) error

// CollectionStore persists the document collection as a whole.
//
// Every write is a read-modify-write of the full collection. Implementations
// must replace the persisted image atomically: a concurrent or subsequent Load
// sees either the previous collection or the new one, never a partial write.
type CollectionStore interface {
	// Load reads the persisted collection.
	// Returns domain.ErrNotFound if nothing has been saved yet and an error
	// wrapping domain.ErrCorrupt if the persisted data cannot be decoded.
	Load(ctx context.Context) (*domain.Collection, error)

	// Update loads the collection under an exclusive lock, applies fn and
	// persists the result. A missing collection is presented to fn as
	// domain.NewCollection(); a corrupt one fails without calling fn.
	Update(ctx context.Context, fn UpdateFunc) error

	// Location describes where the collection lives (a path or DSN).
	Location() string

	// Close releases resources.
	Close() error
}
