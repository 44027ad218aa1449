package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// maxIDAttempts bounds identity generation when a generated ID collides.
const maxIDAttempts = 8

// Corpus owns the persisted document collection.
// It assigns identity, serialises writes and serves snapshots for reads.
type Corpus struct {
	store driven.CollectionStore
	cache driven.SnapshotCache
	newID func() string
	now   func() time.Time

	// writeMu is the single-writer lock. Cache misses are also filled
	// under it so a stale load can never replace a newer snapshot.
	writeMu    sync.Mutex
	recoveries atomic.Int64
}

// NewCorpus creates a corpus backed by store.
func NewCorpus(store driven.CollectionStore) *Corpus {
	return &Corpus{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// SetSnapshotCache enables the read-through snapshot cache.
func (c *Corpus) SetSnapshotCache(cache driven.SnapshotCache) {
	c.cache = cache
}

// SetIDGenerator replaces the document ID generator.
func (c *Corpus) SetIDGenerator(fn func() string) {
	c.newID = fn
}

// SetClock replaces the time source used for CreatedAt.
func (c *Corpus) SetClock(fn func() time.Time) {
	c.now = fn
}

// Location describes where the collection is persisted.
func (c *Corpus) Location() string {
	return c.store.Location()
}

// AddDocument validates, identifies and durably stores a new document.
// Nothing is persisted when validation fails.
func (c *Corpus) AddDocument(
	ctx context.Context, text string, embedding []float32, meta domain.Metadata,
) (*domain.Document, error) {
	if text == "" {
		return nil, domain.NewValidationError("text must not be empty")
	}
	if err := domain.ValidateEmbedding(embedding); err != nil {
		return nil, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var added domain.Document
	err := c.store.Update(ctx, func(col *domain.Collection) error {
		if col.Dimensions > 0 && len(embedding) != col.Dimensions {
			return domain.NewDimensionMismatch(col.Dimensions, len(embedding))
		}

		id, err := c.assignID(col)
		if err != nil {
			return err
		}

		added = domain.Document{
			ID:        id,
			Seq:       col.NextSeq,
			Text:      text,
			Embedding: append([]float32(nil), embedding...),
			Metadata: domain.Metadata{
				CreatedAt: c.now().UTC(),
				Category:  meta.Category,
				Length:    domain.TextLength(text),
			},
		}

		col.Documents = append(col.Documents, added.Clone())
		col.NextSeq++
		if col.Dimensions == 0 {
			col.Dimensions = len(embedding)
			logger.Debug("Recorded corpus dimensionality: %d", col.Dimensions)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		logger.Warn("Add document failed: %v", err)
		return nil, domain.NewStorageError("add document", err)
	}

	if c.cache != nil {
		c.cache.Invalidate()
	}

	logger.Debug("Added document %s (seq %d, %d chars)", added.ID, added.Seq, added.Metadata.Length)
	return &added, nil
}

// assignID returns an ID not yet present in col.
func (c *Corpus) assignID(col *domain.Collection) (string, error) {
	for range maxIDAttempts {
		id := c.newID()
		if id != "" && !col.Contains(id) {
			return id, nil
		}
		logger.Warn("Generated document id %q is not unique, retrying", id)
	}
	return "", fmt.Errorf("no unique document id after %d attempts", maxIDAttempts)
}

// Snapshot returns the current collection. The result is shared and must
// not be modified.
//
// A missing, unreadable or corrupt collection yields an empty collection.
// Unreadable and corrupt reads are logged as warnings and counted by
// Recoveries, so they are distinguishable from a genuinely empty corpus.
// A cancelled ctx also yields an empty collection; use Read to observe it.
func (c *Corpus) Snapshot(ctx context.Context) *domain.Collection {
	if c.cache != nil {
		if col, ok := c.cache.Get(); ok {
			return col
		}

		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		if col, ok := c.cache.Get(); ok {
			return col
		}
	}

	col, err := c.store.Load(ctx)
	switch {
	case err == nil:
		if c.cache != nil {
			c.cache.Put(col)
		}
		return col

	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("Collection not initialised at %s, using empty corpus", c.store.Location())

	case ctx.Err() != nil:
		logger.Debug("Collection read cancelled: %v", err)

	case errors.Is(err, domain.ErrCorrupt):
		n := c.recoveries.Add(1)
		logger.Warn("Collection at %s is corrupt, serving an empty corpus (recovery #%d): %v", c.store.Location(), n, err)

	default:
		n := c.recoveries.Add(1)
		logger.Warn("Collection at %s is unreadable, serving an empty corpus (recovery #%d): %v", c.store.Location(), n, err)
	}
	return domain.NewCollection()
}

// Read is Snapshot for callers that must not mistake a cancelled or
// expired ctx for an empty corpus.
func (c *Corpus) Read(ctx context.Context) (*domain.Collection, error) {
	col := c.Snapshot(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	return col, nil
}

// GetAllDocuments returns every document in insertion order.
// Each call returns a fresh copy.
func (c *Corpus) GetAllDocuments(ctx context.Context) []domain.Document {
	col := c.Snapshot(ctx)

	docs := make([]domain.Document, len(col.Documents))
	for i := range col.Documents {
		docs[i] = col.Documents[i].Clone()
	}
	return docs
}

// GetStats derives aggregate statistics from the current documents.
func (c *Corpus) GetStats(ctx context.Context) domain.CorpusStats {
	return domain.ComputeStats(c.Snapshot(ctx).Documents)
}

// Recent returns up to n documents, newest first.
func (c *Corpus) Recent(ctx context.Context, n int) []domain.Document {
	return recentDocuments(c.Snapshot(ctx).Documents, n)
}

func recentDocuments(docs []domain.Document, n int) []domain.Document {
	if n <= 0 || len(docs) == 0 {
		return []domain.Document{}
	}
	if n > len(docs) {
		n = len(docs)
	}

	recent := make([]domain.Document, 0, n)
	for i := len(docs) - 1; i >= len(docs)-n; i-- {
		recent = append(recent, docs[i].Clone())
	}
	return recent
}

// Get returns the document with id.
func (c *Corpus) Get(ctx context.Context, id string) (*domain.Document, error) {
	col, err := c.Read(ctx)
	if err != nil {
		return nil, err
	}
	doc := col.Find(id)
	if doc == nil {
		return nil, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	clone := doc.Clone()
	return &clone, nil
}

// Dimensions returns the recorded corpus dimensionality, or 0 when empty.
func (c *Corpus) Dimensions(ctx context.Context) int {
	return c.Snapshot(ctx).Dimensions
}

// Recoveries reports how many reads fell back to an empty corpus
// because the collection could not be read.
func (c *Corpus) Recoveries() int64 {
	return c.recoveries.Load()
}

// Invalidate drops the cached snapshot so the next read reloads from storage.
func (c *Corpus) Invalidate() {
	if c.cache != nil {
		c.cache.Invalidate()
		logger.Debug("Snapshot cache invalidated")
	}
}
