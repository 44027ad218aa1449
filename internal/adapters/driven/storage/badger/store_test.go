package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
)

func setupInMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func appendDoc(id string, vec ...float32) func(*domain.Collection) error {
	return func(c *domain.Collection) error {
		c.Documents = append(c.Documents, domain.Document{
			ID:        id,
			Seq:       c.NextSeq,
			Text:      "text of " + id,
			Embedding: vec,
			Metadata: domain.Metadata{
				CreatedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
				Category:  "c",
				Length:    len("text of " + id),
			},
		})
		c.NextSeq++
		c.Dimensions = len(vec)
		return nil
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := setupInMemoryStore(t)

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RoundTrip(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Update(ctx, appendDoc(id, float32(i), 1)))
	}

	col, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.CollectionVersion, col.Version)
	assert.Equal(t, 2, col.Dimensions)
	assert.Equal(t, uint64(4), col.NextSeq)
	require.Len(t, col.Documents, 3)
	assert.Equal(t, "a", col.Documents[0].ID)
	assert.Equal(t, "c", col.Documents[2].ID)
	assert.Equal(t, []float32{2, 1}, col.Documents[2].Embedding)
	assert.True(t, col.Documents[1].Metadata.CreatedAt.Equal(time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)))
}

// TestStore_OrderBeyondNineDocuments tests zero-padded keys keep numeric order.
func TestStore_OrderBeyondNineDocuments(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, store.Update(ctx, appendDoc(string(rune('a'+i)), 1)))
	}

	col, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, col.Documents, 12)
	for i := range col.Documents {
		assert.Equal(t, uint64(i+1), col.Documents[i].Seq)
	}
}

func TestStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, appendDoc("a", 1, 2, 3)))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	col, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, col.Documents, 1)
	assert.Equal(t, []float32{1, 2, 3}, col.Documents[0].Embedding)
}

func TestStore_UpdateErrorDiscardsChanges(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, appendDoc("a", 1)))

	boom := errors.New("boom")
	err := store.Update(ctx, func(c *domain.Collection) error {
		_ = appendDoc("b", 1)(c)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	col, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, col.Documents, 1)
}

func TestStore_RewriteWhenNotAppend(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, appendDoc("a", 1)))
	require.NoError(t, store.Update(ctx, appendDoc("b", 1)))

	require.NoError(t, store.Update(ctx, func(c *domain.Collection) error {
		c.Documents = c.Documents[:1]
		return nil
	}))

	col, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, col.Documents, 1)
	assert.Equal(t, "a", col.Documents[0].ID)
}

func TestStore_CorruptValue(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, appendDoc("a", 1)))

	require.NoError(t, store.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(docKey(1), []byte{0xc1})
	}))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrCorrupt)

	called := false
	err = store.Update(ctx, func(*domain.Collection) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrCorrupt)
	assert.False(t, called)
}

func TestDocKey(t *testing.T) {
	assert.Equal(t, "doc:00000000000000000042", string(docKey(42)))
	assert.Less(t, string(docKey(9)), string(docKey(10)))
}
