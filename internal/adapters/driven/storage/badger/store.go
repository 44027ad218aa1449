// Package badger provides a CollectionStore backed by BadgerDB.
//
// The collection header lives under the "meta" key and each document under
// "doc:<20-digit seq>", both msgpack-encoded. Keys sort in insertion order,
// and every Update commits in one badger transaction.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// DirName is the badger directory inside the data directory.
const DirName = "badger"

const (
	metaKey   = "meta"
	docPrefix = "doc:"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// Store persists the collection in BadgerDB.
type Store struct {
	db       *badgerdb.DB
	location string

	// mu serialises Update so in-process writers never hit ErrConflict.
	// Badger itself prevents a second process from opening the directory.
	mu sync.Mutex
}

type metaRecord struct {
	Version    int    `msgpack:"version"`
	Dimensions int    `msgpack:"dimensions"`
	NextSeq    uint64 `msgpack:"next_seq"`
}

type docRecord struct {
	ID        string    `msgpack:"id"`
	Seq       uint64    `msgpack:"seq"`
	Text      string    `msgpack:"text"`
	Embedding []float32 `msgpack:"embedding"`
	CreatedAt time.Time `msgpack:"created_at"`
	Category  string    `msgpack:"category,omitempty"`
	Length    int       `msgpack:"length"`
}

// NewStore opens the badger directory under dataDir.
// If dataDir is empty, defaults to ~/.vecdocs/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vecdocs", "data")
	}

	dir := filepath.Join(dataDir, DirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating badger directory: %w", err)
	}

	opts := badgerdb.DefaultOptions(dir).WithLogger(logger.Badger())
	return open(opts, dir)
}

// NewInMemoryStore opens a badger instance that never touches disk.
func NewInMemoryStore() (*Store, error) {
	opts := badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(logger.Badger())
	return open(opts, ":memory:")
}

func open(opts badgerdb.Options, location string) (*Store, error) {
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	logger.Debug("Badger store opened at %s", location)
	return &Store{db: db, location: location}, nil
}

// Location returns the badger directory.
func (s *Store) Location() string {
	return s.location
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the collection in a read-only transaction.
func (s *Store) Load(ctx context.Context) (*domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var col *domain.Collection
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		col, err = readCollection(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// Update reads, mutates and writes the collection in one read-write transaction.
func (s *Store) Update(ctx context.Context, fn driven.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badgerdb.Txn) error {
		current, err := readCollection(txn)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			current = domain.NewCollection()
		case err != nil:
			return err
		}

		working := current.Clone()
		if err := fn(working); err != nil {
			return err
		}
		if err := working.Validate(); err != nil {
			return err
		}

		return writeCollection(txn, current, working)
	})
}

func readCollection(txn *badgerdb.Txn) (*domain.Collection, error) {
	item, err := txn.Get([]byte(metaKey))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta metaRecord
	if err := msgpack.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: decoding meta: %v", domain.ErrCorrupt, err)
	}

	col := &domain.Collection{
		Version:    meta.Version,
		Dimensions: meta.Dimensions,
		NextSeq:    meta.NextSeq,
	}

	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = []byte(docPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		item := it.Item()
		key := string(item.KeyCopy(nil))

		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}

		var rec docRecord
		if err := msgpack.Unmarshal(val, &rec); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrCorrupt, key, err)
		}
		if seq, err := strconv.ParseUint(strings.TrimPrefix(key, docPrefix), 10, 64); err != nil || seq != rec.Seq {
			return nil, fmt.Errorf("%w: key %s does not match document sequence %d", domain.ErrCorrupt, key, rec.Seq)
		}

		col.Documents = append(col.Documents, domain.Document{
			ID:        rec.ID,
			Seq:       rec.Seq,
			Text:      rec.Text,
			Embedding: rec.Embedding,
			Metadata: domain.Metadata{
				CreatedAt: rec.CreatedAt.UTC(),
				Category:  rec.Category,
				Length:    rec.Length,
			},
		})
	}

	if err := col.Validate(); err != nil {
		return nil, err
	}
	return col, nil
}

// writeCollection stores next, given the previously stored prev.
// Appends write only the new documents.
func writeCollection(txn *badgerdb.Txn, prev, next *domain.Collection) error {
	meta, err := msgpack.Marshal(&metaRecord{
		Version:    next.Version,
		Dimensions: next.Dimensions,
		NextSeq:    next.NextSeq,
	})
	if err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}
	if err := txn.Set([]byte(metaKey), meta); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	start := len(prev.Documents)
	if !isAppend(prev, next) {
		for i := range prev.Documents {
			if err := txn.Delete(docKey(prev.Documents[i].Seq)); err != nil {
				return fmt.Errorf("deleting %s: %w", prev.Documents[i].ID, err)
			}
		}
		start = 0
	}

	for i := start; i < len(next.Documents); i++ {
		doc := &next.Documents[i]
		val, err := msgpack.Marshal(&docRecord{
			ID:        doc.ID,
			Seq:       doc.Seq,
			Text:      doc.Text,
			Embedding: doc.Embedding,
			CreatedAt: doc.Metadata.CreatedAt,
			Category:  doc.Metadata.Category,
			Length:    doc.Metadata.Length,
		})
		if err != nil {
			return fmt.Errorf("encoding %s: %w", doc.ID, err)
		}
		if err := txn.Set(docKey(doc.Seq), val); err != nil {
			return fmt.Errorf("writing %s: %w", doc.ID, err)
		}
	}
	return nil
}

func isAppend(prev, next *domain.Collection) bool {
	if len(next.Documents) < len(prev.Documents) {
		return false
	}
	for i := range prev.Documents {
		if prev.Documents[i].ID != next.Documents[i].ID || prev.Documents[i].Seq != next.Documents[i].Seq {
			return false
		}
	}
	return true
}

// docKey zero-pads seq so lexical key order is insertion order.
func docKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", docPrefix, seq))
}
