// Package jsonfile provides a CollectionStore that keeps the whole collection
// in a single JSON file.
//
// Writes go to a temporary file which is fsynced and renamed over the target,
// so readers always see either the previous or the new collection. An
// advisory lock on a sibling file serialises read-modify-write cycles across
// processes sharing the data directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// File names inside the data directory.
const (
	FileName     = "collection.json"
	lockFileName = "collection.lock"
	tmpSuffix    = ".tmp"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// Store persists the collection as <dataDir>/collection.json.
type Store struct {
	dir  string
	path string
}

// fileCollection is the on-disk layout.
type fileCollection struct {
	Version    int            `json:"version"`
	Dimensions int            `json:"dimensions"`
	NextSeq    uint64         `json:"next_seq"`
	Documents  []fileDocument `json:"documents"`
}

type fileDocument struct {
	ID        string          `json:"id"`
	Seq       uint64          `json:"seq"`
	Text      string          `json:"text"`
	Embedding []float32       `json:"embedding"`
	Metadata  domain.Metadata `json:"metadata"`
}

// NewStore creates a store in dataDir, creating the directory if needed.
// If dataDir is empty, defaults to ~/.vecdocs/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vecdocs", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		dir:  dataDir,
		path: filepath.Join(dataDir, FileName),
	}, nil
}

// Location returns the collection file path.
func (s *Store) Location() string {
	return s.path
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Close is a no-op; the store holds no open handles between calls.
func (s *Store) Close() error {
	return nil
}

// Load reads and decodes the collection file.
func (s *Store) Load(ctx context.Context) (*domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read()
}

// Update loads the collection under the file lock, applies fn and writes the
// result atomically.
func (s *Store) Update(ctx context.Context, fn driven.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	col, err := s.read()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		col = domain.NewCollection()
	case err != nil:
		return err
	}

	if err := fn(col); err != nil {
		return err
	}
	if err := col.Validate(); err != nil {
		return err
	}

	return s.write(col)
}

// lock takes the cross-process write lock and returns its release func.
func (s *Store) lock() (func(), error) {
	f, err := os.OpenFile(filepath.Join(s.dir, lockFileName), os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockExclusive(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock collection: %w", err)
	}

	return func() {
		if err := unlockFile(f); err != nil {
			logger.Warn("Unlock %s: %v", f.Name(), err)
		}
		_ = f.Close()
	}, nil
}

func (s *Store) read() (*domain.Collection, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	col, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return col, nil
}

// decode parses a collection file. Any decoding or structural failure wraps ErrCorrupt.
func decode(r io.Reader) (*domain.Collection, error) {
	var fc fileCollection
	dec := json.NewDecoder(r)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorrupt, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after collection", domain.ErrCorrupt)
	}

	col := &domain.Collection{
		Version:    fc.Version,
		Dimensions: fc.Dimensions,
		NextSeq:    fc.NextSeq,
		Documents:  make([]domain.Document, len(fc.Documents)),
	}
	for i, d := range fc.Documents {
		col.Documents[i] = domain.Document{
			ID:        d.ID,
			Seq:       d.Seq,
			Text:      d.Text,
			Embedding: d.Embedding,
			Metadata:  d.Metadata,
		}
	}

	if err := col.Validate(); err != nil {
		return nil, err
	}
	return col, nil
}

func encode(col *domain.Collection) ([]byte, error) {
	fc := fileCollection{
		Version:    col.Version,
		Dimensions: col.Dimensions,
		NextSeq:    col.NextSeq,
		Documents:  make([]fileDocument, len(col.Documents)),
	}
	for i := range col.Documents {
		d := &col.Documents[i]
		fc.Documents[i] = fileDocument{
			ID:        d.ID,
			Seq:       d.Seq,
			Text:      d.Text,
			Embedding: d.Embedding,
			Metadata:  d.Metadata,
		}
	}
	return json.Marshal(&fc)
}

// write replaces the collection file via temp file, fsync and rename.
// On failure the previous file is untouched and the temp file is removed.
func (s *Store) write(col *domain.Collection) error {
	data, err := encode(col)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	tmp := s.path + tmpSuffix
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	if err := syncDir(s.dir); err != nil {
		logger.Warn("Sync data directory %s: %v", s.dir, err)
	}

	logger.Debug("Wrote %d documents to %s (%d bytes)", len(col.Documents), s.path, len(data))
	return nil
}
