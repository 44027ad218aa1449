package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/ports/driven"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// DatabaseFileName is the name of the database inside the data directory.
const DatabaseFileName = "vecdocs.db"

// Keys in collection_meta.
const (
	metaVersion    = "version"
	metaDimensions = "dimensions"
	metaNextSeq    = "next_seq"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// Store persists the collection in an SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir and runs migrations.
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

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	// WAL for concurrent readers; immediate transactions so two writers
	// serialise on BEGIN instead of deadlocking on lock upgrade.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("SQLite store opened at %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Location returns the database file path.
func (s *Store) Location() string {
	return s.path
}

// Load reads the collection.
func (s *Store) Load(ctx context.Context) (*domain.Collection, error) {
	col, err := loadCollection(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := col.Validate(); err != nil {
		return nil, err
	}
	return col, nil
}

// Update applies fn inside one write transaction.
func (s *Store) Update(ctx context.Context, fn driven.UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := loadCollection(ctx, tx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		current = domain.NewCollection()
	case err != nil:
		return err
	default:
		if err := current.Validate(); err != nil {
			return err
		}
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return err
	}
	if err := working.Validate(); err != nil {
		return err
	}

	if err := writeCollection(ctx, tx, current, working); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func loadCollection(ctx context.Context, q querier) (*domain.Collection, error) {
	meta, err := loadMeta(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, domain.ErrNotFound
	}

	col := &domain.Collection{}
	if col.Version, err = metaInt(meta, metaVersion); err != nil {
		return nil, err
	}
	if col.Dimensions, err = metaInt(meta, metaDimensions); err != nil {
		return nil, err
	}
	next, err := metaInt(meta, metaNextSeq)
	if err != nil {
		return nil, err
	}
	col.NextSeq = uint64(next)

	rows, err := q.QueryContext(ctx, `
		SELECT seq, id, text, embedding, category, length, created_at
		FROM documents ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		col.Documents = append(col.Documents, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return col, nil
}

func loadMeta(ctx context.Context, q querier) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT key, value FROM collection_meta")
	if err != nil {
		return nil, fmt.Errorf("querying collection meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning collection meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection meta: %w", err)
	}
	return meta, nil
}

func metaInt(meta map[string]string, key string) (int, error) {
	raw, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("%w: collection meta %q missing", domain.ErrCorrupt, key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: collection meta %q: %v", domain.ErrCorrupt, key, err)
	}
	return n, nil
}

func scanDocument(rows *sql.Rows) (*domain.Document, error) {
	var (
		doc       domain.Document
		seq       int64
		blob      []byte
		createdAt string
	)
	if err := rows.Scan(&seq, &doc.ID, &doc.Text, &blob, &doc.Metadata.Category,
		&doc.Metadata.Length, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrCorrupt, err)
	}
	if seq <= 0 {
		return nil, fmt.Errorf("%w: document %q has sequence %d", domain.ErrCorrupt, doc.ID, seq)
	}
	doc.Seq = uint64(seq)

	embedding, err := bytesToFloat32Slice(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: document %q: %v", domain.ErrCorrupt, doc.ID, err)
	}
	doc.Embedding = embedding

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: document %q created_at: %v", domain.ErrCorrupt, doc.ID, err)
	}
	doc.Metadata.CreatedAt = ts.UTC()

	return &doc, nil
}

// writeCollection persists next, given the previously stored prev.
// Appends insert only the new rows; anything else rewrites the table.
func writeCollection(ctx context.Context, q querier, prev, next *domain.Collection) error {
	for _, kv := range [][2]string{
		{metaVersion, strconv.Itoa(next.Version)},
		{metaDimensions, strconv.Itoa(next.Dimensions)},
		{metaNextSeq, strconv.FormatUint(next.NextSeq, 10)},
	} {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO collection_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("saving collection meta %s: %w", kv[0], err)
		}
	}

	start := len(prev.Documents)
	if !isAppend(prev, next) {
		if _, err := q.ExecContext(ctx, "DELETE FROM documents"); err != nil {
			return fmt.Errorf("clearing documents: %w", err)
		}
		start = 0
	}

	for i := start; i < len(next.Documents); i++ {
		doc := &next.Documents[i]
		if _, err := q.ExecContext(ctx, `
			INSERT INTO documents (seq, id, text, embedding, category, length, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, int64(doc.Seq), doc.ID, doc.Text, float32SliceToBytes(doc.Embedding),
			doc.Metadata.Category, doc.Metadata.Length,
			doc.Metadata.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// isAppend reports whether next keeps prev's documents as an unchanged prefix.
// Documents are immutable, so identity and sequence are enough to compare.
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

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
		logger.Debug("Applied migration %s", name)
	}

	return nil
}

// float32SliceToBytes converts a float32 slice to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts little-endian bytes back to float32s.
func bytesToFloat32Slice(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding blob of %d bytes is not a float32 array", len(data))
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, nil
}
