// Package sqlite provides a CollectionStore backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory,
// applied in order and recorded in schema_migrations. Collection-level values live in
// collection_meta; documents live in documents, keyed by their sequence number.
//
// # Data Location
//
// By default, the database is stored at ~/.vecdocs/data/vecdocs.db
//
// # Thread Safety
//
// Every Update runs in a single immediate transaction, so concurrent writers,
// including other processes, are serialised by SQLite. Readers never see a
// partially applied update.
package sqlite
