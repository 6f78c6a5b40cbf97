// Package sqlite provides the SQLite-backed collection store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Passages are stored one
// row each with their embedding as a little-endian float32 BLOB; nearest
// neighbour search is a brute-force cosine scan, which is adequate at the
// corpus sizes a single machine indexes.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// By default, the database is stored at ~/.finsight/data/collections.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
