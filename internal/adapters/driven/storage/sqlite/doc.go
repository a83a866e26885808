// Package sqlite provides a SQLite-based implementation of the session and
// event persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - SessionStore: search sessions and their final results
//   - EventLog: append-only per-source progress events
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.lessonscout/data/lessonscout.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Status changes run inside a transaction so the
// transition check and the write cannot interleave with another writer.
package sqlite
