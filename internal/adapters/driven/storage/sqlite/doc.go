// Package sqlite provides the SQLite-backed implementation of the local
// decision store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. One database holds the
// reviewer's live decisions and entity flags.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Decisions are keyed by the (document, mention,
// candidate) triple and overwritten in place; at most one row exists per
// triple.
//
// # Data Location
//
// By default, the database is stored at ~/.outremer/data/decisions.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
//
// # Corruption Recovery
//
// A database that cannot be opened or migrated is moved aside to a .corrupt
// file and a fresh one is created: reviewers keep working and the damaged
// file stays available for inspection.
package sqlite
