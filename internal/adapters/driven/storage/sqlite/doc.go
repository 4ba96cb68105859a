// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - RevisionLedger: per-item sync record persistence
//   - SourceStore: source configuration persistence
//   - DownloadCache: fetched-URL bookkeeping
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Timestamps are stored as RFC3339 UTC text so that
// range scans and ordering work on the raw column values.
//
// # Data Location
//
// By default, the database is stored at ~/.ingesta/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
