// Package sqlite provides a SQLite-based implementation of the
// persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. It implements
// the store interfaces through a single database connection:
//
//   - SyncStateStore: sync cursor persistence per source
//   - CredentialsStore: OAuth token persistence per provider
//
// Classification results are deliberately not persisted; documents are
// analysed in flight and only the position markers needed to resume
// synchronisation survive a restart.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.orderlens/data/orderlens.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
