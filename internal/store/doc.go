// Package store provides SQLite-backed storage for the fetch run log.
//
// Each FetchData call that reaches the query stage can be recorded as one
// row in fetch_runs. Only run metadata is stored: the query is kept as a
// SHA-256 hash and result rows are never written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Schema changes are applied through PRAGMA user_version migrations when a
// database is opened.
package store
