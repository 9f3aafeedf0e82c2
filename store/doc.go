// Package store provides the result store abstraction for FreQ.
//
// A result store keeps exactly one snapshot: the ResultSet of the last
// successful analysis run. Persist replaces that snapshot as a whole and
// either fully succeeds or leaves the previous snapshot readable. Load
// returns the last snapshot, or an empty ResultSet when nothing was ever
// persisted.
//
// # Constructor Return Type Pattern
//
// Public constructors return the ResultStore interface so callers never
// couple to a backend:
//
//	results, err := badger.NewStore(path)  // returns store.ResultStore
//
// # Backends
//
//   - store/badger: embedded BadgerDB, the default
//   - store/file: a single JSON file replaced by atomic rename
//   - store/postgres: a PostgreSQL table replaced inside one transaction
//
// Every backend persists the same JSON records, {question, similar_variants,
// frequency}, so snapshots can be exported and read by other tools.
package store
