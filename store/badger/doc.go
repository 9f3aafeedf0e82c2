// Package badger implements store.ResultStore on BadgerDB.
//
// The snapshot is stored as JSON under a single key, next to a fixed-width
// summary key used by Info. Both keys are written in one transaction.
package badger
