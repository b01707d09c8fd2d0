package store

import "errors"

// ErrNotFound is returned when a document id is not in the store.
var ErrNotFound = errors.New("store: document not found")

// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
// and there is no database file yet.
var ErrDatabaseNotFound = errors.New("store: database not found")
