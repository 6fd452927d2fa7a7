// Package store persists the application state in a key-value store.
//
// Values are JSON documents stored under fixed keys. Two backends are
// provided: a SQLite database for the command line and an in-memory map for
// tests.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// KV is a key-value store.
type KV interface {
	// Get returns the value stored at key, and false if there is none.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Batch runs fn with a KV whose writes are applied all together if fn
	// returns nil, and not at all otherwise.
	Batch(ctx context.Context, fn func(KV) error) error
	Close() error
}
