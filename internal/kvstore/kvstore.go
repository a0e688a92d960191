// Package kvstore is the blob store boundary: a handful of named entries,
// each holding an opaque byte blob. The catalog lives in a single entry;
// the store never interprets its contents.
package kvstore

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is an opaque get/set blob store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get retrieves the blob stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the blob stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing resources.
	Close() error
}
