// Package storage provides the key-value persistence boundary.
package storage

import "context"

// Keys for the blobs the application persists. Each blob is an independent
// JSON document; the session and history packages own their codecs.
const (
	KeyPeople   = "people"
	KeyItems    = "items"
	KeyDiscount = "discount"
	KeyPaid     = "paid"
	KeyHistory  = "history"
)

// Store defines the durable key-value interface the application consumes.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the session or history layers.
type Store interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
