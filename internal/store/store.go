// Package store is the persistence boundary: a small synchronous keyed store
// shared by the credential store and the ledger engine. Every key the
// application writes is built by the functions in keys.go.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a durable key-value medium.
type Store interface {
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error
