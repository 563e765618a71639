// Package store defines the key-value handle the bookmark list is persisted through.
//
// Backends live in sub-packages (memory, badger, sqlite, redis). They only
// move opaque bytes; encoding is the caller's concern.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Storage is a durable string -> bytes map.
type Storage interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend is a Storage that owns resources.
type Backend interface {
	Storage
	Pinger
	Name() string
	Close() error
}
