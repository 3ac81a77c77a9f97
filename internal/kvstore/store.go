// Package kvstore is the persistence boundary for session-scoped documents
// such as carts and the seller inventory list. Values are opaque bytes; the
// envelope helpers in this package give them a versioned schema.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrConflict is returned when an Update lost too many optimistic races.
	ErrConflict = errors.New("kvstore: concurrent update conflict")
	// ErrCorrupt marks stored data that cannot be decoded.
	ErrCorrupt = errors.New("kvstore: stored value is corrupt")
)

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to store. Returning an error aborts the update.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a key-value repository with an atomic read-modify-write primitive.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update applies fn to one key atomically with respect to other
	// Update/Set/Delete calls on the same key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}
