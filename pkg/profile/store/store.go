// Package store provides persistence backends for mapping profiles.
//
// Two backends are available: an in-memory store for ephemeral
// deployments and tests, and a SQLite store for durable profile
// management through the HTTP API.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a profile does not exist in the store.
var ErrNotFound = errors.New("profile not found")

// Record is a stored mapping profile document.
type Record struct {
	// Name is the unique profile name.
	Name string

	// Data is the raw profile JSON document.
	Data []byte

	// Description is a short human-readable summary.
	Description string

	// CreatedAt is when the profile was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the profile was last replaced.
	UpdatedAt time.Time
}

// Store persists mapping profile documents by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores a profile document, replacing any existing profile
	// with the same name.
	Put(ctx context.Context, record *Record) error

	// Get retrieves a profile by name. Returns ErrNotFound if no
	// profile with that name exists.
	Get(ctx context.Context, name string) (*Record, error)

	// List returns all stored profiles ordered by name.
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a profile by name. Returns ErrNotFound if no
	// profile with that name exists.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close() error
}

// StorageError wraps a backend error with the backend name and the
// operation that failed.
type StorageError struct {
	Backend   string
	Operation string
	Err       error
}

// Error returns the formatted error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage: %s: %v", e.Backend, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, err error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Err: err}
}
