package persistence

import "errors"

// Persistence errors.
var (
	// ErrNotFound is returned by a backend when no blob exists for a key.
	ErrNotFound = errors.New("persistence: not found")

	// ErrNoWorld is returned by ContainerBackend when no zone is loaded.
	ErrNoWorld = errors.New("persistence: no world loaded")

	// ErrClosed is returned by a closed BoltBackend.
	ErrClosed = errors.New("persistence: backend closed")
)
