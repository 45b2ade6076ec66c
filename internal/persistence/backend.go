package persistence

import (
	"context"
	"time"
)

// Backend stores blobs.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Load returns the blob of key, or ErrNotFound.
	Load(ctx context.Context, key Key) (map[string]any, error)

	// Save replaces the blob of key.
	Save(ctx context.Context, key Key, data map[string]any) error

	// Remove deletes the blob of key. Removing a missing blob succeeds.
	Remove(ctx context.Context, key Key) error
}

// Option configures a backend.
type Option func(*options)

type options struct {
	perSlot      bool
	slots        SlotProvider
	combined     bool
	retries      int
	initialDelay time.Duration
	maxDelay     time.Duration
	timeout      time.Duration
}

func defaultOptions() options {
	return options{
		retries:      3,
		initialDelay: 10 * time.Millisecond,
		maxDelay:     100 * time.Millisecond,
		timeout:      5 * time.Second,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSaveSlots qualifies data names with the slot returned by slots when
// perSlot is set. Used by FileBackend and BoltBackend.
func WithSaveSlots(perSlot bool, slots SlotProvider) Option {
	return func(o *options) {
		o.perSlot = perSlot
		o.slots = slots
	}
}

// WithCombinedJSON makes FolderBackend write combined.json after loading.
func WithCombinedJSON(enabled bool) Option {
	return func(o *options) {
		o.combined = enabled
	}
}

// WithRetry sets how writes are retried.
func WithRetry(retries int, initialDelay, maxDelay time.Duration) Option {
	return func(o *options) {
		o.retries = retries
		o.initialDelay = initialDelay
		o.maxDelay = maxDelay
	}
}

// WithOpenTimeout sets how long BoltBackend waits for the database lock.
func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}
