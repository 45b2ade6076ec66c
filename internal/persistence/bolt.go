package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	bbolt "go.etcd.io/bbolt"
)

const boltFileMode os.FileMode = 0o600

// BoltBackend stores blobs in a bbolt database, one bucket per namespace
// keyed by the slot-qualified data name.
type BoltBackend struct {
	db     *bbolt.DB
	path   string
	opts   options
	closed atomic.Bool
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string, opts ...Option) (*BoltBackend, error) {
	o := applyOptions(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("persistence: create %s: %w", filepath.Dir(path), err)
	}
	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: o.timeout})
	if err != nil {
		return nil, fmt.Errorf("persistence: opening bolt database: %w", err)
	}
	return &BoltBackend{db: db, path: path, opts: o}, nil
}

// Name implements Backend.
func (b *BoltBackend) Name() string { return "bolt" }

// Path returns the database file.
func (b *BoltBackend) Path() string { return b.path }

func (b *BoltBackend) name(key Key) []byte {
	return []byte(qualify(key.DataName(), b.opts.perSlot, b.opts.slots))
}

func (b *BoltBackend) ensureOpen(ctx context.Context) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// Load implements Backend.
func (b *BoltBackend) Load(ctx context.Context, key Key) (map[string]any, error) {
	if err := b.ensureOpen(ctx); err != nil {
		return nil, err
	}

	var raw []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(key.Owner.Namespace()))
		if bucket == nil {
			return ErrNotFound
		}
		v := bucket.Get(b.name(key))
		if v == nil {
			return ErrNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decode(raw, key.DataName())
}

// Save implements Backend.
func (b *BoltBackend) Save(ctx context.Context, key Key, data map[string]any) error {
	if err := b.ensureOpen(ctx); err != nil {
		return err
	}
	raw, err := jsonEncode(data)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(key.Owner.Namespace()))
		if err != nil {
			return err
		}
		return bucket.Put(b.name(key), raw)
	})
}

// Remove implements Backend.
func (b *BoltBackend) Remove(ctx context.Context, key Key) error {
	if err := b.ensureOpen(ctx); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(key.Owner.Namespace()))
		if bucket == nil {
			return nil
		}
		return bucket.Delete(b.name(key))
	})
}

// Each calls fn for every blob in the database, by namespace and name.
func (b *BoltBackend) Each(fn func(namespace, name string, raw []byte) error) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return b.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(ns []byte, bucket *bbolt.Bucket) error {
			return bucket.ForEach(func(k, v []byte) error {
				return fn(string(ns), string(k), v)
			})
		})
	})
}

// Close closes the database.
func (b *BoltBackend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}
