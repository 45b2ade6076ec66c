package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flowchartsman/retry"
)

// FileBackend stores each blob as <root>/<namespace>/<name>.json, where
// name is the data name, qualified by the save slot when per-slot storage
// is enabled.
type FileBackend struct {
	root string
	opts options
}

// NewFileBackend stores blobs under root.
func NewFileBackend(root string, opts ...Option) *FileBackend {
	return &FileBackend{root: root, opts: applyOptions(opts)}
}

// Name implements Backend.
func (b *FileBackend) Name() string { return "file" }

// Path returns the file holding key's blob for the current slot.
func (b *FileBackend) Path(key Key) string {
	name := qualify(key.DataName(), b.opts.perSlot, b.opts.slots)
	return filepath.Join(b.root, key.Owner.Namespace(), name+".json")
}

// Load implements Backend.
func (b *FileBackend) Load(_ context.Context, key Key) (map[string]any, error) {
	return readJSON(b.Path(key))
}

// Save implements Backend. The file is replaced atomically; failed writes
// are retried.
func (b *FileBackend) Save(ctx context.Context, key Key, data map[string]any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}
	return writeFileRetry(ctx, b.opts, b.Path(key), raw)
}

// Remove implements Backend.
func (b *FileBackend) Remove(_ context.Context, key Key) error {
	err := os.Remove(b.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("persistence: remove %s: %w", key, err)
	}
	return nil
}

func readJSON(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", path, err)
	}
	return decode(raw, path)
}

func decode(raw []byte, name string) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("persistence: decode %s: %w", name, err)
	}
	return data, nil
}

func writeFileRetry(ctx context.Context, o options, path string, raw []byte) error {
	retrier := retry.NewRetrier(max(o.retries, 1), o.initialDelay, o.maxDelay)
	return retrier.RunContext(ctx, func(context.Context) error {
		return writeFileAtomic(path, raw)
	})
}

// writeFileAtomic writes raw to a temporary file next to path and renames
// it over path.
func writeFileAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persistence: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("persistence: create temp file: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("persistence: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("persistence: write %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("persistence: replace %s: %w", path, err)
	}
	return nil
}

func jsonEncode(data map[string]any) ([]byte, error) {
	return json.Marshal(data)
}
