package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Folder file names.
const (
	MainFile     = "main.json"
	CombinedFile = "combined.json"
)

// FolderBackend stores each blob as a directory <root>/<namespace>/<name>/
// of JSON files. Loading merges the top-level keys of every file in
// lexical order with main.json last, so main.json overrides its siblings.
// Saving writes main.json.
type FolderBackend struct {
	root string
	opts options
}

// NewFolderBackend stores blob folders under root.
func NewFolderBackend(root string, opts ...Option) *FolderBackend {
	return &FolderBackend{root: root, opts: applyOptions(opts)}
}

// Name implements Backend.
func (b *FolderBackend) Name() string { return "folder" }

// Dir returns the folder of key's blob.
func (b *FolderBackend) Dir(key Key) string {
	return filepath.Join(b.root, key.Owner.Namespace(), key.DataName())
}

// Load implements Backend. With combined output enabled the merged result
// is also written to combined.json.
func (b *FolderBackend) Load(ctx context.Context, key Key) (map[string]any, error) {
	dir := b.Dir(key)
	files, err := folderFiles(dir)
	if err != nil {
		return nil, err
	}

	merged := "{}"
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("persistence: read %s: %w", name, err)
		}
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("persistence: decode %s: invalid JSON", filepath.Join(dir, name))
		}
		if merged, err = mergeObject(merged, gjson.ParseBytes(raw)); err != nil {
			return nil, fmt.Errorf("persistence: merge %s: %w", name, err)
		}
	}

	if b.opts.combined {
		if err := writeFileRetry(ctx, b.opts, filepath.Join(dir, CombinedFile), []byte(merged)); err != nil {
			return nil, err
		}
	}
	return decode([]byte(merged), dir)
}

// Save implements Backend.
func (b *FolderBackend) Save(ctx context.Context, key Key, data map[string]any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}
	return writeFileRetry(ctx, b.opts, filepath.Join(b.Dir(key), MainFile), raw)
}

// Remove implements Backend. The whole folder is deleted.
func (b *FolderBackend) Remove(_ context.Context, key Key) error {
	if err := os.RemoveAll(b.Dir(key)); err != nil {
		return fmt.Errorf("persistence: remove %s: %w", key, err)
	}
	return nil
}

// folderFiles lists the JSON files of dir in load order.
func folderFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", dir, err)
	}

	var files []string
	hasMain := false
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir(), !strings.EqualFold(filepath.Ext(name), ".json"), name == CombinedFile:
			continue
		case name == MainFile:
			hasMain = true
		default:
			files = append(files, name)
		}
	}
	slices.Sort(files)
	if hasMain {
		files = append(files, MainFile)
	}
	return files, nil
}

// mergeObject sets every top-level member of obj on the JSON object doc.
func mergeObject(doc string, obj gjson.Result) (string, error) {
	if !obj.IsObject() {
		return doc, errors.New("top level is not an object")
	}
	var err error
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == "" {
			doc, err = setEmptyKey(doc, v.Raw)
		} else {
			doc, err = sjson.SetRaw(doc, escapeKey(k.String()), v.Raw)
		}
		return err == nil
	})
	return doc, err
}

// setEmptyKey sets the "" member of doc, which no sjson path can address.
func setEmptyKey(doc, raw string) (string, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &members); err != nil {
		return doc, err
	}
	members[""] = json.RawMessage(raw)
	out, err := json.Marshal(members)
	if err != nil {
		return doc, err
	}
	return string(out), nil
}

// escapeKey makes key a literal sjson path component.
func escapeKey(key string) string {
	var b strings.Builder
	allDigits := key != ""
	for _, r := range key {
		if r < '0' || r > '9' {
			allDigits = false
		}
		if !(r == '_' || r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 0x7f) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	if allDigits {
		return ":" + b.String()
	}
	return b.String()
}
