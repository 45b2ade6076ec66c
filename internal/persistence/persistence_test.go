package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/host/hosttest"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
)

var ext = identity.MustNew("Ext", "tester", identity.WithNamespace("ext"))

func newCatcher(t *testing.T) (*isolation.Catcher, string) {
	t.Helper()
	dir := t.TempDir()
	logs := logging.NewRegistry(logging.WithDirectory(dir))
	t.Cleanup(logs.Close)
	return isolation.New(logs), dir
}

func TestKeyDataName(t *testing.T) {
	assert.Equal(t, "ext_main", NewKey(ext).DataName())
	assert.Equal(t, "ext_sims", NewKey(ext, "sims").DataName())
	assert.Equal(t, "ext_main", NewKey(ext, "").DataName())
}

// slotSwitch is a SlotProvider whose slot tests can change.
type slotSwitch struct{ slot *hosttest.Slot }

func (s *slotSwitch) CurrentSlot() (host.SaveSlot, bool) {
	if s.slot == nil {
		return nil, false
	}
	return s.slot, true
}

func TestPerSaveSlotFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	slots := &slotSwitch{slot: &hosttest.Slot{Slot: 7, GUID: 0xABCD}}
	catcher, _ := newCatcher(t)
	svc := NewService(NewFileBackend(root, WithSaveSlots(true, slots)), catcher)

	require.True(t, svc.Save(ctx, ext, map[string]any{"k": 1}))
	assert.FileExists(t, filepath.Join(root, "ext", "ext_main_id_7_guid_43981.json"))

	slots.slot = &hosttest.Slot{Slot: 8, GUID: 0xABCD}
	assert.Empty(t, svc.Load(ctx, ext))

	slots.slot = &hosttest.Slot{Slot: 7, GUID: 0xABCD}
	assert.Equal(t, map[string]any{"k": float64(1)}, svc.Load(ctx, ext))
}

func TestFileBackendWithoutSlot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	b := NewFileBackend(root, WithSaveSlots(true, &slotSwitch{}))

	key := NewKey(ext, "settings")
	assert.Equal(t, filepath.Join(root, "ext", "ext_settings.json"), b.Path(key))

	_, err := b.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Save(ctx, key, map[string]any{"volume": 3.5, "name": "x"}))
	data, err := b.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"volume": 3.5, "name": "x"}, data)

	entries, err := os.ReadDir(filepath.Join(root, "ext"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are renamed away")

	require.NoError(t, b.Remove(ctx, key))
	require.NoError(t, b.Remove(ctx, key))
	assert.NoFileExists(t, b.Path(key))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	catcher, _ := newCatcher(t)
	world := hosttest.NewWorld()

	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "simext.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	backends := []Backend{
		NewFileBackend(t.TempDir()),
		NewFolderBackend(t.TempDir()),
		NewContainerBackend(func() host.World { return world }),
		bolt,
	}
	x := map[string]any{
		"a":    "b",
		"n":    float64(2),
		"list": []any{float64(1), "two"},
		"obj":  map[string]any{"nested": true},
	}

	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			svc := NewService(b, catcher)
			require.True(t, svc.Save(ctx, ext, x, "blob"))
			loaded := svc.Load(ctx, ext, "blob")
			assert.Equal(t, x, loaded)

			require.True(t, svc.Save(ctx, ext, loaded, "blob"))
			assert.Equal(t, loaded, svc.Load(ctx, ext, "blob"))

			require.True(t, svc.Remove(ctx, ext, "blob"))
			assert.Empty(t, svc.Load(ctx, ext, "blob"))
		})
	}
}

func TestContainerBackend(t *testing.T) {
	ctx := context.Background()
	world := hosttest.NewWorld()
	var current host.World
	b := NewContainerBackend(func() host.World { return current })

	_, err := b.Load(ctx, NewKey(ext))
	require.ErrorIs(t, err, ErrNoWorld)

	current = world
	require.NoError(t, b.Save(ctx, NewKey(ext), map[string]any{"k": "v"}))

	c, ok := world.FindContainer("ext_main")
	require.True(t, ok)
	assert.JSONEq(t, `{"k":"v"}`, c.Text())

	require.NoError(t, b.Remove(ctx, NewKey(ext)))
	assert.Zero(t, world.Len())

	world.FailCreate = true
	require.Error(t, b.Save(ctx, NewKey(ext), map[string]any{}))
}

func TestFolderBackendMergeOrder(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	b := NewFolderBackend(root, WithCombinedJSON(true))
	key := NewKey(ext, "tuning")
	dir := b.Dir(key)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("main.json", `{"a": "main", "m": 1}`)
	write("b.json", `{"a": "b", "b": true, "1": "numeric", "dotted.key": "x"}`)
	write("a.json", `{"a": "a", "only_a": [1, 2]}`)
	write("notes.txt", `not json`)

	data, err := b.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":          "main",
		"m":          float64(1),
		"b":          true,
		"1":          "numeric",
		"dotted.key": "x",
		"only_a":     []any{float64(1), float64(2)},
	}, data)

	combined, err := os.ReadFile(filepath.Join(dir, CombinedFile))
	require.NoError(t, err)
	var again map[string]any
	again, err = decode(combined, CombinedFile)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	reloaded, err := b.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, reloaded, "combined.json is not read back")
}

func TestFolderBackendEmptyKey(t *testing.T) {
	root := t.TempDir()
	b := NewFolderBackend(root)
	key := NewKey(ext)
	dir := b.Dir(key)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.json"), []byte(`{"": "blank", "x": 1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.json"), []byte(`{"y": 2}`), 0o644))

	data, err := b.Load(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"": "blank", "x": float64(1), "y": float64(2)}, data)
}

func TestFolderBackendInvalidFile(t *testing.T) {
	root := t.TempDir()
	b := NewFolderBackend(root)
	key := NewKey(ext)
	require.NoError(t, os.MkdirAll(b.Dir(key), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(b.Dir(key), "broken.json"), []byte(`{"a":`), 0o644))

	_, err := b.Load(context.Background(), key)
	require.Error(t, err)
}

func TestBoltBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "simext.db")
	slots := &slotSwitch{slot: &hosttest.Slot{Slot: 1, GUID: 2}}

	b, err := OpenBolt(path, WithSaveSlots(true, slots))
	require.NoError(t, err)

	require.NoError(t, b.Save(ctx, NewKey(ext), map[string]any{"k": "v"}))

	var names []string
	require.NoError(t, b.Each(func(ns, name string, raw []byte) error {
		names = append(names, ns+"/"+name)
		assert.JSONEq(t, `{"k":"v"}`, string(raw))
		return nil
	}))
	assert.Equal(t, []string{"ext/ext_main_id_1_guid_2"}, names)

	slots.slot = nil
	_, err = b.Load(ctx, NewKey(ext))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	_, err = b.Load(ctx, NewKey(ext))
	require.ErrorIs(t, err, ErrClosed)
}

type faultyBackend struct{}

func (faultyBackend) Name() string { return "faulty" }
func (faultyBackend) Load(context.Context, Key) (map[string]any, error) {
	panic("disk on fire")
}
func (faultyBackend) Save(context.Context, Key, map[string]any) error {
	return errors.New("disk full")
}
func (faultyBackend) Remove(context.Context, Key) error {
	return errors.New("read-only")
}

func TestServiceNeverRaises(t *testing.T) {
	ctx := context.Background()
	catcher, dir := newCatcher(t)
	svc := NewService(faultyBackend{}, catcher)

	var data map[string]any
	assert.NotPanics(t, func() { data = svc.Load(ctx, ext) })
	assert.NotNil(t, data)
	assert.Empty(t, data)
	assert.False(t, svc.Save(ctx, ext, map[string]any{"k": 1}))
	assert.False(t, svc.Remove(ctx, ext))

	catcher.Logs().Sync()
	raw, err := os.ReadFile(filepath.Join(dir, "ext_Exceptions.txt"))
	require.NoError(t, err)
	logs := string(raw)
	assert.Contains(t, logs, "disk on fire")
	assert.Contains(t, logs, "disk full")
	assert.Contains(t, logs, "faulty.remove(ext_main)")
}

func TestServiceReportsCorruptFile(t *testing.T) {
	ctx := context.Background()
	catcher, dir := newCatcher(t)
	root := t.TempDir()
	b := NewFileBackend(root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ext"), 0o755))
	require.NoError(t, os.WriteFile(b.Path(NewKey(ext)), []byte("{nope"), 0o644))

	assert.Empty(t, NewService(b, catcher).Load(ctx, ext))

	catcher.Logs().Sync()
	raw, err := os.ReadFile(filepath.Join(dir, "ext_Exceptions.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "decode")
}
