package data

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host/hosttest"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
	"github.com/dshills/simext/internal/persistence"
)

var ext = identity.MustNew("Ext", "tester", identity.WithNamespace("ext"))

type env struct {
	root    string
	catcher *isolation.Catcher
	service *persistence.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logs := logging.NewRegistry(logging.WithDirectory(t.TempDir()))
	t.Cleanup(logs.Close)
	catcher := isolation.New(logs)
	root := t.TempDir()
	return &env{
		root:    root,
		catcher: catcher,
		service: persistence.NewService(persistence.NewFileBackend(root), catcher),
	}
}

func TestStoreOperations(t *testing.T) {
	s := newStore("sims")

	assert.Equal(t, "fallback", s.Get(1, "k", "fallback"))
	s.Set(1, "k", "v")
	s.Set(2, "k", 3)
	assert.Equal(t, "v", s.Get(1, "k", nil))
	assert.True(t, s.Has(2, "k"))
	assert.Equal(t, []uint64{1, 2}, s.Entities())

	s.Remove(2, "k")
	assert.Equal(t, []uint64{1}, s.Entities())
	s.RemoveEntity(1)
	assert.Zero(t, s.Len())
}

func TestSetSaveLoadInNewProcess(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := NewManager(ext, e.service)
	m.SimStore().Set(42, "mood", "happy")
	m.ObjectStore().Set(7, "charges", 3)
	require.True(t, m.Save(ctx))

	fresh := NewManager(ext, persistence.NewService(persistence.NewFileBackend(e.root), e.catcher))
	sims := fresh.SimStore()
	objects := fresh.ObjectStore()
	require.NoError(t, fresh.Load(ctx))

	assert.Equal(t, "happy", sims.Get(42, "mood", nil))
	assert.Equal(t, float64(3), objects.Get(7, "charges", nil))
	assert.Equal(t, 3, StoreValue(objects, 7, "charges", 0))
	assert.Equal(t, "happy", StoreValue(sims, 42, "mood", ""))

	raw, err := os.ReadFile(filepath.Join(e.root, "ext", "ext_main.json"))
	require.NoError(t, err)
	var blob map[string]any
	require.NoError(t, json.Unmarshal(raw, &blob))
	assert.Equal(t, map[string]any{
		"sims":    map[string]any{"42": map[string]any{"mood": "happy"}},
		"objects": map[string]any{"7": map[string]any{"charges": float64(3)}},
	}, blob)
}

func TestOmitEmptyAndEntityExists(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := NewManager(ext, e.service, WithDiscriminator("extra"), WithEntityExists(func(store string, id uint64) bool {
		return !(store == SimStoreName && id == 2)
	}))
	s := m.Store(SimStoreName, WithOmitEmpty())
	s.Set(1, "name", "")
	s.Set(1, "tags", []any{})
	s.Set(1, "count", 0)
	s.Set(1, "flag", false)
	s.Set(2, "gone", "yes")
	s.Set(3, "nothing", nil)
	require.True(t, m.Save(ctx))

	blob := e.service.Load(ctx, ext, "extra")
	assert.Equal(t, map[string]any{
		"1": map[string]any{"count": float64(0), "flag": false},
	}, blob[SimStoreName])
}

func TestLoadReplacesAndReportsMalformedStores(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.True(t, e.service.Save(ctx, ext, map[string]any{
		"sims":    map[string]any{"not-a-number": map[string]any{}},
		"objects": map[string]any{"5": map[string]any{"k": "v"}},
	}))

	m := NewManager(ext, e.service, WithCatcher(e.catcher))
	m.SimStore().Set(1, "stale", true)
	m.ObjectStore()
	err := m.Load(ctx)
	require.ErrorIs(t, err, ErrMalformedStore)

	assert.Zero(t, m.SimStore().Len())
	assert.Equal(t, "v", m.ObjectStore().Get(5, "k", nil))
}

func TestManagerFollowsSaveLifecycle(t *testing.T) {
	e := newEnv(t)
	bus := event.NewBus(e.catcher)
	registry := NewRegistry(e.service, bus, e.catcher)

	m := registry.Manager(ext)
	assert.Same(t, m, registry.Manager(ext))

	m.SimStore().Set(1, "k", "v")
	bus.Dispatch(events.SaveSaved{})
	bus.Dispatch(events.ZoneTeardown{})
	assert.Zero(t, m.SimStore().Len())

	bus.Dispatch(events.SaveLoaded{})
	assert.Equal(t, "v", m.SimStore().Get(1, "k", nil))

	other := identity.MustNew("Other", "tester")
	registry.Manager(other)
	managers := registry.Managers()
	require.Len(t, managers, 2)
	assert.Equal(t, "Ext", managers[0].Owner().Name)
	assert.True(t, registry.SaveAll(context.Background()))
}

type mood struct {
	*PersistedSimData
}

func (m mood) Level() int {
	return Value(m, 0, "Level")
}

func (m mood) SetLevel(v int) {
	m.SetData(v, "Level")
}

func (m mood) Nickname() string {
	v, _ := m.GetData("none").(string)
	return v
}

func (m mood) SetNickname(v string) {
	m.SetData(v)
}

func (m mood) RemoveNickname() {
	m.RemoveData()
}

func (m mood) Label() any {
	return m.GetData(nil)
}

func TestPersistedSimDataKeys(t *testing.T) {
	e := newEnv(t)
	m := NewManager(ext, e.service)
	sim := hosttest.NewSim(9, "Bella")

	md := mood{NewPersistedSimData(m, sim.Info)}
	assert.Equal(t, "none", md.Nickname())
	md.SetNickname("Bee")
	assert.Equal(t, "Bee", md.Nickname(), "getter and setter share the property key")
	assert.Equal(t, "Bee", m.SimStore().Get(9, "Nickname", nil))
	assert.Nil(t, m.SimStore().Get(9, "SetNickname", nil))
	md.RemoveNickname()
	assert.Equal(t, "none", md.Nickname())
	assert.Nil(t, md.Label())

	md.SetLevel(4)
	assert.Equal(t, 4, md.Level())
	assert.Equal(t, uint64(9), md.EntityID())
	assert.Equal(t, 4, m.SimStore().Get(9, "Level", nil))

	md.RemoveData("Level")
	assert.Equal(t, 0, md.Level())
}

func TestPersistedObjectData(t *testing.T) {
	e := newEnv(t)
	m := NewManager(ext, e.service)
	obj := &hosttest.Object{IDValue: 77}

	d := NewPersistedObjectData(m, obj)
	d.SetData(float64(2), "charges")
	assert.Equal(t, 2, Value(d, 0, "charges"))
	assert.Equal(t, []uint64{77}, m.ObjectStore().Entities())
}

func TestEntityDataInMemory(t *testing.T) {
	d := NewEntityData(5)
	d.SetData("v", "k")
	assert.Equal(t, "v", d.GetData(nil, "k"))
	d.RemoveData("k")
	assert.Equal(t, "def", d.GetData("def", "k"))

	setOwnKey := func() { d.SetData(1) }
	setOwnKey()
	assert.Equal(t, 1, d.GetData(nil, "func1"))
}

func TestPropertyName(t *testing.T) {
	for name, want := range map[string]string{
		"Nickname":       "Nickname",
		"SetNickname":    "Nickname",
		"GetNickname":    "Nickname",
		"RemoveNickname": "Nickname",
		"Settle":         "Settle",
		"Set":            "Set",
		"func1":          "func1",
	} {
		assert.Equal(t, want, propertyName(name), name)
	}
}

func TestValueConversions(t *testing.T) {
	d := NewEntityData(1)
	d.SetData(float64(3), "int")
	d.SetData(json.Number("2.5"), "number")
	d.SetData([]any{float64(1), float64(2)}, "ints")
	d.SetData("text", "text")

	assert.Equal(t, 3, Value(d, 0, "int"))
	assert.Equal(t, uint8(3), Value(d, uint8(0), "int"))
	assert.InDelta(t, 2.5, Value(d, 0.0, "number"), 1e-9)
	assert.Equal(t, []int{1, 2}, Value(d, []int(nil), "ints"))
	assert.Equal(t, 7, Value(d, 7, "text"))
	assert.Equal(t, "missing", Value(d, "missing", "absent"))
}
