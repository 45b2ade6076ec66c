package data

import (
	"runtime"
	"strings"
	"sync"

	"github.com/dshills/simext/internal/host"
)

// Holder is implemented by every entity data wrapper.
type Holder interface {
	EntityID() uint64
	GetData(def any, key ...string) any
	SetData(v any, key ...string)
	RemoveData(key ...string)
}

// callerKey returns key[0], or the name of the function that called the
// wrapper method when no key is given. Accessor prefixes are trimmed so
// Nickname, SetNickname and RemoveNickname share the key "Nickname". It
// must be called directly from the wrapper method.
func callerKey(key []string) string {
	if len(key) > 0 && key[0] != "" {
		return key[0]
	}
	pcs := make([]uintptr, 1)
	if runtime.Callers(3, pcs) == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	name := frame.Function
	if name == "" {
		return "unknown"
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return propertyName(name)
}

var accessorPrefixes = []string{"Get", "Set", "Remove", "Delete", "Clear"}

// propertyName strips an accessor prefix followed by an upper case letter.
func propertyName(name string) string {
	for _, p := range accessorPrefixes {
		rest, ok := strings.CutPrefix(name, p)
		if ok && rest != "" && rest[0] >= 'A' && rest[0] <= 'Z' {
			return rest
		}
	}
	return name
}

// EntityData holds data for one entity in memory only.
type EntityData struct {
	id   uint64
	mu   sync.RWMutex
	data map[string]any
}

// NewEntityData returns empty data for entity id.
func NewEntityData(id uint64) *EntityData {
	return &EntityData{id: id, data: make(map[string]any)}
}

// EntityID implements Holder.
func (e *EntityData) EntityID() uint64 { return e.id }

// GetData implements Holder.
func (e *EntityData) GetData(def any, key ...string) any {
	k := callerKey(key)
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.data[k]; ok {
		return v
	}
	return def
}

// SetData implements Holder.
func (e *EntityData) SetData(v any, key ...string) {
	k := callerKey(key)
	e.mu.Lock()
	e.data[k] = v
	e.mu.Unlock()
}

// RemoveData implements Holder.
func (e *EntityData) RemoveData(key ...string) {
	k := callerKey(key)
	e.mu.Lock()
	delete(e.data, k)
	e.mu.Unlock()
}

// storeData is a Holder backed by a Store.
type storeData struct {
	id    uint64
	store *Store
}

// PersistedSimData is data of a Sim kept in a Manager's Sim store.
type PersistedSimData struct {
	storeData
	info host.SimInfo
}

// NewPersistedSimData wraps the data of info in m's Sim store.
func NewPersistedSimData(m *Manager, info host.SimInfo) *PersistedSimData {
	return &PersistedSimData{storeData: storeData{id: info.ID(), store: m.SimStore()}, info: info}
}

// SimInfo returns the wrapped Sim.
func (d *PersistedSimData) SimInfo() host.SimInfo { return d.info }

// EntityID implements Holder.
func (d *PersistedSimData) EntityID() uint64 { return d.id }

// GetData implements Holder.
func (d *PersistedSimData) GetData(def any, key ...string) any {
	return d.store.Get(d.id, callerKey(key), def)
}

// SetData implements Holder.
func (d *PersistedSimData) SetData(v any, key ...string) {
	d.store.Set(d.id, callerKey(key), v)
}

// RemoveData implements Holder.
func (d *PersistedSimData) RemoveData(key ...string) {
	d.store.Remove(d.id, callerKey(key))
}

// PersistedObjectData is data of a game object kept in a Manager's object
// store.
type PersistedObjectData struct {
	storeData
	object host.GameObject
}

// NewPersistedObjectData wraps the data of obj in m's object store.
func NewPersistedObjectData(m *Manager, obj host.GameObject) *PersistedObjectData {
	return &PersistedObjectData{storeData: storeData{id: obj.ID(), store: m.ObjectStore()}, object: obj}
}

// Object returns the wrapped game object.
func (d *PersistedObjectData) Object() host.GameObject { return d.object }

// EntityID implements Holder.
func (d *PersistedObjectData) EntityID() uint64 { return d.id }

// GetData implements Holder.
func (d *PersistedObjectData) GetData(def any, key ...string) any {
	return d.store.Get(d.id, callerKey(key), def)
}

// SetData implements Holder.
func (d *PersistedObjectData) SetData(v any, key ...string) {
	d.store.Set(d.id, callerKey(key), v)
}

// RemoveData implements Holder.
func (d *PersistedObjectData) RemoveData(key ...string) {
	d.store.Remove(d.id, callerKey(key))
}
