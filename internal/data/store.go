package data

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"sync"
)

// Store maps entity IDs to key/value data.
type Store struct {
	name      string
	omitEmpty bool

	mu      sync.RWMutex
	library map[uint64]map[string]any
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOmitEmpty drops nil values, empty strings and empty collections when
// the store is saved. Zero numbers and false are kept.
func WithOmitEmpty() StoreOption {
	return func(s *Store) {
		s.omitEmpty = true
	}
}

func newStore(name string, opts ...StoreOption) *Store {
	s := &Store{name: name, library: make(map[uint64]map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the store's key in the persisted blob.
func (s *Store) Name() string { return s.name }

// Get returns the value of key for entity, or def. Values loaded from
// storage come back as their JSON types, so an int that was set reads as
// float64 after a load; use StoreValue or Value for typed reads.
func (s *Store) Get(entity uint64, key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.library[entity][key]
	if !ok {
		return def
	}
	return v
}

// Has reports whether entity has a value for key.
func (s *Store) Has(entity uint64, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.library[entity][key]
	return ok
}

// Set stores v under key for entity.
func (s *Store) Set(entity uint64, key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.library[entity]
	if !ok {
		m = make(map[string]any)
		s.library[entity] = m
	}
	m[key] = v
}

// Remove deletes key of entity.
func (s *Store) Remove(entity uint64, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.library[entity]
	if !ok {
		return
	}
	delete(m, key)
	if len(m) == 0 {
		delete(s.library, entity)
	}
}

// RemoveEntity deletes all data of entity.
func (s *Store) RemoveEntity(entity uint64) {
	s.mu.Lock()
	delete(s.library, entity)
	s.mu.Unlock()
}

// Entities returns the IDs with data, in ascending order.
func (s *Store) Entities() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.library))
}

// Len returns the number of entities with data.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.library)
}

// Clear drops all data.
func (s *Store) Clear() {
	s.mu.Lock()
	s.library = make(map[uint64]map[string]any)
	s.mu.Unlock()
}

// load replaces the library with a persisted sub-object.
func (s *Store) load(raw any) error {
	lib := make(map[uint64]map[string]any)
	if raw != nil {
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s is %T", ErrMalformedStore, s.name, raw)
		}
		for k, v := range obj {
			id, err := strconv.ParseUint(k, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s: entity %q", ErrMalformedStore, s.name, k)
			}
			values, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s: entity %q is %T", ErrMalformedStore, s.name, k, v)
			}
			lib[id] = maps.Clone(values)
		}
	}

	s.mu.Lock()
	s.library = lib
	s.mu.Unlock()
	return nil
}

// dump returns the library as a persistable object. Entities for which
// exists returns false are left out.
func (s *Store) dump(exists func(uint64) bool) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.library))
	for id, values := range s.library {
		if exists != nil && !exists(id) {
			continue
		}
		entry := make(map[string]any, len(values))
		for k, v := range values {
			if s.omitEmpty && isEmpty(v) {
				continue
			}
			entry[k] = v
		}
		if len(entry) == 0 {
			continue
		}
		out[strconv.FormatUint(id, 10)] = entry
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
