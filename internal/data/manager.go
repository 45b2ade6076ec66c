package data

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/persistence"
)

// Store names used by the entity wrappers.
const (
	SimStoreName    = "sims"
	ObjectStoreName = "objects"
)

// Manager owns the stores of one extension and persists them as one blob.
type Manager struct {
	owner         identity.Identity
	service       *persistence.Service
	catcher       *isolation.Catcher
	discriminator string
	entityExists  func(store string, id uint64) bool

	mu     sync.RWMutex
	stores []*Store
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDiscriminator stores the blob under a discriminated data name.
func WithDiscriminator(d string) ManagerOption {
	return func(m *Manager) {
		m.discriminator = d
	}
}

// WithEntityExists drops data of entities for which fn returns false when
// the manager saves.
func WithEntityExists(fn func(store string, id uint64) bool) ManagerOption {
	return func(m *Manager) {
		m.entityExists = fn
	}
}

// WithCatcher reports malformed blobs through c.
func WithCatcher(c *isolation.Catcher) ManagerOption {
	return func(m *Manager) {
		m.catcher = c
	}
}

// NewManager creates a manager for owner persisting through service.
func NewManager(owner identity.Identity, service *persistence.Service, opts ...ManagerOption) *Manager {
	m := &Manager{owner: owner, service: service}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Owner returns the owning identity.
func (m *Manager) Owner() identity.Identity { return m.owner }

// Store returns the named store, creating it with opts on first use.
func (m *Manager) Store(name string, opts ...StoreOption) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stores {
		if s.name == name {
			return s
		}
	}
	s := newStore(name, opts...)
	m.stores = append(m.stores, s)
	return s
}

// SimStore returns the store keyed by SimInfo ID.
func (m *Manager) SimStore() *Store { return m.Store(SimStoreName) }

// ObjectStore returns the store keyed by game object ID.
func (m *Manager) ObjectStore() *Store { return m.Store(ObjectStoreName) }

// Stores returns the stores in creation order.
func (m *Manager) Stores() []*Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.stores)
}

func (m *Manager) discriminators() []string {
	if m.discriminator == "" {
		return nil
	}
	return []string{m.discriminator}
}

// Load reads the blob and distributes its sub-objects to the stores.
// Stores without data are emptied. Malformed stores are emptied and
// reported; the returned error combines them.
func (m *Manager) Load(ctx context.Context) error {
	blob := m.service.Load(ctx, m.owner, m.discriminators()...)

	var err error
	for _, s := range m.Stores() {
		if e := s.load(blob[s.name]); e != nil {
			s.Clear()
			err = multierr.Append(err, e)
		}
	}
	if err != nil {
		m.catcher.Report(m.owner, "failed to load extension data", err)
	}
	return err
}

// Save dumps every store into one blob and writes it. It reports whether
// the write succeeded.
func (m *Manager) Save(ctx context.Context) bool {
	blob := make(map[string]any)
	for _, s := range m.Stores() {
		var exists func(uint64) bool
		if m.entityExists != nil {
			name := s.name
			exists = func(id uint64) bool { return m.entityExists(name, id) }
		}
		blob[s.name] = s.dump(exists)
	}
	return m.service.Save(ctx, m.owner, blob, m.discriminators()...)
}

// Clear empties every store.
func (m *Manager) Clear() {
	for _, s := range m.Stores() {
		s.Clear()
	}
}

// Subscribe loads on SaveLoaded, saves on SaveSaved and clears on
// ZoneTeardown.
func (m *Manager) Subscribe(bus *event.Bus) []*event.Subscription {
	ctx := context.Background()
	return []*event.Subscription{
		event.On(bus, m.owner, func(events.SaveLoaded) bool {
			_ = m.Load(ctx)
			return true
		}),
		event.On(bus, m.owner, func(events.SaveSaved) bool {
			m.Save(ctx)
			return true
		}),
		event.On(bus, m.owner, func(events.ZoneTeardown) bool {
			m.Clear()
			return true
		}),
	}
}

// Registry keeps one Manager per extension.
type Registry struct {
	service *persistence.Service
	bus     *event.Bus
	catcher *isolation.Catcher

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewRegistry creates managers persisting through service and subscribed
// to bus.
func NewRegistry(service *persistence.Service, bus *event.Bus, catcher *isolation.Catcher) *Registry {
	return &Registry{
		service:  service,
		bus:      bus,
		catcher:  catcher,
		managers: make(map[string]*Manager),
	}
}

// Manager returns owner's manager, creating and subscribing it on first
// use. Options apply only on creation.
func (r *Registry) Manager(owner identity.Identity, opts ...ManagerOption) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[owner.Name]; ok {
		return m
	}
	m := NewManager(owner, r.service, append([]ManagerOption{WithCatcher(r.catcher)}, opts...)...)
	if r.bus != nil {
		m.Subscribe(r.bus)
	}
	r.managers[owner.Name] = m
	return m
}

// Managers returns every manager, ordered by owner name.
func (r *Registry) Managers() []*Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Manager, 0, len(r.managers))
	for _, m := range r.managers {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Manager) int {
		switch {
		case a.owner.Name < b.owner.Name:
			return -1
		case a.owner.Name > b.owner.Name:
			return 1
		}
		return 0
	})
	return out
}

// SaveAll saves every manager and reports whether all succeeded.
func (r *Registry) SaveAll(ctx context.Context) bool {
	ok := true
	for _, m := range r.Managers() {
		ok = m.Save(ctx) && ok
	}
	return ok
}
