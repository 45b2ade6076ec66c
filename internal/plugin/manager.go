package plugin

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/dshills/simext/internal/data"
	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	plua "github.com/dshills/simext/internal/plugin/lua"
	"github.com/dshills/simext/internal/scheduler"
)

// Manager loads script extensions and binds them to the kernel.
type Manager struct {
	bus     *event.Bus
	sched   *scheduler.Scheduler
	catcher *isolation.Catcher
	data    *data.Registry
	timeout time.Duration

	mu         sync.Mutex
	extensions map[string]*Extension
	order      []string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithScheduler enables simext.every and simext.once.
func WithScheduler(s *scheduler.Scheduler) ManagerOption {
	return func(m *Manager) {
		m.sched = s
	}
}

// WithData enables simext.data.
func WithData(r *data.Registry) ManagerOption {
	return func(m *Manager) {
		m.data = r
	}
}

// WithExecutionTimeout bounds every script call.
func WithExecutionTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = d
	}
}

// NewManager creates a manager subscribing extensions to bus and reporting
// their faults through catcher.
func NewManager(bus *event.Bus, catcher *isolation.Catcher, opts ...ManagerOption) *Manager {
	m := &Manager{
		bus:        bus,
		catcher:    catcher,
		timeout:    plua.DefaultExecutionTimeout,
		extensions: make(map[string]*Extension),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load loads the extension in dir and runs its entry script.
func (m *Manager) Load(dir string) (*Extension, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	return m.LoadManifest(manifest)
}

// LoadManifest loads an extension from a manifest already read. A script
// that fails while loading leaves nothing subscribed or scheduled.
func (m *Manager) LoadManifest(manifest *identity.Manifest) (*Extension, error) {
	m.mu.Lock()
	if _, ok := m.extensions[manifest.Name]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, manifest.Name)
	}
	m.mu.Unlock()

	ext := newExtension(m, manifest)
	if err := ext.run(); err != nil {
		m.catcher.Report(ext.id, "failed to load extension", err, "path", manifest.MainPath())
		ext.close()
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.extensions[manifest.Name]; ok {
		ext.close()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, manifest.Name)
	}
	m.extensions[manifest.Name] = ext
	m.order = append(m.order, manifest.Name)
	return ext, nil
}

// LoadAll discovers and loads every extension under paths. Extensions that
// fail are skipped and their errors combined.
func (m *Manager) LoadAll(paths ...string) ([]*Extension, error) {
	manifests, errs := NewLoader(WithPaths(paths...)).Discover()

	loaded := make([]*Extension, 0, len(manifests))
	for _, manifest := range manifests {
		ext, err := m.LoadManifest(manifest)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		loaded = append(loaded, ext)
	}
	return loaded, errs
}

// Get returns a loaded extension by name.
func (m *Manager) Get(name string) (*Extension, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ext, ok := m.extensions[name]
	return ext, ok
}

// Extensions returns the loaded extensions in load order.
func (m *Manager) Extensions() []*Extension {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Extension, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.extensions[name])
	}
	return out
}

// Unload removes an extension's subscriptions and trackers and closes its
// interpreter. Its persisted data is kept.
func (m *Manager) Unload(name string) error {
	m.mu.Lock()
	ext, ok := m.extensions[name]
	if ok {
		delete(m.extensions, name)
		for i, n := range m.order {
			if n == name {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	ext.close()
	return nil
}

// Close unloads every extension in reverse load order.
func (m *Manager) Close() error {
	exts := m.Extensions()
	var errs error
	for i := len(exts) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, m.Unload(exts[i].id.Name))
	}
	return errs
}
