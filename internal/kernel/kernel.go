package kernel

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/dshills/simext/internal/config"
	"github.com/dshills/simext/internal/data"
	"github.com/dshills/simext/internal/dispatcher"
	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/inject"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
	"github.com/dshills/simext/internal/persistence"
	"github.com/dshills/simext/internal/plugin"
	"github.com/dshills/simext/internal/scheduler"
	"github.com/dshills/simext/internal/services"
)

// Kernel is the extension runtime.
type Kernel struct {
	opts Options

	logs        *logging.Registry
	catcher     *isolation.Catcher
	methods     *inject.Registry
	bus         *event.Bus
	services    *services.Registry
	dispatchers *dispatcher.Set
	scheduler   *scheduler.Scheduler
	backend     persistence.Backend
	persistence *persistence.Service
	data        *data.Registry
	plugins     *plugin.Manager
	watcher     *config.Watcher

	mu     sync.RWMutex
	config config.Config
	slot   host.SaveSlot

	started atomic.Bool
	closed  atomic.Bool
}

// New builds a kernel. Configuration faults never fail New; they are
// logged and defaults are used.
func New(opts Options) (*Kernel, error) {
	k := &Kernel{opts: opts}

	k.logs = logging.NewRegistry(logging.WithDirectory(opts.logDir()))
	k.config = config.Ensure(opts.configPath(), k.logs.Kernel())
	if err := k.config.Apply(k.logs); err != nil {
		k.logs.Kernel().Warn("invalid enable_logs entry", "error", err)
	}

	k.catcher = isolation.New(k.logs)
	k.methods = inject.NewRegistry(k.catcher)
	k.bus = event.NewBus(k.catcher)
	k.services = services.NewRegistry()

	cfg := dispatcher.DefaultConfig().WithTeardown(k.services)
	if opts.Clock != nil {
		cfg = cfg.WithClock(opts.Clock)
	}
	if opts.Now != nil {
		cfg = cfg.WithNow(opts.Now)
	}
	k.dispatchers = dispatcher.New(k.bus, k.catcher, cfg)
	k.scheduler = scheduler.New(k.bus, k.catcher)

	// Must run before any data manager subscribes so loads and saves see
	// the slot.
	event.On(k.bus, identity.Kernel, func(ev events.SaveSaved) bool {
		if ev.Slot != nil {
			k.SetSlot(ev.Slot)
		}
		return true
	})
	event.On(k.bus, identity.Kernel, func(ev events.SaveLoaded) bool {
		switch {
		case ev.Slot != nil:
			k.SetSlot(ev.Slot)
		case k.perSlot():
			k.logs.Kernel().Warn("save loaded without a slot, keeping the previous one")
		}
		return true
	})

	backend, err := k.openBackend()
	if err != nil {
		k.logs.Close()
		return nil, &InitError{Component: "persistence", Err: err}
	}
	k.backend = backend
	k.persistence = persistence.NewService(backend, k.catcher)
	k.data = data.NewRegistry(k.persistence, k.bus, k.catcher)

	pluginOpts := []plugin.ManagerOption{
		plugin.WithScheduler(k.scheduler),
		plugin.WithData(k.data),
	}
	if opts.ScriptTimeout > 0 {
		pluginOpts = append(pluginOpts, plugin.WithExecutionTimeout(opts.ScriptTimeout))
	}
	k.plugins = plugin.NewManager(k.bus, k.catcher, pluginOpts...)

	k.logs.Kernel().Info("kernel created",
		"root", opts.Root,
		"storage", string(opts.storage()),
		"per_slot", k.config.PersistModDataPerSaveSlot)
	return k, nil
}

func (k *Kernel) openBackend() (persistence.Backend, error) {
	var slots persistence.SlotProvider = persistence.SlotFunc(k.currentSlot)
	if k.opts.Slots != nil {
		slots = k.opts.Slots
	}
	opts := []persistence.Option{
		persistence.WithSaveSlots(k.config.PersistModDataPerSaveSlot, slots),
		persistence.WithCombinedJSON(k.config.CreateCombinedJSON),
	}

	dir := k.opts.dataDir()
	switch k.opts.storage() {
	case StorageFile:
		return persistence.NewFileBackend(dir, opts...), nil
	case StorageFolder:
		return persistence.NewFolderBackend(dir, opts...), nil
	case StorageBolt:
		return persistence.OpenBolt(filepath.Join(dir, BoltFile), opts...)
	case StorageContainer:
		if k.opts.World == nil {
			return nil, ErrNoWorld
		}
		return persistence.NewContainerBackend(k.opts.World), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, k.opts.Storage)
	}
}

// Start installs the dispatchers into the host's method table, loads
// script extensions and starts the config watcher. The host must have
// defined its methods first. Extensions that fail to load are logged and
// skipped.
func (k *Kernel) Start(ctx context.Context) error {
	if k.closed.Load() {
		return ErrClosed
	}
	if !k.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	log := k.logs.Kernel()

	if err := k.dispatchers.Install(k.methods); err != nil {
		log.Exception("failed to install dispatchers", err)
		return &InitError{Component: "dispatchers", Err: err}
	}

	if len(k.opts.ExtensionPaths) > 0 {
		loaded, err := k.plugins.LoadAll(k.opts.ExtensionPaths...)
		if err != nil {
			for _, e := range multierr.Errors(err) {
				log.Exception("failed to load extension", e)
			}
		}
		for _, ext := range loaded {
			log.Info("extension loaded", "extension", ext.Identity().String())
		}
	}

	if k.opts.WatchConfig {
		w, err := config.Watch(k.opts.configPath(), k.reload,
			config.WithErrorHandler(func(err error) {
				log.Exception("config reload failed", err)
			}))
		if err != nil {
			log.Exception("failed to watch config", err)
		} else {
			k.watcher = w
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("kernel started", "dispatchers", len(k.dispatchers.All()))
	return nil
}

// reload applies a changed config file. Log settings take effect at once;
// persistence settings apply on the next start.
func (k *Kernel) reload(cfg config.Config) {
	k.mu.Lock()
	k.config = cfg
	k.mu.Unlock()

	if err := cfg.Apply(k.logs); err != nil {
		k.logs.Kernel().Warn("invalid enable_logs entry", "error", err)
	}
	k.logs.Kernel().Info("config reloaded")
}

// Config returns the active configuration.
func (k *Kernel) Config() config.Config {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.config
}

// SetSlot records the save slot that is loaded. SaveSaved and SaveLoaded
// events that carry a slot record it automatically.
func (k *Kernel) SetSlot(slot host.SaveSlot) {
	k.mu.Lock()
	k.slot = slot
	k.mu.Unlock()
}

// perSlot reports whether data names depend on a slot the kernel tracks.
func (k *Kernel) perSlot() bool {
	return k.opts.Slots == nil && k.Config().PersistModDataPerSaveSlot
}

func (k *Kernel) currentSlot() (host.SaveSlot, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.slot, k.slot != nil
}

// ForwardHostLog writes a host log line to the Vanilla channel when
// enable_vanilla_logging is set.
func (k *Kernel) ForwardHostLog(level logging.Level, group, msg string) bool {
	return k.logs.ForwardHost(level, group, msg)
}

// Register returns owner's log channel.
func (k *Kernel) Register(owner identity.Identity, channel string) *logging.Channel {
	return k.logs.Register(owner, channel)
}

// DataManager returns owner's data manager.
func (k *Kernel) DataManager(owner identity.Identity, opts ...data.ManagerOption) *data.Manager {
	return k.data.Manager(owner, opts...)
}

// Logs returns the log registry.
func (k *Kernel) Logs() *logging.Registry { return k.logs }

// Catcher returns the exception-isolation layer.
func (k *Kernel) Catcher() *isolation.Catcher { return k.catcher }

// Methods returns the host method table.
func (k *Kernel) Methods() *inject.Registry { return k.methods }

// Bus returns the event bus.
func (k *Kernel) Bus() *event.Bus { return k.bus }

// Services returns the service registry. Services are torn down after
// every zone teardown and when the kernel closes.
func (k *Kernel) Services() *services.Registry { return k.services }

// Dispatchers returns the lifecycle dispatchers.
func (k *Kernel) Dispatchers() *dispatcher.Set { return k.dispatchers }

// Scheduler returns the interval scheduler.
func (k *Kernel) Scheduler() *scheduler.Scheduler { return k.scheduler }

// Persistence returns the persistence service.
func (k *Kernel) Persistence() *persistence.Service { return k.persistence }

// Data returns the data manager registry.
func (k *Kernel) Data() *data.Registry { return k.data }

// Plugins returns the script extension manager.
func (k *Kernel) Plugins() *plugin.Manager { return k.plugins }

// Close stops the watcher, unloads extensions, tears down services and
// closes storage and log files. Errors are combined.
func (k *Kernel) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if k.watcher != nil {
		err = multierr.Append(err, k.watcher.Close())
	}
	err = multierr.Append(err, k.plugins.Close())
	err = multierr.Append(err, k.scheduler.Close())
	err = multierr.Append(err, k.services.Teardown())
	if c, ok := k.backend.(interface{ Close() error }); ok {
		err = multierr.Append(err, c.Close())
	}

	if err != nil {
		k.logs.Kernel().Exception("kernel closed with errors", err)
	}
	k.logs.Close()
	return err
}
