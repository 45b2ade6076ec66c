// Package simext is the extension runtime kernel for a life-simulation
// host.
//
// A host creates a Kernel, defines its patchable methods on the kernel's
// method table and starts it:
//
//	k, err := simext.New(simext.Options{Root: docs})
//	if err != nil {
//		return err
//	}
//	defer k.Close()
//
//	defineHostMethods(k.Methods())
//	if err := k.Start(ctx); err != nil {
//		return err
//	}
//
// Extensions written in Go identify themselves with an Identity and use
// the kernel's bus, scheduler, data managers and injection registry.
// Extensions written in Lua are discovered from Options.ExtensionPaths.
package simext

import (
	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/inject"
	"github.com/dshills/simext/internal/kernel"
	"github.com/dshills/simext/internal/scheduler"
)

type (
	// Kernel is the extension runtime.
	Kernel = kernel.Kernel
	// Options configures a Kernel.
	Options = kernel.Options
	// Storage selects the persistence backend.
	Storage = kernel.Storage

	// Identity names the extension that owns kernel resources.
	Identity = identity.Identity

	// Event is anything dispatched on the bus.
	Event = event.Event
	// Cancelable marks events a handler may veto.
	Cancelable = event.Cancelable
	// Subscription is a registered event handler.
	Subscription = event.Subscription

	// Tracker is a scheduled callback.
	Tracker = scheduler.Tracker

	// Target names a host method.
	Target = inject.Target
	// Func is the shape of every host method.
	Func = inject.Func
	// Around replaces a host method and may call the original.
	Around = inject.Around
	// After runs after a host method.
	After = inject.After
)

// Storage kinds.
const (
	StorageFile      = kernel.StorageFile
	StorageFolder    = kernel.StorageFolder
	StorageBolt      = kernel.StorageBolt
	StorageContainer = kernel.StorageContainer
)

// KernelIdentity is the identity the kernel uses for its own resources.
var KernelIdentity = identity.Kernel

// New creates a kernel.
func New(opts Options) (*Kernel, error) {
	return kernel.New(opts)
}

// NewIdentity creates an extension identity.
func NewIdentity(name, author string, opts ...identity.Option) (Identity, error) {
	return identity.New(name, author, opts...)
}

// WithNamespace sets an identity's base namespace.
func WithNamespace(ns string) identity.Option {
	return identity.WithNamespace(ns)
}

// WithVersion sets an identity's version.
func WithVersion(v string) identity.Option {
	return identity.WithVersion(v)
}

// On subscribes fn to every event of type E.
func On[E Event](k *Kernel, owner Identity, fn func(E) bool) *Subscription {
	return event.On(k.Bus(), owner, fn)
}

// Inject replaces a host method with fault isolation. The original's
// result is returned when replacement fails.
func Inject(k *Kernel, owner Identity, target Target, replacement any) error {
	return k.Methods().InjectSafely(owner, target, replacement)
}

// RunEvery calls fn every ms game milliseconds.
func RunEvery(k *Kernel, owner Identity, ms uint64, fn func()) *Tracker {
	return k.Scheduler().RunEvery(owner, ms, fn)
}

// RunOnce calls fn once after ms game milliseconds.
func RunOnce(k *Kernel, owner Identity, ms uint64, fn func()) *Tracker {
	return k.Scheduler().RunOnce(owner, ms, fn)
}
