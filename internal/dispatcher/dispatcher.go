package dispatcher

import (
	"go.uber.org/multierr"

	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/inject"
	"github.com/dshills/simext/internal/isolation"
)

// Dispatcher installs its injections into the host method table.
type Dispatcher interface {
	Name() string
	Install(methods *inject.Registry) error
}

// base is shared by all dispatchers.
type base struct {
	owner   identity.Identity
	bus     *event.Bus
	catcher *isolation.Catcher
}

func (b base) dispatch(ev event.Event) bool {
	return b.bus.Dispatch(ev)
}

// injection is one replacement a dispatcher installs.
type injection struct {
	target      inject.Target
	replacement any
}

func (b base) install(methods *inject.Registry, list ...injection) error {
	var err error
	for _, in := range list {
		err = multierr.Append(err, methods.InjectSafely(b.owner, in.target, in.replacement))
	}
	return err
}

// Set holds one of each dispatcher.
type Set struct {
	ZoneSpin    *ZoneSpin
	ZoneUpdate  *ZoneUpdate
	Sim         *Sim
	Interaction *Interaction
	BuildBuy    *BuildBuy
	Save        *Save
	Inventory   *Inventory
}

// New creates every dispatcher. Events are fired on bus under the kernel
// identity.
func New(bus *event.Bus, catcher *isolation.Catcher, cfg Config) *Set {
	b := base{owner: identity.Kernel, bus: bus, catcher: catcher}
	spin := &ZoneSpin{base: b, teardown: cfg.Teardown}
	return &Set{
		ZoneSpin:    spin,
		ZoneUpdate:  newZoneUpdate(b, cfg),
		Sim:         &Sim{base: b, state: spin},
		Interaction: &Interaction{base: b},
		BuildBuy:    &BuildBuy{base: b},
		Save:        &Save{base: b},
		Inventory:   &Inventory{base: b},
	}
}

// All returns the dispatchers in installation order.
func (s *Set) All() []Dispatcher {
	return []Dispatcher{s.ZoneSpin, s.ZoneUpdate, s.Sim, s.Interaction, s.BuildBuy, s.Save, s.Inventory}
}

// Install installs every dispatcher. Errors of all dispatchers are
// combined.
func (s *Set) Install(methods *inject.Registry) error {
	var err error
	for _, d := range s.All() {
		err = multierr.Append(err, d.Install(methods))
	}
	return err
}

// arg returns args[i] as T, or the zero T.
func arg[T any](args []any, i int) T {
	var zero T
	if i >= len(args) {
		return zero
	}
	v, ok := args[i].(T)
	if !ok {
		return zero
	}
	return v
}

// as returns recv as T, or the zero T.
func as[T any](recv any) T {
	v, _ := recv.(T)
	return v
}
