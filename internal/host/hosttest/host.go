package hosttest

import (
	"iter"
	"slices"

	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/inject"
)

// Host defines a plain implementation of every catalog method and
// records which originals ran.
type Host struct {
	Methods *inject.Registry
	Calls   []string
}

// New defines the catalog on methods.
func New(methods *inject.Registry) (*Host, error) {
	h := &Host{Methods: methods}
	impls := h.impls()
	for _, m := range host.Catalog() {
		fn, ok := impls[m.Target]
		if !ok {
			fn = func(any, ...any) any { return nil }
		}
		target := m.Target
		recorded := func(recv any, args ...any) any {
			h.Calls = append(h.Calls, target.String())
			return fn(recv, args...)
		}
		if err := methods.Define(m.Target, m.Kind, recorded); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Call invokes target as the host would.
func (h *Host) Call(target inject.Target, recv any, args ...any) any {
	return h.Methods.Call(target, recv, args...)
}

// Ran reports how many times the original of target ran.
func (h *Host) Ran(target inject.Target) int {
	n := 0
	for _, c := range h.Calls {
		if c == target.String() {
			n++
		}
	}
	return n
}

// LoadZone runs a full zone load: load, spin and loading screen.
func (h *Host) LoadZone(zone *Zone) {
	h.Call(host.ZoneLoad, zone)
	h.Call(host.ZoneSpin, zone)
	h.Call(host.ZoneLoadingScreenFinished, zone)
}

// Drain consumes an interaction generator and returns its values.
func Drain(v any) []any {
	seq, ok := inject.AsSeq(v)
	if !ok {
		return []any{v}
	}
	return slices.Collect(seq)
}

func (h *Host) impls() map[inject.Target]inject.Func {
	return map[inject.Target]inject.Func{
		host.SimInfoSetOccult: func(recv any, args ...any) any {
			recv.(*SimInfo).Occult = args[0].(host.OccultType)
			return nil
		},
		host.QueueAppend: func(recv any, args ...any) any {
			q := recv.(*Queue)
			q.Items = append(q.Items, args[0].(host.Interaction))
			return host.TestPassed
		},
		host.InteractionRun: func(recv any, _ ...any) any {
			i := recv.(*Interaction)
			run := func(yield func(any) bool) {
				for _, step := range i.Steps {
					if !yield(step) {
						return
					}
				}
				i.Ran = true
			}
			if i.PlainFunc {
				return run
			}
			return iter.Seq[any](run)
		},
		host.InteractionOutcome: func(recv any, _ ...any) any {
			return recv.(*Interaction).Outcome
		},
		host.InteractionCancel: func(recv any, _ ...any) any {
			recv.(*Interaction).Cancelled = true
			return true
		},
		host.SaveGame: func(any, ...any) any {
			return true
		},
		host.ObjectInventoryAdd:       inventoryAdd,
		host.SimInventoryAdd:          inventoryAdd,
		host.ObjectInventoryPreRemove: inventoryRemove,
		host.SimInventoryPreRemove:    inventoryRemove,
	}
}

func inventoryAdd(recv any, args ...any) any {
	inv := recv.(*Inventory)
	inv.Items = append(inv.Items, args[0].(host.GameObject))
	return true
}

func inventoryRemove(recv any, args ...any) any {
	inv := recv.(*Inventory)
	obj := args[0].(host.GameObject)
	inv.Items = slices.DeleteFunc(inv.Items, func(o host.GameObject) bool { return o == obj })
	return nil
}
