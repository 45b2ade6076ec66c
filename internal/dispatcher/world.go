package dispatcher

import (
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/inject"
)

// BuildBuy fires build/buy mode events.
type BuildBuy struct {
	base
}

// Name implements Dispatcher.
func (d *BuildBuy) Name() string { return "build-buy" }

// Install implements Dispatcher.
func (d *BuildBuy) Install(methods *inject.Registry) error {
	return d.install(methods,
		injection{host.BuildBuyEnter, inject.After(func(recv any, _ ...any) {
			d.dispatch(events.BuildBuyEnter{Zone: as[host.Zone](recv)})
		})},
		injection{host.BuildBuyExit, inject.After(func(recv any, _ ...any) {
			d.dispatch(events.BuildBuyExit{Zone: as[host.Zone](recv)})
		})},
	)
}

// Save fires SaveSaved before the host commits a save and SaveLoaded once
// every household of a save has loaded.
type Save struct {
	base
}

// Name implements Dispatcher.
func (d *Save) Name() string { return "save" }

// Install implements Dispatcher.
func (d *Save) Install(methods *inject.Registry) error {
	return d.install(methods,
		injection{host.SaveGame, inject.Around(func(original inject.Func, recv any, args ...any) any {
			d.dispatch(events.SaveSaved{Slot: as[host.SaveSlot](recv)})
			return original(recv, args...)
		})},
		injection{host.HouseholdsLoaded, inject.After(func(_ any, args ...any) {
			d.dispatch(events.SaveLoaded{Slot: arg[host.SaveSlot](args, 0)})
		})},
	)
}

// Inventory fires inventory add and pre-remove events for object and Sim
// inventories.
type Inventory struct {
	base
}

// Name implements Dispatcher.
func (d *Inventory) Name() string { return "inventory" }

// Install implements Dispatcher.
func (d *Inventory) Install(methods *inject.Registry) error {
	return d.install(methods,
		injection{host.ObjectInventoryAdd, inject.After(func(recv any, args ...any) {
			d.dispatch(events.GameObjectAddedToObjectInventory{
				Inventory: as[host.Inventory](recv),
				Object:    arg[host.GameObject](args, 0),
			})
		})},
		injection{host.ObjectInventoryPreRemove, inject.Around(func(original inject.Func, recv any, args ...any) any {
			d.dispatch(events.GameObjectPreRemovedFromObjectInventory{
				Inventory: as[host.Inventory](recv),
				Object:    arg[host.GameObject](args, 0),
			})
			return original(recv, args...)
		})},
		injection{host.SimInventoryAdd, inject.After(func(recv any, args ...any) {
			d.dispatch(events.GameObjectAddedToSimInventory{
				Inventory: as[host.Inventory](recv),
				Object:    arg[host.GameObject](args, 0),
			})
		})},
		injection{host.SimInventoryPreRemove, inject.Around(func(original inject.Func, recv any, args ...any) any {
			d.dispatch(events.GameObjectPreRemovedFromSimInventory{
				Inventory: as[host.Inventory](recv),
				Object:    arg[host.GameObject](args, 0),
			})
			return original(recv, args...)
		})},
	)
}
