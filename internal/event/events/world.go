package events

import "github.com/dshills/simext/internal/host"

// BuildBuyEnter fires after the zone entered build/buy mode.
type BuildBuyEnter struct {
	Zone host.Zone
}

// Topic implements event.Event.
func (BuildBuyEnter) Topic() string { return "buildbuy.enter" }

// ZoneOf implements ZoneEvent.
func (e BuildBuyEnter) ZoneOf() host.Zone { return e.Zone }

// BuildBuyExit fires after the zone left build/buy mode.
type BuildBuyExit struct {
	Zone host.Zone
}

// Topic implements event.Event.
func (BuildBuyExit) Topic() string { return "buildbuy.exit" }

// ZoneOf implements ZoneEvent.
func (e BuildBuyExit) ZoneOf() host.Zone { return e.Zone }

// SaveSaved fires before the host commits a save.
type SaveSaved struct {
	Slot host.SaveSlot
}

// Topic implements event.Event.
func (SaveSaved) Topic() string { return "save.saved" }

// SaveLoaded fires after every household of a save has loaded. Slot is
// nil when the host did not report which save was loaded.
type SaveLoaded struct {
	Slot host.SaveSlot
}

// Topic implements event.Event.
func (SaveLoaded) Topic() string { return "save.loaded" }

// GameObjectAddedToObjectInventory fires after an object entered an
// object's inventory.
type GameObjectAddedToObjectInventory struct {
	Inventory host.Inventory
	Object    host.GameObject
}

// Topic implements event.Event.
func (GameObjectAddedToObjectInventory) Topic() string { return "inventory.object.added" }

// GameObjectPreRemovedFromObjectInventory fires before an object leaves an
// object's inventory.
type GameObjectPreRemovedFromObjectInventory struct {
	Inventory host.Inventory
	Object    host.GameObject
}

// Topic implements event.Event.
func (GameObjectPreRemovedFromObjectInventory) Topic() string { return "inventory.object.removing" }

// GameObjectAddedToSimInventory fires after an object entered a Sim's
// inventory.
type GameObjectAddedToSimInventory struct {
	Inventory host.Inventory
	Object    host.GameObject
}

// Topic implements event.Event.
func (GameObjectAddedToSimInventory) Topic() string { return "inventory.sim.added" }

// GameObjectPreRemovedFromSimInventory fires before an object leaves a
// Sim's inventory.
type GameObjectPreRemovedFromSimInventory struct {
	Inventory host.Inventory
	Object    host.GameObject
}

// Topic implements event.Event.
func (GameObjectPreRemovedFromSimInventory) Topic() string { return "inventory.sim.removing" }
