package events

import "github.com/dshills/simext/internal/host"

// ZoneEvent is implemented by every event about a zone.
type ZoneEvent interface {
	Topic() string
	ZoneOf() host.Zone
}

// ZoneEarlyLoad fires when a zone begins loading.
type ZoneEarlyLoad struct {
	Zone host.Zone
}

// Topic implements event.Event.
func (ZoneEarlyLoad) Topic() string { return "zone.load.early" }

// ZoneOf implements ZoneEvent.
func (e ZoneEarlyLoad) ZoneOf() host.Zone { return e.Zone }

// ZoneLateLoad fires once the zone spin completes and the game is usable.
type ZoneLateLoad struct {
	Zone host.Zone
}

// Topic implements event.Event.
func (ZoneLateLoad) Topic() string { return "zone.load.late" }

// ZoneOf implements ZoneEvent.
func (e ZoneLateLoad) ZoneOf() host.Zone { return e.Zone }

// ZonePostLoad fires when the loading screen has finished.
type ZonePostLoad struct {
	Zone host.Zone
}

// Topic implements event.Event.
func (ZonePostLoad) Topic() string { return "zone.load.post" }

// ZoneOf implements ZoneEvent.
func (e ZonePostLoad) ZoneOf() host.Zone { return e.Zone }

// ZoneTeardown fires before the zone unloads.
type ZoneTeardown struct {
	Zone host.Zone
}

// Topic implements event.Event.
func (ZoneTeardown) Topic() string { return "zone.teardown" }

// ZoneOf implements ZoneEvent.
func (e ZoneTeardown) ZoneOf() host.Zone { return e.Zone }

// ZoneSave fires before the zone is serialized.
type ZoneSave struct {
	Zone     host.Zone
	SaveData any
}

// Topic implements event.Event.
func (ZoneSave) Topic() string { return "zone.save" }

// ZoneOf implements ZoneEvent.
func (e ZoneSave) ZoneOf() host.Zone { return e.Zone }

// ZoneManagerStart fires after the zone manager started.
type ZoneManagerStart struct {
	Manager any
}

// Topic implements event.Event.
func (ZoneManagerStart) Topic() string { return "zone.manager.start" }

// ZoneUpdate fires on every zone tick.
type ZoneUpdate struct {
	Zone     host.Zone
	IsPaused bool
	// TicksSinceLastUpdate is the scaled game time elapsed, in milliseconds.
	TicksSinceLastUpdate uint64
}

// Topic implements event.Event.
func (ZoneUpdate) Topic() string { return "zone.update" }

// ZoneOf implements ZoneEvent.
func (e ZoneUpdate) ZoneOf() host.Zone { return e.Zone }
