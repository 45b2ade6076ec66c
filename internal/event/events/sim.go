package events

import "github.com/dshills/simext/internal/host"

// SimInitialized fires after a SimInfo is constructed.
type SimInitialized struct {
	SimInfo host.SimInfo
}

// Topic implements event.Event.
func (SimInitialized) Topic() string { return "sim.initialized" }

// SimLoaded fires after a SimInfo loads its save data. It does not fire
// while a save is still loading.
type SimLoaded struct {
	SimInfo host.SimInfo
}

// Topic implements event.Event.
func (SimLoaded) Topic() string { return "sim.loaded" }

// SimSpawned fires when a Sim is added to the world.
type SimSpawned struct {
	Sim host.Sim
}

// Topic implements event.Event.
func (SimSpawned) Topic() string { return "sim.spawned" }

// SimChangedOccultType fires after a Sim's occult types changed.
type SimChangedOccultType struct {
	SimInfo  host.SimInfo
	Previous host.OccultType
	Current  host.OccultType
}

// Topic implements event.Event.
func (SimChangedOccultType) Topic() string { return "sim.occult.changed" }
