// Package hosttest provides in-memory host objects and a fake host that
// defines every catalog method, for tests of the kernel.
package hosttest

import (
	"fmt"
	"slices"

	"github.com/dshills/simext/internal/host"
)

// Zone is a fake zone.
type Zone struct{ IDValue uint64 }

// ID implements host.Entity.
func (z *Zone) ID() uint64 { return z.IDValue }

// SimInfo is a fake Sim record.
type SimInfo struct {
	IDValue uint64
	Name    string
	Occult  host.OccultType
}

// ID implements host.Entity.
func (s *SimInfo) ID() uint64 { return s.IDValue }

// FullName implements host.SimInfo.
func (s *SimInfo) FullName() string { return s.Name }

// CurrentOccultTypes implements host.SimInfo.
func (s *SimInfo) CurrentOccultTypes() host.OccultType { return s.Occult }

// Sim is a fake instanced Sim.
type Sim struct{ Info *SimInfo }

// NewSim returns a Sim with a fresh SimInfo.
func NewSim(id uint64, name string) *Sim {
	return &Sim{Info: &SimInfo{IDValue: id, Name: name}}
}

// ID implements host.Entity.
func (s *Sim) ID() uint64 { return s.Info.IDValue }

// SimInfo implements host.Sim.
func (s *Sim) SimInfo() host.SimInfo { return s.Info }

// Interaction is a fake interaction. Steps are yielded when it runs.
type Interaction struct {
	IDValue   uint64
	NameValue string
	Actor     *Sim
	Steps     []any
	Outcome   any
	Cancelled bool
	Ran       bool
	// PlainFunc makes the run method return an unnamed generator func.
	PlainFunc bool
}

// ID implements host.Entity.
func (i *Interaction) ID() uint64 { return i.IDValue }

// Name implements host.Interaction.
func (i *Interaction) Name() string { return i.NameValue }

// Sim implements host.Interaction.
func (i *Interaction) Sim() host.Sim { return i.Actor }

// Queue is a fake interaction queue.
type Queue struct {
	Actor *Sim
	Items []host.Interaction
}

// Sim implements host.InteractionQueue.
func (q *Queue) Sim() host.Sim { return q.Actor }

// Object is a fake game object.
type Object struct{ IDValue uint64 }

// ID implements host.Entity.
func (o *Object) ID() uint64 { return o.IDValue }

// Inventory is a fake inventory.
type Inventory struct {
	OwnerValue host.Entity
	Items      []host.GameObject
}

// Owner implements host.Inventory.
func (inv *Inventory) Owner() host.Entity { return inv.OwnerValue }

// Contains reports whether obj is held.
func (inv *Inventory) Contains(obj host.GameObject) bool {
	return slices.Contains(inv.Items, obj)
}

// Clock is a fake game clock.
type Clock struct {
	Multiplier float64
	Paused     bool
}

// SpeedMultiplier implements host.GameClock.
func (c *Clock) SpeedMultiplier() float64 { return c.Multiplier }

// IsPaused implements host.GameClock.
func (c *Clock) IsPaused() bool { return c.Paused }

// Slot is a fake save slot.
type Slot struct {
	Slot uint64
	GUID uint64
}

// SlotID implements host.SaveSlot.
func (s *Slot) SlotID() uint64 { return s.Slot }

// SlotGUID implements host.SaveSlot.
func (s *Slot) SlotGUID() uint64 { return s.GUID }

// Container is a fake hidden container.
type Container struct {
	IDValue uint64
	NameVal string
	TextVal string
}

// ID implements host.Entity.
func (c *Container) ID() uint64 { return c.IDValue }

// Name implements host.Container.
func (c *Container) Name() string { return c.NameVal }

// Text implements host.Container.
func (c *Container) Text() string { return c.TextVal }

// SetText implements host.Container.
func (c *Container) SetText(text string) { c.TextVal = text }

// World is a fake world holding containers by name.
type World struct {
	containers map[string]*Container
	next       uint64
	// FailCreate makes CreateContainer fail.
	FailCreate bool
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{containers: make(map[string]*Container)}
}

// FindContainer implements host.World.
func (w *World) FindContainer(name string) (host.Container, bool) {
	c, ok := w.containers[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// CreateContainer implements host.World.
func (w *World) CreateContainer(name string) (host.Container, error) {
	if w.FailCreate {
		return nil, fmt.Errorf("hosttest: cannot create %q", name)
	}
	w.next++
	c := &Container{IDValue: w.next, NameVal: name}
	w.containers[name] = c
	return c, nil
}

// DestroyContainer implements host.World.
func (w *World) DestroyContainer(name string) error {
	if _, ok := w.containers[name]; !ok {
		return fmt.Errorf("hosttest: no container %q", name)
	}
	delete(w.containers, name)
	return nil
}

// Len returns the number of containers.
func (w *World) Len() int { return len(w.containers) }
