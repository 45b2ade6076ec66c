// Package scheduler runs callbacks at intervals of game time.
//
// The scheduler listens to ZoneUpdate and adds the game milliseconds of
// every unpaused tick to each tracker. A tracker fires each time its
// accumulated time reaches its threshold; the overshoot is kept so the
// cadence does not drift. A threshold of zero fires once per tick.
package scheduler

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
)

// Tracker is one scheduled callback.
type Tracker struct {
	id          uuid.UUID
	owner       identity.Identity
	name        string
	callback    func()
	threshold   uint64
	accumulated uint64
	oneShot     bool
	active      bool
}

// ID returns the tracker ID.
func (t *Tracker) ID() uuid.UUID { return t.id }

// Owner returns the identity that scheduled the callback.
func (t *Tracker) Owner() identity.Identity { return t.owner }

// Name returns the callback name used in fault reports.
func (t *Tracker) Name() string { return t.name }

// Threshold returns the interval in game milliseconds.
func (t *Tracker) Threshold() uint64 { return t.threshold }

// OneShot reports whether the tracker is removed after firing once.
func (t *Tracker) OneShot() bool { return t.oneShot }

// Scheduler holds trackers in insertion order.
type Scheduler struct {
	mu       sync.Mutex
	trackers []*Tracker

	catcher *isolation.Catcher
	bus     *event.Bus
	sub     *event.Subscription
}

// New creates a scheduler driven by ZoneUpdate events on bus.
func New(bus *event.Bus, catcher *isolation.Catcher) *Scheduler {
	s := &Scheduler{catcher: catcher, bus: bus}
	s.sub = event.On(bus, identity.Kernel, s.update)
	return s
}

// Close stops listening to ZoneUpdate.
func (s *Scheduler) Close() error {
	return s.bus.Unsubscribe(s.sub)
}

// RunEvery calls fn every ms game milliseconds.
func (s *Scheduler) RunEvery(owner identity.Identity, ms uint64, fn func()) *Tracker {
	return s.add(owner, ms, fn, false)
}

// RunOnce calls fn once, after ms game milliseconds.
func (s *Scheduler) RunOnce(owner identity.Identity, ms uint64, fn func()) *Tracker {
	return s.add(owner, ms, fn, true)
}

func (s *Scheduler) add(owner identity.Identity, ms uint64, fn func(), oneShot bool) *Tracker {
	if fn == nil {
		panic(fmt.Sprintf("scheduler: nil callback from %s", owner.Name))
	}
	t := &Tracker{
		id:        uuid.New(),
		owner:     owner,
		name:      funcName(fn),
		callback:  fn,
		threshold: ms,
		oneShot:   oneShot,
		active:    true,
	}
	s.mu.Lock()
	s.trackers = append(s.trackers, t)
	s.mu.Unlock()
	return t
}

// Unregister removes t. It reports whether t was scheduled.
func (s *Scheduler) Unregister(t *Tracker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(t)
}

func (s *Scheduler) removeLocked(t *Tracker) bool {
	i := slices.Index(s.trackers, t)
	if i < 0 {
		return false
	}
	t.active = false
	s.trackers = slices.Delete(s.trackers, i, i+1)
	return true
}

// UnregisterAll removes every tracker of owner and returns how many were
// removed.
func (s *Scheduler) UnregisterAll(owner identity.Identity) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.trackers)
	s.trackers = slices.DeleteFunc(s.trackers, func(t *Tracker) bool {
		if t.owner.Equal(owner) {
			t.active = false
			return true
		}
		return false
	})
	return n - len(s.trackers)
}

// Trackers returns the scheduled trackers in insertion order.
func (s *Scheduler) Trackers() []*Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.trackers)
}

// Accumulated returns the game milliseconds t has accumulated since it
// last fired.
func (s *Scheduler) Accumulated(t *Tracker) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.accumulated
}

// update advances the trackers scheduled before the tick began.
func (s *Scheduler) update(ev events.ZoneUpdate) bool {
	if ev.IsPaused {
		return true
	}
	for _, t := range s.Trackers() {
		s.advance(t, ev.TicksSinceLastUpdate)
	}
	return true
}

func (s *Scheduler) advance(t *Tracker, ticks uint64) {
	s.mu.Lock()
	if !t.active {
		s.mu.Unlock()
		return
	}
	t.accumulated += ticks
	s.mu.Unlock()

	if t.threshold == 0 {
		s.fire(t)
		return
	}

	for s.due(t) {
		s.fire(t)

		s.mu.Lock()
		t.accumulated = max(t.accumulated, t.threshold) - t.threshold
		s.mu.Unlock()
	}
}

func (s *Scheduler) due(t *Tracker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.active && t.accumulated >= t.threshold
}

func (s *Scheduler) fire(t *Tracker) {
	if t.oneShot {
		s.Unregister(t)
	}
	_ = s.catcher.Run(t.owner, t.name, t.callback, "tracker", t.id.String())
}

func funcName(fn func()) string {
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		return f.Name()
	}
	return "callback"
}
