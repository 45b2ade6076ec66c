package dispatcher

import (
	"math"
	"sync"
	"time"

	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/inject"
)

// ZoneUpdate fires ZoneUpdate on every zone tick with the real time elapsed
// since the previous tick, scaled by the game speed. The fractional
// millisecond left over is carried into the next tick.
type ZoneUpdate struct {
	base
	clock host.GameClock
	now   func() time.Time

	mu    sync.Mutex
	last  time.Time
	carry float64
}

func newZoneUpdate(b base, cfg Config) *ZoneUpdate {
	u := &ZoneUpdate{base: b, clock: cfg.Clock, now: cfg.Now}
	if u.clock == nil {
		u.clock = realTime{}
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

// Name implements Dispatcher.
func (u *ZoneUpdate) Name() string { return "zone-update" }

// Install implements Dispatcher. The real-time reference is reset on
// every zone teardown.
func (u *ZoneUpdate) Install(methods *inject.Registry) error {
	if err := u.install(methods, injection{host.ZoneUpdate, inject.After(u.onUpdate)}); err != nil {
		return err
	}
	event.On(u.bus, u.owner, func(events.ZoneTeardown) bool {
		u.Reset()
		return true
	})
	return nil
}

// Reset forgets the previous tick and the carried fraction.
func (u *ZoneUpdate) Reset() {
	u.mu.Lock()
	u.last = time.Time{}
	u.carry = 0
	u.mu.Unlock()
}

func (u *ZoneUpdate) onUpdate(recv any, _ ...any) {
	paused, ticks := u.advance()
	u.dispatch(events.ZoneUpdate{
		Zone:                 as[host.Zone](recv),
		IsPaused:             paused,
		TicksSinceLastUpdate: ticks,
	})
}

func (u *ZoneUpdate) advance() (paused bool, ticks uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	if u.clock.IsPaused() {
		u.last = now
		return true, 0
	}
	if u.last.IsZero() {
		u.last = now
	}

	elapsed := float64(now.Sub(u.last)) / float64(time.Millisecond)
	u.last = now

	delta := elapsed*u.clock.SpeedMultiplier() + u.carry
	if delta < 0 {
		delta = 0
	}
	whole := math.Floor(delta)
	u.carry = delta - whole
	return false, uint64(whole)
}
