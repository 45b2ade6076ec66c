package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
)

var ext = identity.MustNew("Ext", "tester", identity.WithNamespace("ext"))

func newScheduler(t *testing.T) (*Scheduler, *event.Bus, string) {
	t.Helper()
	dir := t.TempDir()
	logs := logging.NewRegistry(logging.WithDirectory(dir))
	t.Cleanup(logs.Close)
	catcher := isolation.New(logs)
	bus := event.NewBus(catcher)
	return New(bus, catcher), bus, dir
}

func tick(bus *event.Bus, ticks ...uint64) {
	for _, n := range ticks {
		bus.Dispatch(events.ZoneUpdate{TicksSinceLastUpdate: n})
	}
}

func TestDriftFreeCadence(t *testing.T) {
	s, bus, _ := newScheduler(t)

	fired := 0
	tr := s.RunEvery(ext, 1000, func() { fired++ })

	tick(bus, 400, 400, 400, 400, 400)
	assert.Equal(t, 2, fired)
	assert.Zero(t, s.Accumulated(tr))
}

func TestFiresFloorOfElapsedOverThreshold(t *testing.T) {
	cases := []struct {
		name      string
		threshold uint64
		ticks     []uint64
	}{
		{"even", 250, []uint64{100, 100, 100, 100, 100}},
		{"large tick", 300, []uint64{1000}},
		{"mixed", 7, []uint64{3, 0, 11, 2, 30, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, bus, _ := newScheduler(t)
			fired := 0
			tr := s.RunEvery(ext, tc.threshold, func() { fired++ })
			tick(bus, tc.ticks...)

			var total uint64
			for _, n := range tc.ticks {
				total += n
			}
			assert.Equal(t, int(total/tc.threshold), fired)
			assert.Equal(t, total-uint64(fired)*tc.threshold, s.Accumulated(tr))
		})
	}
}

func TestPausedTicksAreSkipped(t *testing.T) {
	s, bus, _ := newScheduler(t)

	fired := 0
	tr := s.RunEvery(ext, 10, func() { fired++ })

	bus.Dispatch(events.ZoneUpdate{IsPaused: true, TicksSinceLastUpdate: 100})
	assert.Zero(t, fired)
	assert.Zero(t, s.Accumulated(tr))

	zero := 0
	s.RunEvery(ext, 0, func() { zero++ })
	bus.Dispatch(events.ZoneUpdate{IsPaused: true})
	assert.Zero(t, zero)
}

func TestZeroThresholdFiresEveryUpdate(t *testing.T) {
	s, bus, _ := newScheduler(t)

	every, once := 0, 0
	s.RunEvery(ext, 0, func() { every++ })
	s.RunOnce(ext, 0, func() { once++ })

	tick(bus, 0, 5, 0)
	assert.Equal(t, 3, every)
	assert.Equal(t, 1, once)
	assert.Len(t, s.Trackers(), 1)
}

func TestRunOnceFiresOnceAndIsRemoved(t *testing.T) {
	s, bus, _ := newScheduler(t)

	fired := 0
	s.RunOnce(ext, 100, func() { fired++ })

	tick(bus, 50, 500, 500)
	assert.Equal(t, 1, fired)
	assert.Empty(t, s.Trackers())
}

func TestInsertionOrder(t *testing.T) {
	s, bus, _ := newScheduler(t)

	var order []string
	s.RunEvery(ext, 10, func() { order = append(order, "a") })
	s.RunEvery(ext, 5, func() { order = append(order, "b") })
	s.RunEvery(ext, 10, func() { order = append(order, "c") })

	tick(bus, 10)
	assert.Equal(t, []string{"a", "b", "b", "c"}, order)
}

func TestTrackersAddedDuringTickStartNextTick(t *testing.T) {
	s, bus, _ := newScheduler(t)

	late := 0
	s.RunOnce(ext, 0, func() {
		s.RunEvery(ext, 0, func() { late++ })
	})

	tick(bus, 1)
	assert.Zero(t, late)
	tick(bus, 1)
	assert.Equal(t, 1, late)
}

func TestUnregister(t *testing.T) {
	s, bus, _ := newScheduler(t)
	other := identity.MustNew("Other", "tester")

	fired := 0
	a := s.RunEvery(ext, 1, func() { fired++ })
	s.RunEvery(ext, 1, func() { fired++ })
	s.RunEvery(other, 1, func() { fired++ })

	assert.True(t, s.Unregister(a))
	assert.False(t, s.Unregister(a))
	assert.Equal(t, 1, s.UnregisterAll(ext))

	tick(bus, 1)
	assert.Equal(t, 1, fired)
}

func TestCallbackCanUnregisterItself(t *testing.T) {
	s, bus, _ := newScheduler(t)

	fired := 0
	var tr *Tracker
	tr = s.RunEvery(ext, 10, func() {
		fired++
		s.Unregister(tr)
	})

	tick(bus, 100)
	assert.Equal(t, 1, fired)
}

func TestCallbackFaultIsIsolated(t *testing.T) {
	s, bus, dir := newScheduler(t)

	fired := 0
	s.RunEvery(ext, 10, func() { panic("tracker bug") })
	s.RunEvery(ext, 10, func() { fired++ })

	tick(bus, 20)
	assert.Equal(t, 2, fired)
	assert.Len(t, s.Trackers(), 2)

	s.catcher.Logs().Sync()
	data, err := os.ReadFile(filepath.Join(dir, "ext_Exceptions.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "tracker bug")
}

func TestClose(t *testing.T) {
	s, bus, _ := newScheduler(t)

	fired := 0
	s.RunEvery(ext, 0, func() { fired++ })
	require.NoError(t, s.Close())

	tick(bus, 1)
	assert.Zero(t, fired)
}
