package event

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
)

var ext = identity.MustNew("Ext", "tester", identity.WithNamespace("ext"))

type queued struct{ id int }

func (queued) Topic() string { return "interaction.queued" }
func (queued) Cancelable()   {}

type ran struct{ id int }

func (ran) Topic() string { return "interaction.run" }

type teardown struct{}

func (teardown) Topic() string { return "zone.teardown" }

type interactionEvent interface {
	Event
	interaction() int
}

func (e queued) interaction() int { return e.id }
func (e ran) interaction() int    { return e.id }

func newBus(t *testing.T) (*Bus, string) {
	t.Helper()
	dir := t.TempDir()
	logs := logging.NewRegistry(logging.WithDirectory(dir))
	t.Cleanup(logs.Close)
	return NewBus(isolation.New(logs)), dir
}

func TestDispatchWithoutHandlers(t *testing.T) {
	bus, _ := newBus(t)
	assert.True(t, bus.Dispatch(queued{}))
	assert.True(t, bus.Dispatch(nil))
}

func TestHandlerVeto(t *testing.T) {
	bus, _ := newBus(t)

	var order []string
	bus.MustSubscribe(ext, func(queued) bool { order = append(order, "h1"); return true })
	bus.MustSubscribe(ext, func(queued) bool { order = append(order, "h2"); return false })
	bus.MustSubscribe(ext, func(queued) bool { order = append(order, "h3"); return true })

	assert.False(t, bus.Dispatch(queued{id: 1}))
	assert.Equal(t, []string{"h1", "h2", "h3"}, order)
	assert.Equal(t, uint64(1), bus.Stats().Vetoes)
}

func TestHandlerFaultIsolation(t *testing.T) {
	bus, dir := newBus(t)

	var list []string
	bus.MustSubscribe(ext, func(queued) error { panic(errors.New("ValueError: bad value")) })
	bus.MustSubscribe(ext, func(queued) { list = append(list, "ran") })

	assert.True(t, bus.Dispatch(queued{}))
	assert.Equal(t, []string{"ran"}, list)

	stats := bus.Stats()
	assert.Equal(t, uint64(1), stats.Faults)
	assert.Equal(t, uint64(2), stats.Handled)

	bus.catcher.Logs().Sync()
	data, err := os.ReadFile(filepath.Join(dir, "ext_Exceptions.txt"))
	require.NoError(t, err)
	logs := string(data)
	assert.Contains(t, logs, "ValueError")
	assert.Contains(t, logs, "TestHandlerFaultIsolation.func1")
	assert.Equal(t, 1, strings.Count(logs, "error occurred in"))
}

func TestResultIsAndOfSurvivingHandlers(t *testing.T) {
	bus, _ := newBus(t)

	bus.MustSubscribe(ext, func(queued) (bool, error) { return false, errors.New("faulted") })
	bus.MustSubscribe(ext, func(queued) bool { panic("also faulted") })
	bus.MustSubscribe(ext, func(queued) bool { return true })
	assert.True(t, bus.Dispatch(queued{}))

	bus.MustSubscribe(ext, func(queued) (bool, error) { return false, nil })
	assert.False(t, bus.Dispatch(queued{}))
}

func TestHandlersRunOncePerDispatch(t *testing.T) {
	bus, _ := newBus(t)

	const k = 6
	calls := make([]int, k)
	for i := range k {
		bus.MustSubscribe(ext, func(queued) {
			calls[i]++
			if i%2 == 0 {
				panic("half of the handlers fault")
			}
		})
	}

	bus.Dispatch(queued{})
	for i := range k {
		assert.Equal(t, 1, calls[i], "handler %d", i)
	}
}

func TestInterfaceHandlersReceiveImplementations(t *testing.T) {
	bus, _ := newBus(t)

	var all, interactions []string
	bus.MustSubscribe(ext, func(ev Event) { all = append(all, ev.Topic()) })
	bus.MustSubscribe(ext, func(ev interactionEvent) { interactions = append(interactions, ev.Topic()) })

	bus.Dispatch(queued{})
	bus.Dispatch(ran{})
	bus.Dispatch(teardown{})

	assert.Equal(t, []string{"interaction.queued", "interaction.run", "zone.teardown"}, all)
	assert.Equal(t, []string{"interaction.queued", "interaction.run"}, interactions)
}

func TestNonCancelableFalseIsReturnedButNotCounted(t *testing.T) {
	bus, _ := newBus(t)
	bus.MustSubscribe(ext, func(ran) bool { return false })

	assert.False(t, bus.Dispatch(ran{}))
	assert.Zero(t, bus.Stats().Vetoes)
}

func TestSubscribeRejectsMalformedHandlers(t *testing.T) {
	bus, _ := newBus(t)

	cases := []struct {
		name string
		fn   any
		err  error
	}{
		{"nil", nil, ErrNilHandler},
		{"nil func", (func(queued))(nil), ErrNilHandler},
		{"not a func", 42, ErrInvalidHandler},
		{"no params", func() {}, ErrInvalidHandler},
		{"two params", func(queued, ran) {}, ErrInvalidHandler},
		{"not an event", func(string) {}, ErrInvalidHandler},
		{"variadic", func(...queued) {}, ErrInvalidHandler},
		{"bad result", func(queued) int { return 0 }, ErrInvalidHandler},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bus.Subscribe(ext, tc.fn)
			require.ErrorIs(t, err, tc.err)
		})
	}
	assert.Zero(t, bus.Len())

	assert.Panics(t, func() { bus.MustSubscribe(ext, func() {}) })
}

func TestTypedOn(t *testing.T) {
	bus, _ := newBus(t)

	var seen []int
	On(bus, ext, func(ev queued) bool {
		seen = append(seen, ev.id)
		return ev.id != 2
	})

	assert.True(t, bus.Dispatch(queued{id: 1}))
	assert.False(t, bus.Dispatch(queued{id: 2}))
	assert.True(t, bus.Dispatch(ran{id: 3}))
	assert.Equal(t, []int{1, 2}, seen)
}

type watcher struct {
	queued, ran int
}

func (w *watcher) OnQueued(queued) bool { w.queued++; return true }
func (w *watcher) OnRan(ran)            { w.ran++ }
func (w *watcher) Reset()               { w.queued, w.ran = 0, 0 }

func TestSubscribeMethods(t *testing.T) {
	bus, _ := newBus(t)
	w := &watcher{}

	subs, err := bus.SubscribeMethods(ext, w)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	bus.Dispatch(queued{})
	bus.Dispatch(ran{})
	bus.Dispatch(ran{})
	assert.Equal(t, 1, w.queued)
	assert.Equal(t, 2, w.ran)

	_, err = bus.SubscribeMethods(ext, struct{}{})
	require.ErrorIs(t, err, ErrNoHandlers)
}

func TestSubscribeTopic(t *testing.T) {
	bus, _ := newBus(t)

	var got []string
	_, err := bus.SubscribeTopic(ext, "interaction.*", "", func(ev Event) bool {
		got = append(got, ev.Topic())
		return true
	})
	require.NoError(t, err)

	bus.Dispatch(queued{})
	bus.Dispatch(ran{})
	bus.Dispatch(teardown{})
	assert.Equal(t, []string{"interaction.queued", "interaction.run"}, got)

	_, err = bus.SubscribeTopic(ext, "zone..x", "", func(Event) bool { return true })
	require.ErrorIs(t, err, ErrInvalidTopic)
}

func TestUnsubscribe(t *testing.T) {
	bus, _ := newBus(t)
	other := identity.MustNew("Other", "tester")

	calls := 0
	sub := bus.MustSubscribe(ext, func(queued) { calls++ })
	bus.MustSubscribe(ext, func(ran) { calls++ })
	bus.MustSubscribe(other, func(ran) { calls++ })

	require.NoError(t, bus.Unsubscribe(sub))
	assert.False(t, sub.IsActive())
	require.ErrorIs(t, bus.Unsubscribe(sub), ErrSubscriptionNotFound)

	bus.Dispatch(queued{})
	assert.Zero(t, calls)

	assert.Equal(t, 1, bus.UnsubscribeAll(ext))
	bus.Dispatch(ran{})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, bus.Len())
}

func TestSubscriptionDuringDispatchStartsNextTime(t *testing.T) {
	bus, _ := newBus(t)

	late := 0
	bus.MustSubscribe(ext, func(queued) {
		bus.MustSubscribe(ext, func(queued) { late++ })
	})

	bus.Dispatch(queued{})
	assert.Zero(t, late)
	bus.Dispatch(queued{})
	assert.Equal(t, 1, late)
}
