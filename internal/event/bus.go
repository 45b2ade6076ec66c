package event

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/atomic"

	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/isolation"
	"github.com/dshills/simext/internal/logging"
)

// Stats holds bus counters.
type Stats struct {
	Dispatched uint64
	Handled    uint64
	Faults     uint64
	Vetoes     uint64
}

// Bus dispatches events to subscribed handlers synchronously.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	catcher *isolation.Catcher
	log     *logging.Channel

	dispatched atomic.Uint64
	handled    atomic.Uint64
	faults     atomic.Uint64
	vetoes     atomic.Uint64
}

// NewBus creates a bus whose handler faults are reported through catcher.
func NewBus(catcher *isolation.Catcher) *Bus {
	b := &Bus{catcher: catcher}
	if catcher != nil && catcher.Logs() != nil {
		b.log = catcher.Logs().Kernel()
	}
	return b
}

// Subscribe registers fn, a function of one event parameter. The parameter
// type selects the events it receives.
func (b *Bus) Subscribe(owner identity.Identity, fn any) (*Subscription, error) {
	t, h, err := handlerOf(fn)
	if err != nil {
		return nil, err
	}
	return b.add(newSubscription(owner, t, funcName(fn), h)), nil
}

// MustSubscribe is Subscribe but panics on a malformed handler.
func (b *Bus) MustSubscribe(owner identity.Identity, fn any) *Subscription {
	sub, err := b.Subscribe(owner, fn)
	if err != nil {
		panic(fmt.Sprintf("event: subscribe %s: %v", funcName(fn), err))
	}
	return sub
}

// SubscribeMethods registers every exported method of obj with a handler
// shape. Methods of other shapes are skipped.
func (b *Bus) SubscribeMethods(owner identity.Identity, obj any) ([]*Subscription, error) {
	if obj == nil {
		return nil, ErrNilHandler
	}
	v := reflect.ValueOf(obj)
	t := v.Type()

	var subs []*Subscription
	for i := range t.NumMethod() {
		m := t.Method(i)
		et, h, err := handlerOfValue(v.Method(i))
		if err != nil {
			continue
		}
		name := fmt.Sprintf("%s.%s", t, m.Name)
		subs = append(subs, b.add(newSubscription(owner, et, name, h)))
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHandlers, t)
	}
	return subs, nil
}

// SubscribeTopic registers fn for every event whose topic matches pattern.
func (b *Bus) SubscribeTopic(owner identity.Identity, pattern string, name string, fn func(Event) bool) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	p := Topic(pattern)
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if name == "" {
		name = funcName(fn)
	}
	sub := newSubscription(owner, eventType, name, func(ev Event) (bool, error) {
		return fn(ev), nil
	})
	sub.pattern = p
	return b.add(sub), nil
}

// On registers a typed handler for events of type E.
func On[E Event](b *Bus, owner identity.Identity, fn func(E) bool) *Subscription {
	if fn == nil {
		panic(ErrNilHandler)
	}
	sub := newSubscription(owner, reflect.TypeFor[E](), funcName(fn), func(ev Event) (bool, error) {
		return fn(ev.(E)), nil
	})
	return b.add(sub)
}

func (b *Bus) add(sub *Subscription) *Subscription {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.subs, sub)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	sub.active.Store(false)
	b.subs = slices.Delete(b.subs, i, i+1)
	return nil
}

// UnsubscribeAll removes every subscription of owner and returns how many
// were removed.
func (b *Bus) UnsubscribeAll(owner identity.Identity) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.subs)
	b.subs = slices.DeleteFunc(b.subs, func(s *Subscription) bool {
		if s.owner.Equal(owner) {
			s.active.Store(false)
			return true
		}
		return false
	})
	return n - len(b.subs)
}

// Subscriptions returns the subscriptions that would receive ev.
func (b *Bus) Subscriptions(ev Event) []*Subscription {
	if ev == nil {
		return nil
	}
	t := reflect.TypeOf(ev)

	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Subscription
	for _, s := range b.subs {
		if s.matches(ev, t) {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dispatch runs every handler matching ev in registration order and returns
// the AND of their results. Faulting handlers are reported and count as
// true. A bus without handlers for ev returns true.
func (b *Bus) Dispatch(ev Event) bool {
	if ev == nil {
		return true
	}
	b.dispatched.Inc()

	cancelable := IsCancelable(ev)
	result := true
	for _, sub := range b.Subscriptions(ev) {
		if !sub.IsActive() {
			continue
		}
		ok := true
		err := b.catcher.Catch(sub.owner, sub.name, func() error {
			r, err := sub.handler(ev)
			if err != nil {
				return err
			}
			ok = r
			return nil
		}, "event", ev.Topic())
		b.handled.Inc()
		if err != nil {
			b.faults.Inc()
			continue
		}
		if ok {
			continue
		}
		result = false
		if cancelable {
			b.vetoes.Inc()
		} else if b.log != nil {
			b.log.Debug("ignoring false result for non-cancelable event",
				"event", ev.Topic(), "handler", sub.name, "owner", sub.owner.Name)
		}
	}
	return result
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Dispatched: b.dispatched.Load(),
		Handled:    b.handled.Load(),
		Faults:     b.faults.Load(),
		Vetoes:     b.vetoes.Load(),
	}
}
