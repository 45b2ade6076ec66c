package event

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/dshills/simext/internal/identity"
)

// HandlerFunc is the normalized form of every subscribed handler.
type HandlerFunc func(ev Event) (bool, error)

// Subscription is one registered handler.
type Subscription struct {
	id        uuid.UUID
	owner     identity.Identity
	eventType reflect.Type
	pattern   Topic
	name      string
	handler   HandlerFunc
	active    atomic.Bool
}

func newSubscription(owner identity.Identity, t reflect.Type, name string, h HandlerFunc) *Subscription {
	s := &Subscription{
		id:        uuid.New(),
		owner:     owner,
		eventType: t,
		name:      name,
		handler:   h,
	}
	s.active.Store(true)
	return s
}

// ID returns the unique subscription ID.
func (s *Subscription) ID() uuid.UUID { return s.id }

// Owner returns the identity that registered the handler.
func (s *Subscription) Owner() identity.Identity { return s.owner }

// EventType returns the parameter type the handler was registered for.
func (s *Subscription) EventType() reflect.Type { return s.eventType }

// Pattern returns the topic pattern, empty for type subscriptions.
func (s *Subscription) Pattern() Topic { return s.pattern }

// Name returns the handler's qualified name, used in fault reports.
func (s *Subscription) Name() string { return s.name }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return s.active.Load() }

func (s *Subscription) matches(ev Event, t reflect.Type) bool {
	if !accepts(s.eventType, t) {
		return false
	}
	if s.pattern == "" {
		return true
	}
	return Topic(ev.Topic()).Matches(s.pattern)
}

var (
	boolType  = reflect.TypeFor[bool]()
	errorType = reflect.TypeFor[error]()
)

// handlerOf validates fn and returns its event type and normalized form.
func handlerOf(fn any) (reflect.Type, HandlerFunc, error) {
	if fn == nil {
		return nil, nil, ErrNilHandler
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, nil, fmt.Errorf("%w: %T is not a function", ErrInvalidHandler, fn)
	}
	if v.IsNil() {
		return nil, nil, ErrNilHandler
	}
	return handlerOfValue(v)
}

func handlerOfValue(v reflect.Value) (reflect.Type, HandlerFunc, error) {
	t := v.Type()
	if t.NumIn() != 1 || t.IsVariadic() {
		return nil, nil, fmt.Errorf("%w: %s must take exactly one event", ErrInvalidHandler, t)
	}
	in := t.In(0)
	if !in.Implements(eventType) {
		return nil, nil, fmt.Errorf("%w: %s does not implement event.Event", ErrInvalidHandler, in)
	}

	var result func(out []reflect.Value) (bool, error)
	switch {
	case t.NumOut() == 0:
		result = func([]reflect.Value) (bool, error) { return true, nil }
	case t.NumOut() == 1 && t.Out(0) == boolType:
		result = func(out []reflect.Value) (bool, error) { return out[0].Bool(), nil }
	case t.NumOut() == 1 && t.Out(0) == errorType:
		result = func(out []reflect.Value) (bool, error) { return true, asError(out[0]) }
	case t.NumOut() == 2 && t.Out(0) == boolType && t.Out(1) == errorType:
		result = func(out []reflect.Value) (bool, error) { return out[0].Bool(), asError(out[1]) }
	default:
		return nil, nil, fmt.Errorf("%w: %s has unsupported results", ErrInvalidHandler, t)
	}

	h := func(ev Event) (bool, error) {
		return result(v.Call([]reflect.Value{reflect.ValueOf(ev)}))
	}
	return in, h, nil
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return v.Type().String()
}
