package event

import "reflect"

// Event is implemented by every event dispatched on the bus.
type Event interface {
	// Topic returns the dotted topic of the event, e.g. "zone.load.late".
	Topic() string
}

// Cancelable is implemented by pre-events: a false result from any handler
// cancels the host action that is about to happen.
type Cancelable interface {
	Event
	Cancelable()
}

// IsCancelable reports whether ev is a pre-event.
func IsCancelable(ev Event) bool {
	_, ok := ev.(Cancelable)
	return ok
}

var eventType = reflect.TypeFor[Event]()

// accepts reports whether a subscription for sub receives events of type ev.
func accepts(sub, ev reflect.Type) bool {
	if sub == ev {
		return true
	}
	return sub.Kind() == reflect.Interface && ev.Implements(sub)
}
