// Package event provides the kernel's Event Bus.
//
// Subscriptions are keyed by the type of the handler's single parameter.
// A handler whose parameter is a concrete event type receives exactly that
// type; a handler whose parameter is an interface receives every event
// implementing it, so
//
//	func(ev event.Event) bool
//
// observes every dispatch. Handlers may also subscribe to topic patterns
// with wildcards:
//
//	zone.*        - matches zone.teardown, zone.save (single segment)
//	interaction.** - matches every interaction topic
//
// # Registration
//
//	// Discovered by reflection; panics on a malformed handler.
//	bus.MustSubscribe(id, func(ev events.ZoneLateLoad) {
//	    log.Info("zone ready", "zone", ev.Zone.ID())
//	})
//
//	// Typed, checked at compile time.
//	event.On(bus, id, func(ev events.InteractionQueued) bool {
//	    return ev.Interaction.ID() != blockedID
//	})
//
// Accepted handler results are none, bool, error and (bool, error).
//
// # Dispatch
//
// Dispatch runs every matching handler synchronously, in registration
// order, each under fault isolation. The result is the logical AND of the
// handlers' boolean results; handlers without a boolean result and handlers
// that faulted count as true. Only events implementing Cancelable act on a
// false result; the bus logs a false returned for any other event and the
// dispatchers ignore it.
package event
