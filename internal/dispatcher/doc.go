// Package dispatcher bridges host lifecycle methods to the event bus.
//
// Each dispatcher injects into a few host methods (see package host) with
// inject.Registry.InjectSafely and fires events from the wrappers. They are
// the only part of the kernel that calls into host objects.
//
// # Dispatchers
//
//   - ZoneSpin: zone load, spin, teardown, save, manager start and the end
//     of the loading screen. Tracks whether a game is loading or loaded.
//   - ZoneUpdate: every zone tick, with the elapsed game time.
//   - Sim: SimInfo construction, load, spawn and occult changes. SimLoaded
//     is held back until the game has finished loading.
//   - Interaction: queue, run, outcome and cancel. InteractionQueued and
//     InteractionPreRun can veto the host action.
//   - BuildBuy, Save and Inventory.
//
// # Usage
//
//	set := dispatcher.New(bus, catcher, dispatcher.DefaultConfig().WithTeardown(services))
//	if err := set.Install(methods); err != nil {
//	    return err
//	}
package dispatcher
