package dispatcher

import (
	"go.uber.org/atomic"

	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/inject"
)

// LoadState reports where the game is in its load cycle.
type LoadState interface {
	GameLoading() bool
	GameLoaded() bool
}

// ZoneSpin fires zone lifecycle events and tracks the load state.
type ZoneSpin struct {
	base
	teardown Teardowner
	loading  atomic.Bool
	loaded   atomic.Bool
}

// Name implements Dispatcher.
func (z *ZoneSpin) Name() string { return "zone-spin" }

// GameLoading reports whether a zone load is in progress: from the start
// of the load until ZoneLateLoad handlers have run.
func (z *ZoneSpin) GameLoading() bool { return z.loading.Load() }

// GameLoaded reports whether a zone finished loading and was not torn
// down since.
func (z *ZoneSpin) GameLoaded() bool { return z.loaded.Load() }

// Install implements Dispatcher.
func (z *ZoneSpin) Install(methods *inject.Registry) error {
	return z.install(methods,
		injection{host.ZoneLoad, inject.Around(z.onLoad)},
		injection{host.ZoneSpin, inject.Around(z.onSpin)},
		injection{host.ZoneTeardown, inject.Around(z.onTeardown)},
		injection{host.ZoneSave, inject.Around(z.onSave)},
		injection{host.ZoneManagerStart, inject.After(z.onManagerStart)},
		injection{host.ZoneLoadingScreenFinished, inject.After(z.onLoadingScreenFinished)},
	)
}

func (z *ZoneSpin) onLoad(original inject.Func, recv any, args ...any) any {
	if !z.loading.Swap(true) {
		z.dispatch(events.ZoneEarlyLoad{Zone: as[host.Zone](recv)})
	}
	return original(recv, args...)
}

func (z *ZoneSpin) onSpin(original inject.Func, recv any, args ...any) any {
	result := original(recv, args...)
	z.dispatch(events.ZoneLateLoad{Zone: as[host.Zone](recv)})
	z.loaded.Store(true)
	z.loading.Store(false)
	return result
}

func (z *ZoneSpin) onTeardown(original inject.Func, recv any, args ...any) any {
	z.dispatch(events.ZoneTeardown{Zone: as[host.Zone](recv)})
	result := original(recv, args...)
	z.loaded.Store(false)
	z.loading.Store(false)
	if z.teardown != nil {
		if err := z.teardown.Teardown(); err != nil {
			z.catcher.Report(z.owner, "service teardown failed", err)
		}
	}
	return result
}

func (z *ZoneSpin) onSave(original inject.Func, recv any, args ...any) any {
	z.dispatch(events.ZoneSave{Zone: as[host.Zone](recv), SaveData: arg[any](args, 0)})
	return original(recv, args...)
}

func (z *ZoneSpin) onManagerStart(recv any, _ ...any) {
	z.dispatch(events.ZoneManagerStart{Manager: recv})
}

func (z *ZoneSpin) onLoadingScreenFinished(recv any, _ ...any) {
	z.dispatch(events.ZonePostLoad{Zone: as[host.Zone](recv)})
}
