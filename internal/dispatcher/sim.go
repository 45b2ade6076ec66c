package dispatcher

import (
	"github.com/dshills/simext/internal/event/events"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/inject"
)

// Sim fires Sim lifecycle events.
type Sim struct {
	base
	state LoadState
}

// Name implements Dispatcher.
func (s *Sim) Name() string { return "sim" }

// Install implements Dispatcher.
func (s *Sim) Install(methods *inject.Registry) error {
	return s.install(methods,
		injection{host.SimInfoInit, inject.After(s.onInit)},
		injection{host.SimInfoLoad, inject.After(s.onLoad)},
		injection{host.SimAdd, inject.After(s.onAdd)},
		injection{host.SimInfoSetOccult, inject.Around(s.onSetOccult)},
	)
}

func (s *Sim) onInit(recv any, _ ...any) {
	if info, ok := recv.(host.SimInfo); ok {
		s.dispatch(events.SimInitialized{SimInfo: info})
	}
}

// onLoad holds SimLoaded back while a save is loading, so handlers do not
// see every Sim of the save before the game is usable.
func (s *Sim) onLoad(recv any, _ ...any) {
	if !s.state.GameLoaded() || s.state.GameLoading() {
		return
	}
	if info, ok := recv.(host.SimInfo); ok {
		s.dispatch(events.SimLoaded{SimInfo: info})
	}
}

func (s *Sim) onAdd(recv any, _ ...any) {
	if sim, ok := recv.(host.Sim); ok {
		s.dispatch(events.SimSpawned{Sim: sim})
	}
}

func (s *Sim) onSetOccult(original inject.Func, recv any, args ...any) any {
	info, ok := recv.(host.SimInfo)
	if !ok {
		return original(recv, args...)
	}
	previous := info.CurrentOccultTypes()
	result := original(recv, args...)
	if current := info.CurrentOccultTypes(); current != previous {
		s.dispatch(events.SimChangedOccultType{SimInfo: info, Previous: previous, Current: current})
	}
	return result
}
