package plugin

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/simext/internal/data"
	"github.com/dshills/simext/internal/event"
	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/logging"
	plua "github.com/dshills/simext/internal/plugin/lua"
	"github.com/dshills/simext/internal/scheduler"
)

const (
	// ModuleName is the name scripts require the kernel API by.
	ModuleName = "simext"

	// ScriptChannel is the log channel script output goes to.
	ScriptChannel = "Script"

	// ScriptStoreName is the data store scripts read and write.
	ScriptStoreName = "script"
)

// Extension is a loaded script extension.
type Extension struct {
	manifest *identity.Manifest
	id       identity.Identity
	manager  *Manager
	state    *plua.State
	log      *logging.Channel
	store    *data.Store

	mu       sync.Mutex
	subs     map[string]*event.Subscription
	trackers map[string]*scheduler.Tracker
}

func newExtension(m *Manager, manifest *identity.Manifest) *Extension {
	id := manifest.Identity
	e := &Extension{
		manifest: manifest,
		id:       id,
		manager:  m,
		state:    plua.NewState(plua.WithExecutionTimeout(m.timeout)),
		subs:     make(map[string]*event.Subscription),
		trackers: make(map[string]*scheduler.Tracker),
	}
	if logs := m.catcher.Logs(); logs != nil {
		e.log = logs.Register(id, ScriptChannel)
	}
	if m.data != nil {
		e.store = m.data.Manager(id).Store(ScriptStoreName)
	}
	e.state.Sandbox().SetPrint(func(line string) {
		e.logAt(logging.InfoLevel, line)
	})
	e.installModule()
	return e
}

// Identity returns the extension's identity.
func (e *Extension) Identity() identity.Identity {
	return e.id
}

// Manifest returns the manifest the extension was loaded from.
func (e *Extension) Manifest() *identity.Manifest {
	return e.manifest
}

// Subscriptions returns the number of live event subscriptions.
func (e *Extension) Subscriptions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Trackers returns the number of live scheduler trackers.
func (e *Extension) Trackers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.trackers)
}

func (e *Extension) run() error {
	if err := e.state.DoFile(e.manifest.MainPath()); err != nil {
		return fmt.Errorf("running %s: %w", e.manifest.MainPath(), err)
	}
	return nil
}

func (e *Extension) close() {
	e.manager.bus.UnsubscribeAll(e.id)
	if e.manager.sched != nil {
		e.manager.sched.UnregisterAll(e.id)
	}
	e.mu.Lock()
	clear(e.subs)
	clear(e.trackers)
	e.mu.Unlock()
	_ = e.state.Close()
}

func (e *Extension) logAt(level logging.Level, msg string, kv ...any) {
	if e.log != nil {
		e.log.Log(level, msg, kv...)
	}
}

// installModule publishes the simext module into the extension's state.
func (e *Extension) installModule() {
	mod := e.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"on":     e.luaOn,
		"off":    e.luaOff,
		"every":  e.luaEvery,
		"once":   e.luaOnce,
		"cancel": e.luaCancel,
	})

	L := e.state.L
	mod.RawSetString("name", lua.LString(e.id.Name))
	mod.RawSetString("namespace", lua.LString(e.id.Namespace()))

	logMod := L.NewTable()
	for name, level := range map[string]logging.Level{
		"debug": logging.DebugLevel,
		"info":  logging.InfoLevel,
		"warn":  logging.WarnLevel,
		"error": logging.ErrorLevel,
	} {
		logMod.RawSetString(name, L.NewFunction(e.luaLog(level)))
	}
	mod.RawSetString("log", logMod)

	dataMod := L.NewTable()
	dataMod.RawSetString("get", L.NewFunction(e.luaDataGet))
	dataMod.RawSetString("set", L.NewFunction(e.luaDataSet))
	dataMod.RawSetString("remove", L.NewFunction(e.luaDataRemove))
	mod.RawSetString("data", dataMod)
}

// call runs fn under isolation and reports whether it vetoed.
func (e *Extension) call(name string, fn *lua.LFunction, ev event.Event) bool {
	allowed := true
	_ = e.manager.catcher.Catch(e.id, name, func() error {
		results, err := e.state.CallWith(fn, func(b *plua.Bridge) []lua.LValue {
			if ev == nil {
				return nil
			}
			payload := b.StructToTable(ev)
			payload.RawSetString("topic", lua.LString(ev.Topic()))
			return []lua.LValue{payload}
		})
		if err != nil {
			return err
		}
		if len(results) > 0 && results[0] == lua.LFalse {
			allowed = false
		}
		return nil
	})
	return allowed
}

// simext.on(pattern, fn [, name]) -> id
func (e *Extension) luaOn(L *lua.LState) int {
	pattern := L.CheckString(1)
	fn := L.CheckFunction(2)
	name := L.OptString(3, fmt.Sprintf("%s:on(%s)", e.id.Name, pattern))

	sub, err := e.manager.bus.SubscribeTopic(e.id, pattern, name, func(ev event.Event) bool {
		return e.call(name, fn, ev)
	})
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	id := sub.ID().String()
	e.mu.Lock()
	e.subs[id] = sub
	e.mu.Unlock()

	L.Push(lua.LString(id))
	return 1
}

// simext.off(id) -> bool
func (e *Extension) luaOff(L *lua.LState) int {
	id := L.CheckString(1)

	e.mu.Lock()
	sub, ok := e.subs[id]
	delete(e.subs, id)
	e.mu.Unlock()

	if ok {
		ok = e.manager.bus.Unsubscribe(sub) == nil
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Extension) luaEvery(L *lua.LState) int {
	return e.schedule(L, false)
}

func (e *Extension) luaOnce(L *lua.LState) int {
	return e.schedule(L, true)
}

// simext.every(ms, fn) / simext.once(ms, fn) -> id
func (e *Extension) schedule(L *lua.LState, oneShot bool) int {
	ms := L.CheckNumber(1)
	fn := L.CheckFunction(2)
	if ms < 0 {
		L.ArgError(1, "interval must not be negative")
		return 0
	}
	if e.manager.sched == nil {
		L.RaiseError("scheduler is not available")
		return 0
	}

	verb := "every"
	if oneShot {
		verb = "once"
	}
	name := fmt.Sprintf("%s:%s(%d)", e.id.Name, verb, uint64(ms))

	var key string
	callback := func() {
		if oneShot {
			e.mu.Lock()
			delete(e.trackers, key)
			e.mu.Unlock()
		}
		e.call(name, fn, nil)
	}

	var tr *scheduler.Tracker
	if oneShot {
		tr = e.manager.sched.RunOnce(e.id, uint64(ms), callback)
	} else {
		tr = e.manager.sched.RunEvery(e.id, uint64(ms), callback)
	}

	key = tr.ID().String()
	e.mu.Lock()
	e.trackers[key] = tr
	e.mu.Unlock()

	L.Push(lua.LString(key))
	return 1
}

// simext.cancel(id) -> bool
func (e *Extension) luaCancel(L *lua.LState) int {
	id := L.CheckString(1)

	e.mu.Lock()
	tr, ok := e.trackers[id]
	delete(e.trackers, id)
	e.mu.Unlock()

	if ok {
		ok = e.manager.sched.Unregister(tr)
	}
	L.Push(lua.LBool(ok))
	return 1
}

// simext.log.<level>(msg, key, value, ...)
func (e *Extension) luaLog(level logging.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.ToStringMeta(L.Get(1)).String()
		b := plua.NewBridge(L)
		kv := make([]any, 0, max(L.GetTop()-1, 0))
		for i := 2; i <= L.GetTop(); i++ {
			kv = append(kv, b.ToGoValue(L.Get(i)))
		}
		e.logAt(level, msg, kv...)
		return 0
	}
}

func (e *Extension) requireStore(L *lua.LState) bool {
	if e.store == nil {
		L.RaiseError("data store is not available")
		return false
	}
	return true
}

// simext.data.get(key, default [, entity]) -> value
func (e *Extension) luaDataGet(L *lua.LState) int {
	if !e.requireStore(L) {
		return 0
	}
	key := L.CheckString(1)
	def := L.Get(2)
	entity := uint64(L.OptInt64(3, 0))

	if !e.store.Has(entity, key) {
		L.Push(def)
		return 1
	}
	L.Push(plua.NewBridge(L).ToLuaValue(e.store.Get(entity, key, nil)))
	return 1
}

// simext.data.set(key, value [, entity])
func (e *Extension) luaDataSet(L *lua.LState) int {
	if !e.requireStore(L) {
		return 0
	}
	key := L.CheckString(1)
	value := plua.NewBridge(L).ToGoValue(L.Get(2))
	entity := uint64(L.OptInt64(3, 0))

	if value == nil {
		e.store.Remove(entity, key)
		return 0
	}
	e.store.Set(entity, key, value)
	return 0
}

// simext.data.remove(key [, entity])
func (e *Extension) luaDataRemove(L *lua.LState) int {
	if !e.requireStore(L) {
		return 0
	}
	key := L.CheckString(1)
	entity := uint64(L.OptInt64(2, 0))
	e.store.Remove(entity, key)
	return 0
}
