// Package script lets plugin authors react to setting events from Lua.
//
// A script receives a `hooks` module with two functions:
//
//	hooks.register(name, fn)  -- run fn(data) when the event fires
//	hooks.trigger(name, data) -- fire a custom event
//
// Script callbacks run on the pipeline's trigger path; a failing callback
// is logged and contained, matching the dispatcher's error policy.
package script

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/ravenhollow/tilefade/internal/hook"
)

// Engine hosts one Lua state bridged to the hook dispatcher.
type Engine struct {
	mu         sync.Mutex
	state      *lua.LState
	dispatcher *hook.Dispatcher
	subs       []*hook.Subscription
	log        zerolog.Logger
}

// NewEngine creates an engine bound to a dispatcher.
func NewEngine(dispatcher *hook.Dispatcher, log zerolog.Logger) *Engine {
	e := &Engine{
		state:      lua.NewState(),
		dispatcher: dispatcher,
		log:        log,
	}
	e.installHooksModule()
	return e
}

// Close releases the Lua state and unsubscribes every script callback.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sub := range e.subs {
		sub.Unsubscribe()
	}
	e.subs = nil
	e.state.Close()
}

// LoadFile runs a script file.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.DoFile(path); err != nil {
		return fmt.Errorf("loading hook script %s: %w", path, err)
	}
	return nil
}

// LoadString runs script source.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.DoString(src); err != nil {
		return fmt.Errorf("loading hook script: %w", err)
	}
	return nil
}

// Subscriptions returns the number of live script subscriptions.
func (e *Engine) Subscriptions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// installHooksModule binds the `hooks` table into the Lua globals.
func (e *Engine) installHooksModule() {
	L := e.state
	mod := L.NewTable()
	L.SetField(mod, "register", L.NewFunction(e.luaRegister))
	L.SetField(mod, "trigger", L.NewFunction(e.luaTrigger))
	L.SetGlobal("hooks", mod)
}

// luaRegister implements hooks.register(name, fn).
func (e *Engine) luaRegister(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)

	sub, err := e.dispatcher.Register(event, func(data any) {
		e.callScript(event, fn, data)
	})
	if err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	e.subs = append(e.subs, sub)
	L.Push(lua.LTrue)
	return 1
}

// luaTrigger implements hooks.trigger(name, data).
//
// Lua code only ever runs with the engine lock held, and triggered script
// callbacks re-enter callScript, so the lock is dropped around the
// dispatch to keep the path reentrant.
func (e *Engine) luaTrigger(L *lua.LState) int {
	event := L.CheckString(1)
	var data any
	if L.GetTop() >= 2 {
		data = toGoValue(L.Get(2))
	}

	e.mu.Unlock()
	count := e.dispatcher.Trigger(event, data)
	e.mu.Lock()

	L.Push(lua.LNumber(count))
	return 1
}

// callScript invokes a Lua callback with the event payload. The state is
// single-threaded; the engine lock serializes dispatcher callbacks with
// script loading.
func (e *Engine) callScript(event string, fn *lua.LFunction, data any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	L := e.state
	L.Push(fn)
	L.Push(toLuaValue(L, data))
	if err := L.PCall(1, 0, nil); err != nil {
		// Contained per the dispatcher error policy; the panic path in
		// the dispatcher never sees script failures.
		e.log.Warn().Err(err).Str("event", event).Msg("script hook failed")
	}
}

// toLuaValue converts a Go value to its Lua form.
func toLuaValue(L *lua.LState, value any) lua.LValue {
	switch v := value.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []string:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(lua.LString(item))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(toLuaValue(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for key, item := range v {
			L.SetField(tbl, key, toLuaValue(L, item))
		}
		return tbl
	case map[string]string:
		tbl := L.NewTable()
		for key, item := range v {
			L.SetField(tbl, key, lua.LString(item))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprintf("%v", v))
	}
}

// toGoValue converts a Lua value to its Go form. Tables with contiguous
// integer keys become slices, everything else becomes a string-keyed map.
func toGoValue(lv lua.LValue) any {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return tableToGo(v)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a Go map or slice.
func tableToGo(t *lua.LTable) any {
	maxN := t.MaxN()
	if maxN > 0 {
		out := make([]any, 0, maxN)
		for i := 1; i <= maxN; i++ {
			out = append(out, toGoValue(t.RawGetInt(i)))
		}
		return out
	}

	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = toGoValue(v)
	})
	return out
}
