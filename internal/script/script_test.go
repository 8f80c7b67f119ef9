package script

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/hook"
)

func newTestEngine(t *testing.T) (*Engine, *hook.Dispatcher) {
	t.Helper()
	d := hook.New(zerolog.Nop())
	e := NewEngine(d, zerolog.Nop())
	t.Cleanup(e.Close)
	return e, d
}

func TestScriptReceivesEvents(t *testing.T) {
	e, d := newTestEngine(t)

	err := e.LoadString(`
		seen = nil
		hooks.register("settingRegistered", function(data)
			seen = data
		end)
	`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if e.Subscriptions() != 1 {
		t.Errorf("Subscriptions() = %d, want 1", e.Subscriptions())
	}

	d.Trigger(hook.EventSettingRegistered, "fadeEnabled")

	if err := e.LoadString(`assert(seen == "fadeEnabled", "seen = " .. tostring(seen))`); err != nil {
		t.Errorf("script did not see the payload: %v", err)
	}
}

func TestScriptTrigger(t *testing.T) {
	e, d := newTestEngine(t)

	var got any
	d.Register("custom", func(data any) { got = data })

	err := e.LoadString(`
		n = hooks.trigger("custom", {tile = "roof", faded = true})
	`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	payload, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("payload = %T, want map", got)
	}
	if payload["tile"] != "roof" || payload["faded"] != true {
		t.Errorf("payload = %v", payload)
	}

	if err := e.LoadString(`assert(n == 1, "trigger count = " .. tostring(n))`); err != nil {
		t.Errorf("trigger count not visible to the script: %v", err)
	}
}

func TestScriptTriggerReachesScriptCallback(t *testing.T) {
	e, _ := newTestEngine(t)

	// A script-triggered event must reach a script-registered callback
	// without deadlocking.
	err := e.LoadString(`
		pinged = false
		hooks.register("ping", function() pinged = true end)
		hooks.trigger("ping")
	`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if err := e.LoadString(`assert(pinged, "callback did not run")`); err != nil {
		t.Error(err)
	}
}

func TestScriptErrorContained(t *testing.T) {
	e, d := newTestEngine(t)

	err := e.LoadString(`
		hooks.register("boom", function() error("script exploded") end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	// The Lua error is contained inside the bridge callback; the
	// dispatcher never sees it.
	if clean := d.Trigger("boom", nil); clean != 1 {
		t.Errorf("Trigger() = %d, want the bridge callback to stay clean", clean)
	}
}

func TestScriptRegisterBadArgs(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.LoadString(`hooks.register("", function() end)`); err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if e.Subscriptions() != 0 {
		t.Error("empty event name must not subscribe")
	}
}

func TestScriptValueRoundTrip(t *testing.T) {
	e, d := newTestEngine(t)

	var got any
	d.Register("probe", func(data any) { got = data })

	err := e.LoadString(`
		hooks.trigger("probe", {list = {1, 2, 3}, label = "x", count = 2.5})
	`)
	if err != nil {
		t.Fatal(err)
	}

	payload := got.(map[string]any)
	list, ok := payload["list"].([]any)
	if !ok || len(list) != 3 || list[0] != int64(1) {
		t.Errorf("list = %v", payload["list"])
	}
	if payload["label"] != "x" || payload["count"] != 2.5 {
		t.Errorf("payload = %v", payload)
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	d := hook.New(zerolog.Nop())
	e := NewEngine(d, zerolog.Nop())

	if err := e.LoadString(`hooks.register("tick", function() end)`); err != nil {
		t.Fatal(err)
	}
	if d.Registered()["tick"] != 1 {
		t.Fatal("subscription must exist before close")
	}

	e.Close()
	if d.Registered()["tick"] != 0 {
		t.Error("Close must unsubscribe script callbacks")
	}
}

func TestLoadFileMissing(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.LoadFile("does-not-exist.lua"); err == nil {
		t.Error("missing script file must error")
	}
}
