package hook

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestRegisterAndTrigger(t *testing.T) {
	d := New(zerolog.Nop())

	var got []any
	if _, err := d.Register("canvasReady", func(data any) { got = append(got, data) }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if clean := d.Trigger("canvasReady", "scene-1"); clean != 1 {
		t.Errorf("Trigger() = %d, want 1", clean)
	}
	if len(got) != 1 || got[0] != "scene-1" {
		t.Errorf("payloads = %v, want [scene-1]", got)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	d := New(zerolog.Nop())

	if _, err := d.Register("", func(any) {}); err == nil {
		t.Error("empty event name must be rejected")
	}
	if _, err := d.Register("canvasReady", nil); err == nil {
		t.Error("nil callback must be rejected")
	}
}

func TestTriggerOrder(t *testing.T) {
	d := New(zerolog.Nop())

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		if _, err := d.Register("tick", func(any) { order = append(order, i) }); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	d.Trigger("tick", nil)
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want registration order", order)
		}
	}
}

func TestTriggerUnknownEvent(t *testing.T) {
	d := New(zerolog.Nop())
	if clean := d.Trigger("nobodyListens", nil); clean != 0 {
		t.Errorf("Trigger() = %d, want 0", clean)
	}
}

func TestTriggerContainsPanics(t *testing.T) {
	d := New(zerolog.Nop())

	ran := false
	if _, err := d.Register("boom", func(any) { panic("callback exploded") }); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Register("boom", func(any) { ran = true }); err != nil {
		t.Fatal(err)
	}

	clean := d.Trigger("boom", nil)
	if clean != 1 {
		t.Errorf("Trigger() = %d, want 1 clean callback", clean)
	}
	if !ran {
		t.Error("panic must not stop later callbacks")
	}
}

func TestUnsubscribe(t *testing.T) {
	d := New(zerolog.Nop())

	calls := 0
	sub, err := d.Register("tick", func(any) { calls++ })
	if err != nil {
		t.Fatal(err)
	}
	if sub.Event() != "tick" || sub.ID() == "" {
		t.Errorf("subscription = %q/%q, want event and id set", sub.Event(), sub.ID())
	}

	d.Trigger("tick", nil)
	if !sub.Unsubscribe() {
		t.Error("first Unsubscribe must report removal")
	}
	if sub.Unsubscribe() {
		t.Error("second Unsubscribe must report nothing removed")
	}

	d.Trigger("tick", nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := d.Registered()["tick"]; n != 0 {
		t.Errorf("Registered()[tick] = %d, want entry gone", n)
	}
}

func TestUnsubscribeKeepsOthers(t *testing.T) {
	d := New(zerolog.Nop())

	var keep int
	sub, _ := d.Register("tick", func(any) {})
	d.Register("tick", func(any) { keep++ })

	sub.Unsubscribe()
	d.Trigger("tick", nil)
	if keep != 1 {
		t.Errorf("surviving callback ran %d times, want 1", keep)
	}
}

func TestRegistered(t *testing.T) {
	d := New(zerolog.Nop())
	d.Register(EventSettingRegistered, func(any) {})
	d.Register(EventSettingRegistered, func(any) {})
	d.Register(EventSettingsReady, func(any) {})

	counts := d.Registered()
	if counts[EventSettingRegistered] != 2 || counts[EventSettingsReady] != 1 {
		t.Errorf("Registered() = %v", counts)
	}
}

func TestTriggerFromCallback(t *testing.T) {
	d := New(zerolog.Nop())

	inner := 0
	d.Register("inner", func(any) { inner++ })
	d.Register("outer", func(any) { d.Trigger("inner", nil) })

	d.Trigger("outer", nil)
	if inner != 1 {
		t.Errorf("inner ran %d times, want reentrant trigger to work", inner)
	}
}
