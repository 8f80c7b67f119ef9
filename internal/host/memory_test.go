package host

import (
	"errors"
	"testing"
)

func TestMemoryBackendRegister(t *testing.T) {
	b := NewMemoryBackend()

	if !b.Ready() {
		t.Fatal("fresh backend must be ready")
	}
	if err := b.Register("tilefade", "fadeEnabled", map[string]any{"name": "x"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !b.Registered("tilefade", "fadeEnabled") {
		t.Error("registration must be visible")
	}
	if b.Registered("other", "fadeEnabled") {
		t.Error("namespaces must not collide")
	}
}

func TestMemoryBackendNotReady(t *testing.T) {
	b := NewMemoryBackend()
	b.SetReady(false)

	if err := b.Register("tilefade", "fadeEnabled", nil); err == nil {
		t.Error("registering on a not-ready backend must error")
	}
}

func TestMemoryBackendReject(t *testing.T) {
	b := NewMemoryBackend()
	want := errors.New("simulated")
	b.Reject("tilefade", "broken", want)

	if err := b.Register("tilefade", "broken", nil); !errors.Is(err, want) {
		t.Errorf("Register() error = %v, want injected error", err)
	}
	if err := b.Register("tilefade", "fine", nil); err != nil {
		t.Errorf("other keys must still register, got %v", err)
	}
}

func TestMemoryBackendValues(t *testing.T) {
	b := NewMemoryBackend()

	if _, ok := b.Get("tilefade", "fadeOpacity"); ok {
		t.Error("unset value must miss")
	}
	if err := b.Set("tilefade", "fadeOpacity", 0.25); err != nil {
		t.Fatal(err)
	}
	v, ok := b.Get("tilefade", "fadeOpacity")
	if !ok || v != 0.25 {
		t.Errorf("Get() = %v, %v", v, ok)
	}
}

func TestMemoryBusRecordsCalls(t *testing.T) {
	b := NewMemoryBus()

	if err := b.Call("fadeChanged", true, "hero"); err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	calls := b.Calls()
	if len(calls) != 1 || calls[0].Event != "fadeChanged" {
		t.Fatalf("calls = %v", calls)
	}
	if len(calls[0].Args) != 2 || calls[0].Args[0] != true {
		t.Errorf("args = %v", calls[0].Args)
	}
}

func TestMemoryBusSinkAndFail(t *testing.T) {
	b := NewMemoryBus()

	var sunk string
	b.SetSink(func(event string, args ...any) error {
		sunk = event
		return nil
	})
	if err := b.Call("fadeChanged"); err != nil {
		t.Fatal(err)
	}
	if sunk != "fadeChanged" {
		t.Error("sink must receive broadcasts")
	}

	want := errors.New("bus offline")
	b.Fail(want)
	if err := b.Call("fadeChanged"); !errors.Is(err, want) {
		t.Errorf("Call() error = %v, want injected error", err)
	}
	if len(b.Calls()) != 2 {
		t.Error("failing calls must still be recorded")
	}
}

func TestMapTranslator(t *testing.T) {
	tr := MapTranslator{"TILEFADE.Name": "Tile Fade"}

	got, err := tr.Localize("TILEFADE.Name")
	if err != nil || got != "Tile Fade" {
		t.Errorf("Localize() = %q, %v", got, err)
	}
	got, err = tr.Localize("TILEFADE.Unknown")
	if err != nil || got != "TILEFADE.Unknown" {
		t.Errorf("unknown key = %q, %v, want echo", got, err)
	}
}
