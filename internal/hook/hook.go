// Package hook is the module's in-memory event dispatcher.
//
// The pipeline publishes a settingRegistered event per item and a
// settingsReady event per completed batch; external code may register
// arbitrary custom events. Callback failures are contained at the callback
// boundary and never abort a trigger pass.
package hook

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event names published by the settings pipeline.
const (
	// EventSettingRegistered fires once per successfully registered
	// setting. The payload is the setting key.
	EventSettingRegistered = "settingRegistered"

	// EventSettingsReady fires once per completed registration batch.
	// The payload is the batch report.
	EventSettingsReady = "settingsReady"
)

// Callback receives the event payload.
type Callback func(data any)

// Subscription identifies one registered callback.
type Subscription struct {
	id         string
	event      string
	dispatcher *Dispatcher
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Event returns the event name the subscription listens on.
func (s *Subscription) Event() string { return s.event }

// Unsubscribe removes the callback from the dispatcher.
func (s *Subscription) Unsubscribe() bool {
	if s == nil || s.dispatcher == nil {
		return false
	}
	return s.dispatcher.remove(s.event, s.id)
}

// entry pairs a callback with its subscription id, keeping registration
// order.
type entry struct {
	id string
	cb Callback
}

// Dispatcher maps event names to ordered callback lists.
type Dispatcher struct {
	mu     sync.RWMutex
	events map[string][]entry
	log    zerolog.Logger
}

// New creates an empty dispatcher.
func New(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		events: make(map[string][]entry),
		log:    log,
	}
}

// Register adds a callback for an event. Empty event names and nil
// callbacks are rejected.
func (d *Dispatcher) Register(event string, cb Callback) (*Subscription, error) {
	if event == "" {
		return nil, fmt.Errorf("hook event name is empty")
	}
	if cb == nil {
		return nil, fmt.Errorf("hook callback is nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sub := &Subscription{
		id:         uuid.NewString(),
		event:      event,
		dispatcher: d,
	}
	d.events[event] = append(d.events[event], entry{id: sub.id, cb: cb})
	return sub, nil
}

// Trigger invokes every callback registered for the event, in registration
// order. A panicking callback is recovered and logged; it does not stop
// later callbacks. The return value is the number of callbacks that ran
// cleanly.
func (d *Dispatcher) Trigger(event string, data any) int {
	d.mu.RLock()
	entries := make([]entry, len(d.events[event]))
	copy(entries, d.events[event])
	d.mu.RUnlock()

	clean := 0
	for _, e := range entries {
		if d.invoke(event, e, data) {
			clean++
		}
	}
	return clean
}

// invoke runs a single callback behind a recover boundary.
func (d *Dispatcher) invoke(event string, e entry, data any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			d.log.Warn().
				Str("event", event).
				Str("subscription", e.id).
				Any("panic", r).
				Msg("hook callback panicked")
		}
	}()
	e.cb(data)
	return true
}

// Registered returns the callback count per event name.
func (d *Dispatcher) Registered() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]int, len(d.events))
	for event, entries := range d.events {
		out[event] = len(entries)
	}
	return out
}

// remove deletes one subscription from an event list.
func (d *Dispatcher) remove(event, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.events[event]
	for i, e := range entries {
		if e.id == id {
			d.events[event] = append(entries[:i], entries[i+1:]...)
			if len(d.events[event]) == 0 {
				delete(d.events, event)
			}
			return true
		}
	}
	return false
}
