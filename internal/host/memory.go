package host

import (
	"fmt"
	"sync"
)

// MemoryBackend is an in-memory SettingsBackend. It is the backend used by
// the CLI and by tests; a platform adapter replaces it in production.
type MemoryBackend struct {
	mu       sync.RWMutex
	ready    bool
	entries  map[string]any
	defs     map[string]any
	rejected map[string]error
}

// NewMemoryBackend creates a ready in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		ready:   true,
		entries: make(map[string]any),
		defs:    make(map[string]any),
	}
}

// SetReady toggles backend readiness.
func (b *MemoryBackend) SetReady(ready bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = ready
}

// Ready reports whether the backend accepts registrations.
func (b *MemoryBackend) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready
}

// Reject makes future registrations of namespace/key fail with err.
// Used by tests to simulate platform-side registration errors.
func (b *MemoryBackend) Reject(namespace, key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rejected == nil {
		b.rejected = make(map[string]error)
	}
	b.rejected[storeKey(namespace, key)] = err
}

// Register stores a setting definition.
func (b *MemoryBackend) Register(namespace, key string, config any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return fmt.Errorf("settings store not ready")
	}
	sk := storeKey(namespace, key)
	if err, ok := b.rejected[sk]; ok {
		return err
	}
	b.defs[sk] = config
	return nil
}

// Registered reports whether namespace/key has been registered.
func (b *MemoryBackend) Registered(namespace, key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.defs[storeKey(namespace, key)]
	return ok
}

// Definition returns the stored definition for namespace/key.
func (b *MemoryBackend) Definition(namespace, key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	def, ok := b.defs[storeKey(namespace, key)]
	return def, ok
}

// Get returns the stored value for namespace/key.
func (b *MemoryBackend) Get(namespace, key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.entries[storeKey(namespace, key)]
	return v, ok
}

// Set updates the stored value for namespace/key.
func (b *MemoryBackend) Set(namespace, key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[storeKey(namespace, key)] = value
	return nil
}

func storeKey(namespace, key string) string {
	return namespace + "." + key
}

// MemoryBus is an in-memory EventBus that records broadcast calls and
// optionally forwards them to a sink.
type MemoryBus struct {
	mu    sync.Mutex
	calls []BusCall
	sink  func(event string, args ...any) error
	err   error
}

// BusCall is one recorded broadcast.
type BusCall struct {
	Event string
	Args  []any
}

// NewMemoryBus creates an in-memory event bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// SetSink installs a function invoked for every broadcast.
func (b *MemoryBus) SetSink(sink func(event string, args ...any) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = sink
}

// Fail makes every future Call return err.
func (b *MemoryBus) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Call records the broadcast and forwards it to the sink when set.
func (b *MemoryBus) Call(event string, args ...any) error {
	b.mu.Lock()
	b.calls = append(b.calls, BusCall{Event: event, Args: args})
	sink := b.sink
	err := b.err
	b.mu.Unlock()

	if err != nil {
		return err
	}
	if sink != nil {
		return sink(event, args...)
	}
	return nil
}

// Calls returns a copy of all recorded broadcasts.
func (b *MemoryBus) Calls() []BusCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BusCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// MapTranslator is a Translator over a fixed key->text table.
type MapTranslator map[string]string

// Localize resolves a translation key, returning the key itself when it is
// not in the table.
func (t MapTranslator) Localize(key string) (string, error) {
	if text, ok := t[key]; ok {
		return text, nil
	}
	return key, nil
}
