// Package host abstracts the game platform runtime the module plugs into.
//
// The platform owns the persistent settings store, the global event
// broadcast used by change hooks, and the translation service. All three
// are modeled as small interfaces so the pipeline can be exercised against
// in-memory implementations and bound to a real platform adapter at the
// boundary.
package host

// SettingsBackend is the platform's persistent settings store.
//
// Register stores a setting definition under a namespace. The backend may
// reject a registration for any reason; the error is reported, never
// propagated past the registrar.
type SettingsBackend interface {
	// Register stores a setting definition under namespace/key.
	Register(namespace, key string, config any) error

	// Ready reports whether the store is currently accepting registrations.
	Ready() bool

	// Get returns the stored value for namespace/key.
	Get(namespace, key string) (any, bool)

	// Set updates the stored value for namespace/key.
	Set(namespace, key string, value any) error
}

// EventBus is the platform's global broadcast primitive. Change hooks wired
// by the parser publish through it.
type EventBus interface {
	// Call broadcasts an event to all platform listeners.
	Call(event string, args ...any) error
}

// Translator is the platform's localization service.
type Translator interface {
	// Localize resolves a translation key. When the key is unknown the
	// input is returned unchanged.
	Localize(key string) (string, error)
}
