// Package descriptor defines the declarative unit of configuration and the
// store that holds the authored settings list.
//
// A Descriptor is authored once as static configuration, passed through
// validation and visibility evaluation per registration pass, and pushed
// into the platform's settings store. The only in-place mutation the
// pipeline performs is replacing the declarative OnChange form with a wired
// callback.
package descriptor

// Scope states where a setting value is persisted.
type Scope string

const (
	// ScopeWorld persists the value per game world.
	ScopeWorld Scope = "world"
	// ScopeClient persists the value per client machine.
	ScopeClient Scope = "client"
	// ScopeUser persists the value per user account.
	ScopeUser Scope = "user"
)

// Valid reports whether the scope is one of the platform scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeWorld, ScopeClient, ScopeUser:
		return true
	}
	return false
}

// OnChange is the declarative change-hook request on a setting. The parser
// replaces it with a wired callback.
type OnChange struct {
	// SendHook requests a broadcast on every value change.
	SendHook bool `json:"sendHook" toml:"sendHook" yaml:"sendHook"`

	// HookName overrides the broadcast event name. Empty means the
	// descriptor key is used.
	HookName string `json:"hookName,omitempty" toml:"hookName,omitempty" yaml:"hookName,omitempty"`
}

// Range bounds a numeric setting.
type Range struct {
	Min  float64 `json:"min" toml:"min" yaml:"min"`
	Max  float64 `json:"max" toml:"max" yaml:"max"`
	Step float64 `json:"step,omitempty" toml:"step,omitempty" yaml:"step,omitempty"`
}

// Config carries the presentation and behavior fields of one setting, in
// the shape the platform's settings store expects.
type Config struct {
	// Name is the setting's display name (or translation key).
	Name string `json:"name" toml:"name" yaml:"name"`

	// Hint is the descriptive help text (or translation key).
	Hint string `json:"hint,omitempty" toml:"hint,omitempty" yaml:"hint,omitempty"`

	// Scope states where the value is persisted.
	Scope Scope `json:"scope,omitempty" toml:"scope,omitempty" yaml:"scope,omitempty"`

	// Type is the declarative value type. The parser normalizes string
	// forms to a fieldtype.Tag or a registry type.
	Type any `json:"type,omitempty" toml:"type,omitempty" yaml:"type,omitempty"`

	// Default is the initial value.
	Default any `json:"default,omitempty" toml:"default,omitempty" yaml:"default,omitempty"`

	// Choices enumerates allowed values mapped to display labels.
	Choices map[string]string `json:"choices,omitempty" toml:"choices,omitempty" yaml:"choices,omitempty"`

	// Range bounds numeric settings.
	Range *Range `json:"range,omitempty" toml:"range,omitempty" yaml:"range,omitempty"`

	// OnChange is the declarative change-hook request. Cleared by the
	// parser once OnChangeFunc has been wired.
	OnChange *OnChange `json:"onChange,omitempty" toml:"onChange,omitempty" yaml:"onChange,omitempty"`

	// OnChangeFunc is the wired change callback. Set by the parser,
	// never authored.
	OnChangeFunc func(value any) `json:"-" toml:"-" yaml:"-"`
}

// Clone returns a copy of the config with maps duplicated.
func (c Config) Clone() Config {
	out := c
	if c.Choices != nil {
		out.Choices = make(map[string]string, len(c.Choices))
		for k, v := range c.Choices {
			out.Choices[k] = v
		}
	}
	if c.Range != nil {
		r := *c.Range
		out.Range = &r
	}
	if c.OnChange != nil {
		oc := *c.OnChange
		out.OnChange = &oc
	}
	return out
}

// Descriptor is one setting's declarative definition.
type Descriptor struct {
	// Key is the unique identifier within the module namespace.
	Key string `json:"key" toml:"key" yaml:"key"`

	// Config carries the setting definition.
	Config *Config `json:"config" toml:"config" yaml:"config"`

	// ShowOnlyIfFlag exposes the setting only when the predicate holds.
	// Either a dotted path string or an or/and group; see the visibility
	// package.
	ShowOnlyIfFlag any `json:"showOnlyIfFlag,omitempty" toml:"showOnlyIfFlag,omitempty" yaml:"showOnlyIfFlag,omitempty"`

	// DontShowIfFlag hides the setting when the predicate holds.
	DontShowIfFlag any `json:"dontShowIfFlag,omitempty" toml:"dontShowIfFlag,omitempty" yaml:"dontShowIfFlag,omitempty"`
}

// Clone returns a copy of the descriptor with its config duplicated.
func (d Descriptor) Clone() Descriptor {
	out := d
	if d.Config != nil {
		cfg := d.Config.Clone()
		out.Config = &cfg
	}
	return out
}

// HasVisibility reports whether the descriptor carries any visibility
// predicate.
func (d Descriptor) HasVisibility() bool {
	return d.ShowOnlyIfFlag != nil || d.DontShowIfFlag != nil
}
