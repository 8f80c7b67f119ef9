// Package validate checks authored setting descriptors before they reach
// the parser.
//
// A descriptor passes when its key and config are present, every externally
// supplied required path resolves to a non-empty field, and every field set
// on the config appears in the allowed-properties table with a matching
// kind. Violations are logged one line each; Check never returns an error,
// only a verdict.
package validate

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
)

// Kind is the expected kind of a config property in the allowed-properties
// table.
type Kind uint8

const (
	// KindAny accepts any value.
	KindAny Kind = iota
	// KindString accepts strings.
	KindString
	// KindBool accepts booleans.
	KindBool
	// KindNumber accepts any numeric value.
	KindNumber
	// KindObject accepts keyed records.
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return "any"
	}
}

// matches reports whether a value is of the kind.
func (k Kind) matches(value any) bool {
	switch k {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindNumber:
		switch value.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

// DefaultRequiredKeys lists the dotted paths every descriptor must fill.
func DefaultRequiredKeys() []string {
	return []string{"key", "config.name", "config.type"}
}

// DefaultAllowedProps lists every config property the platform's settings
// store understands, with the kind each must have.
func DefaultAllowedProps() map[string]Kind {
	return map[string]Kind{
		"name":     KindString,
		"hint":     KindString,
		"scope":    KindString,
		"type":     KindAny,
		"default":  KindAny,
		"choices":  KindObject,
		"range":    KindObject,
		"onChange": KindObject,
	}
}

// Validator checks descriptors against a required-keys list and an
// allowed-properties table.
type Validator struct {
	allowed map[string]Kind
	log     zerolog.Logger
}

// New creates a validator. A nil allowed table falls back to the default.
func New(allowed map[string]Kind, log zerolog.Logger) *Validator {
	if allowed == nil {
		allowed = DefaultAllowedProps()
	}
	return &Validator{allowed: allowed, log: log}
}

// Check reports whether the descriptor satisfies every rule. Each violated
// rule logs one diagnostic line; all rules are evaluated so the log names
// every problem at once.
func (v *Validator) Check(d *descriptor.Descriptor, requiredKeys []string) bool {
	if d == nil {
		v.log.Warn().Msg("setting descriptor is nil")
		return false
	}

	ok := true
	if strings.TrimSpace(d.Key) == "" {
		v.log.Warn().Msg("setting descriptor has no key")
		ok = false
	}
	if d.Config == nil {
		v.log.Warn().Str("key", d.Key).Msg("setting descriptor has no config")
		return false
	}

	view := configView(d.Config)

	for _, path := range requiredKeys {
		if !hasRequired(d, view, path) {
			v.log.Warn().
				Str("key", d.Key).
				Str("field", path).
				Msg("setting is missing a required field")
			ok = false
		}
	}

	for field, value := range view {
		kind, allowed := v.allowed[field]
		if !allowed {
			v.log.Warn().
				Str("key", d.Key).
				Str("field", field).
				Msg("setting config has an unknown field")
			ok = false
			continue
		}
		if !kind.matches(value) {
			v.log.Warn().
				Str("key", d.Key).
				Str("field", field).
				Str("expected", kind.String()).
				Msg("setting config field has the wrong type")
			ok = false
		}
	}

	return ok
}

// hasRequired resolves a dotted required path against the descriptor and
// reports whether it ends at a non-empty value.
func hasRequired(d *descriptor.Descriptor, view map[string]any, path string) bool {
	head, rest, nested := strings.Cut(path, ".")

	switch head {
	case "key":
		return !nested && strings.TrimSpace(d.Key) != ""
	case "config":
		if !nested {
			return d.Config != nil
		}
		value, ok := view[rest]
		if !ok {
			return false
		}
		return !isEmpty(value)
	default:
		return false
	}
}

// configView exposes the set fields of a config as a generic record, the
// shape the allowed-properties table is written against.
func configView(c *descriptor.Config) map[string]any {
	view := make(map[string]any)
	if c.Name != "" {
		view["name"] = c.Name
	}
	if c.Hint != "" {
		view["hint"] = c.Hint
	}
	if c.Scope != "" {
		view["scope"] = string(c.Scope)
	}
	if c.Type != nil {
		view["type"] = c.Type
	}
	if c.Default != nil {
		view["default"] = c.Default
	}
	if c.Choices != nil {
		choices := make(map[string]any, len(c.Choices))
		for k, label := range c.Choices {
			choices[k] = label
		}
		view["choices"] = choices
	}
	if c.Range != nil {
		view["range"] = map[string]any{
			"min":  c.Range.Min,
			"max":  c.Range.Max,
			"step": c.Range.Step,
		}
	}
	if c.OnChange != nil {
		view["onChange"] = map[string]any{
			"sendHook": c.OnChange.SendHook,
			"hookName": c.OnChange.HookName,
		}
	}
	return view
}

// isEmpty reports whether a required field value counts as missing.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
