// Package fieldtype resolves declarative type tags to canonical setting
// types.
//
// Setting authors write types as strings ("boolean", "Number", "integer")
// or as references into the platform's field/model registry, optionally
// with an alias prefix ("datafield:StringField", "datamodel:TileOverride").
// Resolution is a lookup table built once at load time; strings that
// resolve to nothing are passed through untouched rather than rejected.
package fieldtype

import (
	"strings"
	"sync"
)

// Tag is a canonical primitive setting type.
type Tag uint8

const (
	// Boolean is a true/false setting.
	Boolean Tag = iota + 1
	// Number is a numeric setting (integers and floats share the tag).
	Number
	// String is a text setting.
	String
	// Object is a keyed-record setting.
	Object
	// Array is a list setting.
	Array
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Matches reports whether a runtime value is of the tagged type.
func (t Tag) Matches(value any) bool {
	switch t {
	case Boolean:
		_, ok := value.(bool)
		return ok
	case Number:
		switch value.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case String:
		_, ok := value.(string)
		return ok
	case Object:
		_, ok := value.(map[string]any)
		return ok
	case Array:
		switch value.(type) {
		case []any, []string, []int, []int64, []float64, []bool:
			return true
		}
		return false
	default:
		return false
	}
}

// primitive tags by lower-cased name. "integer" and "float" collapse into
// Number, mirroring how the platform treats all numerics.
var primitives = map[string]Tag{
	"boolean": Boolean,
	"bool":    Boolean,
	"integer": Number,
	"float":   Number,
	"number":  Number,
	"string":  String,
	"object":  Object,
	"array":   Array,
}

// alias prefixes accepted in front of registry references.
var aliasPrefixes = []string{"datafield:", "datamodel:"}

// Registry maps reference names to platform-provided field or model types.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewRegistry creates an empty field/model registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Add registers a field or model type under a name. Dotted names are
// allowed ("fields.StringField").
func (r *Registry) Add(name string, typ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = typ
}

// Lookup resolves a reference name, trying the exact name first and then
// the final path segment ("fields.StringField" falls back to
// "StringField").
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if typ, ok := r.entries[name]; ok {
		return typ, true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if typ, ok := r.entries[name[i+1:]]; ok {
			return typ, true
		}
	}
	return nil, false
}

// Normalize resolves a declarative type value to its canonical form.
//
// String values are matched case-insensitively against the primitive tags,
// then (after stripping any alias prefix) against the registry. Values
// that resolve to nothing are returned unchanged; non-string values pass
// through untouched.
func (r *Registry) Normalize(value any) any {
	name, ok := value.(string)
	if !ok {
		return value
	}

	if tag, ok := primitives[strings.ToLower(strings.TrimSpace(name))]; ok {
		return tag
	}

	ref := name
	for _, prefix := range aliasPrefixes {
		if strings.HasPrefix(strings.ToLower(ref), prefix) {
			ref = ref[len(prefix):]
			break
		}
	}
	if r != nil {
		if typ, ok := r.Lookup(ref); ok {
			return typ
		}
	}

	// Unresolved references are not an error; the platform may know the
	// name even when this registry does not.
	return value
}

// Normalize resolves a declarative type value without a registry.
func Normalize(value any) any {
	return (*Registry)(nil).Normalize(value)
}
