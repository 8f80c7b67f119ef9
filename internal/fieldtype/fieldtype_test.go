package fieldtype

import "testing"

func TestNormalizePrimitives(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"boolean", Boolean},
		{"BOOLEAN", Boolean},
		{"Bool", Boolean},
		{"integer", Number},
		{"Float", Number},
		{"number", Number},
		{"string", String},
		{"String", String},
		{"object", Object},
		{"array", Array},
		{" boolean ", Boolean},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePassthrough(t *testing.T) {
	// Non-strings and unresolved references pass through untouched.
	for _, v := range []any{Boolean, 42, nil, "fields.Unknown"} {
		if got := Normalize(v); got != v {
			t.Errorf("Normalize(%v) = %v, want passthrough", v, got)
		}
	}
}

type stringField struct{}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Add("StringField", stringField{})

	tests := []struct {
		in      string
		resolve bool
	}{
		{"StringField", true},
		{"fields.StringField", true},
		{"datafield:StringField", true},
		{"datamodel:StringField", true},
		{"datafield:fields.StringField", true},
		{"OtherField", false},
	}

	for _, tt := range tests {
		got := reg.Normalize(tt.in)
		if resolved := got == any(stringField{}); resolved != tt.resolve {
			t.Errorf("Normalize(%q) = %v, resolved=%v, want %v", tt.in, got, resolved, tt.resolve)
		}
	}
}

func TestTagMatches(t *testing.T) {
	tests := []struct {
		tag   Tag
		value any
		want  bool
	}{
		{Boolean, true, true},
		{Boolean, 1, false},
		{Number, 3, true},
		{Number, 3.5, true},
		{Number, "3", false},
		{String, "x", true},
		{Object, map[string]any{}, true},
		{Array, []any{1}, true},
		{Array, []string{"a"}, true},
		{Array, "not an array", false},
	}

	for _, tt := range tests {
		if got := tt.tag.Matches(tt.value); got != tt.want {
			t.Errorf("%v.Matches(%v) = %v, want %v", tt.tag, tt.value, got, tt.want)
		}
	}
}

func TestTagString(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{Boolean, "boolean"},
		{Number, "number"},
		{String, "string"},
		{Object, "object"},
		{Array, "array"},
		{Tag(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("Tag.String() = %q, want %q", got, tt.want)
		}
	}
}
