package visibility

import "testing"

func testMapping() Mapping {
	return Mapping{
		"manifest": {Tree: map[string]any{
			"id":  "tilefade",
			"dev": false,
		}},
		"const": {Tree: map[string]any{
			"limits": map[string]any{"maxTiles": 64},
			"empty":  "",
		}},
		"game": {JSON: []byte(`{
			"modules": {"libWrapper": {"active": true}},
			"paused": false
		}`)},
		"config": {},
	}
}

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping(
		[]byte(`{"paused": true}`),
		[]byte(`{"isGM": true}`),
		nil,
		map[string]any{"dev": true},
		map[string]any{"maxTiles": 64},
	)

	for _, prefix := range []string{"game", "user", "world", "manifest", "const", "config"} {
		if _, ok := m[prefix]; !ok {
			t.Errorf("mapping is missing the %q context", prefix)
		}
	}

	tests := []struct {
		path string
		want bool
	}{
		{"game.paused", true},
		{"user.isGM", true},
		{"world.dark", false},
		{"manifest.dev", true},
		{"const.maxTiles", true},
	}
	for _, tt := range tests {
		if got := Evaluate(tt.path, nil, m); got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	// The config prefix binds to the module config per evaluation.
	if !Evaluate("config.enabled", map[string]any{"enabled": true}, m) {
		t.Error("config context must resolve against the supplied config")
	}
}

func TestEvaluateNil(t *testing.T) {
	if !Evaluate(nil, nil, testMapping()) {
		t.Error("nil expression must evaluate true")
	}
	if !Evaluate(nil, map[string]any{"x": false}, testMapping()) {
		t.Error("nil expression must evaluate true regardless of config")
	}
}

func TestEvaluatePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"true leaf", "manifest.id", true},
		{"false leaf", "manifest.dev", false},
		{"nested number", "const.limits.maxTiles", true},
		{"empty string leaf", "const.empty", false},
		{"missing leaf", "manifest.unknown", false},
		{"missing intermediate", "const.limits.deep.missing", false},
		{"unknown prefix", "scene.dark", false},
		{"json true leaf", "game.modules.libWrapper.active", true},
		{"json false leaf", "game.paused", false},
		{"json missing", "game.modules.other.active", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.path, nil, testMapping()); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestEvaluateConfigContext(t *testing.T) {
	cfg := map[string]any{"fadeOpacity": 0.5, "enabled": true, "off": false}

	if !Evaluate("config.enabled", cfg, testMapping()) {
		t.Error("config context must resolve against the module config")
	}
	if Evaluate("config.off", cfg, testMapping()) {
		t.Error("false config leaf must evaluate false")
	}
}

func TestEvaluateOrGroup(t *testing.T) {
	m := testMapping()
	p1, p2 := "manifest.dev", "manifest.id"

	want := Evaluate(p1, nil, m) || Evaluate(p2, nil, m)
	got := Evaluate(map[string]any{"or": []any{p1, p2}}, nil, m)
	if got != want {
		t.Errorf("or group = %v, want %v", got, want)
	}

	if Evaluate(map[string]any{"or": []any{"manifest.dev", "game.paused"}}, nil, m) {
		t.Error("or over all-false paths must be false")
	}
}

func TestEvaluateAndGroup(t *testing.T) {
	m := testMapping()
	p1, p2 := "manifest.id", "game.modules.libWrapper.active"

	want := Evaluate(p1, nil, m) && Evaluate(p2, nil, m)
	got := Evaluate(map[string]any{"and": []any{p1, p2}}, nil, m)
	if got != want {
		t.Errorf("and group = %v, want %v", got, want)
	}

	if Evaluate(map[string]any{"and": []any{p1, "manifest.dev"}}, nil, m) {
		t.Error("and group with a false path must be false")
	}
}

// Both groups present means both must pass; the or result does not win on
// its own.
func TestEvaluateCombinedGroups(t *testing.T) {
	m := testMapping()

	expr := map[string]any{
		"or":  []any{"manifest.id"},
		"and": []any{"manifest.dev"},
	}
	if Evaluate(expr, nil, m) {
		t.Error("passing or group must not override failing and group")
	}

	expr = map[string]any{
		"or":  []any{"manifest.dev", "manifest.id"},
		"and": []any{"game.modules.libWrapper.active"},
	}
	if !Evaluate(expr, nil, m) {
		t.Error("both groups passing must evaluate true")
	}
}

func TestEvaluateStringLists(t *testing.T) {
	// Lists decoded from typed config arrive as []string.
	expr := map[string]any{"or": []string{"manifest.dev", "manifest.id"}}
	if !Evaluate(expr, nil, testMapping()) {
		t.Error("string-typed path list must be accepted")
	}
}

func TestEvaluateBadShapes(t *testing.T) {
	m := testMapping()
	for _, expr := range []any{42, true, []any{"manifest.id"}, map[string]any{"xor": []any{"a"}}} {
		if Evaluate(expr, nil, m) {
			t.Errorf("expression %v must evaluate false", expr)
		}
	}
}

func TestEvaluateRewrite(t *testing.T) {
	m := Mapping{
		"mod": {
			Tree:    map[string]any{"flags": map[string]any{"dev": true}},
			Rewrite: func(path string) string { return "flags." + path },
		},
	}
	if !Evaluate("mod.dev", nil, m) {
		t.Error("rewrite rule must redirect the path")
	}
}

func TestShouldShow(t *testing.T) {
	m := testMapping()

	tests := []struct {
		name string
		show any
		hide any
		want bool
	}{
		{"no predicates", nil, nil, true},
		{"show passes", "manifest.id", nil, true},
		{"show fails", "manifest.dev", nil, false},
		{"hide passes", nil, "manifest.id", false},
		{"hide fails", nil, "manifest.dev", true},
		{"show passes hide passes", "manifest.id", "game.modules.libWrapper.active", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldShow(tt.show, tt.hide, nil, m); got != tt.want {
				t.Errorf("ShouldShow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{0, false},
		{1, true},
		{0.0, false},
		{0.1, true},
		{map[string]any{}, true},
		{[]any{}, true},
	}

	for _, tt := range tests {
		if got := truthy(tt.value); got != tt.want {
			t.Errorf("truthy(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
