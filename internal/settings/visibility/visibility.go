// Package visibility decides whether a setting should be exposed at all.
//
// Predicates are authored either as a dotted path string
// ("manifest.dev", "game.modules.libWrapper.active") or as a group
// ({or: [paths]}, {and: [paths]}, or both). The first path segment selects
// a named context through a configurable mapping table; the rest of the
// path is walked through that context key by key.
//
// When a group carries both "or" and "and", the result is the logical AND
// of the two group results. That is not the usual short-circuit precedence,
// but it is the documented contract: both groups must pass.
package visibility

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Context is one named tree a predicate path can resolve into. Exactly one
// of Tree or JSON is normally set; JSON wins when both are.
type Context struct {
	// Tree is a generic key-value tree walked key by key.
	Tree map[string]any

	// JSON is a raw JSON document resolved with gjson. Host objects
	// (game, user, world) arrive as JSON snapshots in this form.
	JSON []byte

	// Rewrite optionally rewrites the remaining path before resolution.
	Rewrite func(path string) string
}

// Mapping binds path prefixes to named contexts.
type Mapping map[string]Context

// DefaultMapping returns the mapping every caller gets when none is
// supplied. The module config context is bound per evaluation via the cfg
// argument, so its entry is a placeholder here.
func DefaultMapping(game, user, world []byte, manifest, consts map[string]any) Mapping {
	return Mapping{
		"game":     {JSON: game},
		"user":     {JSON: user},
		"world":    {JSON: world},
		"manifest": {Tree: manifest},
		"const":    {Tree: consts},
		"config":   {},
	}
}

// Evaluate resolves a visibility predicate expression.
//
// A nil expression means "no condition" and is true. A string is a dotted
// path. A map with "or" and/or "and" lists combines path results; both
// groups must pass when both are present. Any other shape is false.
func Evaluate(expr any, cfg map[string]any, mapping Mapping) bool {
	switch e := expr.(type) {
	case nil:
		return true

	case string:
		return evalPath(e, cfg, mapping)

	case map[string]any:
		orPaths, hasOr := pathList(e["or"])
		andPaths, hasAnd := pathList(e["and"])
		if !hasOr && !hasAnd {
			return false
		}

		orResult := true
		if hasOr {
			orResult = false
			for _, p := range orPaths {
				if evalPath(p, cfg, mapping) {
					orResult = true
					break
				}
			}
		}

		andResult := true
		if hasAnd {
			for _, p := range andPaths {
				if !evalPath(p, cfg, mapping) {
					andResult = false
					break
				}
			}
		}

		return orResult && andResult

	default:
		return false
	}
}

// ShouldShow combines the two predicate slots of a descriptor.
func ShouldShow(showOnlyIf, dontShowIf any, cfg map[string]any, mapping Mapping) bool {
	if showOnlyIf != nil && !Evaluate(showOnlyIf, cfg, mapping) {
		return false
	}
	if dontShowIf != nil && Evaluate(dontShowIf, cfg, mapping) {
		return false
	}
	return true
}

// evalPath resolves one dotted path against the mapping table.
func evalPath(path string, cfg map[string]any, mapping Mapping) bool {
	prefix, rest, _ := strings.Cut(path, ".")
	if prefix == "" {
		return false
	}

	ctx, ok := mapping[prefix]
	if !ok {
		return false
	}
	if ctx.Rewrite != nil {
		rest = ctx.Rewrite(rest)
	}

	// The module's own configuration backs the "config" prefix unless the
	// mapping overrides it with a concrete context.
	if prefix == "config" && ctx.Tree == nil && ctx.JSON == nil {
		ctx.Tree = cfg
	}

	if rest == "" {
		return ctx.Tree != nil || ctx.JSON != nil
	}

	if ctx.JSON != nil {
		result := gjson.GetBytes(ctx.JSON, rest)
		if !result.Exists() {
			return false
		}
		return truthy(result.Value())
	}

	value, found := walk(ctx.Tree, rest)
	if !found {
		return false
	}
	return truthy(value)
}

// walk resolves a dotted path through a generic tree. Any missing
// intermediate key ends the walk.
func walk(tree map[string]any, path string) (any, bool) {
	current := any(tree)
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// truthy applies the platform's loose boolean coercion to a leaf value.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case map[string]any:
		return true
	case []any:
		return true
	default:
		return true
	}
}

// pathList coerces a group entry into its list of paths.
func pathList(value any) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []string:
		return v, true
	case []any:
		paths := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				paths = append(paths, s)
			}
		}
		return paths, true
	default:
		return nil, false
	}
}
