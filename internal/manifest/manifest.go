// Package manifest describes the module's identity to the platform.
//
// The manifest identifier doubles as the namespace under which all the
// module's settings and flags are grouped, and the manifest as a whole is
// exposed to visibility predicates as the "manifest" context.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Manifest identifies the module to the platform.
type Manifest struct {
	// ID is the unique module identifier and settings namespace.
	ID string `json:"id" toml:"id"`

	// Title is the human-readable module name.
	Title string `json:"title,omitempty" toml:"title,omitempty"`

	// Version is the module version string.
	Version string `json:"version,omitempty" toml:"version,omitempty"`

	// Author is the module author.
	Author string `json:"author,omitempty" toml:"author,omitempty"`

	// Dev enables development-only settings.
	Dev bool `json:"dev,omitempty" toml:"dev,omitempty"`

	// Flags carries free-form manifest metadata reachable from
	// visibility predicates.
	Flags map[string]any `json:"flags,omitempty" toml:"flags,omitempty"`
}

// Validate checks the manifest for required fields.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("manifest id is required")
	}
	return nil
}

// Context returns the manifest as a generic tree for visibility evaluation.
func (m *Manifest) Context() map[string]any {
	if m == nil {
		return nil
	}
	ctx := map[string]any{
		"id":      m.ID,
		"title":   m.Title,
		"version": m.Version,
		"author":  m.Author,
		"dev":     m.Dev,
	}
	for k, v := range m.Flags {
		if _, taken := ctx[k]; !taken {
			ctx[k] = v
		}
	}
	return ctx
}

// Load reads a manifest from a TOML or JSON file, selected by extension.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m := &Manifest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", path)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
