// Package loader reads authored settings lists from TOML, YAML or JSON
// files.
//
// A missing file is not an error; it loads as an empty list so a module
// can ship without an override file. Malformed content surfaces as a
// ParseError naming the file.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
)

// FileSystem abstracts file access for testing.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// osFS reads from the real file system.
type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS returns the real file system.
func DefaultFS() FileSystem { return osFS{} }

// ParseError reports malformed settings content.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing settings %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// settingsFile is the wrapped on-disk form.
type settingsFile struct {
	Settings []descriptor.Descriptor `json:"settings" toml:"settings" yaml:"settings"`
}

// Loader reads settings lists from disk.
type Loader struct {
	fs FileSystem
}

// New creates a loader over the real file system.
func New() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads a settings list, selecting the format by file extension
// (.toml, .yaml/.yml, .json).
func (l *Loader) Load(path string) ([]descriptor.Descriptor, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return l.parseTOML(path, data)
	case ".yaml", ".yml":
		return l.parseYAML(path, data)
	case ".json":
		return l.parseJSON(path, data)
	default:
		return nil, fmt.Errorf("unsupported settings format: %s", path)
	}
}

// parseTOML decodes the wrapped [[settings]] form.
func (l *Loader) parseTOML(path string, data []byte) ([]descriptor.Descriptor, error) {
	var file settingsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return normalize(file.Settings), nil
}

// parseYAML accepts either a bare list or the wrapped form.
func (l *Loader) parseYAML(path string, data []byte) ([]descriptor.Descriptor, error) {
	var bare []descriptor.Descriptor
	if err := yaml.Unmarshal(data, &bare); err == nil {
		return normalize(bare), nil
	}

	var file settingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return normalize(file.Settings), nil
}

// parseJSON accepts either a bare list or the wrapped form.
func (l *Loader) parseJSON(path string, data []byte) ([]descriptor.Descriptor, error) {
	var bare []descriptor.Descriptor
	if err := json.Unmarshal(data, &bare); err == nil {
		return normalize(bare), nil
	}

	var file settingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return normalize(file.Settings), nil
}

// normalize coerces decoder-specific shapes in the free-form fields. YAML
// in particular may produce map[any]any in nested predicate groups.
func normalize(list []descriptor.Descriptor) []descriptor.Descriptor {
	for i := range list {
		list[i].ShowOnlyIfFlag = normalizeValue(list[i].ShowOnlyIfFlag)
		list[i].DontShowIfFlag = normalizeValue(list[i].DontShowIfFlag)
		if list[i].Config != nil {
			list[i].Config.Type = normalizeValue(list[i].Config.Type)
			list[i].Config.Default = normalizeValue(list[i].Config.Default)
		}
	}
	return list
}

// normalizeValue rewrites map[any]any trees into map[string]any trees.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
