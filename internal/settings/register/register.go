// Package register pushes parsed setting descriptors into the platform's
// persistent settings store under the module namespace.
//
// Per-item problems (a malformed record, a store that is not ready yet, a
// visibility predicate that hides the item, a store-side rejection) are
// reported inline and never abort the batch. Only a missing namespace is a
// construction-time error.
package register

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/host"
	"github.com/ravenhollow/tilefade/internal/manifest"
	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
	"github.com/ravenhollow/tilefade/internal/settings/visibility"
)

// Outcome is the result of registering a single setting.
type Outcome struct {
	// Success reports whether the setting reached the store.
	Success bool

	// Message explains a failure; empty on success.
	Message string

	// Planned marks failures caused by a visibility predicate.
	Planned bool
}

// Registrar registers descriptors into a settings backend.
type Registrar struct {
	backend      host.SettingsBackend
	namespace    string
	mapping      visibility.Mapping
	moduleConfig map[string]any
	log          zerolog.Logger
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithMapping sets the visibility context mapping so the registrar can
// suppress hidden settings independently of the parser.
func WithMapping(mapping visibility.Mapping) Option {
	return func(r *Registrar) {
		if mapping != nil {
			r.mapping = mapping
		}
	}
}

// WithModuleConfig binds the module's own configuration as the "config"
// visibility context.
func WithModuleConfig(cfg map[string]any) Option {
	return func(r *Registrar) {
		r.moduleConfig = cfg
	}
}

// New creates a registrar for an explicit namespace.
func New(backend host.SettingsBackend, namespace string, log zerolog.Logger, opts ...Option) (*Registrar, error) {
	if strings.TrimSpace(namespace) == "" {
		return nil, fmt.Errorf("settings namespace is required")
	}
	r := &Registrar{
		backend:   backend,
		namespace: namespace,
		mapping:   visibility.Mapping{"config": {}},
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewForManifest derives the namespace from the module manifest id.
func NewForManifest(backend host.SettingsBackend, m *manifest.Manifest, log zerolog.Logger, opts ...Option) (*Registrar, error) {
	if m == nil {
		return nil, fmt.Errorf("settings namespace is required")
	}
	return New(backend, m.ID, log, opts...)
}

// Namespace returns the namespace settings are registered under.
func (r *Registrar) Namespace() string {
	return r.namespace
}

// RegisterSetting registers a single descriptor. Failures are returned as
// outcomes, never as panics or errors; store-side rejections are captured
// with their underlying message.
func (r *Registrar) RegisterSetting(d *descriptor.Descriptor) Outcome {
	if d == nil || strings.TrimSpace(d.Key) == "" {
		return Outcome{Message: "setting has no key"}
	}
	if d.Config == nil {
		return Outcome{Message: fmt.Sprintf("setting %s has no config", d.Key)}
	}
	if r.backend == nil || !r.backend.Ready() {
		return Outcome{Message: fmt.Sprintf("setting %s: settings store not ready", d.Key)}
	}

	if !visibility.ShouldShow(d.ShowOnlyIfFlag, d.DontShowIfFlag, r.moduleConfig, r.mapping) {
		return Outcome{
			Planned: true,
			Message: fmt.Sprintf("setting %s is hidden by a visibility predicate", d.Key),
		}
	}

	if err := r.backend.Register(r.namespace, d.Key, d.Config); err != nil {
		return Outcome{Message: fmt.Sprintf("setting %s: %v", d.Key, err)}
	}
	return Outcome{Success: true}
}

// Register registers a descriptor list in input order and aggregates the
// outcomes. An empty list returns an empty report without error; partial
// success still counts as overall success.
func (r *Registrar) Register(list []descriptor.Descriptor) *descriptor.Report {
	report := descriptor.NewReport()

	for i := range list {
		d := &list[i]
		key := d.Key
		if key == "" {
			key = fmt.Sprintf("<unnamed #%d>", report.Processed)
		}

		outcome := r.RegisterSetting(d)
		switch {
		case outcome.Success:
			report.AddSuccess(key)
		case outcome.Planned:
			r.log.Debug().Str("key", key).Msg(outcome.Message)
			report.AddPlanned(key, outcome.Message)
		default:
			r.log.Warn().Str("key", key).Msg(outcome.Message)
			report.AddUnplanned(key, outcome.Message)
		}
	}

	return report
}
