// Package settings wires the full registration pipeline: definition store,
// validation, visibility, parsing, localization, registration and hook
// emission.
//
// Data flows one direction, synchronously and in input order: authored
// list, validate and evaluate visibility, normalize, localize, register,
// emit events.
package settings

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/fieldtype"
	"github.com/ravenhollow/tilefade/internal/hook"
	"github.com/ravenhollow/tilefade/internal/host"
	"github.com/ravenhollow/tilefade/internal/manifest"
	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
	"github.com/ravenhollow/tilefade/internal/settings/localize"
	"github.com/ravenhollow/tilefade/internal/settings/parse"
	"github.com/ravenhollow/tilefade/internal/settings/register"
	"github.com/ravenhollow/tilefade/internal/settings/validate"
	"github.com/ravenhollow/tilefade/internal/settings/visibility"
)

// Pipeline owns one module's settings registration flow.
type Pipeline struct {
	store      *descriptor.Store
	parser     *parse.Parser
	localizer  *localize.Localizer
	registrar  *register.Registrar
	dispatcher *hook.Dispatcher
	log        zerolog.Logger
}

// Options collects the pipeline's collaborators and tuning knobs.
type Options struct {
	// Manifest identifies the module; its ID is the settings namespace.
	Manifest *manifest.Manifest

	// Backend is the platform settings store.
	Backend host.SettingsBackend

	// Bus is the platform broadcast used by wired change hooks.
	Bus host.EventBus

	// Translator localizes descriptor text. Optional.
	Translator host.Translator

	// Dispatcher receives settingRegistered/settingsReady events.
	// Optional; a private dispatcher is created when nil.
	Dispatcher *hook.Dispatcher

	// Mapping is the visibility context mapping. Optional; defaults to a
	// mapping exposing only the manifest and module config contexts.
	Mapping visibility.Mapping

	// ModuleConfig is the module's own configuration, backing the
	// "config" visibility context.
	ModuleConfig map[string]any

	// Types resolves non-primitive type references. Optional.
	Types *fieldtype.Registry

	// RequiredKeys overrides the required descriptor paths. Optional.
	RequiredKeys []string

	// AllowedProps overrides the allowed-properties table. Optional.
	AllowedProps map[string]validate.Kind

	// Logger receives pipeline diagnostics.
	Logger zerolog.Logger
}

// New creates a pipeline. The manifest and backend are required.
func New(opts Options) (*Pipeline, error) {
	if opts.Manifest == nil {
		return nil, fmt.Errorf("settings pipeline requires a manifest")
	}
	if err := opts.Manifest.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger

	mapping := opts.Mapping
	if mapping == nil {
		mapping = visibility.DefaultMapping(nil, nil, nil, opts.Manifest.Context(), nil)
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = hook.New(log)
	}

	parseOpts := []parse.Option{
		parse.WithMapping(mapping),
		parse.WithModuleConfig(opts.ModuleConfig),
	}
	if opts.Types != nil {
		parseOpts = append(parseOpts, parse.WithTypeRegistry(opts.Types))
	}
	if opts.RequiredKeys != nil {
		parseOpts = append(parseOpts, parse.WithRequiredKeys(opts.RequiredKeys))
	}
	if opts.AllowedProps != nil {
		parseOpts = append(parseOpts, parse.WithAllowedProps(opts.AllowedProps))
	}

	registrar, err := register.NewForManifest(opts.Backend, opts.Manifest, log,
		register.WithMapping(mapping),
		register.WithModuleConfig(opts.ModuleConfig),
	)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		store:      descriptor.NewStore(),
		parser:     parse.New(opts.Bus, log, parseOpts...),
		localizer:  localize.New(opts.Translator, log),
		registrar:  registrar,
		dispatcher: dispatcher,
		log:        log,
	}, nil
}

// Store exposes the definition store for authoring.
func (p *Pipeline) Store() *descriptor.Store {
	return p.store
}

// Dispatcher exposes the hook dispatcher for external listeners.
func (p *Pipeline) Dispatcher() *hook.Dispatcher {
	return p.dispatcher
}

// Namespace returns the settings namespace.
func (p *Pipeline) Namespace() string {
	return p.registrar.Namespace()
}

// Define adds descriptors to the definition store.
func (p *Pipeline) Define(list ...descriptor.Descriptor) error {
	return p.store.AddAll(list)
}

// Run executes one full registration pass over the stored definitions and
// returns the combined report. A settingRegistered event fires per
// registered item, then one settingsReady event carrying the report.
func (p *Pipeline) Run() (*descriptor.Report, error) {
	list := p.store.All()

	parsed, err := p.parser.Parse(list)
	if err != nil {
		return parsed, err
	}

	// Only descriptors that parsed continue to localization/registration.
	passed := make(map[string]bool, len(parsed.Succeeded))
	for _, key := range parsed.Succeeded {
		passed[key] = true
	}
	surviving := make([]descriptor.Descriptor, 0, len(parsed.Succeeded))
	for _, d := range list {
		if passed[d.Key] {
			surviving = append(surviving, d)
		}
	}

	surviving = p.localizer.LocalizeSettings(surviving, nil)
	registered := p.registrar.Register(surviving)

	report := p.combine(parsed, registered)

	for _, key := range registered.Succeeded {
		p.dispatcher.Trigger(hook.EventSettingRegistered, key)
	}
	p.dispatcher.Trigger(hook.EventSettingsReady, report)

	return report, nil
}

// combine folds the registration outcomes back into the parse report so
// the caller sees one pass over the original list.
func (p *Pipeline) combine(parsed, registered *descriptor.Report) *descriptor.Report {
	out := descriptor.NewReport()

	carryFailure := func(src *descriptor.Report, key string) {
		planned := false
		for _, k := range src.PlannedExcluded {
			if k == key {
				planned = true
				break
			}
		}
		if planned {
			out.AddPlanned(key, src.Messages[key])
		} else {
			out.AddUnplanned(key, src.Messages[key])
		}
	}

	for _, key := range parsed.Failed {
		carryFailure(parsed, key)
	}
	for _, key := range registered.Failed {
		carryFailure(registered, key)
	}
	for _, key := range registered.Succeeded {
		out.AddSuccess(key)
	}
	return out
}
