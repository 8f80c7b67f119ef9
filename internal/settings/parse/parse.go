// Package parse normalizes validated, visible setting descriptors into the
// form the registrar hands to the platform.
//
// Each descriptor runs through validation, visibility evaluation, type
// normalization and change-hook wiring, in input order. A single bad item
// never aborts the pass; it is recorded in the report as either a planned
// exclusion (a visibility predicate hid it) or an unplanned failure
// (schema violation). Only an empty pass or a pass with zero successes is
// fatal.
package parse

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/fieldtype"
	"github.com/ravenhollow/tilefade/internal/host"
	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
	"github.com/ravenhollow/tilefade/internal/settings/validate"
	"github.com/ravenhollow/tilefade/internal/settings/visibility"
)

// Boundary errors. Per-item failures never surface as errors; they are
// recorded in the report.
var (
	// ErrNoSettings is returned when the input holds nothing to process.
	ErrNoSettings = fmt.Errorf("no valid settings found")

	// ErrAllInvalid is returned when every processed setting failed.
	ErrAllInvalid = fmt.Errorf("all settings are invalid")
)

// Parser runs descriptors through validation, visibility, normalization
// and hook wiring.
type Parser struct {
	validator    *validate.Validator
	requiredKeys []string
	mapping      visibility.Mapping
	moduleConfig map[string]any
	types        *fieldtype.Registry
	bus          host.EventBus
	log          zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithRequiredKeys overrides the required descriptor paths.
func WithRequiredKeys(keys []string) Option {
	return func(p *Parser) {
		if len(keys) > 0 {
			p.requiredKeys = keys
		}
	}
}

// WithAllowedProps overrides the allowed-properties table.
func WithAllowedProps(allowed map[string]validate.Kind) Option {
	return func(p *Parser) {
		p.validator = validate.New(allowed, p.log)
	}
}

// WithMapping overrides the visibility context mapping.
func WithMapping(mapping visibility.Mapping) Option {
	return func(p *Parser) {
		if mapping != nil {
			p.mapping = mapping
		}
	}
}

// WithModuleConfig binds the module's own configuration as the "config"
// visibility context.
func WithModuleConfig(cfg map[string]any) Option {
	return func(p *Parser) {
		p.moduleConfig = cfg
	}
}

// WithTypeRegistry installs the field/model registry used to resolve
// non-primitive type references.
func WithTypeRegistry(reg *fieldtype.Registry) Option {
	return func(p *Parser) {
		p.types = reg
	}
}

// New creates a parser that broadcasts wired change hooks on bus.
func New(bus host.EventBus, log zerolog.Logger, opts ...Option) *Parser {
	p := &Parser{
		requiredKeys: validate.DefaultRequiredKeys(),
		mapping:      visibility.Mapping{"config": {}},
		types:        fieldtype.NewRegistry(),
		bus:          bus,
		log:          log,
	}
	p.validator = validate.New(nil, log)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse processes a descriptor list in input order.
//
// It returns ErrNoSettings for an empty list and ErrAllInvalid when no item
// passed; in both cases the report is still returned for inspection. A
// partial pass logs a summary: a warning when unplanned failures exist, a
// debug line when every exclusion was planned.
func (p *Parser) Parse(list []descriptor.Descriptor) (*descriptor.Report, error) {
	report := descriptor.NewReport()

	for i := range list {
		p.parseOne(&list[i], report)
	}

	if report.Processed == 0 {
		return report, ErrNoSettings
	}
	if report.Successful == 0 {
		return report, ErrAllInvalid
	}
	if report.Successful < report.Processed {
		p.logPartial(report)
	}
	return report, nil
}

// ParseMap processes a keyed descriptor collection. Map iteration order is
// not stable in Go, so entries are processed in sorted key order; a key on
// the map entry wins over an empty descriptor key.
func (p *Parser) ParseMap(m map[string]descriptor.Descriptor) (*descriptor.Report, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]descriptor.Descriptor, 0, len(m))
	for _, key := range keys {
		d := m[key]
		if d.Key == "" {
			d.Key = key
		}
		list = append(list, d)
	}
	return p.Parse(list)
}

// parseOne runs the full per-item pipeline, mutating the descriptor in
// place on success.
func (p *Parser) parseOne(d *descriptor.Descriptor, report *descriptor.Report) {
	key := d.Key
	if key == "" {
		key = fmt.Sprintf("<unnamed #%d>", report.Processed)
	}

	if !p.validator.Check(d, p.requiredKeys) {
		report.AddUnplanned(key, "descriptor failed validation")
		return
	}

	if !visibility.ShouldShow(d.ShowOnlyIfFlag, d.DontShowIfFlag, p.moduleConfig, p.mapping) {
		report.AddPlanned(key, "hidden by visibility predicate")
		return
	}

	d.Config.Type = p.types.Normalize(d.Config.Type)

	if err := p.wireChangeHook(d); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("change hook wiring failed")
		report.AddUnplanned(key, err.Error())
		return
	}

	report.AddSuccess(key)
}

// wireChangeHook replaces the declarative OnChange form with a broadcast
// callback. Broadcast errors are swallowed at the callback boundary and
// logged, never propagated into the platform's change handling.
func (p *Parser) wireChangeHook(d *descriptor.Descriptor) error {
	oc := d.Config.OnChange
	if oc == nil {
		return nil
	}
	if !oc.SendHook {
		d.Config.OnChange = nil
		return nil
	}

	hookName := oc.HookName
	if hookName == "" {
		hookName = d.Key
	}
	if hookName == "" {
		return fmt.Errorf("change hook has no name and the descriptor has no key")
	}

	bus := p.bus
	log := p.log
	d.Config.OnChangeFunc = func(value any) {
		if bus == nil {
			return
		}
		if err := bus.Call(hookName, value); err != nil {
			log.Warn().Err(err).Str("hook", hookName).Msg("change hook broadcast failed")
		}
	}
	d.Config.OnChange = nil
	return nil
}

// logPartial summarizes a partially successful pass.
func (p *Parser) logPartial(report *descriptor.Report) {
	ev := p.log.Warn()
	if report.AllPlanned() {
		ev = p.log.Debug()
	}
	ev.
		Strs("succeeded", report.Succeeded).
		Strs("plannedExcluded", report.PlannedExcluded).
		Strs("unplannedFailed", report.UnplannedFailed).
		Int("processed", report.Processed).
		Msg("some settings did not parse")
}
