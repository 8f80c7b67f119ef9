// Package localize rewrites the human-readable fields of setting
// descriptors through a translation lookup.
package localize

import (
	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/host"
	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
)

// Localizer translates descriptor text fields. Translation failures are
// contained: the original string is kept and the failure logged.
type Localizer struct {
	fallback host.Translator
	log      zerolog.Logger
}

// New creates a localizer. The fallback translator is used whenever a call
// does not supply its own handle; both may be nil, in which case
// descriptors pass through unchanged.
func New(fallback host.Translator, log zerolog.Logger) *Localizer {
	return &Localizer{fallback: fallback, log: log}
}

// LocalizeSetting returns a shallow-copied descriptor with Name, Hint and
// each Choices label passed through the translator. The input descriptor
// is never mutated. When no translator is available the input is returned
// as-is.
func (l *Localizer) LocalizeSetting(d descriptor.Descriptor, tr host.Translator) descriptor.Descriptor {
	if tr == nil {
		tr = l.fallback
	}
	if tr == nil || d.Config == nil {
		return d
	}

	out := d.Clone()
	out.Config.Name = l.translate(tr, d.Config.Name)
	out.Config.Hint = l.translate(tr, d.Config.Hint)
	for value, label := range out.Config.Choices {
		out.Config.Choices[value] = l.translate(tr, label)
	}
	return out
}

// LocalizeSettings maps LocalizeSetting over a list, preserving order.
func (l *Localizer) LocalizeSettings(list []descriptor.Descriptor, tr host.Translator) []descriptor.Descriptor {
	out := make([]descriptor.Descriptor, len(list))
	for i, d := range list {
		out[i] = l.LocalizeSetting(d, tr)
	}
	return out
}

// translate runs one string through the translator, keeping the original
// on any failure.
func (l *Localizer) translate(tr host.Translator, text string) string {
	if text == "" {
		return text
	}
	translated, err := tr.Localize(text)
	if err != nil {
		l.log.Debug().Err(err).Str("text", text).Msg("translation failed, keeping original")
		return text
	}
	return translated
}
