// Package tile implements the per-tile fade behavior the settings control.
//
// A tile marked with the alsoFade flag fades whenever a token's bounding
// box sits underneath it. The geometry is a plain rectangle check; the
// interesting part is the flag plumbing and the fade events other module
// code listens on.
package tile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/flagstore"
	"github.com/ravenhollow/tilefade/internal/hook"
)

// Flag keys attached to tile documents under the module namespace.
const (
	// FlagAlsoFade marks a tile that fades when a token is underneath.
	FlagAlsoFade = "alsoFade"

	// FlagOcclusionMode stores a tile's occlusion mode override.
	FlagOcclusionMode = "occlusionMode"
)

// Fade events published on the module hook dispatcher.
const (
	// EventTileFaded fires when a tile starts fading.
	EventTileFaded = "tileFaded"

	// EventTileRestored fires when a tile stops fading.
	EventTileRestored = "tileRestored"
)

// OcclusionMode mirrors the platform's tile occlusion enum.
type OcclusionMode int

const (
	// OcclusionNone never hides the tile.
	OcclusionNone OcclusionMode = iota
	// OcclusionFade fades the tile over occluded tokens.
	OcclusionFade
	// OcclusionRoof treats the tile as a roof.
	OcclusionRoof
)

// String returns the mode name.
func (m OcclusionMode) String() string {
	switch m {
	case OcclusionNone:
		return "none"
	case OcclusionFade:
		return "fade"
	case OcclusionRoof:
		return "roof"
	default:
		return "unknown"
	}
}

// Rect is an axis-aligned bounding box in scene coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether two boxes intersect. Touching edges do not
// count as overlap, matching the platform's hit test.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Tile is the slice of a tile document the fade logic needs.
type Tile struct {
	ID     string
	Bounds Rect
}

// Token is the slice of a token document the fade logic needs.
type Token struct {
	ID     string
	Bounds Rect
}

// Under reports whether the token's bounding box sits underneath the tile.
func Under(tok Token, t Tile) bool {
	return tok.Bounds.Overlaps(t.Bounds)
}

// FadeEvent is the payload of EventTileFaded and EventTileRestored.
type FadeEvent struct {
	TileID  string
	TokenID string
}

// Manager applies the alsoFade flag to token movement. Faded state is kept
// per tile; events fire only on transitions.
type Manager struct {
	namespace  string
	flags      *flagstore.Store
	dispatcher *hook.Dispatcher
	faded      map[string]bool
	log        zerolog.Logger
}

// NewManager creates a fade manager over the module's flag namespace.
func NewManager(namespace string, flags *flagstore.Store, dispatcher *hook.Dispatcher, log zerolog.Logger) *Manager {
	return &Manager{
		namespace:  namespace,
		flags:      flags,
		dispatcher: dispatcher,
		faded:      make(map[string]bool),
		log:        log,
	}
}

// SetAlsoFade toggles the alsoFade flag on a tile document.
func (m *Manager) SetAlsoFade(tileID string, fade bool) error {
	if err := m.flags.SetFlag(tileID, m.namespace, FlagAlsoFade, fade); err != nil {
		return fmt.Errorf("toggling alsoFade: %w", err)
	}
	return nil
}

// AlsoFade reads the alsoFade flag for a tile document.
func (m *Manager) AlsoFade(tileID string) bool {
	return m.flags.GetBool(tileID, m.namespace, FlagAlsoFade)
}

// SetOcclusionMode stores an occlusion mode override on a tile document.
func (m *Manager) SetOcclusionMode(tileID string, mode OcclusionMode) error {
	return m.flags.SetFlag(tileID, m.namespace, FlagOcclusionMode, int(mode))
}

// Faded reports whether a tile is currently faded.
func (m *Manager) Faded(tileID string) bool {
	return m.faded[tileID]
}

// TokenMoved re-evaluates one token against the given tiles, updating fade
// state and emitting transition events. Tiles without the alsoFade flag are
// skipped.
func (m *Manager) TokenMoved(tok Token, tiles []Tile) {
	for _, t := range tiles {
		if !m.AlsoFade(t.ID) {
			continue
		}

		under := Under(tok, t)
		was := m.faded[t.ID]
		switch {
		case under && !was:
			m.faded[t.ID] = true
			m.log.Debug().Str("tile", t.ID).Str("token", tok.ID).Msg("tile fading")
			m.dispatcher.Trigger(EventTileFaded, FadeEvent{TileID: t.ID, TokenID: tok.ID})
		case !under && was:
			delete(m.faded, t.ID)
			m.log.Debug().Str("tile", t.ID).Str("token", tok.ID).Msg("tile restored")
			m.dispatcher.Trigger(EventTileRestored, FadeEvent{TileID: t.ID, TokenID: tok.ID})
		}
	}
}
