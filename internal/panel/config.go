package panel

import (
	"errors"
	"image/color"

	"github.com/rs/zerolog"

	"webvideo/internal/hooks"
	"webvideo/internal/host"
	"webvideo/internal/panelstate"
	"webvideo/internal/relay"
	"webvideo/internal/renderer"
)

// Shared holds the collaborators every panel of a process uses.
type Shared struct {
	Factory renderer.Factory
	Relays  *relay.Registry
	Video   host.VideoSubsystem
	Bridge  *panelstate.Bridge
	Hooks   *hooks.Registry
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
	Logger    zerolog.Logger

	// Draw parameters. A zero Tint means untinted.
	Tint         color.RGBA
	Fit          host.FitMode
	FlipVertical bool
	Flags        host.Flags
}

func (s Shared) validate() error {
	switch {
	case s.Factory == nil:
		return errors.New("panel: renderer factory is required")
	case s.Relays == nil:
		return errors.New("panel: relay registry is required")
	case s.Video == nil:
		return errors.New("panel: video subsystem is required")
	case s.Bridge == nil:
		return errors.New("panel: state bridge is required")
	case s.Hooks == nil:
		return errors.New("panel: hook registry is required")
	}
	return nil
}

func (s Shared) withDefaults() Shared {
	if s.Publisher == nil {
		s.Publisher = noopPublisher{}
	}
	if s.Tint == (color.RGBA{}) {
		s.Tint = host.White
	}
	return s
}

// Config describes one panel.
type Config struct {
	Shared
	Name string
	// URL is the formatted index URL navigated to once the renderer is ready.
	URL string
	// Sink receives messages posted by the page; may be nil.
	Sink renderer.StateSink
}

// ManagerConfig encapsulates the tunables of a Manager.
type ManagerConfig struct {
	Shared
	// URLFor formats the index URL of a panel.
	URLFor func(name string) string
	// Sink receives page messages from every panel; may be nil.
	Sink func(panel string, msg []byte)
}
