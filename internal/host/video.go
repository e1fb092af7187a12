// Package host models the host application's video layer: the subsystem
// panels draw through, the screen layout they occupy and the input
// dispatcher that feeds them. Player is an in-memory implementation that
// composites onto an RGBA canvas.
package host

import (
	"errors"
	"image/color"

	"webvideo/internal/frame"
)

// Handle identifies one playback session. The zero value is never valid.
type Handle string

// Flags tune a playback session.
type Flags uint8

const (
	FlagLoop Flags = 1 << iota
	FlagMuted
)

// FitMode selects how a frame is mapped onto its target rectangle.
type FitMode int

const (
	// FitAuto scales uniformly to fit inside the rectangle.
	FitAuto FitMode = iota
	FitStretch
	// FitFill scales uniformly to cover the rectangle, cropping overflow.
	FitFill
	// FitCenter draws at native size, centered and clipped.
	FitCenter
)

func (m FitMode) String() string {
	switch m {
	case FitAuto:
		return "auto"
	case FitStretch:
		return "stretch"
	case FitFill:
		return "fill"
	case FitCenter:
		return "center"
	default:
		return "unknown"
	}
}

// White is the neutral tint.
var White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

var (
	ErrUnknownSource = errors.New("host: unknown video source")
	ErrInvalidHandle = errors.New("host: invalid playback handle")
	ErrNoFrame       = errors.New("host: no frame to draw")
)

// VideoSubsystem is what panels need from the host's video layer.
type VideoSubsystem interface {
	StartPlayback(name string, flags Flags) (Handle, error)
	IsValid(h Handle) bool
	// Refresh pulls the newest frame for the session's source.
	Refresh(h Handle) error
	Draw(h Handle, rect frame.Rect, tint color.RGBA, fit FitMode, flipVertical bool) error
	ClosePlayback(h Handle)
}

// PullFunc returns the current frame of a source. ok is false once the
// source is gone.
type PullFunc func() (f *frame.Frame, ok bool)

// Resolver maps a video name to a pull function.
type Resolver func(name string) (PullFunc, bool)
