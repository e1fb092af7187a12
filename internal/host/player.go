package host

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"webvideo/internal/frame"
)

type playback struct {
	name    string
	flags   Flags
	pull    PullFunc
	current *frame.Frame
}

// Player is the reference VideoSubsystem. File-backed sources are stills
// added with AddStill; other names resolve only through the synthetic
// resolver installed by SyntheticSourcePatch.
type Player struct {
	mu        sync.Mutex
	canvas    *image.RGBA
	stills    map[string]*frame.Frame
	sessions  map[Handle]*playback
	synthetic Resolver
	log       zerolog.Logger
}

var _ VideoSubsystem = (*Player)(nil)

func NewPlayer(screen frame.Size, logger zerolog.Logger) *Player {
	return &Player{
		canvas:   image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height)),
		stills:   make(map[string]*frame.Frame),
		sessions: make(map[Handle]*playback),
		log:      logger.With().Str("component", "player").Logger(),
	}
}

// AddStill registers a file-backed video that always shows f.
func (p *Player) AddStill(name string, f *frame.Frame) {
	p.mu.Lock()
	p.stills[name] = f
	p.mu.Unlock()
}

// SetSyntheticResolver installs r and returns the previous resolver.
func (p *Player) SetSyntheticResolver(r Resolver) Resolver {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.synthetic
	p.synthetic = r
	return prev
}

func (p *Player) resolve(name string) (PullFunc, bool) {
	if p.synthetic != nil {
		if pull, ok := p.synthetic(name); ok {
			return pull, true
		}
	}
	f, ok := p.stills[name]
	if !ok {
		return nil, false
	}
	return func() (*frame.Frame, bool) { return f, true }, true
}

func (p *Player) StartPlayback(name string, flags Flags) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pull, ok := p.resolve(name)
	if !ok {
		return "", fmt.Errorf("start %q: %w", name, ErrUnknownSource)
	}
	h := Handle(uuid.NewString())
	p.sessions[h] = &playback{name: name, flags: flags, pull: pull}
	p.log.Debug().Str("video", name).Str("handle", string(h)).Msg("playback started")
	return h, nil
}

func (p *Player) IsValid(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sessions[h]
	return ok
}

// Refresh pulls through the session's source. A source that has gone away
// invalidates the handle.
func (p *Player) Refresh(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[h]
	if !ok {
		return ErrInvalidHandle
	}
	f, ok := s.pull()
	if !ok {
		delete(p.sessions, h)
		p.log.Debug().Str("video", s.name).Msg("source vanished; handle invalidated")
		return ErrInvalidHandle
	}
	if f != nil {
		s.current = f
	}
	return nil
}

func (p *Player) Draw(h Handle, rect frame.Rect, tint color.RGBA, fit FitMode, flipVertical bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[h]
	if !ok {
		return ErrInvalidHandle
	}
	if s.current == nil {
		return ErrNoFrame
	}
	drawFrame(p.canvas, s.current, rect.Image(), tint, fit, flipVertical)
	return nil
}

func (p *Player) ClosePlayback(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[h]; ok {
		delete(p.sessions, h)
		p.log.Debug().Str("video", s.name).Str("handle", string(h)).Msg("playback closed")
	}
}

// InvalidateAll drops every session, as a host does on resource reload.
func (p *Player) InvalidateAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.sessions)
	p.sessions = make(map[Handle]*playback)
	return n
}

// Sessions returns the number of live playback sessions.
func (p *Player) Sessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// BeginFrame clears the canvas to bg.
func (p *Player) BeginFrame(bg color.RGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pix := p.canvas.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
}

// Snapshot returns a copy of the canvas.
func (p *Player) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := image.NewRGBA(p.canvas.Rect)
	copy(out.Pix, p.canvas.Pix)
	return out
}
