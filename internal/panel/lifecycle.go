package panel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/host"
	"webvideo/internal/panelstate"
	"webvideo/internal/relay"
	"webvideo/internal/renderer"
)

// Lifecycle owns the renderer, relay registration and playback handle of one
// panel and keeps them in lockstep with the panel's existence.
type Lifecycle struct {
	cfg Config
	log zerolog.Logger

	// Set from renderer goroutines, drained on the host tick.
	readyPending atomic.Bool
	loading      atomic.Bool
	lastMessage  atomic.Pointer[[]byte]

	mu       sync.Mutex
	state    State
	src      *renderer.FrameSource
	sub      *renderer.Subscription
	rly      *relay.Relay
	handle   host.Handle
	bounds   func() frame.Rect
	rect     frame.Rect
	visible  bool
	skipping string
	draws    uint64
	skipped  uint64
}

// New builds an uninitialized panel and makes sure the host patches are
// installed.
func New(cfg Config) (*Lifecycle, error) {
	if cfg.Name == "" {
		return nil, errors.New("panel: name is required")
	}
	if err := cfg.Shared.validate(); err != nil {
		return nil, err
	}
	cfg.Shared = cfg.Shared.withDefaults()
	if err := cfg.Hooks.Install(); err != nil {
		return nil, err
	}
	return &Lifecycle{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("component", "panel").Str("panel", cfg.Name).Logger(),
		state:   StateUninitialized,
		visible: true,
	}, nil
}

func (l *Lifecycle) Name() string { return l.cfg.Name }

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Busy reports whether the busy indicator should show: until the renderer is
// ready, and while it reports loading.
func (l *Lifecycle) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busyLocked()
}

func (l *Lifecycle) busyLocked() bool {
	switch l.state {
	case StateReady:
		return l.loading.Load()
	case StateRemoved:
		return false
	}
	return true
}

func (l *Lifecycle) setState(s State) {
	l.state = s
	transitionsTotal.WithLabelValues(string(s)).Inc()
	l.log.Debug().Str("state", string(s)).Msg("event=transition")
}

// OnSizeChanged is the host's size notification. The first call with a
// non-empty rectangle creates the renderer at that size, registers the relay
// and subscribes to renderer events; later calls only update bounds.
func (l *Lifecycle) OnSizeChanged(ctx context.Context, bounds func() frame.Rect) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateRemoved {
		return nil
	}
	if bounds != nil {
		l.bounds = bounds
	}
	if l.state != StateUninitialized || l.bounds == nil {
		return nil
	}
	rect := l.bounds()
	if rect.Size().Empty() {
		return nil
	}
	src, err := renderer.Create(ctx, l.cfg.Factory, l.cfg.Name, rect.Size(), renderer.StateSinkFunc(l.receive), l.cfg.Logger)
	if err != nil {
		l.log.Error().Err(err).Msg("event=create_failed")
		return err
	}
	l.src = src
	l.rect = rect
	l.setState(StateCreated)

	l.rly = relay.New(l.cfg.Name, src)
	l.rly.Register(l.cfg.Relays)
	l.sub = src.Subscribe(renderer.Handlers{
		Ready:               func() { l.readyPending.Store(true) },
		LoadingStateChanged: func(v bool) { l.loading.Store(v) },
	})
	l.setState(StateAwaitingReady)
	l.log.Info().Stringer("size", rect.Size()).Msg("event=create")
	l.cfg.Publisher.Publish(Event{Name: EventCreate, Panel: l.cfg.Name, Fields: map[string]any{"width": rect.Width, "height": rect.Height}})
	return nil
}

func (l *Lifecycle) receive(msg []byte) {
	cp := append([]byte(nil), msg...)
	l.lastMessage.Store(&cp)
	if l.cfg.Sink != nil {
		l.cfg.Sink.Receive(msg)
	}
}

// Tick runs one host frame: it applies a pending readiness and draws.
func (l *Lifecycle) Tick() {
	l.Update()
	l.Draw()
}

// Update applies transitions scheduled by renderer callbacks.
func (l *Lifecycle) Update() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateAwaitingReady || !l.readyPending.CompareAndSwap(true, false) {
		return
	}
	invariant(l.src != nil, l.cfg.Name, "ready without a frame source")
	l.setState(StateReady)
	l.log.Info().Msg("event=ready")
	l.cfg.Publisher.Publish(Event{Name: EventReady, Panel: l.cfg.Name})

	l.navigateLocked()
	if l.visible {
		l.cfg.Bridge.SetActive(l.activeLocked())
	}
	l.startPlaybackLocked()
}

func (l *Lifecycle) navigateLocked() {
	if err := l.src.Navigate(l.cfg.URL); err != nil {
		l.log.Warn().Err(err).Str("url", l.cfg.URL).Msg("event=navigate_failed")
		return
	}
	l.cfg.Publisher.Publish(Event{Name: EventNavigate, Panel: l.cfg.Name, Fields: map[string]any{"url": l.cfg.URL}})
}

func (l *Lifecycle) startPlaybackLocked() {
	h, err := l.cfg.Video.StartPlayback(relay.VideoName(l.cfg.Name), l.cfg.Flags)
	if err != nil {
		l.log.Warn().Err(err).Msg("event=playback_failed")
		l.handle = ""
		return
	}
	l.handle = h
	l.log.Debug().Str("handle", string(h)).Msg("event=playback_started")
}

func (l *Lifecycle) activeLocked() *panelstate.Active {
	return &panelstate.Active{
		Panel:  l.cfg.Name,
		Target: l.src,
		Size:   l.src.Size(),
		Bounds: l.currentRect,
	}
}

func (l *Lifecycle) currentRect() frame.Rect {
	l.mu.Lock()
	b := l.bounds
	l.mu.Unlock()
	if b == nil {
		return frame.Rect{}
	}
	return b()
}

// Draw refreshes and draws the newest frame into the panel's current
// rectangle. Nothing is drawn before Ready, while hidden, without a valid
// handle, or before the first frame.
func (l *Lifecycle) Draw() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady || !l.visible {
		return
	}
	l.rect = l.bounds()
	v := l.cfg.Video
	if l.handle == "" || !v.IsValid(l.handle) {
		l.skipLocked("invalid_handle")
		l.startPlaybackLocked()
		return
	}
	if err := v.Refresh(l.handle); err != nil {
		l.skipLocked("invalid_handle")
		return
	}
	err := v.Draw(l.handle, l.rect, l.cfg.Tint, l.cfg.Fit, l.cfg.FlipVertical)
	switch {
	case err == nil:
		l.draws++
		l.skipping = ""
		drawsTotal.WithLabelValues("drawn").Inc()
	case errors.Is(err, host.ErrNoFrame):
		l.skipLocked("no_frame")
	case errors.Is(err, host.ErrInvalidHandle):
		l.skipLocked("invalid_handle")
	default:
		l.skipLocked("error")
		l.log.Warn().Err(err).Msg("event=draw_failed")
	}
}

// skipLocked records a skipped tick. An event is published when the reason
// changes, not on every tick.
func (l *Lifecycle) skipLocked(reason string) {
	l.skipped++
	drawsTotal.WithLabelValues(reason).Inc()
	if l.skipping == reason {
		return
	}
	l.skipping = reason
	l.log.Debug().Str("reason", reason).Msg("event=draw_skipped")
	l.cfg.Publisher.Publish(Event{Name: EventDrawSkipped, Panel: l.cfg.Name, Fields: map[string]any{"reason": reason}})
}

// SetVisible is the host's visibility notification. A visible ready panel
// is the active renderer for input routing.
func (l *Lifecycle) SetVisible(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateRemoved || l.visible == v {
		return
	}
	l.visible = v
	if l.state == StateReady {
		if v {
			l.cfg.Bridge.SetActive(l.activeLocked())
		} else {
			l.cfg.Bridge.ClearIf(l.cfg.Name)
		}
	}
	l.log.Debug().Bool("visible", v).Msg("event=visible")
	l.cfg.Publisher.Publish(Event{Name: EventVisible, Panel: l.cfg.Name, Fields: map[string]any{"visible": v}})
}

// Reload navigates again to the panel URL.
func (l *Lifecycle) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return ErrNotReady(l.cfg.Name)
	}
	invariant(l.src != nil, l.cfg.Name, "reload without a frame source")
	if err := l.src.Navigate(l.cfg.URL); err != nil {
		return err
	}
	l.cfg.Publisher.Publish(Event{Name: EventNavigate, Panel: l.cfg.Name, Fields: map[string]any{"url": l.cfg.URL, "reload": true}})
	return nil
}

func (l *Lifecycle) ShowDevTools() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return ErrNotReady(l.cfg.Name)
	}
	return l.src.ShowDevTools()
}

func (l *Lifecycle) ClearCookies() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return ErrNotReady(l.cfg.Name)
	}
	return l.src.ClearCookies()
}

// LatestFrame returns the renderer's newest frame, nil before the first one.
func (l *Lifecycle) LatestFrame() (*frame.Frame, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return nil, ErrNotReady(l.cfg.Name)
	}
	return l.src.LatestFrame(), nil
}

// Remove tears the panel down: unsubscribe, unregister the relay, clear the
// bridge, dispose the renderer, close the handle. It is terminal and only
// the first call has an effect.
func (l *Lifecycle) Remove() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateRemoved {
		return nil
	}
	var err error
	l.sub.Release()
	l.sub = nil
	if l.rly != nil {
		l.rly.Unregister(l.cfg.Relays)
		l.rly = nil
	}
	l.cfg.Bridge.ClearIf(l.cfg.Name)
	if l.src != nil {
		err = l.src.Dispose()
	}
	if l.handle != "" {
		l.cfg.Video.ClosePlayback(l.handle)
		l.handle = ""
	}
	l.readyPending.Store(false)
	l.setState(StateRemoved)
	l.log.Info().Msg("event=remove")
	l.cfg.Publisher.Publish(Event{Name: EventRemove, Panel: l.cfg.Name})
	return err
}

func (l *Lifecycle) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Snapshot{
		Name:    l.cfg.Name,
		State:   l.state,
		Rect:    l.rect,
		Busy:    l.busyLocked(),
		Visible: l.visible,
		Draws:   l.draws,
		Skipped: l.skipped,
	}
	s.URL = l.cfg.URL
	if l.src != nil {
		s.Size = l.src.Size()
		if u := l.src.URL(); u != "" {
			s.URL = u
		}
	}
	if l.handle != "" && l.state != StateRemoved {
		s.Playing = l.cfg.Video.IsValid(l.handle)
	}
	if m := l.lastMessage.Load(); m != nil {
		s.LastMessage = string(*m)
	}
	return s
}
