package panel

import (
	"context"
	"image/color"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/hooks"
	"webvideo/internal/host"
	"webvideo/internal/input"
	"webvideo/internal/panelstate"
	"webvideo/internal/relay"
	"webvideo/internal/renderer"
)

// fakeEngine lets tests fire renderer callbacks by hand.
type fakeEngine struct {
	mu        sync.Mutex
	size      frame.Size
	cb        renderer.Callbacks
	sink      renderer.StateSink
	navigated []string
	inputs    []input.Event
	latest    *frame.Frame
	frameReqs int
	closed    int
	cookies   int
	onClose   func()
}

func (e *fakeEngine) Navigate(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.navigated = append(e.navigated, url)
	return nil
}

func (e *fakeEngine) LatestFrame() *frame.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameReqs++
	return e.latest
}

func (e *fakeEngine) SendInput(ev input.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs = append(e.inputs, ev)
	return nil
}

func (e *fakeEngine) ShowDevTools() error { return nil }

func (e *fakeEngine) ClearCookies() error {
	e.mu.Lock()
	e.cookies++
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	e.closed++
	hook := e.onClose
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (e *fakeEngine) publish(f *frame.Frame) {
	e.mu.Lock()
	e.latest = f
	e.mu.Unlock()
}

func (e *fakeEngine) navigations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.navigated...)
}

func (e *fakeEngine) closeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *fakeEngine) frameRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameReqs
}

type fakeFactory struct {
	mu  sync.Mutex
	all []*fakeEngine
}

func (f *fakeFactory) Create(_ context.Context, size frame.Size, sink renderer.StateSink, cb renderer.Callbacks) (renderer.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &fakeEngine{size: size, cb: cb, sink: sink}
	f.all = append(f.all, e)
	return e, nil
}

func (f *fakeFactory) engine(i int) *fakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all[i]
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.all)
}

// recordingVideo wraps a Player and counts calls.
type recordingVideo struct {
	*host.Player
	mu      sync.Mutex
	starts  int
	draws   int
	closed  []host.Handle
	refresh int
	rects   []frame.Rect
}

func (v *recordingVideo) StartPlayback(name string, flags host.Flags) (host.Handle, error) {
	h, err := v.Player.StartPlayback(name, flags)
	if err == nil {
		v.mu.Lock()
		v.starts++
		v.mu.Unlock()
	}
	return h, err
}

func (v *recordingVideo) Refresh(h host.Handle) error {
	v.mu.Lock()
	v.refresh++
	v.mu.Unlock()
	return v.Player.Refresh(h)
}

func (v *recordingVideo) Draw(h host.Handle, r frame.Rect, tint color.RGBA, fit host.FitMode, flip bool) error {
	err := v.Player.Draw(h, r, tint, fit, flip)
	if err == nil {
		v.mu.Lock()
		v.draws++
		v.rects = append(v.rects, r)
		v.mu.Unlock()
	}
	return err
}

func (v *recordingVideo) ClosePlayback(h host.Handle) {
	v.mu.Lock()
	v.closed = append(v.closed, h)
	v.mu.Unlock()
	v.Player.ClosePlayback(h)
}

func (v *recordingVideo) drawRects() []frame.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]frame.Rect(nil), v.rects...)
}

func (v *recordingVideo) closedCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.closed)
}

func (v *recordingVideo) drawCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draws
}

type fixture struct {
	factory *fakeFactory
	relays  *relay.Registry
	video   *recordingVideo
	bridge  *panelstate.Bridge
	hooks   *hooks.Registry
	pub     *MemoryPublisher
	shared  Shared
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	fx := &fixture{
		factory: &fakeFactory{},
		relays:  relay.NewRegistry(log),
		bridge:  panelstate.New(),
		pub:     NewMemoryPublisher(),
	}
	player := host.NewPlayer(frame.Size{Width: 1024, Height: 768}, log)
	fx.video = &recordingVideo{Player: player}
	fx.hooks = hooks.New(log, host.SyntheticSourcePatch(player, fx.relays))
	fx.shared = Shared{
		Factory:   fx.factory,
		Relays:    fx.relays,
		Video:     fx.video,
		Bridge:    fx.bridge,
		Hooks:     fx.hooks,
		Publisher: fx.pub,
		Logger:    log,
		Fit:       host.FitStretch,
	}
	return fx
}

func (fx *fixture) newPanel(t *testing.T, name, url string) *Lifecycle {
	t.Helper()
	l, err := New(Config{Shared: fx.shared, Name: name, URL: url})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func rectFunc(r frame.Rect) func() frame.Rect {
	return func() frame.Rect { return r }
}

func solidFrame(w, h int) *frame.Frame {
	pix := make([]byte, w*h*4)
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xff
	}
	return frame.New(pix, w, h)
}
