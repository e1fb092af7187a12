package renderer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/input"
)

// Handlers are the FrameSource event listeners of one subscriber.
// They run on the renderer's goroutines with the source's dispatch lock held:
// they must only record state for later and must not call back into the source.
type Handlers struct {
	Ready               func()
	LoadingStateChanged func(loading bool)
}

// FrameSource owns one renderer engine for a named panel.
type FrameSource struct {
	name   string
	size   frame.Size
	engine Engine
	log    zerolog.Logger

	ready    atomic.Bool
	loading  atomic.Bool
	disposed atomic.Bool

	mu     sync.Mutex // guards subs, nextID, url and serializes dispatch against Dispose
	subs   map[uint64]Handlers
	nextID uint64
	url    string

	// input calls hold the read side; Dispose takes the write side before
	// marking the source disposed.
	inputMu sync.RWMutex
}

// Create constructs the engine sized to size. The size cannot change afterwards.
func Create(ctx context.Context, f Factory, name string, size frame.Size, sink StateSink, logger zerolog.Logger) (*FrameSource, error) {
	if size.Empty() {
		return nil, ErrNoSize
	}
	s := &FrameSource{
		name: name,
		size: size,
		log:  logger.With().Str("component", "frame_source").Str("panel", name).Logger(),
		subs: make(map[uint64]Handlers),
	}
	eng, err := f.Create(ctx, size, sink, Callbacks{
		Ready:               s.onReady,
		LoadingStateChanged: s.onLoadingStateChanged,
	})
	if err != nil {
		return nil, wrapOp("create", err)
	}
	s.engine = eng
	s.log.Info().Stringer("size", size).Msg("renderer created")
	return s, nil
}

func (s *FrameSource) Name() string     { return s.name }
func (s *FrameSource) Size() frame.Size { return s.size }
func (s *FrameSource) Ready() bool      { return s.ready.Load() }
func (s *FrameSource) Loading() bool    { return s.loading.Load() }
func (s *FrameSource) Disposed() bool   { return s.disposed.Load() }

// URL returns the last navigated URL.
func (s *FrameSource) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Subscribe registers listeners. If the source is already ready, h.Ready is
// invoked once before Subscribe returns.
func (s *FrameSource) Subscribe(h Handlers) *Subscription {
	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		return &Subscription{}
	}
	s.nextID++
	id := s.nextID
	s.subs[id] = h
	replay := s.ready.Load()
	s.mu.Unlock()
	if replay && h.Ready != nil {
		h.Ready()
	}
	return &Subscription{src: s, id: id}
}

func (s *FrameSource) unsubscribe(id uint64) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

func (s *FrameSource) onReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed.Load() || !s.ready.CompareAndSwap(false, true) {
		return
	}
	s.log.Debug().Msg("renderer ready")
	for _, h := range s.subs {
		if h.Ready != nil {
			h.Ready()
		}
	}
}

func (s *FrameSource) onLoadingStateChanged(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed.Load() {
		return
	}
	s.loading.Store(loading)
	for _, h := range s.subs {
		if h.LoadingStateChanged != nil {
			h.LoadingStateChanged(loading)
		}
	}
}

// Navigate forwards url to the engine. Before readiness it has no effect and
// returns ErrNotReady.
func (s *FrameSource) Navigate(url string) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	if !s.ready.Load() {
		return ErrNotReady
	}
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	s.log.Info().Str("url", url).Msg("navigation")
	return wrapOp("navigate", s.engine.Navigate(url))
}

// LatestFrame returns the newest rendered frame or nil. It never blocks.
func (s *FrameSource) LatestFrame() *frame.Frame {
	if s.disposed.Load() || !s.ready.Load() {
		return nil
	}
	return s.engine.LatestFrame()
}

// SendInput forwards a panel-local input event to the engine.
func (s *FrameSource) SendInput(ev input.Event) error {
	s.inputMu.RLock()
	defer s.inputMu.RUnlock()
	if s.disposed.Load() {
		return ErrDisposed
	}
	if !s.ready.Load() {
		return ErrNotReady
	}
	return wrapOp("input", s.engine.SendInput(ev))
}

func (s *FrameSource) ShowDevTools() error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	s.log.Info().Msg("developer tools opened")
	return wrapOp("devtools", s.engine.ShowDevTools())
}

func (s *FrameSource) ClearCookies() error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	return wrapOp("clear cookies", s.engine.ClearCookies())
}

// Dispose drops every listener and then releases the engine. Input calls
// already inside the engine finish first; later ones get ErrDisposed. Only
// the first call has an effect.
func (s *FrameSource) Dispose() error {
	s.inputMu.Lock()
	s.mu.Lock()
	if !s.disposed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		s.inputMu.Unlock()
		return nil
	}
	clear(s.subs)
	s.mu.Unlock()
	s.inputMu.Unlock()
	err := s.engine.Close()
	s.log.Info().Msg("renderer disposed")
	return wrapOp("close", err)
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	src  *FrameSource
	id   uint64
	once sync.Once
}

// Release removes the listeners. Safe to call more than once.
func (sub *Subscription) Release() {
	if sub == nil || sub.src == nil {
		return
	}
	sub.once.Do(func() { sub.src.unsubscribe(sub.id) })
}
