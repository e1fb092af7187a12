package renderer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/input"
)

type fakeEngine struct {
	mu        sync.Mutex
	cb        Callbacks
	size      frame.Size
	navigated []string
	closed    int
	inputs    []input.Event
	frame     *frame.Frame
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
	return e.frame
}

func (e *fakeEngine) SendInput(ev input.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs = append(e.inputs, ev)
	return nil
}

func (e *fakeEngine) ShowDevTools() error { return nil }
func (e *fakeEngine) ClearCookies() error { return errors.New("boom") }

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return nil
}

func newSource(t *testing.T) (*FrameSource, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{}
	f := FactoryFunc(func(ctx context.Context, size frame.Size, sink StateSink, cb Callbacks) (Engine, error) {
		eng.cb = cb
		eng.size = size
		return eng, nil
	})
	src, err := Create(context.Background(), f, "terminal", frame.Size{Width: 800, Height: 600}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return src, eng
}

func TestCreateRejectsEmptySize(t *testing.T) {
	f := FactoryFunc(func(ctx context.Context, size frame.Size, sink StateSink, cb Callbacks) (Engine, error) {
		t.Fatalf("factory must not be called")
		return nil, nil
	})
	if _, err := Create(context.Background(), f, "x", frame.Size{}, nil, zerolog.Nop()); !errors.Is(err, ErrNoSize) {
		t.Fatalf("expected ErrNoSize, got %v", err)
	}
}

func TestCreatePassesSize(t *testing.T) {
	_, eng := newSource(t)
	if eng.size != (frame.Size{Width: 800, Height: 600}) {
		t.Fatalf("unexpected size %v", eng.size)
	}
}

func TestNavigateBeforeReadyHasNoEffect(t *testing.T) {
	src, eng := newSource(t)
	if err := src.Navigate("http://x"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if len(eng.navigated) != 0 {
		t.Fatalf("navigation leaked before ready: %v", eng.navigated)
	}
	eng.cb.Ready()
	if err := src.Navigate("http://x"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if err := src.Navigate("http://x"); err != nil {
		t.Fatalf("navigate again: %v", err)
	}
	if src.URL() != "http://x" || len(eng.navigated) != 2 {
		t.Fatalf("unexpected navigation state %q %v", src.URL(), eng.navigated)
	}
}

func TestReadyFiresOnceAndReplaysToLateSubscribers(t *testing.T) {
	src, eng := newSource(t)
	early := 0
	src.Subscribe(Handlers{Ready: func() { early++ }})
	eng.cb.Ready()
	eng.cb.Ready()
	if early != 1 {
		t.Fatalf("expected one ready, got %d", early)
	}
	late := 0
	src.Subscribe(Handlers{Ready: func() { late++ }})
	if late != 1 {
		t.Fatalf("expected replayed ready, got %d", late)
	}
}

func TestLatestFrameNilUntilReadyAndProduced(t *testing.T) {
	src, eng := newSource(t)
	eng.frame = frame.New(make([]byte, 4), 1, 1)
	if src.LatestFrame() != nil {
		t.Fatalf("expected nil before ready")
	}
	eng.cb.Ready()
	if src.LatestFrame() == nil {
		t.Fatalf("expected frame after ready")
	}
}

func TestLoadingStateTracked(t *testing.T) {
	src, eng := newSource(t)
	var seen []bool
	sub := src.Subscribe(Handlers{LoadingStateChanged: func(l bool) { seen = append(seen, l) }})
	eng.cb.LoadingStateChanged(true)
	if !src.Loading() {
		t.Fatalf("expected loading")
	}
	sub.Release()
	sub.Release()
	eng.cb.LoadingStateChanged(false)
	if src.Loading() {
		t.Fatalf("expected not loading")
	}
	if len(seen) != 1 || !seen[0] {
		t.Fatalf("unexpected events after release: %v", seen)
	}
}

func TestDisposeOnceAndSilencesEvents(t *testing.T) {
	src, eng := newSource(t)
	fired := 0
	src.Subscribe(Handlers{Ready: func() { fired++ }, LoadingStateChanged: func(bool) { fired++ }})
	if err := src.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if err := src.Dispose(); err != nil {
		t.Fatalf("second dispose: %v", err)
	}
	eng.cb.Ready()
	eng.cb.LoadingStateChanged(true)
	if fired != 0 {
		t.Fatalf("event fired into disposed source")
	}
	if eng.closed != 1 {
		t.Fatalf("expected engine closed once, got %d", eng.closed)
	}
	if err := src.Navigate("http://x"); !errors.Is(err, ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if src.LatestFrame() != nil {
		t.Fatalf("expected nil frame after dispose")
	}
}

func TestEngineErrorsAreWrapped(t *testing.T) {
	src, _ := newSource(t)
	err := src.ClearCookies()
	var ee *EngineError
	if !errors.As(err, &ee) || ee.Op != "clear cookies" {
		t.Fatalf("expected EngineError, got %v", err)
	}
}

func TestSendInputRequiresReady(t *testing.T) {
	src, eng := newSource(t)
	if err := src.SendInput(input.Event{Kind: input.MouseMove}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	eng.cb.Ready()
	if err := src.SendInput(input.Event{Kind: input.MouseMove, X: 3}); err != nil {
		t.Fatalf("send input: %v", err)
	}
	if len(eng.inputs) != 1 || eng.inputs[0].X != 3 {
		t.Fatalf("unexpected inputs %+v", eng.inputs)
	}
}

// slowInputEngine parks inside SendInput until released.
type slowInputEngine struct {
	*fakeEngine
	entered chan struct{}
	release chan struct{}
	late    bool
}

func (e *slowInputEngine) SendInput(ev input.Event) error {
	e.mu.Lock()
	if e.closed > 0 {
		e.late = true
	}
	e.mu.Unlock()
	close(e.entered)
	<-e.release
	return e.fakeEngine.SendInput(ev)
}

func TestDisposeWaitsForInputInFlight(t *testing.T) {
	eng := &slowInputEngine{fakeEngine: &fakeEngine{}, entered: make(chan struct{}), release: make(chan struct{})}
	f := FactoryFunc(func(ctx context.Context, size frame.Size, sink StateSink, cb Callbacks) (Engine, error) {
		eng.cb = cb
		return eng, nil
	})
	src, err := Create(context.Background(), f, "terminal", frame.Size{Width: 8, Height: 8}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	eng.cb.Ready()

	sent := make(chan error, 1)
	go func() { sent <- src.SendInput(input.Event{Kind: input.MouseMove, X: 1}) }()
	<-eng.entered

	disposed := make(chan struct{})
	go func() {
		_ = src.Dispose()
		close(disposed)
	}()
	select {
	case <-disposed:
		t.Fatalf("Dispose returned while an input call was inside the engine")
	case <-time.After(50 * time.Millisecond):
	}
	eng.mu.Lock()
	closed := eng.closed
	eng.mu.Unlock()
	if closed != 0 {
		t.Fatalf("engine closed under an in-flight input call")
	}

	close(eng.release)
	if err := <-sent; err != nil {
		t.Fatalf("send input: %v", err)
	}
	select {
	case <-disposed:
	case <-time.After(time.Second):
		t.Fatalf("Dispose did not finish after the input call returned")
	}
	eng.mu.Lock()
	closed = eng.closed
	eng.mu.Unlock()
	if eng.late || closed != 1 {
		t.Fatalf("unexpected engine state late=%v closed=%d", eng.late, closed)
	}
	if err := src.SendInput(input.Event{Kind: input.MouseMove}); !errors.Is(err, ErrDisposed) {
		t.Fatalf("expected ErrDisposed after dispose, got %v", err)
	}
	if len(eng.inputs) != 1 {
		t.Fatalf("expected exactly one delivered input, got %d", len(eng.inputs))
	}
}
