package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/hooks"
	"webvideo/internal/host"
	"webvideo/internal/httpapi"
	"webvideo/internal/input"
	"webvideo/internal/panel"
	"webvideo/internal/panelstate"
	"webvideo/internal/relay"
	"webvideo/internal/renderer/synthetic"
)

// stack is a full in-process assembly over the synthetic renderer.
type stack struct {
	srv    *httptest.Server
	mgr    *panel.Manager
	player *host.Player
	layout *host.Layout
	input  *host.Dispatcher
	relays *relay.Registry
	pub    *panel.MemoryPublisher

	mu     sync.Mutex
	hostIn []input.Event
}

type stackService struct {
	*panel.Manager
	s *stack
}

func (v stackService) Screen() *image.RGBA { return v.s.player.Snapshot() }

func (v stackService) DispatchInput(ev input.Event) bool { return v.s.input.Dispatch(ev) }

func newStack(t *testing.T, readyDelay time.Duration) *stack {
	t.Helper()
	log := zerolog.Nop()
	screen := frame.Size{Width: 400, Height: 300}
	s := &stack{
		player: host.NewPlayer(screen, log),
		layout: host.NewLayout(screen),
		input:  host.NewDispatcher(),
		relays: relay.NewRegistry(log),
		pub:    panel.NewMemoryPublisher(),
	}
	s.input.Handle(func(ev input.Event) {
		s.mu.Lock()
		s.hostIn = append(s.hostIn, ev)
		s.mu.Unlock()
	})
	bridge := panelstate.New()
	factory := synthetic.NewFactory(synthetic.Options{FrameRate: 200, ReadyDelay: readyDelay, Logger: log})
	mgr, err := panel.NewManager(panel.ManagerConfig{
		Shared: panel.Shared{
			Factory:   factory,
			Relays:    s.relays,
			Video:     s.player,
			Bridge:    bridge,
			Hooks:     hooks.New(log, host.SyntheticSourcePatch(s.player, s.relays), host.CapturePatch(s.input, bridge, log)),
			Publisher: s.pub,
			Logger:    log,
			Fit:       host.FitStretch,
		},
		URLFor: func(name string) string { return "about:blank#" + name },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	s.mgr = mgr
	s.srv = httptest.NewServer(httpapi.NewMux(stackService{Manager: mgr, s: s}))
	t.Cleanup(func() {
		s.srv.Close()
		_ = mgr.Close()
	})
	return s
}

func (s *stack) add(t *testing.T, name string, a host.Area) {
	t.Helper()
	w := s.layout.Widget(name, a)
	if _, err := s.mgr.Add(context.Background(), name, w.Rect); err != nil {
		t.Fatalf("Add %s: %v", name, err)
	}
}

func (s *stack) hostEvents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hostIn)
}

func (s *stack) tick() {
	s.player.BeginFrame(color.RGBA{A: 0xff})
	s.mgr.Tick()
}

// tickUntil drives host frames until cond holds.
func (s *stack) tickUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		s.tick()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
