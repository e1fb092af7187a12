// Package synthetic is a renderer backend that paints a moving test pattern
// instead of web content. It needs no browser and is used for demos and tests.
package synthetic

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"webvideo/internal/frame"
	"webvideo/internal/input"
	"webvideo/internal/renderer"
)

const defaultFrameRate = 30

// Options tune the synthetic engine.
type Options struct {
	// FrameRate in frames per second; 0 means 30.
	FrameRate float64
	// ReadyDelay postpones the Ready callback after creation.
	ReadyDelay time.Duration
	Logger     zerolog.Logger
}

// Factory creates synthetic engines.
type Factory struct {
	opts Options
}

func NewFactory(opts Options) *Factory {
	if opts.FrameRate <= 0 {
		opts.FrameRate = defaultFrameRate
	}
	return &Factory{opts: opts}
}

// Create starts the production loop of a new engine.
func (f *Factory) Create(ctx context.Context, size frame.Size, sink renderer.StateSink, cb renderer.Callbacks) (renderer.Engine, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		size:    size,
		sink:    sink,
		cb:      cb,
		log:     f.opts.Logger.With().Str("component", "synthetic_renderer").Logger(),
		limiter: rate.NewLimiter(rate.Limit(f.opts.FrameRate), 1),
		cancel:  cancel,
		done:    make(chan struct{}),
		cursorX: -1,
		cursorY: -1,
	}
	go e.run(runCtx, f.opts.ReadyDelay)
	return e, nil
}

// Engine renders a test pattern on its own goroutine.
type Engine struct {
	size    frame.Size
	sink    renderer.StateSink
	cb      renderer.Callbacks
	log     zerolog.Logger
	limiter *rate.Limiter
	box     frame.Mailbox

	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.Mutex
	url         string
	loadPending bool
	loading     bool
	cursorX     int
	cursorY     int
	cookies     int
	tick        int
}

func (e *Engine) run(ctx context.Context, readyDelay time.Duration) {
	defer close(e.done)
	if readyDelay > 0 {
		t := time.NewTimer(readyDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return
		}
	}
	if e.cb.Ready != nil {
		e.cb.Ready()
	}
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return
		}
		e.step()
	}
}

// step advances the load state machine and paints one frame.
func (e *Engine) step() {
	e.mu.Lock()
	var notify []bool
	switch {
	case e.loadPending:
		e.loadPending = false
		e.loading = true
		notify = append(notify, true)
	case e.loading:
		e.loading = false
		notify = append(notify, false)
	}
	e.tick++
	url, tick, cx, cy := e.url, e.tick, e.cursorX, e.cursorY
	e.mu.Unlock()

	for _, l := range notify {
		if e.cb.LoadingStateChanged != nil {
			e.cb.LoadingStateChanged(l)
		}
	}
	e.box.Publish(paint(e.size, url, tick, cx, cy))
}

// paint fills a background derived from the URL, a vertical bar sweeping
// with the tick and a cursor marker.
func paint(size frame.Size, url string, tick, cx, cy int) *frame.Frame {
	h := fnv.New32a()
	_, _ = h.Write([]byte(url))
	sum := h.Sum32()
	bg := [4]byte{byte(sum), byte(sum >> 8), byte(sum >> 16), 0xff}

	w, ht := size.Width, size.Height
	pix := make([]byte, 4*w*ht)
	bar := 0
	if w > 0 {
		bar = (tick * 4) % w
	}
	for y := 0; y < ht; y++ {
		row := pix[y*4*w : (y+1)*4*w]
		for x := 0; x < w; x++ {
			px := row[4*x : 4*x+4]
			switch {
			case x == cx || y == cy:
				px[0], px[1], px[2], px[3] = 0xff, 0xff, 0xff, 0xff
			case x >= bar && x < bar+8:
				px[0], px[1], px[2], px[3] = 0xff-bg[0], 0xff-bg[1], 0xff-bg[2], 0xff
			default:
				copy(px, bg[:])
			}
		}
	}
	return frame.New(pix, w, ht)
}

func (e *Engine) Navigate(url string) error {
	e.mu.Lock()
	e.url = url
	e.loadPending = true
	e.mu.Unlock()
	return nil
}

func (e *Engine) LatestFrame() *frame.Frame { return e.box.Latest() }

// SendInput moves the cursor marker; clicks are echoed to the state sink.
func (e *Engine) SendInput(ev input.Event) error {
	if ev.IsPointer() {
		e.mu.Lock()
		e.cursorX, e.cursorY = ev.X, ev.Y
		e.mu.Unlock()
	}
	if ev.Kind == input.MouseDown && e.sink != nil {
		msg, err := json.Marshal(map[string]any{"type": "click", "x": ev.X, "y": ev.Y, "button": ev.Button})
		if err != nil {
			return err
		}
		e.sink.Receive(msg)
	}
	return nil
}

func (e *Engine) ShowDevTools() error {
	e.log.Info().Msg("synthetic renderer has no developer tools")
	return nil
}

func (e *Engine) ClearCookies() error {
	e.mu.Lock()
	e.cookies++
	e.mu.Unlock()
	return nil
}

// CookieClears reports how many times ClearCookies was called.
func (e *Engine) CookieClears() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cookies
}

// Close stops the production loop and waits for it to exit.
func (e *Engine) Close() error {
	e.cancel()
	<-e.done
	return nil
}
