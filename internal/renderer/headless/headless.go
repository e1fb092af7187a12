// Package headless renders panel content in a headless Chrome tab driven over
// the DevTools protocol. Frames come from the page screencast; loading state
// from frame load events; page-to-host messages from a runtime binding.
package headless

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/input"
	"webvideo/internal/renderer"
)

// BindingName is the global function the page calls to post a message to
// the host: window.webvideoSend(JSON.stringify(state)).
const BindingName = "webvideoSend"

const inputQueueDepth = 64

// Options configure the browser process shared by all engines of a factory.
type Options struct {
	ExecPath string
	// Headful shows the browser window; useful when opening developer tools.
	Headful bool
	// Flags are extra command line switches passed to Chrome.
	Flags  map[string]any
	Logger zerolog.Logger
}

// Factory owns one browser process; each engine is a tab in it.
type Factory struct {
	log           zerolog.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewFactory starts the browser.
func NewFactory(ctx context.Context, opts Options) (*Factory, error) {
	log := opts.Logger.With().Str("component", "headless_renderer").Logger()
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.Headful {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	for k, v := range opts.Flags {
		allocOpts = append(allocOpts, chromedp.Flag(k, v))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) { log.Debug().Msgf(format, args...) }),
		chromedp.WithErrorf(func(format string, args ...any) { log.Error().Msgf(format, args...) }),
	)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	log.Info().Str("exec_path", opts.ExecPath).Msg("browser started")
	return &Factory{
		log:           log,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close terminates the browser process.
func (f *Factory) Close() error {
	f.browserCancel()
	f.allocCancel()
	return nil
}

// Create opens a tab sized to size and starts its screencast. Ready fires
// once the tab accepted the setup commands.
func (f *Factory) Create(ctx context.Context, size frame.Size, sink renderer.StateSink, cb renderer.Callbacks) (renderer.Engine, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	e := &Engine{
		ctx:    tabCtx,
		cancel: cancel,
		size:   size,
		sink:   sink,
		cb:     cb,
		log:    f.log,
		frames: make(chan *page.EventScreencastFrame, 1),
		inputs: make(chan input.Event, inputQueueDepth),
	}
	chromedp.ListenTarget(tabCtx, e.onTargetEvent)
	go e.decodeLoop()
	go e.inputLoop()
	go e.setup()
	return e, nil
}

// Engine is one browser tab.
type Engine struct {
	ctx    context.Context
	cancel context.CancelFunc
	size   frame.Size
	sink   renderer.StateSink
	log    zerolog.Logger
	box    frame.Mailbox

	cbMu   sync.RWMutex
	cb     renderer.Callbacks
	closed atomic.Bool

	loadingFrames atomic.Int32

	frames chan *page.EventScreencastFrame
	inputs chan input.Event
}

func (e *Engine) setup() {
	err := chromedp.Run(e.ctx,
		emulation.SetDeviceMetricsOverride(int64(e.size.Width), int64(e.size.Height), 1, false),
		page.Enable(),
		cdpruntime.AddBinding(BindingName),
		page.StartScreencast().
			WithFormat(page.ScreencastFormatPng).
			WithMaxWidth(int64(e.size.Width)).
			WithMaxHeight(int64(e.size.Height)).
			WithEveryNthFrame(1),
	)
	if err != nil {
		// Without Ready the panel keeps its busy indicator; startup failures
		// are not retried.
		e.log.Error().Err(err).Msg("tab setup failed")
		return
	}
	e.fire(func(cb renderer.Callbacks) {
		if cb.Ready != nil {
			cb.Ready()
		}
	})
}

// fire invokes a callback unless the engine was closed.
func (e *Engine) fire(fn func(renderer.Callbacks)) {
	e.cbMu.RLock()
	defer e.cbMu.RUnlock()
	if e.closed.Load() {
		return
	}
	fn(e.cb)
}

func (e *Engine) onTargetEvent(ev any) {
	switch ev := ev.(type) {
	case *page.EventScreencastFrame:
		go func(id int64) {
			if err := chromedp.Run(e.ctx, page.ScreencastFrameAck(id)); err != nil && !e.closed.Load() {
				e.log.Debug().Err(err).Msg("screencast ack failed")
			}
		}(ev.SessionID)
		// Keep only the newest undecoded frame.
		select {
		case e.frames <- ev:
		default:
			select {
			case <-e.frames:
			default:
			}
			select {
			case e.frames <- ev:
			default:
			}
		}
	case *page.EventFrameStartedLoading:
		if e.loadingFrames.Add(1) == 1 {
			e.setLoading(true)
		}
	case *page.EventFrameStoppedLoading:
		if n := e.loadingFrames.Add(-1); n == 0 {
			e.setLoading(false)
		} else if n < 0 {
			e.loadingFrames.Store(0)
		}
	case *cdpruntime.EventBindingCalled:
		if ev.Name == BindingName && e.sink != nil {
			e.sink.Receive([]byte(ev.Payload))
		}
	}
}

func (e *Engine) setLoading(loading bool) {
	e.fire(func(cb renderer.Callbacks) {
		if cb.LoadingStateChanged != nil {
			cb.LoadingStateChanged(loading)
		}
	})
}

func (e *Engine) decodeLoop() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev := <-e.frames:
			fr, err := decodeScreencast(ev.Data)
			if err != nil {
				e.log.Warn().Err(err).Msg("screencast frame dropped")
				continue
			}
			e.box.Publish(fr)
		}
	}
}

func (e *Engine) inputLoop() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev := <-e.inputs:
			action, ok := inputAction(ev)
			if !ok {
				continue
			}
			if err := chromedp.Run(e.ctx, action); err != nil && !e.closed.Load() {
				e.log.Debug().Err(err).Str("kind", string(ev.Kind)).Msg("input dispatch failed")
			}
		}
	}
}

// Navigate starts loading url in the background.
func (e *Engine) Navigate(url string) error {
	if e.closed.Load() {
		return renderer.ErrDisposed
	}
	go func() {
		if err := chromedp.Run(e.ctx, chromedp.Navigate(url)); err != nil && !e.closed.Load() {
			e.log.Warn().Err(err).Str("url", url).Msg("navigation failed")
		}
	}()
	return nil
}

func (e *Engine) LatestFrame() *frame.Frame { return e.box.Latest() }

// SendInput queues ev for the tab; events are dropped when the queue is full.
func (e *Engine) SendInput(ev input.Event) error {
	if e.closed.Load() {
		return renderer.ErrDisposed
	}
	select {
	case e.inputs <- ev:
	default:
		e.log.Debug().Str("kind", string(ev.Kind)).Msg("input queue full")
	}
	return nil
}

// ShowDevTools logs the target to attach a DevTools frontend to.
func (e *Engine) ShowDevTools() error {
	c := chromedp.FromContext(e.ctx)
	if c == nil || c.Target == nil {
		return renderer.ErrNotReady
	}
	e.log.Info().Str("target_id", string(c.Target.TargetID)).Msg("attach developer tools to target")
	return nil
}

func (e *Engine) ClearCookies() error {
	return chromedp.Run(e.ctx, clearCookies())
}

// Close stops callbacks and closes the tab.
func (e *Engine) Close() error {
	e.cbMu.Lock()
	e.closed.Store(true)
	e.cbMu.Unlock()
	_ = chromedp.Run(e.ctx, page.StopScreencast())
	e.cancel()
	return nil
}
