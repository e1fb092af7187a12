// Package renderer defines the contract of the off-screen renderer and wraps
// one instance of it in a FrameSource owned by a panel.
//
// Backends live in sub-packages: headless (Chrome via chromedp) and synthetic
// (a paced test pattern).
package renderer

import (
	"context"

	"webvideo/internal/frame"
	"webvideo/internal/input"
)

// Engine is one off-screen browser instance rendering into a pixel buffer.
// All methods must be safe to call from any goroutine.
type Engine interface {
	input.Target
	// Navigate asks the engine to load url. It must not wait for the load.
	Navigate(url string) error
	// LatestFrame returns the most recent complete frame or nil. Never blocks.
	LatestFrame() *frame.Frame
	ShowDevTools() error
	ClearCookies() error
	// Close releases the instance. Callbacks must not fire after Close returns.
	Close() error
}

// Callbacks are invoked from the engine's own goroutines.
type Callbacks struct {
	// Ready fires once the browser context is usable.
	Ready func()
	// LoadingStateChanged fires whenever a navigation begins or ends.
	LoadingStateChanged func(loading bool)
}

// StateSink receives messages posted by the page to the host.
type StateSink interface {
	Receive(msg []byte)
}

// StateSinkFunc adapts a function to StateSink.
type StateSinkFunc func(msg []byte)

func (f StateSinkFunc) Receive(msg []byte) { f(msg) }

// Factory creates engines sized once at construction.
type Factory interface {
	Create(ctx context.Context, size frame.Size, sink StateSink, cb Callbacks) (Engine, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, size frame.Size, sink StateSink, cb Callbacks) (Engine, error)

func (f FactoryFunc) Create(ctx context.Context, size frame.Size, sink StateSink, cb Callbacks) (Engine, error) {
	return f(ctx, size, sink, cb)
}
