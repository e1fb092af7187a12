// Package panelstate tells the input-routing collaborator which renderer is
// currently active. It holds a back-reference only: it never owns or
// disposes the renderer, and panels clear it explicitly on teardown.
package panelstate

import (
	"sync"

	"webvideo/internal/frame"
	"webvideo/internal/input"
)

// Active describes the renderer that should receive forwarded input.
type Active struct {
	Panel  string
	Target input.Target
	// Size is the renderer's pixel size, fixed at creation.
	Size frame.Size
	// Bounds returns the panel's current on-screen rectangle.
	Bounds func() frame.Rect
}

// Bridge is a replace-on-write holder of the active renderer.
type Bridge struct {
	mu     sync.RWMutex
	active *Active
}

func New() *Bridge { return &Bridge{} }

// SetActive replaces the current reference; nil clears it.
func (b *Bridge) SetActive(a *Active) {
	b.mu.Lock()
	b.active = a
	b.mu.Unlock()
}

// Current returns the active renderer or nil.
func (b *Bridge) Current() *Active {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// ClearIf clears the reference only while it still belongs to panel.
func (b *Bridge) ClearIf(panel string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil || b.active.Panel != panel {
		return false
	}
	b.active = nil
	return true
}
