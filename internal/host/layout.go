package host

import (
	"math"
	"sync"

	"webvideo/internal/frame"
)

// Area is a rectangle in normalized screen coordinates (0..1).
type Area struct {
	X      float64 `json:"x" yaml:"x" toml:"x"`
	Y      float64 `json:"y" yaml:"y" toml:"y"`
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Layout maps normalized areas to pixels for the current screen size.
type Layout struct {
	mu     sync.RWMutex
	screen frame.Size
}

func NewLayout(screen frame.Size) *Layout {
	return &Layout{screen: screen}
}

func (l *Layout) Screen() frame.Size {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.screen
}

// SetScreen changes the screen size. Panel rectangles follow on the next
// tick; renderers keep the size they were created with.
func (l *Layout) SetScreen(s frame.Size) {
	l.mu.Lock()
	l.screen = s
	l.mu.Unlock()
}

// ScreenRect converts a to pixels.
func (l *Layout) ScreenRect(a Area) frame.Rect {
	s := l.Screen()
	x0 := int(math.Round(a.X * float64(s.Width)))
	y0 := int(math.Round(a.Y * float64(s.Height)))
	x1 := int(math.Round((a.X + a.Width) * float64(s.Width)))
	y1 := int(math.Round((a.Y + a.Height) * float64(s.Height)))
	return frame.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Widget is a named region of the screen that hosts a panel.
type Widget struct {
	Name   string
	Area   Area
	layout *Layout
}

func (l *Layout) Widget(name string, a Area) *Widget {
	return &Widget{Name: name, Area: a, layout: l}
}

// Rect is the widget's current pixel rectangle.
func (w *Widget) Rect() frame.Rect {
	return w.layout.ScreenRect(w.Area)
}
