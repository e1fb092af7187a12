package host

import (
	"sync"

	"webvideo/internal/input"
)

// Interceptor sees every event before default handling. Returning true
// consumes the event.
type Interceptor func(input.Event) bool

// Dispatcher delivers host input to the default widget handlers unless an
// interceptor consumes it first.
type Dispatcher struct {
	mu          sync.RWMutex
	interceptor Interceptor
	handlers    []func(input.Event)
}

func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// SetInterceptor installs fn and returns the previous interceptor.
func (d *Dispatcher) SetInterceptor(fn Interceptor) Interceptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.interceptor
	d.interceptor = fn
	return prev
}

// Handle adds a default handler.
func (d *Dispatcher) Handle(fn func(input.Event)) {
	d.mu.Lock()
	d.handlers = append(d.handlers, fn)
	d.mu.Unlock()
}

// Dispatch reports whether the event reached the default handlers.
func (d *Dispatcher) Dispatch(ev input.Event) bool {
	d.mu.RLock()
	icpt := d.interceptor
	handlers := d.handlers
	d.mu.RUnlock()
	if icpt != nil && icpt(ev) {
		return false
	}
	for _, h := range handlers {
		h(ev)
	}
	return true
}
