package relay

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
)

type entry struct {
	pull  PullFunc
	owner *Relay
}

// Registry maps names to pull functions. One registry serves the whole
// process; it is constructed at startup and shared by every panel.
//
// Pull runs the pull function under the read lock, so a name that has been
// unregistered is never pulled again once UnregisterSource returns.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]entry
	log     zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		sources: make(map[string]entry),
		log:     logger.With().Str("component", "relay_registry").Logger(),
	}
}

// RegisterSource inserts or replaces the pull function for name.
func (g *Registry) RegisterSource(name string, pull PullFunc) {
	g.register(name, pull, nil)
}

// UnregisterSource removes name regardless of who registered it.
func (g *Registry) UnregisterSource(name string) bool {
	return g.unregister(name, nil)
}

func (g *Registry) register(name string, pull PullFunc, owner *Relay) {
	g.mu.Lock()
	_, replaced := g.sources[name]
	g.sources[name] = entry{pull: pull, owner: owner}
	registeredGauge.Set(float64(len(g.sources)))
	g.mu.Unlock()
	g.log.Debug().Str("name", name).Bool("replaced", replaced).Msg("relay registered")
}

func (g *Registry) unregister(name string, owner *Relay) bool {
	g.mu.Lock()
	e, ok := g.sources[name]
	if ok && owner != nil && e.owner != owner {
		ok = false
	}
	if ok {
		delete(g.sources, name)
	}
	registeredGauge.Set(float64(len(g.sources)))
	g.mu.Unlock()
	if ok {
		g.log.Debug().Str("name", name).Msg("relay unregistered")
	}
	return ok
}

// Has reports whether name is registered.
func (g *Registry) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.sources[name]
	return ok
}

// Pull returns the current frame of name. ok is false when name is not
// registered; a registered source without a frame yields (nil, true).
func (g *Registry) Pull(name string) (f *frame.Frame, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.sources[name]
	if !ok {
		pullsTotal.WithLabelValues("missing").Inc()
		return nil, false
	}
	f = e.pull()
	if f == nil {
		pullsTotal.WithLabelValues("empty").Inc()
	} else {
		pullsTotal.WithLabelValues("hit").Inc()
	}
	return f, true
}

// Names returns the registered names, sorted.
func (g *Registry) Names() []string {
	g.mu.RLock()
	out := make([]string, 0, len(g.sources))
	for name := range g.sources {
		out = append(out, name)
	}
	g.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of registrations.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sources)
}
