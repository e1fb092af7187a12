package panel

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/renderer"
)

// Manager keeps the live panels of a process, keyed by name.
type Manager struct {
	mu     sync.RWMutex
	cfg    ManagerConfig
	panels map[string]*Lifecycle
	log    zerolog.Logger

	startTime time.Time
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.Shared.validate(); err != nil {
		return nil, err
	}
	cfg.Shared = cfg.Shared.withDefaults()
	if cfg.URLFor == nil {
		cfg.URLFor = func(string) string { return "about:blank" }
	}
	return &Manager{
		cfg:       cfg,
		panels:    make(map[string]*Lifecycle),
		log:       cfg.Logger.With().Str("component", "panel_manager").Logger(),
		startTime: time.Now(),
	}, nil
}

// Add creates the panel name and delivers its first size notification.
// A removed panel's name can be reused; a live one cannot.
func (m *Manager) Add(ctx context.Context, name string, bounds func() frame.Rect) (*Lifecycle, error) {
	m.mu.Lock()
	if _, ok := m.panels[name]; ok {
		m.mu.Unlock()
		return nil, ErrPanelExists(name)
	}
	cfg := Config{Shared: m.cfg.Shared, Name: name, URL: m.cfg.URLFor(name)}
	if m.cfg.Sink != nil {
		sink := m.cfg.Sink
		cfg.Sink = renderer.StateSinkFunc(func(msg []byte) { sink(name, msg) })
	}
	l, err := New(cfg)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.panels[name] = l
	m.mu.Unlock()

	if err := l.OnSizeChanged(ctx, bounds); err != nil {
		_ = m.Remove(name)
		return nil, err
	}
	return l, nil
}

// Get returns the live panel called name.
func (m *Manager) Get(name string) (*Lifecycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.panels[name]
	if !ok {
		return nil, ErrPanelNotFound(name)
	}
	return l, nil
}

// Names returns the panel names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.panels))
	for n := range m.panels {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) list() []*Lifecycle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Lifecycle, 0, len(m.panels))
	for _, l := range m.panels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Remove tears the panel down and forgets it.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	l, ok := m.panels[name]
	if ok {
		delete(m.panels, name)
	}
	m.mu.Unlock()
	if !ok {
		return ErrPanelNotFound(name)
	}
	return l.Remove()
}

// Tick runs one host frame for every panel.
func (m *Manager) Tick() {
	for _, l := range m.list() {
		l.Tick()
	}
}

// Ready reports whether any panel has a ready renderer.
func (m *Manager) Ready() bool {
	for _, l := range m.list() {
		if l.State() == StateReady {
			return true
		}
	}
	return false
}

func (m *Manager) SetVisible(name string, v bool) error {
	l, err := m.Get(name)
	if err != nil {
		return err
	}
	l.SetVisible(v)
	return nil
}

func (m *Manager) Reload(name string) error {
	l, err := m.Get(name)
	if err != nil {
		return err
	}
	return l.Reload()
}

func (m *Manager) ShowDevTools(name string) error {
	l, err := m.Get(name)
	if err != nil {
		return err
	}
	return l.ShowDevTools()
}

// ClearCookies clears cookies through every ready panel.
func (m *Manager) ClearCookies() error {
	var errs []error
	cleared := 0
	for _, l := range m.list() {
		err := l.ClearCookies()
		if IsNotReady(err) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cleared++
	}
	if cleared == 0 && len(errs) == 0 {
		return ErrNotReady("*")
	}
	return errors.Join(errs...)
}

// LatestFrame returns the newest renderer frame of a panel.
func (m *Manager) LatestFrame(name string) (*frame.Frame, error) {
	l, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return l.LatestFrame()
}

// Close removes every panel and uninstalls the host patches.
func (m *Manager) Close() error {
	var errs []error
	for _, name := range m.Names() {
		if err := m.Remove(name); err != nil && !IsPanelNotFound(err) {
			errs = append(errs, err)
		}
	}
	if err := m.cfg.Hooks.Uninstall(); err != nil {
		errs = append(errs, err)
	}
	m.log.Info().Msg("event=close")
	return errors.Join(errs...)
}
