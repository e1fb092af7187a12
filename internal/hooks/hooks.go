// Package hooks installs the process-wide patches that let the host video
// subsystem play relay-backed sources and let relay-backed panels capture
// input. A single Registry is constructed at startup and injected wherever
// panels are created.
package hooks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Patch is one reversible change to the host.
type Patch interface {
	Name() string
	Apply() error
	Revert() error
}

// Registry applies its patches at most once per install cycle.
type Registry struct {
	mu        sync.Mutex
	patches   []Patch
	installed bool
	log       zerolog.Logger
}

func New(logger zerolog.Logger, patches ...Patch) *Registry {
	return &Registry{
		patches: patches,
		log:     logger.With().Str("component", "hooks").Logger(),
	}
}

// Installed reports whether the patches are in effect.
func (r *Registry) Installed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installed
}

// Install applies every patch in order. It is a no-op when already
// installed. If a patch fails, the ones already applied are reverted.
func (r *Registry) Install() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.installed {
		return nil
	}
	for i, p := range r.patches {
		if err := p.Apply(); err != nil {
			rerr := revertAll(r.patches[:i])
			r.log.Error().Err(err).Str("patch", p.Name()).Msg("hook install failed")
			return errors.Join(fmt.Errorf("apply %s: %w", p.Name(), err), rerr)
		}
		r.log.Debug().Str("patch", p.Name()).Msg("patch applied")
	}
	r.installed = true
	r.log.Info().Int("patches", len(r.patches)).Msg("hooks installed")
	return nil
}

// Uninstall reverts every patch in reverse order. It is a no-op when not
// installed.
func (r *Registry) Uninstall() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.installed {
		return nil
	}
	err := revertAll(r.patches)
	r.installed = false
	r.log.Info().Msg("hooks uninstalled")
	return err
}

func revertAll(patches []Patch) error {
	var errs []error
	for i := len(patches) - 1; i >= 0; i-- {
		if err := patches[i].Revert(); err != nil {
			errs = append(errs, fmt.Errorf("revert %s: %w", patches[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Func builds a Patch from two functions.
func Func(name string, apply, revert func() error) Patch {
	return funcPatch{name: name, apply: apply, revert: revert}
}

type funcPatch struct {
	name          string
	apply, revert func() error
}

func (p funcPatch) Name() string { return p.name }

func (p funcPatch) Apply() error {
	if p.apply == nil {
		return nil
	}
	return p.apply()
}

func (p funcPatch) Revert() error {
	if p.revert == nil {
		return nil
	}
	return p.revert()
}
