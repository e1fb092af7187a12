package host

import (
	"github.com/rs/zerolog"

	"webvideo/internal/frame"
	"webvideo/internal/hooks"
	"webvideo/internal/input"
	"webvideo/internal/panelstate"
	"webvideo/internal/relay"
)

// SyntheticSourcePatch teaches p to resolve relay video names
// ("webvideo:<panel>") through reg.
func SyntheticSourcePatch(p *Player, reg *relay.Registry) hooks.Patch {
	var prev Resolver
	resolver := func(name string) (PullFunc, bool) {
		src, ok := relay.SourceName(name)
		if !ok || !reg.Has(src) {
			return nil, false
		}
		return func() (*frame.Frame, bool) { return reg.Pull(src) }, true
	}
	return hooks.Func("synthetic-video-source",
		func() error {
			prev = p.SetSyntheticResolver(resolver)
			return nil
		},
		func() error {
			p.SetSyntheticResolver(prev)
			prev = nil
			return nil
		})
}

// CapturePatch routes input to the active relay-backed panel and keeps it
// from the default handlers.
func CapturePatch(d *Dispatcher, b *panelstate.Bridge, logger zerolog.Logger) hooks.Patch {
	log := logger.With().Str("component", "capture").Logger()
	var prev Interceptor
	return hooks.Func("input-capture",
		func() error {
			prev = d.SetInterceptor(func(ev input.Event) bool {
				return capture(b, ev, log)
			})
			return nil
		},
		func() error {
			d.SetInterceptor(prev)
			prev = nil
			return nil
		})
}

func capture(b *panelstate.Bridge, ev input.Event, log zerolog.Logger) bool {
	a := b.Current()
	if a == nil || a.Target == nil {
		return false
	}
	if ev.IsPointer() {
		if a.Bounds == nil {
			return false
		}
		local, ok := toLocal(ev, a.Bounds(), a.Size)
		if !ok {
			return false
		}
		ev = local
	}
	if err := a.Target.SendInput(ev); err != nil {
		log.Debug().Err(err).Str("panel", a.Panel).Str("kind", string(ev.Kind)).Msg("input not forwarded")
	}
	return true
}

// toLocal maps screen coordinates into renderer pixels. Events outside the
// panel are not translated.
func toLocal(ev input.Event, r frame.Rect, size frame.Size) (input.Event, bool) {
	if r.Width <= 0 || r.Height <= 0 || !r.Contains(ev.X, ev.Y) {
		return ev, false
	}
	if size.Empty() {
		size = r.Size()
	}
	ev.X = (ev.X - r.X) * size.Width / r.Width
	ev.Y = (ev.Y - r.Y) * size.Height / r.Height
	return ev, true
}
