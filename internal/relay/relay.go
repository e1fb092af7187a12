// Package relay exposes renderer frames to the host video subsystem under
// stable names. Producers publish on their own cadence; the host pulls
// whatever frame is current without ever waiting for a new one.
package relay

import (
	"strings"

	"webvideo/internal/frame"
)

// VideoNamePrefix marks host video names that resolve to a relay.
const VideoNamePrefix = "webvideo:"

// VideoName returns the host video name of the relay registered as name.
func VideoName(name string) string { return VideoNamePrefix + name }

// SourceName strips VideoNamePrefix. ok is false for other video names.
func SourceName(video string) (name string, ok bool) {
	if !strings.HasPrefix(video, VideoNamePrefix) {
		return "", false
	}
	return strings.TrimPrefix(video, VideoNamePrefix), true
}

// Source is anything holding a latest frame.
type Source interface {
	LatestFrame() *frame.Frame
}

// PullFunc returns the current frame or nil. It must not block.
type PullFunc func() *frame.Frame

// Relay adapts one Source to a registry entry.
type Relay struct {
	name string
	src  Source
}

// New binds src to name.
func New(name string, src Source) *Relay {
	return &Relay{name: name, src: src}
}

func (r *Relay) Name() string { return r.name }

// Pull returns the source's latest frame.
func (r *Relay) Pull() *frame.Frame {
	if r == nil || r.src == nil {
		return nil
	}
	return r.src.LatestFrame()
}

// Register inserts the relay into reg, replacing any entry with the same name.
func (r *Relay) Register(reg *Registry) {
	reg.register(r.name, r.Pull, r)
}

// Unregister removes the relay from reg if it still owns its name. Once it
// returns, reg will not call Pull on this relay again.
func (r *Relay) Unregister(reg *Registry) bool {
	return reg.unregister(r.name, r)
}
