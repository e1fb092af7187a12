package panel

import "webvideo/internal/frame"

// State is the lifecycle state of a panel.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateCreated       State = "created"
	StateAwaitingReady State = "awaiting_ready"
	StateReady         State = "ready"
	StateRemoved       State = "removed"
)

// Snapshot is a read-only projection of a Lifecycle.
type Snapshot struct {
	Name        string
	State       State
	URL         string
	Size        frame.Size
	Rect        frame.Rect
	Busy        bool
	Visible     bool
	Playing     bool
	Draws       uint64
	Skipped     uint64
	LastMessage string
}
