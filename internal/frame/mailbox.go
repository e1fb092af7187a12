package frame

import "sync/atomic"

// Mailbox holds the most recent frame of a producer.
//
// Publish overwrites the previous frame; Latest never blocks and never
// consumes, so a slow reader sees the same frame across several calls and a
// fast producer simply overwrites frames nobody looked at.
type Mailbox struct {
	latest atomic.Pointer[Frame]
	seq    atomic.Uint64
}

// Publish makes f the latest frame and stamps its sequence number.
// f MUST NOT be modified afterwards.
func (m *Mailbox) Publish(f *Frame) {
	if f == nil {
		return
	}
	f.Seq = m.seq.Add(1)
	m.latest.Store(f)
}

// Latest returns the most recent frame, or nil if none was published yet.
func (m *Mailbox) Latest() *Frame { return m.latest.Load() }

// Reset drops the held frame.
func (m *Mailbox) Reset() { m.latest.Store(nil) }

// Published returns the number of frames published so far.
func (m *Mailbox) Published() uint64 { return m.seq.Load() }
