package frame

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"
)

func TestMailboxLatestEmpty(t *testing.T) {
	var m Mailbox
	if f := m.Latest(); f != nil {
		t.Fatalf("expected nil frame, got %+v", f)
	}
	if m.Published() != 0 {
		t.Fatalf("expected 0 published")
	}
}

func TestMailboxOverwritesAndStampsSeq(t *testing.T) {
	var m Mailbox
	a := New(make([]byte, 4), 1, 1)
	b := New(make([]byte, 4), 1, 1)
	m.Publish(a)
	m.Publish(b)
	got := m.Latest()
	if got != b {
		t.Fatalf("expected latest frame to be b")
	}
	if a.Seq != 1 || b.Seq != 2 {
		t.Fatalf("unexpected seq a=%d b=%d", a.Seq, b.Seq)
	}
	// Repeated reads return the same frame.
	if m.Latest() != b {
		t.Fatalf("expected stale read to return b again")
	}
	m.Reset()
	if m.Latest() != nil {
		t.Fatalf("expected nil after reset")
	}
}

func TestMailboxConcurrentReadersSeeWholeFrames(t *testing.T) {
	var m Mailbox
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := byte(i)
			pix := []byte{v, v, v, v, v, v, v, v}
			m.Publish(New(pix, 2, 1))
		}
	}()
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		f := m.Latest()
		if f == nil {
			continue
		}
		for _, p := range f.Pix {
			if p != f.Pix[0] {
				t.Fatalf("torn frame: %v", f.Pix)
			}
		}
	}
	close(stop)
	wg.Wait()
}

func TestFromImageCopiesSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)
	f := FromImage(sub)
	if f.Width != 2 || f.Height != 2 || !f.Valid() {
		t.Fatalf("unexpected frame %dx%d valid=%v", f.Width, f.Height, f.Valid())
	}
	if got := f.Image().RGBAAt(0, 0); got.R != 9 || got.G != 8 || got.B != 7 {
		t.Fatalf("unexpected pixel %+v", got)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	if !r.Contains(10, 14) || r.Contains(15, 10) || r.Contains(9, 12) {
		t.Fatalf("contains mismatch for %+v", r)
	}
	if (Size{Width: 0, Height: 3}).Empty() != true {
		t.Fatalf("expected empty size")
	}
}
