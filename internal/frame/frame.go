package frame

import (
	"fmt"
	"image"
	"time"
)

// Size is a pixel extent.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect is an on-screen rectangle in device pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size returns the extent of the rectangle.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.Width && y < r.Y+r.Height
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Frame is an immutable RGBA snapshot produced by a renderer.
//
// Pix MUST NOT be modified once the frame has been published; consumers
// share it by reference.
type Frame struct {
	Pix       []byte
	Stride    int
	Width     int
	Height    int
	Timestamp time.Time
	// Seq is assigned by the Mailbox on publish.
	Seq uint64
}

// New wraps an RGBA pixel buffer. The stride defaults to 4*width.
func New(pix []byte, width, height int) *Frame {
	return &Frame{
		Pix:       pix,
		Stride:    4 * width,
		Width:     width,
		Height:    height,
		Timestamp: time.Now(),
	}
}

// FromImage copies img into a new frame.
func FromImage(img *image.RGBA) *Frame {
	b := img.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*4*b.Dx():], img.Pix[off:off+4*b.Dx()])
	}
	return New(pix, b.Dx(), b.Dy())
}

// Size returns the frame extent.
func (f *Frame) Size() Size { return Size{Width: f.Width, Height: f.Height} }

// Image returns a read-only view of the frame without copying.
func (f *Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Valid reports whether the buffer is large enough for the declared extent.
func (f *Frame) Valid() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 || f.Stride < 4*f.Width {
		return false
	}
	return len(f.Pix) >= f.Stride*(f.Height-1)+4*f.Width
}
