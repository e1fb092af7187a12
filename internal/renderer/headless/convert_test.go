package headless

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	cdpinput "github.com/chromedp/cdproto/input"

	"webvideo/internal/input"
)

func TestDecodeScreencastPNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	fr, err := decodeScreencast(base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fr.Width != 3 || fr.Height != 2 || !fr.Valid() {
		t.Fatalf("unexpected frame %dx%d", fr.Width, fr.Height)
	}
	if c := fr.Image().RGBAAt(1, 1); c.R != 10 || c.G != 20 || c.B != 30 {
		t.Fatalf("unexpected pixel %+v", c)
	}
}

func TestDecodeScreencastRejectsGarbage(t *testing.T) {
	if _, err := decodeScreencast("%%%"); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := decodeScreencast(base64.StdEncoding.EncodeToString([]byte("nope"))); err == nil {
		t.Fatalf("expected image error")
	}
}

func TestInputActionMouse(t *testing.T) {
	a, ok := inputAction(input.Event{Kind: input.MouseDown, X: 4, Y: 5, Button: input.ButtonLeft, Modifiers: input.ModShift})
	if !ok {
		t.Fatalf("expected action")
	}
	p, ok := a.(*cdpinput.DispatchMouseEventParams)
	if !ok {
		t.Fatalf("unexpected action type %T", a)
	}
	if p.Type != cdpinput.MousePressed || p.X != 4 || p.Y != 5 || p.Button != cdpinput.Left || p.ClickCount != 1 {
		t.Fatalf("unexpected params %+v", p)
	}
	if p.Modifiers != cdpinput.ModifierShift {
		t.Fatalf("unexpected modifiers %v", p.Modifiers)
	}
}

func TestInputActionWheelAndKeys(t *testing.T) {
	a, _ := inputAction(input.Event{Kind: input.MouseWheel, DeltaY: -120})
	if p := a.(*cdpinput.DispatchMouseEventParams); p.DeltaY != -120 {
		t.Fatalf("unexpected wheel delta %v", p.DeltaY)
	}
	a, _ = inputAction(input.Event{Kind: input.Char, Rune: 'q'})
	if p := a.(*cdpinput.DispatchKeyEventParams); p.Type != cdpinput.KeyChar || p.Text != "q" {
		t.Fatalf("unexpected char params %+v", p)
	}
	a, _ = inputAction(input.Event{Kind: input.KeyUp, Key: "Enter"})
	if p := a.(*cdpinput.DispatchKeyEventParams); p.Type != cdpinput.KeyUp || p.Key != "Enter" {
		t.Fatalf("unexpected key params %+v", p)
	}
	if _, ok := inputAction(input.Event{Kind: "bogus"}); ok {
		t.Fatalf("expected no action for unknown kind")
	}
}
