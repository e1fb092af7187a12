package headless

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	cdpinput "github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	xdraw "golang.org/x/image/draw"

	"webvideo/internal/frame"
	"webvideo/internal/input"
)

// decodeScreencast turns a base64 screencast payload into an RGBA frame.
func decodeScreencast(data string) (*frame.Frame, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("screencast base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("screencast image: %w", err)
	}
	return toFrame(img), nil
}

func toFrame(img image.Image) *frame.Frame {
	if rgba, ok := img.(*image.RGBA); ok {
		return frame.FromImage(rgba)
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return frame.New(dst.Pix, b.Dx(), b.Dy())
}

var mouseTypes = map[input.Kind]cdpinput.MouseType{
	input.MouseMove:  cdpinput.MouseMoved,
	input.MouseDown:  cdpinput.MousePressed,
	input.MouseUp:    cdpinput.MouseReleased,
	input.MouseWheel: cdpinput.MouseWheel,
}

var mouseButtons = map[input.Button]cdpinput.MouseButton{
	input.ButtonNone:   cdpinput.None,
	input.ButtonLeft:   cdpinput.Left,
	input.ButtonMiddle: cdpinput.Middle,
	input.ButtonRight:  cdpinput.Right,
}

func modifiers(m input.Modifier) cdpinput.Modifier {
	var out cdpinput.Modifier
	if m&input.ModAlt != 0 {
		out |= cdpinput.ModifierAlt
	}
	if m&input.ModCtrl != 0 {
		out |= cdpinput.ModifierCtrl
	}
	if m&input.ModMeta != 0 {
		out |= cdpinput.ModifierMeta
	}
	if m&input.ModShift != 0 {
		out |= cdpinput.ModifierShift
	}
	return out
}

// inputAction maps a panel-local event to a DevTools input command.
func inputAction(ev input.Event) (chromedp.Action, bool) {
	if mt, ok := mouseTypes[ev.Kind]; ok {
		p := cdpinput.DispatchMouseEvent(mt, float64(ev.X), float64(ev.Y)).
			WithButton(mouseButtons[ev.Button]).
			WithModifiers(modifiers(ev.Modifiers))
		switch ev.Kind {
		case input.MouseDown, input.MouseUp:
			p = p.WithClickCount(1)
		case input.MouseWheel:
			p = p.WithDeltaX(ev.DeltaX).WithDeltaY(ev.DeltaY)
		}
		return p, true
	}
	switch ev.Kind {
	case input.KeyDown:
		return cdpinput.DispatchKeyEvent(cdpinput.KeyRawDown).WithKey(ev.Key).WithModifiers(modifiers(ev.Modifiers)), true
	case input.KeyUp:
		return cdpinput.DispatchKeyEvent(cdpinput.KeyUp).WithKey(ev.Key).WithModifiers(modifiers(ev.Modifiers)), true
	case input.Char:
		return cdpinput.DispatchKeyEvent(cdpinput.KeyChar).WithText(string(ev.Rune)), true
	}
	return nil, false
}

func clearCookies() chromedp.Action {
	return network.ClearBrowserCookies()
}
