package host

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"webvideo/internal/frame"
)

// fitRect returns where a src-sized image lands inside dst for mode.
func fitRect(src image.Point, dst image.Rectangle, mode FitMode) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	if src.X <= 0 || src.Y <= 0 || dw <= 0 || dh <= 0 {
		return image.Rectangle{}
	}
	var w, h int
	switch mode {
	case FitStretch:
		return dst
	case FitCenter:
		w, h = src.X, src.Y
	case FitFill:
		if dw*src.Y > dh*src.X {
			w, h = dw, (src.Y*dw+src.X/2)/src.X
		} else {
			w, h = (src.X*dh+src.Y/2)/src.Y, dh
		}
	default:
		if dw*src.Y > dh*src.X {
			w, h = (src.X*dh+src.Y/2)/src.Y, dh
		} else {
			w, h = dw, (src.Y*dw+src.X/2)/src.X
		}
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func drawFrame(canvas *image.RGBA, f *frame.Frame, target image.Rectangle, tint color.RGBA, fit FitMode, flip bool) {
	if !f.Valid() {
		return
	}
	src := f.Image()
	if flip {
		src = flipVertical(src)
	}
	placed := fitRect(image.Pt(f.Width, f.Height), target, fit)
	clip := placed.Intersect(target).Intersect(canvas.Bounds())
	if clip.Empty() {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, placed.Dx(), placed.Dy()))
	if placed.Dx() == f.Width && placed.Dy() == f.Height {
		xdraw.Copy(scaled, image.Point{}, src, src.Bounds(), xdraw.Src, nil)
	} else {
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}
	if tint != White {
		applyTint(scaled, tint)
	}
	xdraw.Draw(canvas, clip, scaled, clip.Min.Sub(placed.Min), xdraw.Over)
}

func flipVertical(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	row := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		from := src.PixOffset(b.Min.X, b.Max.Y-1-y)
		copy(out.Pix[y*out.Stride:y*out.Stride+row], src.Pix[from:from+row])
	}
	return out
}

// applyTint multiplies premultiplied channels by tint.
func applyTint(img *image.RGBA, tint color.RGBA) {
	mul := [4]uint32{uint32(tint.R), uint32(tint.G), uint32(tint.B), uint32(tint.A)}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		for c := 0; c < 4; c++ {
			img.Pix[i+c] = uint8((uint32(img.Pix[i+c])*mul[c] + 127) / 255)
		}
	}
}
