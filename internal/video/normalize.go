package video

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Normalizer fits frames of any size into a fixed output size, letterboxed.
// An encoder stream cannot change its frame size after a viewport resize.
type Normalizer struct {
	Width      int
	Height     int
	Background color.Color
}

// Normalize returns img unchanged when it already has the output size.
// Otherwise it scales img into dst, which must have the output bounds.
func (n Normalizer) Normalize(dst *image.RGBA, img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == n.Width && b.Dy() == n.Height {
		return img
	}

	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(n.Background), image.Point{}, xdraw.Src)
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}

	// contain: keep the aspect ratio and center
	sx := float64(n.Width) / float64(b.Dx())
	sy := float64(n.Height) / float64(b.Dy())
	s := min(sx, sy)
	w := int(float64(b.Dx())*s + 0.5)
	h := int(float64(b.Dy())*s + 0.5)
	x := (n.Width - w) / 2
	y := (n.Height - h) / 2

	xdraw.ApproxBiLinear.Scale(dst, image.Rect(x, y, x+w, y+h), img, b, xdraw.Src, nil)
	return dst
}
