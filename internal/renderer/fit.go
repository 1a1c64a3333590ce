package renderer

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// FitMode is the aspect-preserving scaling policy.
type FitMode int

const (
	// Cover fills the canvas and center-crops the overflow.
	Cover FitMode = iota
	// Contain shows the whole image and letterboxes the rest.
	Contain
)

func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(s) {
	case "cover", "":
		return Cover, nil
	case "contain":
		return Contain, nil
	default:
		return Cover, fmt.Errorf("unknown fit mode: %s", s)
	}
}

func (m FitMode) String() string {
	if m == Contain {
		return "contain"
	}
	return "cover"
}

// Placement is the drawn rectangle in CSS pixels. It may extend past the canvas.
type Placement struct {
	X, Y, W, H float64
}

// Fit computes where an iw x ih image lands on a cw x ch canvas.
// ok is false for a zero-area canvas or an image without dimensions.
func Fit(mode FitMode, cw, ch, iw, ih float64) (Placement, bool) {
	if cw <= 0 || ch <= 0 || iw <= 0 || ih <= 0 {
		return Placement{}, false
	}

	cr := cw / ch
	ir := iw / ih

	// cover: a wider image fits height and crops the sides; contain mirrors it
	fitHeight := ir > cr
	if mode == Contain {
		fitHeight = !fitHeight
	}

	var p Placement
	if fitHeight {
		p.H = ch
		p.W = p.H * ir
		p.Y = 0
		p.X = (cw - p.W) / 2
	} else {
		p.W = cw
		p.H = p.W / ir
		p.X = 0
		p.Y = (ch - p.H) / 2
	}
	return p, true
}

// Visible clips the placement to the canvas and maps the clipped area back
// to image pixels. Cover crops therefore come out of the source rectangle.
func (p Placement) Visible(cw, ch, iw, ih float64) (src image.Rectangle, dst Placement, ok bool) {
	if p.W <= 0 || p.H <= 0 {
		return image.Rectangle{}, Placement{}, false
	}

	x0 := math.Max(p.X, 0)
	y0 := math.Max(p.Y, 0)
	x1 := math.Min(p.X+p.W, cw)
	y1 := math.Min(p.Y+p.H, ch)
	if x1 <= x0 || y1 <= y0 {
		return image.Rectangle{}, Placement{}, false
	}

	sx := iw / p.W
	sy := ih / p.H
	src = image.Rect(
		int(math.Round((x0-p.X)*sx)),
		int(math.Round((y0-p.Y)*sy)),
		int(math.Round((x1-p.X)*sx)),
		int(math.Round((y1-p.Y)*sy)),
	)
	if src.Empty() {
		return image.Rectangle{}, Placement{}, false
	}
	return src, Placement{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}
