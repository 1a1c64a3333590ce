package renderer

import (
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
)

// MaxPixelRatio caps the backing-store density.
const MaxPixelRatio = 2.0

// Background is the page color shown where the frame does not reach.
var Background = gg.RGBA{R: 0.094, G: 0.094, B: 0.106, A: 1}

// Canvas is the full-viewport drawing surface. Coordinates passed to it are
// CSS pixels; the backing store is CSS size times the capped pixel ratio.
type Canvas struct {
	dc    *gg.Context
	cssW  int
	cssH  int
	ratio float64

	last  Placement
	drawn bool

	// converted copy of the last drawn frame
	bufSrc image.Image
	buf    *gg.ImageBuf

	// backing store as an image buffer, nil when stale
	snap *gg.ImageBuf
}

func NewCanvas(cssW, cssH int, devicePixelRatio float64) *Canvas {
	c := &Canvas{dc: gg.NewContext(1, 1)}
	c.Resize(cssW, cssH, devicePixelRatio)
	return c
}

// PixelRatio returns min(dpr, MaxPixelRatio), treating unset as 1.
func PixelRatio(devicePixelRatio float64) float64 {
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	return math.Min(devicePixelRatio, MaxPixelRatio)
}

// Resize reallocates the backing store and sets the CSS-to-device scale once.
// The canvas is cleared; the caller redraws its last position.
func (c *Canvas) Resize(cssW, cssH int, devicePixelRatio float64) {
	if cssW < 0 {
		cssW = 0
	}
	if cssH < 0 {
		cssH = 0
	}
	c.cssW, c.cssH = cssW, cssH
	c.ratio = PixelRatio(devicePixelRatio)

	w := int(math.Floor(float64(cssW) * c.ratio))
	h := int(math.Floor(float64(cssH) * c.ratio))
	// gg refuses empty surfaces; a collapsed layout keeps a 1x1 store and never draws
	_ = c.dc.Resize(max(w, 1), max(h, 1))
	c.dc.Identity()
	c.dc.Scale(c.ratio, c.ratio)
	c.Clear()
}

func (c *Canvas) Clear() {
	c.dc.ClearWithColor(Background)
	c.snap = nil
}

// Draw paints img with the fit policy. It is a no-op, returning false, on a
// zero-area canvas or an image without dimensions.
func (c *Canvas) Draw(img image.Image, mode FitMode) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	cw, ch := float64(c.cssW), float64(c.cssH)
	iw, ih := float64(b.Dx()), float64(b.Dy())

	p, ok := Fit(mode, cw, ch, iw, ih)
	if !ok {
		return false
	}
	src, dst, ok := p.Visible(cw, ch, iw, ih)
	if !ok {
		return false
	}
	src = src.Add(b.Min)

	c.Clear()
	c.dc.DrawImageEx(c.imageBuf(img), gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.W,
		DstHeight:     dst.H,
		SrcRect:       &src,
		Interpolation: gg.InterpBicubic,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})

	c.last = p
	c.drawn = true
	c.snap = nil
	return true
}

func (c *Canvas) imageBuf(img image.Image) *gg.ImageBuf {
	// decoded frames are pointer types, so identity comparison is safe
	if c.buf == nil || c.bufSrc != img {
		c.buf = gg.ImageBufFromImage(img)
		c.bufSrc = img
	}
	return c.buf
}

// Last returns the placement of the most recent successful draw.
func (c *Canvas) Last() (Placement, bool) {
	return c.last, c.drawn
}

// Size returns the CSS size.
func (c *Canvas) Size() (int, int) {
	return c.cssW, c.cssH
}

// BackingSize returns the device-pixel size of the store.
func (c *Canvas) BackingSize() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

func (c *Canvas) Scale() float64 {
	return c.ratio
}

// Image returns a copy of the backing store. Later draws do not show
// through it and writes to it do not reach the canvas.
func (c *Canvas) Image() *image.RGBA {
	src := c.dc.Image()
	dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Snapshot returns the backing store for compositing. The buffer is cached
// until the next draw, clear or resize.
func (c *Canvas) Snapshot() *gg.ImageBuf {
	if c.snap == nil {
		c.snap = gg.ImageBufFromImage(c.dc.Image())
	}
	return c.snap
}

// Release drops the cached frame and the drawing state.
func (c *Canvas) Release() {
	c.buf = nil
	c.bufSrc = nil
	c.snap = nil
	c.drawn = false
	_ = c.dc.Close()
}
