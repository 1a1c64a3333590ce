// Package chrome draws the page furniture around the frame sequence: the
// loading overlay, the persistent header and the corner tagline. It only
// consumes signals from the player and never feeds back into it.
package chrome

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/effects"
	"github.com/ivlev/framescrub/internal/renderer"
)

// Signals are the values the player exposes to the chrome.
type Signals struct {
	Percent    int
	Loaded     bool
	HeaderDark bool
}

// Intersection reports whether a section below the scroll area is in view.
// Top and Height are document offsets in CSS pixels.
type Intersection struct {
	Top       float64
	Height    float64
	Threshold float64
}

// Ratio is the visible fraction of the section for a scroll offset.
func (s Intersection) Ratio(offset, viewportH float64) float64 {
	if s.Height <= 0 {
		return 0
	}
	top := math.Max(s.Top, offset)
	bottom := math.Min(s.Top+s.Height, offset+viewportH)
	if bottom <= top {
		return 0
	}
	return (bottom - top) / s.Height
}

// Visible applies the threshold; a zero threshold means any overlap.
func (s Intersection) Visible(offset, viewportH float64) bool {
	r := s.Ratio(offset, viewportH)
	if s.Threshold <= 0 {
		return r > 0
	}
	return r >= s.Threshold
}

// LoaderOverlay covers the viewport until every frame has settled, then
// fades out.
type LoaderOverlay struct {
	props   effects.Props
	tweens  effects.Group
	fadeOut float64
	fading  bool
	gone    bool
}

func NewLoaderOverlay(fadeOut float64) *LoaderOverlay {
	return &LoaderOverlay{props: effects.Props{Alpha: 1, Scale: 1}, fadeOut: fadeOut}
}

// Update advances the fade. The fade starts on the first update with
// s.Loaded set.
func (l *LoaderOverlay) Update(s Signals, dt float64) {
	if s.Loaded && !l.fading {
		l.fading = true
		l.tweens.To(&l.props, effects.Props{Alpha: 0, Scale: 1}, effects.Options{
			Duration:   l.fadeOut,
			Ease:       effects.EasePower2InOut,
			OnComplete: func() { l.gone = true },
		})
	}
	l.tweens.Update(dt)
}

// Showing reports whether the overlay still covers the page.
func (l *LoaderOverlay) Showing() bool {
	return !l.gone
}

func (l *LoaderOverlay) Alpha() float64 {
	return l.props.Alpha
}

func (l *LoaderOverlay) Draw(dc *gg.Context, fonts *renderer.Fonts, s Signals, w, h, scale float64) error {
	if l.gone || l.props.Alpha <= 0 {
		return nil
	}
	a := l.props.Alpha

	dc.SetRGBA(0.094, 0.094, 0.106, a)
	dc.DrawRectangle(0, 0, w*scale, h*scale)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("failed to fill loader: %w", err)
	}

	label := fmt.Sprintf("%d%%", s.Percent)
	dc.SetFont(fonts.Face(true, 64*scale))
	dc.SetRGBA(1, 1, 1, a)
	renderer.DrawCentered(dc, []string{label}, w/2*scale, h/2*scale, 0)

	barW := math.Min(320, w*0.6)
	x := (w - barW) / 2
	y := h/2 + 32
	dc.SetRGBA(1, 1, 1, 0.15*a)
	dc.DrawRectangle(x*scale, y*scale, barW*scale, 2*scale)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("failed to fill progress track: %w", err)
	}
	dc.SetRGBA(1, 1, 1, a)
	dc.DrawRectangle(x*scale, y*scale, barW*float64(s.Percent)/100*scale, 2*scale)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("failed to fill progress bar: %w", err)
	}
	return nil
}

// DrawHeader paints the persistent title, dark over light sections.
func DrawHeader(dc *gg.Context, fonts *renderer.Fonts, title string, dark bool, scale float64) {
	if title == "" {
		return
	}
	dc.SetFont(fonts.Face(true, 18*scale))
	if dark {
		dc.SetRGBA(0.094, 0.094, 0.106, 1)
	} else {
		dc.SetRGBA(1, 1, 1, 1)
	}
	dc.DrawString(title, 24*scale, 40*scale)
}

// DrawTagline paints the bottom-left tagline with its scroll-bound fade.
func DrawTagline(dc *gg.Context, fonts *renderer.Fonts, t config.Tagline, alpha, shift, h, scale float64) {
	if alpha <= 0 || len(t.Lines) == 0 {
		return
	}
	const size = 20.0
	face := fonts.Face(false, size*scale)
	dc.SetFont(face)

	y := h - 24 - float64(len(t.Lines)-1)*size*1.4 + shift
	for i, line := range t.Lines {
		// the first line is the dimmer byline
		if i == 0 {
			dc.SetRGBA(1, 1, 1, 0.8*alpha)
		} else {
			dc.SetRGBA(1, 1, 1, alpha)
		}
		dc.DrawString(line, 24*scale, y*scale)
		y += size * 1.4
	}
}

// DrawSection paints the light section that follows the scroll area, from
// its current top edge down. top is relative to the viewport in CSS pixels.
func DrawSection(dc *gg.Context, fonts *renderer.Fonts, title string, top, w, h, scale float64) error {
	if top >= h {
		return nil
	}
	y := math.Max(top, 0)
	dc.SetRGBA(0.98, 0.98, 0.98, 1)
	dc.DrawRectangle(0, y*scale, w*scale, (h-y)*scale)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("failed to fill section: %w", err)
	}
	if title != "" {
		dc.SetFont(fonts.Face(true, 56*scale))
		dc.SetRGBA(0.094, 0.094, 0.106, 1)
		dc.DrawString(title, 24*scale, (top+120)*scale)
	}
	return nil
}
