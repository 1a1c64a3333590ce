// Package timeline maps scroll input onto the frame sequence: inertial
// smoothing, scrub lag, the position/segment driver and scroll-bound fades.
package timeline

import (
	"math"

	"github.com/ivlev/framescrub/internal/overlay"
)

// Hooks receive the driver's side effects. Draw reports whether a frame was
// actually painted; segment changes are only evaluated after a paint.
type Hooks interface {
	Draw(pos int) bool
	SegmentChanged(prev, next int)
}

const noPosition = -1

type Driver struct {
	total      int
	perSegment int
	distance   float64
	hooks      Hooks

	active    bool
	lastDrawn int
	segment   int
}

// NewDriver binds a total-frame sequence to distance CSS pixels of scroll.
func NewDriver(total, perSegment int, distance float64, hooks Hooks) *Driver {
	return &Driver{
		total:      total,
		perSegment: perSegment,
		distance:   distance,
		hooks:      hooks,
		lastDrawn:  noPosition,
	}
}

// Progress normalizes a scroll offset over the timeline distance.
func (d *Driver) Progress(offset float64) float64 {
	if d.distance <= 0 {
		return 0
	}
	return clamp(offset/d.distance, 0, 1)
}

// PositionAt rounds a progress in [0, 1] to a sequence position.
func (d *Driver) PositionAt(progress float64) int {
	if d.total <= 0 {
		return 0
	}
	return int(math.Round(clamp(progress, 0, 1) * float64(d.total-1)))
}

func (d *Driver) Position(offset float64) int {
	return d.PositionAt(d.Progress(offset))
}

// Activate starts reacting to updates. Before activation Update is a no-op.
func (d *Driver) Activate() {
	d.active = true
}

func (d *Driver) Active() bool {
	return d.active
}

// Update applies a timeline progress. It returns true when a new frame was
// drawn. The segment transition, if any, fires after the draw.
func (d *Driver) Update(progress float64) bool {
	if !d.active {
		return false
	}
	pos := d.PositionAt(progress)
	if pos == d.lastDrawn {
		return false
	}
	if !d.hooks.Draw(pos) {
		return false
	}
	d.lastDrawn = pos

	seg := overlay.SegmentOf(pos, d.perSegment)
	if seg != d.segment {
		prev := d.segment
		d.segment = seg
		d.hooks.SegmentChanged(prev, seg)
	}
	return true
}

// LastDrawn returns the last painted position.
func (d *Driver) LastDrawn() (int, bool) {
	return d.lastDrawn, d.lastDrawn != noPosition
}

func (d *Driver) Segment() int {
	return d.segment
}

// SetDistance rebinds the scroll distance after a viewport resize.
func (d *Driver) SetDistance(distance float64) {
	d.distance = distance
}

// Fade is a scroll-bound fade-out of a fixed UI element, independent of the
// frame timeline.
type Fade struct {
	Start    float64
	Distance float64
	// Shift is how far the element moves down while fading, in CSS pixels.
	Shift float64
}

// At returns the element opacity and vertical shift for a scroll offset.
func (f Fade) At(offset float64) (alpha, y float64) {
	var p float64
	switch {
	case f.Distance <= 0:
		if offset >= f.Start {
			p = 1
		}
	default:
		p = clamp((offset-f.Start)/f.Distance, 0, 1)
	}
	return 1 - p, f.Shift * p
}
