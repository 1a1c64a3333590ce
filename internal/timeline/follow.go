package timeline

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// follower eases a value toward a moving target. Every retarget starts a
// fresh curve from the current value, so fast input produces a lagging,
// decelerating response.
type follower struct {
	duration float64
	easing   ease.TweenFunc

	value  float64
	target float64
	curve  *gween.Tween
}

func (f *follower) retarget(target float64) {
	if target == f.target && (f.curve != nil || f.value == target) {
		return
	}
	f.target = target
	if f.duration <= 0 {
		f.value = target
		f.curve = nil
		return
	}
	f.curve = gween.New(float32(f.value), float32(target), float32(f.duration), f.easing)
}

func (f *follower) jump(v float64) {
	f.value = v
	f.target = v
	f.curve = nil
}

func (f *follower) update(dt float64) float64 {
	if f.curve == nil {
		return f.value
	}
	v, done := f.curve.Update(float32(dt))
	if done {
		f.value = f.target
		f.curve = nil
		return f.value
	}
	f.value = float64(v)
	return f.value
}

func (f *follower) settled() bool {
	return f.curve == nil
}

// Smoother is the inertial scroll layer between raw input and the timeline.
// Absolute scrolls reach their target exactly; wheel deltas are scaled by
// the wheel multiplier.
type Smoother struct {
	f          follower
	multiplier float64
	limit      float64
}

func NewSmoother(duration, wheelMultiplier, limit float64) *Smoother {
	return &Smoother{
		f:          follower{duration: duration, easing: ease.OutExpo},
		multiplier: wheelMultiplier,
		limit:      limit,
	}
}

func (s *Smoother) clamp(v float64) float64 {
	return clamp(v, 0, s.limit)
}

// ScrollTo eases toward an absolute offset in CSS pixels.
func (s *Smoother) ScrollTo(offset float64) {
	s.f.retarget(s.clamp(offset))
}

// Wheel moves the target by delta times the wheel multiplier.
func (s *Smoother) Wheel(delta float64) {
	s.f.retarget(s.clamp(s.f.target + delta*s.multiplier))
}

// SetLimit updates the scrollable range, e.g. after a viewport resize.
func (s *Smoother) SetLimit(limit float64) {
	s.limit = limit
	if s.f.value > limit {
		s.f.jump(limit)
	} else if s.f.target > limit {
		s.f.retarget(limit)
	}
}

func (s *Smoother) Update(dt float64) float64 {
	return s.f.update(dt)
}

func (s *Smoother) Offset() float64 {
	return s.f.value
}

func (s *Smoother) Target() float64 {
	return s.f.target
}

func (s *Smoother) Settled() bool {
	return s.f.settled()
}

// Scrub is the timeline's catch-up lag: progress trails the scroll progress
// and converges over lag seconds. A zero lag links them directly.
type Scrub struct {
	f follower
}

func NewScrub(lag float64) *Scrub {
	// power3.out
	return &Scrub{f: follower{duration: lag, easing: ease.OutQuart}}
}

func (s *Scrub) Update(progress, dt float64) float64 {
	s.f.retarget(clamp(progress, 0, 1))
	return s.f.update(dt)
}

func (s *Scrub) Progress() float64 {
	return s.f.value
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
