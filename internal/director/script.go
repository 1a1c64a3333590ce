package director

import (
	"errors"
	"fmt"
	"sort"
)

var ErrEmptyScript = errors.New("scroll script has no steps")

// Script is a recorded scroll session played against the frame timeline.
type Script struct {
	Version  string   `yaml:"version"`
	Duration float64  `yaml:"duration"` // Total duration in seconds
	Steps    []Step   `yaml:"steps"`
	Wheel    []Wheel  `yaml:"wheel,omitempty"`
	Resizes  []Resize `yaml:"resizes,omitempty"`
}

// Step is a scroll keyframe. Progress is relative to the timeline distance:
// 0 is the top, 1 the last frame, values above 1 scroll into the section
// below the sequence.
type Step struct {
	Time     float64 `yaml:"time"`
	Progress float64 `yaml:"progress"`
	Label    string  `yaml:"label,omitempty"`
}

// Wheel is a relative scroll input in CSS pixels.
type Wheel struct {
	Time  float64 `yaml:"time"`
	Delta float64 `yaml:"delta"`
}

// Resize changes the viewport mid-session.
type Resize struct {
	Time   float64 `yaml:"time"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	DPR    float64 `yaml:"dpr"`
}

// Validate checks the script and sorts every track by time.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	if s.Duration <= 0 {
		return fmt.Errorf("script duration must be positive, got %.2f", s.Duration)
	}
	for _, r := range s.Resizes {
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("resize at %.2fs: invalid viewport %dx%d", r.Time, r.Width, r.Height)
		}
	}

	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].Time < s.Steps[j].Time })
	sort.SliceStable(s.Wheel, func(i, j int) bool { return s.Wheel[i].Time < s.Wheel[j].Time })
	sort.SliceStable(s.Resizes, func(i, j int) bool { return s.Resizes[i].Time < s.Resizes[j].Time })
	return nil
}

// ProgressAt interpolates the scroll keyframes linearly. Before the first
// and after the last step the edge value holds.
func (s *Script) ProgressAt(t float64) float64 {
	if len(s.Steps) == 0 {
		return 0
	}
	if t <= s.Steps[0].Time {
		return s.Steps[0].Progress
	}
	last := s.Steps[len(s.Steps)-1]
	if t >= last.Time {
		return last.Progress
	}

	i := sort.Search(len(s.Steps), func(i int) bool { return s.Steps[i].Time > t })
	a, b := s.Steps[i-1], s.Steps[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Progress
	}
	k := (t - a.Time) / span
	return a.Progress + (b.Progress-a.Progress)*k
}

// WheelBetween sums the wheel input in (from, to].
func (s *Script) WheelBetween(from, to float64) float64 {
	var sum float64
	for _, w := range s.Wheel {
		if w.Time > from && w.Time <= to {
			sum += w.Delta
		}
	}
	return sum
}

// ResizesBetween returns the resizes in (from, to].
func (s *Script) ResizesBetween(from, to float64) []Resize {
	var out []Resize
	for _, r := range s.Resizes {
		if r.Time > from && r.Time <= to {
			out = append(out, r)
		}
	}
	return out
}
