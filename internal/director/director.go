package director

import (
	"fmt"
	"math"
)

// Director generates scroll scripts for a frame timeline
type Director struct {
	Total      int     // Frames in the timeline
	PerSegment int     // Frames per overlay segment
	Overscroll float64 // Progress past the timeline end that reveals the next section
	MinDwell   float64 // Minimum time per segment (seconds)
	MaxDwell   float64 // Maximum time per segment (seconds)
	Travel     float64 // Scroll time between two segments (seconds)
}

// NewDirector creates a new Director with default settings
func NewDirector(total, perSegment int) *Director {
	return &Director{
		Total:      total,
		PerSegment: perSegment,
		Overscroll: 1.0 / 16,
		MinDwell:   1.0,
		MaxDwell:   3.0,
		Travel:     0.6,
	}
}

func (d *Director) segments() int {
	if d.PerSegment <= 0 || d.Total <= 0 {
		return 0
	}
	return (d.Total + d.PerSegment - 1) / d.PerSegment
}

// progressOf converts a sequence position to timeline progress
func (d *Director) progressOf(pos int) float64 {
	if d.Total <= 1 {
		return 0
	}
	pos = min(max(pos, 0), d.Total-1)
	return float64(pos) / float64(d.Total-1)
}

// GenerateTour scrolls to the middle of every segment and dwells there so
// each overlay gets to finish its transition, then scrolls into the next
// section and back to the top.
func (d *Director) GenerateTour(totalDuration float64) (*Script, error) {
	count := d.segments()
	if count < 2 {
		return nil, fmt.Errorf("timeline too short for a tour: %d segments", count)
	}

	// segment 0 is the intro
	stops := count - 1
	dwell := d.calculateDwellTime(totalDuration, stops)

	steps := []Step{{Time: 0, Progress: 0, Label: "top"}}
	current := 1.0 // 1s intro
	steps = append(steps, Step{Time: current, Progress: 0})

	for seg := 1; seg <= stops; seg++ {
		center := seg*d.PerSegment + d.PerSegment/2
		p := d.progressOf(center)

		current += d.Travel
		steps = append(steps, Step{Time: current, Progress: p, Label: fmt.Sprintf("segment_%d", seg)})
		current += dwell
		steps = append(steps, Step{Time: current, Progress: p})
	}

	current += d.Travel
	steps = append(steps, Step{Time: current, Progress: 1 + d.Overscroll, Label: "section"})
	current += d.MinDwell
	steps = append(steps, Step{Time: current, Progress: 1 + d.Overscroll})

	// outro: a single long scroll back to the top
	current += d.Travel * 4
	steps = append(steps, Step{Time: current, Progress: 0, Label: "top"})

	return &Script{
		Version:  "1.0",
		Duration: current + 1,
		Steps:    steps,
	}, nil
}

// GenerateSweep scrolls linearly through the whole timeline and back. A
// third of the way in the viewport is resized when resize is set, and a few
// wheel nudges near the end exercise the relative input path.
func (d *Director) GenerateSweep(duration float64, resize *Resize) *Script {
	if duration <= 0 {
		duration = 20
	}
	forward := duration * 0.45
	hold := duration * 0.05
	backward := duration * 0.4

	t0 := 0.5
	steps := []Step{
		{Time: 0, Progress: 0, Label: "top"},
		{Time: t0, Progress: 0},
		{Time: t0 + forward, Progress: 1, Label: "end"},
		{Time: t0 + forward + hold, Progress: 1 + d.Overscroll, Label: "section"},
		{Time: t0 + forward + 2*hold, Progress: 1},
		{Time: t0 + forward + 2*hold + backward, Progress: 0, Label: "top"},
	}

	script := &Script{
		Version:  "1.0",
		Duration: math.Max(duration, t0+forward+2*hold+backward),
		Steps:    steps,
	}

	nudge := t0 + forward + 2*hold + backward
	for i := 0; i < 3; i++ {
		script.Wheel = append(script.Wheel, Wheel{Time: nudge + float64(i)*0.1, Delta: 120})
	}
	if nudge+0.3 > script.Duration {
		script.Duration = nudge + 0.5
	}

	if resize != nil {
		r := *resize
		r.Time = t0 + forward/3
		script.Resizes = append(script.Resizes, r)
	}
	return script
}

// calculateDwellTime determines how long to hold each segment
func (d *Director) calculateDwellTime(totalDuration float64, stops int) float64 {
	// Reserve time for intro/outro and scrolling between stops
	reserved := 2.0 + d.Travel*float64(stops+5)
	available := totalDuration - reserved

	if available <= 0 {
		available = totalDuration
	}

	dwell := available / float64(stops)

	// Clamp to min/max
	if dwell < d.MinDwell {
		dwell = d.MinDwell
	}
	if dwell > d.MaxDwell {
		dwell = d.MaxDwell
	}

	return dwell
}
