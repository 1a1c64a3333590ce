package video

import (
	"fmt"
	"strings"
)

type FilterParams struct {
	Width    int
	Height   int
	FadeIn   float64
	FadeOut  float64
	Duration float64 // Total length in seconds, needed to place the fade-out
}

// BuildFilter returns the ffmpeg -vf chain for the recording: an optional
// final scale and fades at both ends. An empty string means no filter.
func BuildFilter(p FilterParams) string {
	var parts []string
	if p.Width > 0 && p.Height > 0 {
		parts = append(parts, fmt.Sprintf("scale=%d:%d:flags=lanczos", p.Width, p.Height))
	}
	if p.FadeIn > 0 {
		parts = append(parts, fmt.Sprintf("fade=t=in:st=0:d=%.3f", p.FadeIn))
	}
	if p.FadeOut > 0 && p.Duration > p.FadeOut {
		parts = append(parts, fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", p.Duration-p.FadeOut, p.FadeOut))
	}
	return strings.Join(parts, ",")
}
