// Package resolver picks the image to paint for a sequence position when the
// exact frame may not have loaded yet.
package resolver

import (
	"image"

	"github.com/ivlev/framescrub/internal/catalog"
)

// Lookup reports loaded frames by identifier.
type Lookup interface {
	Image(id int) (image.Image, bool)
}

// Resolve returns the frame at pos if loaded, else the nearest loaded frame
// searching backward to 0, else forward to the end. ok is false only when
// nothing has loaded. at is the position actually resolved.
func Resolve(frames catalog.FrameList, lookup Lookup, pos int) (img image.Image, at int, ok bool) {
	n := frames.Len()
	if n == 0 {
		return nil, 0, false
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= n {
		pos = n - 1
	}

	for p := pos; p >= 0; p-- {
		if img, ok := lookup.Image(frames.ID(p)); ok {
			return img, p, true
		}
	}
	for p := pos + 1; p < n; p++ {
		if img, ok := lookup.Image(frames.ID(p)); ok {
			return img, p, true
		}
	}
	return nil, 0, false
}
