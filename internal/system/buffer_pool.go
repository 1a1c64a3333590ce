package system

import (
	"image"
	"sync"
)

// ImagePool keeps a few spare RGBA frames per size so the per-tick
// composite and the encoder repack do not allocate. Buffers are free-listed
// by size; a size seen by Get keeps at most limit spares.
type ImagePool struct {
	mu    sync.Mutex
	free  map[image.Point][]*image.RGBA
	limit int

	hits   int
	misses int
}

func NewImagePool(limit int) *ImagePool {
	if limit <= 0 {
		limit = 1
	}
	return &ImagePool{free: make(map[image.Point][]*image.RGBA), limit: limit}
}

var frames = NewImagePool(4)

// GetImage returns a buffer with the given bounds. Its contents are undefined.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.Get(rect)
}

// PutImage hands a buffer back for reuse.
func PutImage(img *image.RGBA) {
	frames.Put(img)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	size := rect.Size()

	p.mu.Lock()
	list, known := p.free[size]
	if n := len(list); n > 0 {
		img := list[n-1]
		p.free[size] = list[:n-1]
		p.hits++
		p.mu.Unlock()
		img.Rect = rect
		return img
	}
	if !known {
		p.free[size] = nil
	}
	p.misses++
	p.mu.Unlock()

	return image.NewRGBA(rect)
}

// Put drops nil buffers, sizes never requested and spares over the limit.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	size := img.Rect.Size()

	p.mu.Lock()
	defer p.mu.Unlock()
	list, known := p.free[size]
	if !known || len(list) >= p.limit {
		return
	}
	p.free[size] = append(list, img)
}

// Stats reports how many Gets were served from spares and how many allocated.
func (p *ImagePool) Stats() (hits, misses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
