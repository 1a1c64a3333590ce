package source

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/framescrub/internal/config"
)

// ErrNoDimensions marks a decoded frame without natural width or height.
var ErrNoDimensions = errors.New("frame has no natural dimensions")

// Source loads one frame image by its identifier.
type Source interface {
	Load(ctx context.Context, id int) (image.Image, error)
	Close() error
}

// Open picks the frame source described by the config.
func Open(cfg *config.Config) (Source, error) {
	if cfg.Frames.PDF != "" {
		return NewFitzPDFSource(cfg.Frames.PDF, cfg.Frames.DPI)
	}
	src := NewImageSource(cfg.Naming())
	src.MaxWidth = cfg.Frames.MaxWidth
	return src, nil
}

// FitzPDFSource treats every PDF page as a frame: identifier n is page n-1.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) Load(ctx context.Context, id int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := id - 1
	if page < 0 || page >= f.doc.NumPage() {
		return nil, fmt.Errorf("frame %d: page out of range (pages: %d)", id, f.doc.NumPage())
	}

	// one document per load so parallel loads do not share MuPDF state
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(page, float64(f.dpi))
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", id, err)
	}
	return checkDimensions(id, img)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

func checkDimensions(id int, img image.Image) (image.Image, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("frame %d: %w", id, ErrNoDimensions)
	}
	return img, nil
}
