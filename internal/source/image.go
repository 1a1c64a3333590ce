package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/framescrub/internal/catalog"
)

// ImageSource reads frames from a directory following the naming convention.
type ImageSource struct {
	naming catalog.Naming

	// MaxWidth downscales wider frames to bound the decoded cache (0 = off).
	MaxWidth int
}

func NewImageSource(naming catalog.Naming) *ImageSource {
	return &ImageSource{naming: naming}
}

func (s *ImageSource) Path(id int) string {
	return s.naming.Path(id)
}

func (s *ImageSource) Load(ctx context.Context, id int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.naming.Path(id))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", id, err)
	}
	if img, err = checkDimensions(id, img); err != nil {
		return nil, err
	}
	return downscale(img, s.MaxWidth), nil
}

// Dimensions reads only the header of a frame.
func (s *ImageSource) Dimensions(id int) (int, int, error) {
	f, err := os.Open(s.naming.Path(id))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func (s *ImageSource) Close() error {
	return nil
}

func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
