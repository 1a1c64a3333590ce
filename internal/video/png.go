package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes every frame as a numbered PNG file.
type PNGSequence struct {
	dir     string
	prefix  string
	frames  int
	encoder png.Encoder
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &PNGSequence{
		dir:     dir,
		prefix:  "frame_",
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

func (s *PNGSequence) Path(n int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%05d.png", s.prefix, n))
}

func (s *PNGSequence) WriteFrame(img image.Image) error {
	f, err := os.Create(s.Path(s.frames))
	if err != nil {
		return err
	}
	if err := s.encoder.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode frame %d: %w", s.frames, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.frames++
	return nil
}

func (s *PNGSequence) Frames() int {
	return s.frames
}

func (s *PNGSequence) Close() error {
	return nil
}

// Multi fans every frame out to several sinks.
type Multi []FrameSink

func (m Multi) WriteFrame(img image.Image) error {
	for _, s := range m {
		if err := s.WriteFrame(img); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
