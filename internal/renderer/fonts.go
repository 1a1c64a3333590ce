package renderer

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts holds the bundled faces used by overlays and chrome.
type Fonts struct {
	regular *text.FontSource
	bold    *text.FontSource
}

func LoadFonts() (*Fonts, error) {
	regular, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		_ = regular.Close()
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

// Face returns a face of size device pixels.
func (f *Fonts) Face(bold bool, size float64) text.Face {
	if size < 1 {
		size = 1
	}
	if bold {
		return f.bold.Face(size)
	}
	return f.regular.Face(size)
}

// Wrap splits s into lines no wider than maxWidth in the given face.
func Wrap(s string, face text.Face, maxWidth float64) []string {
	var lines []string
	for _, r := range text.WrapText(s, face, maxWidth, text.WrapWord) {
		lines = append(lines, r.Text)
	}
	return lines
}

// DrawCentered draws lines centered on cx starting with the first baseline
// at y, and returns the y below the last line.
func DrawCentered(dc *gg.Context, lines []string, cx, y, lineHeight float64) float64 {
	for _, line := range lines {
		w, _ := dc.MeasureString(line)
		dc.DrawString(line, cx-w/2, y)
		y += lineHeight
	}
	return y
}

func (f *Fonts) Close() error {
	errR := f.regular.Close()
	errB := f.bold.Close()
	if errR != nil {
		return errR
	}
	return errB
}
