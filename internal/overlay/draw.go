package overlay

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/renderer"
)

// Layout in CSS pixels.
const (
	blockMaxWidth  = 560.0
	blockTitleSize = 44.0
	blockBodySize  = 18.0

	panelHeightRatio = 0.42
	panelMargin      = 24.0
	panelPadding     = 32.0
	panelTitleSize   = 32.0
	panelBodySize    = 16.0
	buttonHeight     = 40.0
	buttonGap        = 12.0
	qrSize           = 96.0
)

// Draw composites every slot with a non-zero alpha. w and h are the CSS
// viewport size; scale maps CSS pixels to the device pixels of dc.
func (m *Machine) Draw(dc *gg.Context, fonts *renderer.Fonts, w, h, scale float64) error {
	for i, s := range m.text {
		if s.Props.Alpha > 0 {
			drawBlock(dc, fonts, m.content.Text[i], s, w, h, scale)
		}
	}
	for i, s := range m.post {
		if s.Props.Alpha > 0 {
			drawBlock(dc, fonts, m.content.Post[i], s, w, h, scale)
		}
	}
	if m.panel.Props.Alpha > 0 {
		return m.drawPanel(dc, fonts, w, h, scale)
	}
	return nil
}

func drawBlock(dc *gg.Context, fonts *renderer.Fonts, b config.Block, s *Slot, w, h, scale float64) {
	k := scale * s.Props.Scale
	cx := w / 2 * scale
	maxWidth := math.Min(blockMaxWidth, w-2*panelMargin) * k

	title := fonts.Face(true, blockTitleSize*k)
	body := fonts.Face(false, blockBodySize*k)
	titleLines := renderer.Wrap(b.Title, title, maxWidth)
	bodyLines := renderer.Wrap(b.Body, body, maxWidth)

	titleStep := blockTitleSize * 1.15 * k
	bodyStep := blockBodySize * 1.5 * k
	total := float64(len(titleLines))*titleStep + 16*k + float64(len(bodyLines))*bodyStep

	// the block is centered on the viewport and scales about its center
	y := h/2*scale - total/2 + titleStep

	dc.SetRGBA(1, 1, 1, s.Props.Alpha)
	dc.SetFont(title)
	y = renderer.DrawCentered(dc, titleLines, cx, y, titleStep)

	dc.SetRGBA(1, 1, 1, 0.8*s.Props.Alpha)
	dc.SetFont(body)
	renderer.DrawCentered(dc, bodyLines, cx, y+16*k, bodyStep)
}

func (m *Machine) drawPanel(dc *gg.Context, fonts *renderer.Fonts, w, h, scale float64) error {
	p := m.content.Panel
	alpha := m.panel.Props.Alpha

	ph := h * panelHeightRatio
	px := panelMargin
	pw := w - 2*panelMargin
	py := h - ph - panelMargin + ph*m.panel.Props.YPercent/100

	dc.SetRGBA(0.04, 0.04, 0.05, 0.88*alpha)
	dc.DrawRoundedRectangle(px*scale, py*scale, pw*scale, ph*scale, 16*scale)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("failed to fill panel: %w", err)
	}

	x := (px + panelPadding) * scale
	textWidth := (pw - 2*panelPadding) * scale
	if p.Link != "" {
		textWidth -= (qrSize + panelPadding) * scale
	}

	title := fonts.Face(true, panelTitleSize*scale)
	dc.SetFont(title)
	dc.SetRGBA(1, 1, 1, alpha)
	y := (py+panelPadding)*scale + panelTitleSize*scale
	dc.DrawString(p.Title, x, y)
	y += 20 * scale

	body := fonts.Face(false, panelBodySize*scale)
	dc.SetFont(body)
	dc.SetRGBA(1, 1, 1, 0.75*alpha)
	for _, para := range p.Body {
		for _, line := range renderer.Wrap(para, body, textWidth) {
			y += panelBodySize * 1.5 * scale
			dc.DrawString(line, x, y)
		}
		y += 8 * scale
	}

	if err := m.drawButtons(dc, fonts, x, y+16*scale, scale, alpha); err != nil {
		return err
	}

	if p.Link == "" {
		return nil
	}
	qr, err := m.linkCode(int(math.Round(qrSize * scale)))
	if err != nil {
		return err
	}
	dc.DrawImageEx(qr, gg.DrawImageOptions{
		X:         (px + pw - panelPadding - qrSize) * scale,
		Y:         (py + panelPadding) * scale,
		DstWidth:  qrSize * scale,
		DstHeight: qrSize * scale,
		Opacity:   alpha,
		BlendMode: gg.BlendNormal,
	})
	return nil
}

func (m *Machine) drawButtons(dc *gg.Context, fonts *renderer.Fonts, x, y, scale, alpha float64) error {
	label := fonts.Face(true, 14*scale)
	dc.SetFont(label)
	for _, b := range m.content.Panel.Buttons {
		tw, _ := dc.MeasureString(b)
		bw := tw + 32*scale

		// the idle style is an outline, a live panel fills its buttons
		if m.panel.Interactive {
			dc.SetRGBA(1, 1, 1, 0.15*alpha)
			dc.DrawRoundedRectangle(x, y, bw, buttonHeight*scale, buttonHeight*scale/2)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("failed to fill button: %w", err)
			}
		}
		dc.SetRGBA(1, 1, 1, 0.6*alpha)
		dc.SetLineWidth(scale)
		dc.DrawRoundedRectangle(x, y, bw, buttonHeight*scale, buttonHeight*scale/2)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("failed to stroke button: %w", err)
		}

		dc.SetRGBA(1, 1, 1, alpha)
		dc.DrawString(b, x+16*scale, y+buttonHeight*scale/2+5*scale)
		x += bw + buttonGap*scale
	}
	return nil
}

// linkCode renders the call-to-action link as a QR code, cached per size.
func (m *Machine) linkCode(size int) (*gg.ImageBuf, error) {
	if m.qr != nil && m.qrSize == size {
		return m.qr, nil
	}
	code, err := qrcode.New(m.content.Panel.Link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode panel link: %w", err)
	}
	code.DisableBorder = true
	m.qr = gg.ImageBufFromImage(code.Image(size))
	m.qrSize = size
	return m.qr, nil
}
