// Package engine runs the player: it loads the frame set, then plays a
// scroll script against the timeline and hands every composited frame to a
// sink. All state lives in one Player and is mutated from a single loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/gogpu/gg"

	"github.com/ivlev/framescrub/internal/catalog"
	"github.com/ivlev/framescrub/internal/chrome"
	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/director"
	"github.com/ivlev/framescrub/internal/loader"
	"github.com/ivlev/framescrub/internal/overlay"
	"github.com/ivlev/framescrub/internal/renderer"
	"github.com/ivlev/framescrub/internal/resolver"
	"github.com/ivlev/framescrub/internal/system"
	"github.com/ivlev/framescrub/internal/timeline"
	"github.com/ivlev/framescrub/internal/video"
)

var ErrClosed = errors.New("player closed")

// PlayerState is everything that changes while the player runs.
type PlayerState struct {
	Viewport config.Viewport
	Offset   float64 // Smoothed scroll offset in CSS pixels
	Progress float64 // Timeline progress after the scrub lag
	Signals  chrome.Signals
}

type Player struct {
	cfg    *config.Config
	frames catalog.FrameList
	fit    renderer.FitMode

	store    *loader.Store
	loader   *loader.Loader
	canvas   *renderer.Canvas
	fonts    *renderer.Fonts
	comp     *gg.Context
	compW    int
	compH    int
	driver   *timeline.Driver
	smoother *timeline.Smoother
	scrub    *timeline.Scrub
	overlays *overlay.Machine
	curtain  *chrome.LoaderOverlay
	tagline  timeline.Fade
	section  chrome.Intersection
	output   video.Normalizer

	state  PlayerState
	report Report
	cancel context.CancelFunc
	closed bool
}

// NewPlayer wires the pipeline for a validated config.
func NewPlayer(cfg *config.Config, frames catalog.FrameList, src loader.Fetcher) (*Player, error) {
	fit, err := renderer.ParseFitMode(cfg.FitMode)
	if err != nil {
		return nil, err
	}
	fonts, err := renderer.LoadFonts()
	if err != nil {
		return nil, err
	}

	p := &Player{
		cfg:      cfg,
		frames:   frames,
		fit:      fit,
		store:    loader.NewStore(),
		fonts:    fonts,
		overlays: overlay.New(cfg.Overlays),
		curtain:  chrome.NewLoaderOverlay(cfg.Loader.FadeOut),
		scrub:    timeline.NewScrub(cfg.Scroll.Scrub),
		tagline: timeline.Fade{
			Start:    cfg.Tagline.Start,
			Distance: cfg.Tagline.Distance,
			Shift:    10,
		},
	}
	p.loader = loader.New(src, frames, cfg.Loader.Concurrency, p.store)
	p.loader.Verbose = cfg.Verbose

	vp := cfg.Viewport
	p.canvas = renderer.NewCanvas(vp.Width, vp.Height, vp.DPR)
	p.driver = timeline.NewDriver(frames.Len(), cfg.FramesPerSegment, cfg.ScrollDistance(), p)
	p.smoother = timeline.NewSmoother(cfg.Scroll.SmoothDuration, cfg.Scroll.WheelMultiplier, cfg.ScrollLimit())
	p.layout(vp)

	// the encoder needs a fixed, even frame size; later resizes are letterboxed into it
	w, h := p.canvas.BackingSize()
	p.output = video.Normalizer{Width: w &^ 1, Height: h &^ 1, Background: image.Black}
	return p, nil
}

// OutputSize is the size of every frame handed to the sink.
func (p *Player) OutputSize() (int, int) {
	return p.output.Width, p.output.Height
}

func (p *Player) State() PlayerState {
	return p.state
}

// layout recomputes everything derived from the viewport size.
func (p *Player) layout(vp config.Viewport) {
	p.state.Viewport = vp
	vh := float64(vp.Height)
	p.section = chrome.Intersection{
		Top:       p.cfg.Scroll.ContainerVH * vh,
		Height:    p.cfg.Header.SectionVH * vh,
		Threshold: p.cfg.Header.Threshold,
	}
	p.driver.SetDistance(p.cfg.Scroll.DistanceVH * vh)
	p.smoother.SetLimit((p.cfg.Scroll.ContainerVH + p.cfg.Header.SectionVH - 1) * vh)
}

// Draw resolves the best available frame for pos and paints it.
func (p *Player) Draw(pos int) bool {
	img, _, ok := resolver.Resolve(p.frames, p.store, pos)
	if !ok {
		return false
	}
	if !p.canvas.Draw(img, p.fit) {
		return false
	}
	p.report.Draws++
	return true
}

func (p *Player) SegmentChanged(prev, next int) {
	p.overlays.Change(prev, next)
	p.report.SegmentChanges++
	if p.cfg.Verbose {
		fmt.Printf("[>] Segment %d -> %d\n", prev, next)
	}
}

// Resize applies a new viewport and repaints the last drawn frame.
func (p *Player) Resize(vp config.Viewport) {
	p.canvas.Resize(vp.Width, vp.Height, vp.DPR)
	p.layout(vp)
	if pos, ok := p.driver.LastDrawn(); ok {
		p.Draw(pos)
	}
}

// Run loads every frame, then plays the script. It blocks until the script
// ends, the context is cancelled or the sink fails.
func (p *Player) Run(ctx context.Context, script *director.Script, sink video.FrameSink) (*Report, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	defer cancel()

	start := time.Now()
	if err := p.load(ctx, sink); err != nil {
		return nil, err
	}
	p.report.LoadTime = time.Since(start)

	playStart := time.Now()
	if err := p.play(ctx, script, sink); err != nil {
		return nil, err
	}
	p.report.PlayTime = time.Since(playStart)

	stats := p.loader.Stats()
	p.report.Frames = p.frames.Len()
	p.report.Failed = stats.Failed
	p.report.PeakInFlight = stats.PeakInFlight
	p.report.LastPosition, _ = p.driver.LastDrawn()
	report := p.report
	return &report, nil
}

// load is the loading phase. Scrolling is disabled; the canvas shows the
// first frame as soon as it settles.
func (p *Player) load(ctx context.Context, sink video.FrameSink) error {
	if err := p.loader.Start(ctx); err != nil {
		return err
	}

	var tick <-chan time.Time
	if p.cfg.Loader.Record {
		ticker := time.NewTicker(time.Second / time.Duration(p.cfg.Output.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	events := p.loader.Events()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("loading stopped at %d%%: %w", p.state.Signals.Percent, ctx.Err())

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			p.state.Signals.Percent = ev.Progress.Percent()
			if p.cfg.Verbose && ev.Progress.Loaded%50 == 0 {
				fmt.Printf("[>] Loaded: %d/%d\n", ev.Progress.Loaded, ev.Progress.Total)
			}
			if ev.State == loader.Loaded && ev.Position == p.drawTarget() {
				p.Draw(ev.Position)
			}

		case <-tick:
			if err := p.emit(sink); err != nil {
				return err
			}

		case <-p.loader.Done():
			p.drain()
			p.state.Signals.Percent = p.loader.Progress().Percent()
			p.state.Signals.Loaded = true
			return nil
		}
	}
}

// drain consumes settles that were queued when Done fired.
func (p *Player) drain() {
	for {
		select {
		case ev, ok := <-p.loader.Events():
			if !ok {
				return
			}
			if ev.State == loader.Loaded && ev.Position == p.drawTarget() {
				p.Draw(ev.Position)
			}
		default:
			return
		}
	}
}

// drawTarget is the position the canvas should be showing right now.
func (p *Player) drawTarget() int {
	if pos, ok := p.driver.LastDrawn(); ok {
		return pos
	}
	return 0
}

// play is the timeline phase. Script time starts once the loading overlay
// has faded; frames are emitted at the configured rate throughout.
func (p *Player) play(ctx context.Context, script *director.Script, sink video.FrameSink) error {
	p.overlays.Reset()
	p.driver.Activate()

	dt := 1 / float64(p.cfg.Output.FPS)
	t := 0.0
	// a held step must not undo wheel input, so absolute targets are only
	// applied when the script value moves
	lastTarget, steered := 0.0, false
	for t <= script.Duration {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("playback stopped at %.2fs: %w", t, err)
		}

		scrolling := !p.curtain.Showing()
		next := t
		if scrolling {
			next = t + dt
			for _, r := range script.ResizesBetween(t, next) {
				p.Resize(config.Viewport{Width: r.Width, Height: r.Height, DPR: r.DPR})
			}
			target := script.ProgressAt(next) * p.cfg.Scroll.DistanceVH * float64(p.state.Viewport.Height)
			if !steered || target != lastTarget {
				p.smoother.ScrollTo(target)
				lastTarget, steered = target, true
			}
			if delta := script.WheelBetween(t, next); delta != 0 {
				p.smoother.Wheel(delta)
			}
		}

		p.step(dt)
		if err := p.emit(sink); err != nil {
			return err
		}
		if scrolling {
			t = next
		}
	}
	return nil
}

// step advances every time-based component by dt seconds.
func (p *Player) step(dt float64) {
	p.state.Offset = p.smoother.Update(dt)
	p.overlays.Update(dt)
	p.state.Progress = p.scrub.Update(p.driver.Progress(p.state.Offset), dt)
	p.driver.Update(p.state.Progress)

	vh := float64(p.state.Viewport.Height)
	p.state.Signals.HeaderDark = p.section.Visible(p.state.Offset, vh)
	p.curtain.Update(p.state.Signals, dt)
}

// emit composites the current state and writes it to the sink.
func (p *Player) emit(sink video.FrameSink) error {
	frame, err := p.composite()
	if err != nil {
		return err
	}

	buf := system.GetImage(image.Rect(0, 0, p.output.Width, p.output.Height))
	defer system.PutImage(buf)
	if err := sink.WriteFrame(p.output.Normalize(buf, frame)); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", p.report.Emitted, err)
	}
	p.report.Emitted++
	return nil
}

// composite layers frame, section, tagline, overlays, header and the
// loading overlay into one image.
func (p *Player) composite() (image.Image, error) {
	w, h := p.canvas.BackingSize()
	if p.comp == nil {
		p.comp = gg.NewContext(w, h)
		p.compW, p.compH = w, h
	} else if p.compW != w || p.compH != h {
		if err := p.comp.Resize(w, h); err != nil {
			return nil, fmt.Errorf("failed to resize compositor to %dx%d: %w", w, h, err)
		}
		p.compW, p.compH = w, h
	}

	dc := p.comp
	dc.ClearWithColor(renderer.Background)
	dc.DrawImage(p.canvas.Snapshot(), 0, 0)

	cssW, cssH := p.canvas.Size()
	cw, ch := float64(cssW), float64(cssH)
	scale := p.canvas.Scale()

	alpha, shift := p.tagline.At(p.state.Offset)
	chrome.DrawTagline(dc, p.fonts, p.cfg.Tagline, alpha, shift, ch, scale)

	if err := p.overlays.Draw(dc, p.fonts, cw, ch, scale); err != nil {
		return nil, err
	}
	if err := chrome.DrawSection(dc, p.fonts, p.cfg.Header.Section, p.section.Top-p.state.Offset, cw, ch, scale); err != nil {
		return nil, err
	}
	chrome.DrawHeader(dc, p.fonts, p.cfg.Header.Title, p.state.Signals.HeaderDark, scale)
	if err := p.curtain.Draw(dc, p.fonts, p.state.Signals, cw, ch, scale); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// Close tears the player down: pending loads are cancelled and every image
// reference is released. It is safe to call more than once.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	p.overlays.Reset()
	p.store.Release()
	p.canvas.Release()
	if p.comp != nil {
		_ = p.comp.Close()
	}
	if err := p.fonts.Close(); err != nil {
		log.Printf("[!] Failed to release fonts: %v", err)
	}
	return nil
}
