package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ivlev/framescrub/internal/catalog"
	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/director"
)

type fakeSource struct {
	fail func(id int) bool
}

func (s *fakeSource) Load(ctx context.Context, id int) (image.Image, error) {
	if s.fail != nil && s.fail(id) {
		return nil, fmt.Errorf("frame %d: missing", id)
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: uint8(id), A: 255}), image.Point{}, draw.Src)
	return img, nil
}

type captureSink struct {
	mu     sync.Mutex
	sizes  map[image.Point]int
	frames int
	err    error
	closed bool
}

func (s *captureSink) WriteFrame(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.sizes == nil {
		s.sizes = map[image.Point]int{}
	}
	s.sizes[img.Bounds().Size()]++
	s.frames++
	return nil
}

func (s *captureSink) Close() error {
	s.closed = true
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Frames.Total = 120
	cfg.Frames.Exclude = nil
	cfg.FramesPerSegment = 10
	cfg.Viewport = config.Viewport{Width: 160, Height: 90, DPR: 1}
	cfg.Loader.Concurrency = 4
	cfg.Loader.FadeOut = 0.1
	cfg.Output.FPS = 30
	return cfg
}

func newTestPlayer(t *testing.T, cfg *config.Config, src *fakeSource) *Player {
	t.Helper()
	frames := catalog.BuildFrameList(cfg.FrameSpec())
	p, err := NewPlayer(cfg, frames, src)
	if err != nil {
		t.Fatalf("NewPlayer failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func forwardScript(duration float64) *director.Script {
	return &director.Script{
		Version:  "1.0",
		Duration: duration,
		Steps: []director.Step{
			{Time: 0, Progress: 0},
			{Time: 1, Progress: 1},
		},
	}
}

func TestRunPlaysScript(t *testing.T) {
	p := newTestPlayer(t, testConfig(), &fakeSource{})
	sink := &captureSink{}

	report, err := p.Run(context.Background(), forwardScript(4), sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Frames != 120 || report.Failed != 0 {
		t.Errorf("Unexpected load stats: %+v", report)
	}
	if report.LastPosition != 119 {
		t.Errorf("Expected the last frame drawn, got %d", report.LastPosition)
	}
	if report.SegmentChanges == 0 {
		t.Error("Expected segment changes while scrolling")
	}
	if report.Emitted < 4*30 {
		t.Errorf("Expected at least %d frames, got %d", 4*30, report.Emitted)
	}
	if sink.frames != report.Emitted {
		t.Errorf("Sink got %d frames, report says %d", sink.frames, report.Emitted)
	}
	if sink.sizes[image.Pt(160, 90)] != sink.frames {
		t.Errorf("Expected every frame at 160x90, got %v", sink.sizes)
	}
	if s := p.State(); !s.Signals.Loaded || s.Signals.Percent != 100 {
		t.Errorf("Unexpected signals %+v", s.Signals)
	}
}

func TestRunKeepsOutputSizeAcrossResize(t *testing.T) {
	cfg := testConfig()
	cfg.Viewport = config.Viewport{Width: 161, Height: 91, DPR: 1}
	p := newTestPlayer(t, cfg, &fakeSource{})

	if w, h := p.OutputSize(); w != 160 || h != 90 {
		t.Fatalf("Expected an even output size, got %dx%d", w, h)
	}

	script := forwardScript(3)
	script.Resizes = []director.Resize{{Time: 0.5, Width: 320, Height: 240, DPR: 2}}
	sink := &captureSink{}
	if _, err := p.Run(context.Background(), script, sink); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(sink.sizes) != 1 || sink.sizes[image.Pt(160, 90)] == 0 {
		t.Errorf("Expected a single output size, got %v", sink.sizes)
	}
	if vp := p.State().Viewport; vp.Width != 320 || vp.Height != 240 {
		t.Errorf("Viewport not applied: %+v", vp)
	}
}

func TestRunFallsBackOnFailedFrames(t *testing.T) {
	src := &fakeSource{fail: func(id int) bool { return id%2 == 1 }}
	p := newTestPlayer(t, testConfig(), src)

	report, err := p.Run(context.Background(), forwardScript(3), &captureSink{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 60 {
		t.Errorf("Expected 60 failed frames, got %d", report.Failed)
	}
	if report.Draws == 0 {
		t.Error("Expected fallback draws")
	}
}

func TestRunCancelled(t *testing.T) {
	p := newTestPlayer(t, testConfig(), &fakeSource{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, forwardScript(2), &captureSink{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunSinkError(t *testing.T) {
	p := newTestPlayer(t, testConfig(), &fakeSource{})
	broken := errors.New("pipe closed")

	_, err := p.Run(context.Background(), forwardScript(2), &captureSink{err: broken})
	if !errors.Is(err, broken) {
		t.Errorf("Expected the sink error, got %v", err)
	}
}

func TestRunRejectsEmptyScript(t *testing.T) {
	p := newTestPlayer(t, testConfig(), &fakeSource{})
	_, err := p.Run(context.Background(), &director.Script{Duration: 1}, &captureSink{})
	if !errors.Is(err, director.ErrEmptyScript) {
		t.Errorf("Expected ErrEmptyScript, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := newTestPlayer(t, testConfig(), &fakeSource{})
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	if _, err := p.Run(context.Background(), forwardScript(1), &captureSink{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestReportAppendLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark.log")
	r := &Report{Frames: 10, Emitted: 30}

	for i := 0; i < 2; i++ {
		if err := r.AppendLog(path, "test", "frames"); err != nil {
			t.Fatalf("AppendLog failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Build: test | Input: frames | Frames: 10") {
		t.Errorf("Unexpected entry %q", lines[0])
	}
}

func TestRunWheelMovesPastHeldStep(t *testing.T) {
	cfg := testConfig()
	p := newTestPlayer(t, cfg, &fakeSource{})

	// hold at 10% of the 32vh timeline, then five wheel notches
	script := &director.Script{
		Version:  "1.0",
		Duration: 3,
		Steps:    []director.Step{{Time: 0, Progress: 0.1}},
	}
	for i := 0; i < 5; i++ {
		script.Wheel = append(script.Wheel, director.Wheel{Time: 1 + float64(i)*0.05, Delta: 120})
	}

	if _, err := p.Run(context.Background(), script, &captureSink{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	held := 0.1 * cfg.Scroll.DistanceVH * float64(cfg.Viewport.Height)
	want := held + 5*120*cfg.Scroll.WheelMultiplier
	if got := p.State().Offset; got < want-1 || got > want+1 {
		t.Errorf("Expected offset %.1f after the wheel (step holds %.1f), got %.1f", want, held, got)
	}
}
