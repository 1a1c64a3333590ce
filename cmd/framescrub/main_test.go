package main

import (
	"testing"

	"github.com/ivlev/framescrub/internal/catalog"
	"github.com/ivlev/framescrub/internal/config"
)

func TestUsePDFPages(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := config.Default()
		usePDFPages(cfg, 40, false)
		if cfg.Frames.Total != 40 || len(cfg.Frames.Exclude) != 0 {
			t.Errorf("Expected 40 pages without exclusions, got %d, %v", cfg.Frames.Total, cfg.Frames.Exclude)
		}
	})

	t.Run("config file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Frames.Exclude = []catalog.Range{{From: 3, To: 5}}
		usePDFPages(cfg, 40, true)
		if cfg.Frames.Total != 40 || len(cfg.Frames.Exclude) != 1 {
			t.Fatalf("Configured exclusions must survive, got %v", cfg.Frames.Exclude)
		}
		if n := catalog.BuildFrameList(cfg.FrameSpec()).Len(); n != 37 {
			t.Errorf("Expected 37 frames, got %d", n)
		}
	})
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, flagValues{pdf: "deck.pdf", width: 640, fps: 24, verbose: true})

	if cfg.Frames.PDF != "deck.pdf" || cfg.Viewport.Width != 640 || cfg.Output.FPS != 24 || !cfg.Verbose {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if cfg.Viewport.Height != 720 || cfg.Loader.Concurrency != 8 {
		t.Error("Unset flags must keep config values")
	}
}
