package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ivlev/framescrub/internal/catalog"
	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/director"
)

func main() {
	configPtr := flag.String("config", "", "YAML config the script is generated for")
	modePtr := flag.String("mode", "sweep", "Script kind: sweep, tour")
	durationPtr := flag.Float64("duration", 20, "Script length in seconds")
	dirPtr := flag.String("dir", "scripts", "Output directory")
	resizeWidthPtr := flag.Int("resize-width", 0, "Resize the viewport during a sweep (0 - no resize)")
	resizeHeightPtr := flag.Int("resize-height", 0, "Height for -resize-width")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	frames := catalog.BuildFrameList(cfg.FrameSpec())
	d := director.NewDirector(frames.Len(), cfg.FramesPerSegment)

	fmt.Println("=== Scroll Script Generation ===")
	fmt.Printf("Frames: %d, segment: %d frames\n\n", frames.Len(), cfg.FramesPerSegment)

	var script *director.Script
	switch *modePtr {
	case "tour":
		script, err = d.GenerateTour(*durationPtr)
		if err != nil {
			log.Fatalf("[-] Failed to generate tour: %v", err)
		}
	case "sweep":
		var resize *director.Resize
		if *resizeWidthPtr > 0 && *resizeHeightPtr > 0 {
			resize = &director.Resize{Width: *resizeWidthPtr, Height: *resizeHeightPtr, DPR: cfg.Viewport.DPR}
		}
		script = d.GenerateSweep(*durationPtr, resize)
	default:
		log.Fatalf("[-] Unknown mode %q", *modePtr)
	}

	if err := os.MkdirAll(*dirPtr, 0755); err != nil {
		log.Fatalf("[-] Failed to create %s: %v", *dirPtr, err)
	}
	path := director.GenerateScriptPath(*dirPtr)
	if err := director.WriteScript(script, path); err != nil {
		log.Fatalf("[-] Failed to write script: %v", err)
	}

	fmt.Println("=== Script Summary ===")
	fmt.Printf("Version: %s\n", script.Version)
	fmt.Printf("Duration: %.1fs\n", script.Duration)
	fmt.Printf("Steps: %d, wheel events: %d, resizes: %d\n", len(script.Steps), len(script.Wheel), len(script.Resizes))
	for _, s := range script.Steps {
		if s.Label != "" {
			fmt.Printf("  %6.2fs  %-10s progress %.3f\n", s.Time, s.Label, s.Progress)
		}
	}
	fmt.Printf("\n[+++] Script saved to: %s\n", path)
}
