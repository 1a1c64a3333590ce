package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/framescrub/internal/catalog"
	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/director"
	"github.com/ivlev/framescrub/internal/engine"
	"github.com/ivlev/framescrub/internal/source"
	"github.com/ivlev/framescrub/internal/system"
	"github.com/ivlev/framescrub/internal/video"
)

// set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "YAML config (defaults reproduce the original page)")
	framesPtr := flag.String("frames", "", "Directory with the frame sequence")
	pdfPtr := flag.String("pdf", "", "Use the pages of a PDF as the frame sequence")
	scriptPtr := flag.String("script", "", "Scroll script (default: newest file in scripts/, else a generated sweep)")
	outputPtr := flag.String("output", "", "Output video (if empty and no -snapshots, generated in output/)")
	snapshotsPtr := flag.String("snapshots", "", "Directory for a PNG per output frame")
	widthPtr := flag.Int("width", 0, "Viewport width in CSS pixels")
	heightPtr := flag.Int("height", 0, "Viewport height in CSS pixels")
	dprPtr := flag.Float64("dpr", 0, "Device pixel ratio (capped at 2)")
	fpsPtr := flag.Int("fps", 0, "FPS")
	fitPtr := flag.String("fit", "", "Fit mode: cover, contain")
	concurrencyPtr := flag.Int("concurrency", 0, "Simultaneous frame loads")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	statsPtr := flag.Bool("stats", false, "Print a performance report and append it to benchmark.log")
	timeoutPtr := flag.Duration("timeout", 0, "Abort the run after this long (0 - no limit)")
	verbosePtr := flag.Bool("verbose", false, "Log every frame failure and segment change")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	applyFlags(cfg, flagValues{
		frames:      *framesPtr,
		pdf:         *pdfPtr,
		output:      *outputPtr,
		snapshots:   *snapshotsPtr,
		width:       *widthPtr,
		height:      *heightPtr,
		dpr:         *dprPtr,
		fps:         *fpsPtr,
		fit:         *fitPtr,
		concurrency: *concurrencyPtr,
		quality:     *qualityPtr,
		stats:       *statsPtr,
		verbose:     *verbosePtr,
	})

	src, err := source.Open(cfg)
	if err != nil {
		log.Fatalf("[-] Failed to open frame source: %v", err)
	}
	defer src.Close()

	if pdf, ok := src.(*source.FitzPDFSource); ok {
		usePDFPages(cfg, pdf.PageCount(), *configPtr != "")
		fmt.Printf("[*] PDF with %d pages: %s\n", cfg.Frames.Total, cfg.Frames.PDF)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	frames := catalog.BuildFrameList(cfg.FrameSpec())
	fmt.Printf("[*] Sequence: %d frames (%d raw)\n", frames.Len(), cfg.Frames.Total)

	need, available, fits, err := system.CheckMemoryBudget(frames.Len(), cfg.Viewport.Width, cfg.Viewport.Height)
	if err != nil {
		log.Printf("[!] Could not read available memory: %v", err)
	} else if !fits {
		log.Printf("[!] Decoded frames need about %d MB, only %d MB available", need>>20, available>>20)
	}

	script, err := loadScript(*scriptPtr, frames.Len(), cfg.FramesPerSegment)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	if cfg.Output.Video == "" && cfg.Output.Snapshots == "" {
		os.MkdirAll("output", 0755)
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.Output.Video = filepath.Join("output", fmt.Sprintf("scrub_%s.mp4", timestamp))
	}

	ctx := context.Background()
	if *timeoutPtr > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeoutPtr)
		defer cancel()
	}

	player, err := engine.NewPlayer(cfg, frames, src)
	if err != nil {
		log.Fatalf("[-] Failed to create player: %v", err)
	}
	defer player.Close()

	sink, err := openSinks(ctx, cfg, player, script)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	report, runErr := player.Run(ctx, script, sink)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		log.Fatalf("[-] Playback failed: %v", runErr)
	}

	if cfg.ShowStats {
		report.Print(os.Stdout, buildVersion)
		input := cfg.Frames.Dir
		if cfg.Frames.PDF != "" {
			input = filepath.Base(cfg.Frames.PDF)
		}
		if err := report.AppendLog("benchmark.log", buildVersion, input); err != nil {
			fmt.Printf("[!] Failed to write benchmark.log: %v\n", err)
		}
	}

	if cfg.Output.Video != "" {
		fmt.Printf("[+++] Done! Video: %s\n", cfg.Output.Video)
	}
	if cfg.Output.Snapshots != "" {
		fmt.Printf("[+++] Done! Frames: %s\n", cfg.Output.Snapshots)
	}
}

type flagValues struct {
	frames, pdf, output, snapshots string
	width, height                  int
	dpr                            float64
	fps                            int
	fit                            string
	concurrency, quality           int
	stats, verbose                 bool
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg *config.Config, f flagValues) {
	if f.frames != "" {
		cfg.Frames.Dir = f.frames
	}
	if f.pdf != "" {
		cfg.Frames.PDF = f.pdf
	}
	if f.output != "" {
		cfg.Output.Video = f.output
	}
	if f.snapshots != "" {
		cfg.Output.Snapshots = f.snapshots
	}
	if f.width > 0 {
		cfg.Viewport.Width = f.width
	}
	if f.height > 0 {
		cfg.Viewport.Height = f.height
	}
	if f.dpr > 0 {
		cfg.Viewport.DPR = f.dpr
	}
	if f.fps > 0 {
		cfg.Output.FPS = f.fps
	}
	if f.fit != "" {
		cfg.FitMode = f.fit
	}
	if f.concurrency > 0 {
		cfg.Loader.Concurrency = f.concurrency
	}
	if f.quality > 0 {
		cfg.Output.Quality = f.quality
	}
	cfg.ShowStats = cfg.ShowStats || f.stats
	cfg.Verbose = cfg.Verbose || f.verbose
}

// usePDFPages sizes the frame set to the document. The built-in exclusions
// describe the bundled image sequence and are dropped; ranges from a config
// file are kept.
func usePDFPages(cfg *config.Config, pages int, fromFile bool) {
	cfg.Frames.Total = pages
	if fromFile {
		if n := len(cfg.Frames.Exclude); n > 0 {
			fmt.Printf("[*] Applying %d exclusion ranges to the PDF pages\n", n)
		}
		return
	}
	cfg.Frames.Exclude = nil
}

func loadScript(path string, total, perSegment int) (*director.Script, error) {
	if path == "" {
		latest, err := director.FindLatestScript("scripts")
		if err != nil {
			fmt.Println("[*] No script given, generating a sweep")
			return director.NewDirector(total, perSegment).GenerateSweep(20, nil), nil
		}
		path = latest
	}
	fmt.Printf("[*] Script: %s\n", path)
	return director.ReadScript(path)
}

func openSinks(ctx context.Context, cfg *config.Config, player *engine.Player, script *director.Script) (video.FrameSink, error) {
	var sinks video.Multi

	if cfg.Output.Snapshots != "" {
		seq, err := video.NewPNGSequence(cfg.Output.Snapshots)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, seq)
	}

	if cfg.Output.Video != "" {
		encoder := cfg.Output.Encoder
		if encoder == "" {
			encoder = system.GetBestH264Encoder()
			if encoder != "libx264" {
				fmt.Printf("[*] Hardware acceleration detected: %s\n", encoder)
			}
		}
		quality := cfg.Output.Quality
		if quality == 0 {
			quality = system.DefaultQuality(encoder)
		}

		w, h := player.OutputSize()
		filter := video.BuildFilter(video.FilterParams{
			FadeIn:   cfg.Output.Fade,
			FadeOut:  cfg.Output.Fade,
			Duration: script.Duration + cfg.Loader.FadeOut,
		})
		stream, err := video.OpenStream(ctx, cfg.Output.Video, video.StreamParams{
			Width:   w,
			Height:  h,
			FPS:     cfg.Output.FPS,
			Encoder: encoder,
			Quality: quality,
			Filter:  filter,
		})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, stream)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}
