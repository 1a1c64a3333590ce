package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/framescrub/internal/catalog"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Frames   Frames   `yaml:"frames"`
	Loader   Loader   `yaml:"loader"`
	Viewport Viewport `yaml:"viewport"`
	Scroll   Scroll   `yaml:"scroll"`
	Tagline  Tagline  `yaml:"tagline"`
	Header   Header   `yaml:"header"`
	Overlays Overlays `yaml:"overlays"`
	Output   Output   `yaml:"output"`

	// FramesPerSegment is the stride of the overlay segments.
	FramesPerSegment int    `yaml:"frames_per_segment"`
	FitMode          string `yaml:"fit_mode"`
	Verbose          bool   `yaml:"verbose"`
	ShowStats        bool   `yaml:"show_stats"`
}

type Frames struct {
	Dir       string          `yaml:"dir"`
	Prefix    string          `yaml:"prefix"`
	Extension string          `yaml:"extension"`
	Total     int             `yaml:"total"`
	Exclude   []catalog.Range `yaml:"exclude"`

	// PDF, when set, replaces the directory: identifier n is page n-1.
	PDF string `yaml:"pdf"`
	DPI int    `yaml:"dpi"`

	// MaxWidth downscales decoded frames wider than this (0 keeps them as is).
	MaxWidth int `yaml:"max_width"`
}

type Loader struct {
	Concurrency int `yaml:"concurrency"`
	// FadeOut is how long the loading overlay takes to disappear at 100%.
	FadeOut float64 `yaml:"fade_out"`
	// Record emits loading frames to the output before the timeline starts.
	Record bool `yaml:"record"`
}

type Viewport struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	DPR    float64 `yaml:"dpr"`
}

type Scroll struct {
	// DistanceVH is the scroll distance of the timeline in viewport heights.
	DistanceVH float64 `yaml:"distance_vh"`
	// ContainerVH is the height of the whole scroll area; the downstream
	// section starts below it.
	ContainerVH float64 `yaml:"container_vh"`

	Scrub           float64 `yaml:"scrub"`
	SmoothDuration  float64 `yaml:"smooth_duration"`
	WheelMultiplier float64 `yaml:"wheel_multiplier"`
}

type Tagline struct {
	Lines    []string `yaml:"lines"`
	Start    float64  `yaml:"start"`
	Distance float64  `yaml:"distance"`
}

type Header struct {
	Title string `yaml:"title"`

	// Threshold is the visible fraction of the downstream section that turns the header dark.
	Threshold float64 `yaml:"threshold"`

	// SectionVH is the height of the downstream section in viewport heights.
	SectionVH float64 `yaml:"section_vh"`
	Section   string  `yaml:"section"`
}

type Block struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type Panel struct {
	Title   string   `yaml:"title"`
	Body    []string `yaml:"body"`
	Buttons []string `yaml:"buttons"`
	Link    string   `yaml:"link"`
}

type Overlays struct {
	Text  []Block `yaml:"text"`
	Panel Panel   `yaml:"panel"`
	Post  []Block `yaml:"post"`
}

type Output struct {
	Video     string  `yaml:"video"`
	Snapshots string  `yaml:"snapshots"`
	FPS       int     `yaml:"fps"`
	Quality   int     `yaml:"quality"`
	Encoder   string  `yaml:"encoder"` // empty picks the best available H.264 encoder
	Fade      float64 `yaml:"fade"`
}

// Default returns the configuration of the original page.
func Default() *Config {
	return &Config{
		Frames: Frames{
			Dir:       "0fps",
			Prefix:    "frame_",
			Extension: ".jpeg",
			Total:     1345,
			Exclude:   []catalog.Range{{From: 532, To: 613}, {From: 614, To: 1192}},
			DPI:       150,
		},
		Loader: Loader{
			Concurrency: 8,
			FadeOut:     0.4,
		},
		Viewport: Viewport{Width: 1280, Height: 720, DPR: 1},
		Scroll: Scroll{
			DistanceVH:      32,
			ContainerVH:     34,
			Scrub:           0.2,
			SmoothDuration:  0.95,
			WheelMultiplier: 0.85,
		},
		Tagline: Tagline{
			Lines:    []string{"© DOZE.STD", "SHAPING BRANDS → CRAFTING MOTION →"},
			Start:    80,
			Distance: 200,
		},
		Header: Header{
			Title:     "DOZE.STD",
			Threshold: 0.2,
			SectionVH: 1,
			Section:   "Selected Projects",
		},
		Overlays: Overlays{
			Text: []Block{
				{"transforming visions", "Building identity and insipiring actions. Sculpting digital expert resonate."},
				{"Elevating Aesthetics", "Crafting solutions and exploring new horizons. Evolving narratives and elevating aesthetics in every project."},
				{"Designing Clarity", "Translating ideas into clear, refined visuals that communicate with intent."},
				{"Narrative-Driven", "Weaving stories through motion and brand systems that connect and endure."},
				{"Precision & Play", "Balancing rigor with exploration to shape confident, distinct identities."},
				{"Systems That Scale", "From concept to product, building design languages that grow with you."},
				{"Impactful Moments", "Delighting through details, microinteractions that elevate the experience."},
			},
			Panel: Panel{
				Title: "Sculpting Digital",
				Body: []string{
					"Transforming visions into digital realities. Weaving stories that captivate and innovate.",
					"Exploring new possibilities with a focus on narrative evolution. Crafting solutions that engage and elevate.",
				},
				Buttons: []string{"Get Reviews", "experience"},
			},
			Post: []Block{
				{"Adaptive by Design", "Systems that flex with context, scale with ambition, and stay coherent."},
				{"Motion as Language", "Intentional movement that communicates brand, not just decorates it."},
			},
		},
		Output: Output{
			FPS: 30,
		},
		FramesPerSegment: 50,
		FitMode:          "cover",
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Frames.Total <= 0:
		return fmt.Errorf("%w: frames.total must be positive, got %d", ErrInvalid, c.Frames.Total)
	case c.Loader.Concurrency <= 0:
		return fmt.Errorf("%w: loader.concurrency must be positive, got %d", ErrInvalid, c.Loader.Concurrency)
	case c.FramesPerSegment <= 0:
		return fmt.Errorf("%w: frames_per_segment must be positive, got %d", ErrInvalid, c.FramesPerSegment)
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Viewport.Width, c.Viewport.Height)
	case c.Scroll.DistanceVH <= 0:
		return fmt.Errorf("%w: scroll.distance_vh must be positive", ErrInvalid)
	case c.Scroll.ContainerVH < c.Scroll.DistanceVH:
		return fmt.Errorf("%w: scroll.container_vh is shorter than the timeline", ErrInvalid)
	case c.Output.FPS <= 0:
		return fmt.Errorf("%w: output.fps must be positive, got %d", ErrInvalid, c.Output.FPS)
	case c.FitMode != "cover" && c.FitMode != "contain":
		return fmt.Errorf("%w: unknown fit mode %q", ErrInvalid, c.FitMode)
	}

	for _, r := range c.Frames.Exclude {
		if r.From > r.To {
			return fmt.Errorf("%w: inverted exclusion range [%d, %d]", ErrInvalid, r.From, r.To)
		}
	}

	if c.Frames.PDF == "" && c.Frames.Dir == "" {
		return fmt.Errorf("%w: frames.dir or frames.pdf is required", ErrInvalid)
	}

	spec := c.FrameSpec()
	if catalog.BuildFrameList(spec).Len() == 0 {
		return fmt.Errorf("%w: every frame is excluded", ErrInvalid)
	}
	return nil
}

func (c *Config) FrameSpec() catalog.FrameSpec {
	return catalog.FrameSpec{Total: c.Frames.Total, Excluded: c.Frames.Exclude}
}

func (c *Config) Naming() catalog.Naming {
	return catalog.Naming{Dir: c.Frames.Dir, Prefix: c.Frames.Prefix, Extension: c.Frames.Extension}
}

// ScrollDistance is the timeline length in CSS pixels.
func (c *Config) ScrollDistance() float64 {
	return c.Scroll.DistanceVH * float64(c.Viewport.Height)
}

// ScrollLimit is the largest document offset: the scroll area plus the
// downstream section, minus one viewport.
func (c *Config) ScrollLimit() float64 {
	return (c.Scroll.ContainerVH + c.Header.SectionVH - 1) * float64(c.Viewport.Height)
}
