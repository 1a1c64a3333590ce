// Package loader fetches frame images with a bounded worker pool and reports
// aggregate progress. A failed frame still counts toward completion, so the
// pipeline always reaches 100% unless a fetch never returns.
package loader

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/framescrub/internal/catalog"
)

var ErrAlreadyStarted = errors.New("loader already started")

// Fetcher decodes one frame by identifier.
type Fetcher interface {
	Load(ctx context.Context, id int) (image.Image, error)
}

type Progress struct {
	Loaded int
	Total  int
}

func (p Progress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	// truncated so 100 means every frame has settled
	return 100 * p.Loaded / p.Total
}

func (p Progress) Complete() bool {
	return p.Loaded >= p.Total
}

// Settled is emitted once per frame, in the order the load counter advanced.
type Settled struct {
	ID       int
	Position int
	State    State
	Progress Progress
}

type Stats struct {
	Failed int
	// PeakInFlight counts pooled requests only; the eager first frame is outside the pool.
	PeakInFlight int
}

type Loader struct {
	src         Fetcher
	frames      catalog.FrameList
	concurrency int
	store       *Store

	Verbose bool

	mu       sync.Mutex
	started  bool
	loaded   int
	failed   int
	inFlight int
	peak     int

	events   chan Settled
	done     chan struct{}
	doneOnce sync.Once
}

func New(src Fetcher, frames catalog.FrameList, concurrency int, store *Store) *Loader {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Loader{
		src:         src,
		frames:      frames,
		concurrency: concurrency,
		store:       store,
		events:      make(chan Settled, frames.Len()),
		done:        make(chan struct{}),
	}
}

// Start dispatches every frame and returns immediately. Position 0 is
// fetched eagerly outside the pool so the first frame can appear while the
// pool is saturated.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.started = true
	l.mu.Unlock()

	total := l.frames.Len()
	if total == 0 {
		l.doneOnce.Do(func() { close(l.done) })
		close(l.events)
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		l.fetch(ctx, 0, false)
	}()

	go func() {
		defer wg.Done()
		var g errgroup.Group
		g.SetLimit(l.concurrency)
		for pos := 1; pos < total; pos++ {
			if ctx.Err() != nil {
				break
			}
			// blocks until a slot frees up
			g.Go(func() error {
				l.fetch(ctx, pos, true)
				return nil
			})
		}
		g.Wait()
	}()

	go func() {
		wg.Wait()
		close(l.events)
	}()

	return nil
}

func (l *Loader) fetch(ctx context.Context, pos int, pooled bool) {
	id := l.frames.ID(pos)
	l.store.begin(id)

	if pooled {
		l.mu.Lock()
		l.inFlight++
		if l.inFlight > l.peak {
			l.peak = l.inFlight
		}
		l.mu.Unlock()
	}

	img, err := l.src.Load(ctx, id)

	if pooled {
		l.mu.Lock()
		l.inFlight--
		l.mu.Unlock()
	}

	// a cancelled run must not look like a completed one
	if err != nil && ctx.Err() != nil {
		return
	}

	state := l.store.settle(id, img, err)
	if state == Failed && l.Verbose {
		log.Printf("[!] Frame %d unavailable: %v", id, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded++
	if state == Failed {
		l.failed++
	}
	p := Progress{Loaded: l.loaded, Total: l.frames.Len()}
	// buffered to the frame count, never blocks
	l.events <- Settled{ID: id, Position: pos, State: state, Progress: p}
	if p.Complete() {
		l.doneOnce.Do(func() { close(l.done) })
	}
}

// Events delivers one Settled per frame and is closed once all fetches return.
func (l *Loader) Events() <-chan Settled {
	return l.events
}

// Done is closed exactly once, when every frame has settled.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

func (l *Loader) Progress() Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Progress{Loaded: l.loaded, Total: l.frames.Len()}
}

func (l *Loader) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Failed: l.failed, PeakInFlight: l.peak}
}
