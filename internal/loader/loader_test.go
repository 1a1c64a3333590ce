package loader

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/framescrub/internal/catalog"
)

type fakeSource struct {
	mu      sync.Mutex
	fail    map[int]bool
	delay   time.Duration
	block   map[int]bool
	release chan struct{}
	calls   []int
	active  int
	peak    int
}

func (f *fakeSource) Load(ctx context.Context, id int) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	blocked := f.block[id]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if blocked {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[id] {
		return nil, errors.New("decode failed")
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 2)), nil
}

func (f *fakeSource) activeNow() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func drain(t *testing.T, l *Loader) []Settled {
	t.Helper()
	var got []Settled
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-l.Events():
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("Timed out after %d events", len(got))
		}
	}
}

func TestLoaderCompletesWithFailures(t *testing.T) {
	frames := catalog.BuildFrameList(catalog.FrameSpec{Total: 40, Excluded: []catalog.Range{{From: 10, To: 19}}})
	src := &fakeSource{fail: map[int]bool{3: true, 25: true, 40: true}, delay: time.Millisecond}
	store := NewStore()

	l := New(src, frames, 4, store)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	events := drain(t, l)
	if len(events) != frames.Len() {
		t.Fatalf("Expected %d events, got %d", frames.Len(), len(events))
	}

	for i, ev := range events {
		if ev.Progress.Loaded != i+1 {
			t.Errorf("Event %d: loaded count %d is not monotonic", i, ev.Progress.Loaded)
		}
		if ev.Progress.Complete() != (i == len(events)-1) {
			t.Errorf("Event %d: completion reported at the wrong time", i)
		}
	}

	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed after all frames settled")
	}

	if p := l.Progress(); p.Percent() != 100 || p.Loaded != p.Total {
		t.Errorf("Unexpected final progress %+v", p)
	}
	if s := l.Stats(); s.Failed != 3 {
		t.Errorf("Expected 3 failures, got %d", s.Failed)
	}
	if s := l.Stats(); s.PeakInFlight > 4 {
		t.Errorf("Pool exceeded its bound: %d", s.PeakInFlight)
	}

	if store.State(3) != Failed || store.State(4) != Loaded {
		t.Errorf("Unexpected states: 3=%v 4=%v", store.State(3), store.State(4))
	}
	if _, ok := store.Image(25); ok {
		t.Error("Failed frame must not be resolvable")
	}

	if err := l.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
}

func TestLoaderFirstFrameBypassesPool(t *testing.T) {
	frames := catalog.BuildFrameList(catalog.FrameSpec{Total: 6})
	block := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}
	src := &fakeSource{block: block, release: make(chan struct{})}

	l := New(src, frames, 1, NewStore())
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-l.Events():
		if ev.ID != 1 || ev.Position != 0 {
			t.Errorf("Expected first frame to settle first, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("First frame starved by a saturated pool")
	}

	close(src.release)
	rest := drain(t, l)
	if len(rest) != 5 {
		t.Errorf("Expected 5 more events, got %d", len(rest))
	}
	if s := l.Stats(); s.PeakInFlight != 1 {
		t.Errorf("Expected pooled peak 1, got %d", s.PeakInFlight)
	}
}

func TestLoaderDispatchesWholePoolImmediately(t *testing.T) {
	// 8 frames: the eager first plus 7 pooled ones, pool size 8
	frames := catalog.BuildFrameList(catalog.FrameSpec{Total: 8})
	block := map[int]bool{}
	for id := 2; id <= 8; id++ {
		block[id] = true
	}
	src := &fakeSource{block: block, release: make(chan struct{})}

	l := New(src, frames, 8, NewStore())
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.activeNow() < 7 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected 7 pooled requests in flight, got %d", src.activeNow())
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case <-l.Done():
		t.Fatal("Done closed before the pooled frames settled")
	default:
	}

	close(src.release)
	events := drain(t, l)
	if len(events) != 8 {
		t.Fatalf("Expected 8 events, got %d", len(events))
	}
	<-l.Done()
}

func TestLoaderCancelDoesNotComplete(t *testing.T) {
	frames := catalog.BuildFrameList(catalog.FrameSpec{Total: 5})
	block := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	src := &fakeSource{block: block, release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	l := New(src, frames, 2, NewStore())
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	events := drain(t, l)
	if len(events) != 0 {
		t.Errorf("Expected no settles after cancel, got %d", len(events))
	}
	select {
	case <-l.Done():
		t.Error("Cancelled load must not report completion")
	default:
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		p    Progress
		want int
	}{
		{Progress{0, 7}, 0},
		{Progress{1, 7}, 14},
		{Progress{6, 7}, 85},
		{Progress{7, 7}, 100},
		{Progress{199, 200}, 99},
		{Progress{680, 683}, 99},
		{Progress{683, 683}, 100},
		{Progress{0, 0}, 100},
	}
	for _, tt := range tests {
		if got := tt.p.Percent(); got != tt.want {
			t.Errorf("%+v.Percent() = %d, want %d", tt.p, got, tt.want)
		}
		if tt.p.Percent() == 100 && !tt.p.Complete() {
			t.Errorf("%+v reads 100%% with frames still pending", tt.p)
		}
	}
}

func TestStoreRelease(t *testing.T) {
	s := NewStore()
	s.begin(1)
	if s.State(1) != Pending {
		t.Errorf("Expected pending, got %v", s.State(1))
	}
	s.settle(1, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	if _, ok := s.Image(1); !ok {
		t.Fatal("Expected loaded image")
	}
	s.Release()
	if _, ok := s.Image(1); ok {
		t.Error("Image survived Release")
	}
}
