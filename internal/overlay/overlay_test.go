package overlay

import (
	"testing"

	"github.com/ivlev/framescrub/internal/config"
)

func newMachine() *Machine {
	return New(config.Default().Overlays)
}

func TestSegmentOf(t *testing.T) {
	tests := []struct {
		pos, per, want int
	}{
		{0, 50, 0},
		{49, 50, 0},
		{50, 50, 1},
		{149, 50, 2},
		{150, 50, 3},
		{682, 50, 13},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := SegmentOf(tt.pos, tt.per); got != tt.want {
			t.Errorf("SegmentOf(%d, %d) = %d, want %d", tt.pos, tt.per, got, tt.want)
		}
	}

	if got := SegmentCount(683, 50); got != 14 {
		t.Errorf("SegmentCount(683, 50) = %d, want 14", got)
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		seg    int
		post   int
		want   Band
		wantOk bool
	}{
		{0, 2, Band{}, false},
		{1, 2, Band{Text, 0}, true},
		{7, 2, Band{Text, 6}, true},
		{8, 2, Band{Panel, 0}, true},
		{9, 2, Band{Post, 0}, true},
		{10, 2, Band{Post, 1}, true},
		{12, 2, Band{Post, 1}, true},
		{12, 0, Band{}, false},
		{13, 2, Band{}, false},
		{-1, 2, Band{}, false},
	}
	for _, tt := range tests {
		got, ok := BandOf(tt.seg, tt.post)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("BandOf(%d, %d) = %v, %v; want %v, %v", tt.seg, tt.post, got, ok, tt.want, tt.wantOk)
		}
	}
}

// checkExclusive fails when more than one slot is shown or entering.
func checkExclusive(t *testing.T, m *Machine) {
	t.Helper()
	live, visible := 0, 0
	for _, s := range m.Slots() {
		if s.State == Entering || s.State == Visible {
			live++
		}
		if s.Props.Alpha >= 1 {
			visible++
		}
	}
	if live > 1 {
		t.Fatalf("%d slots entering or visible", live)
	}
	if visible > 1 {
		t.Fatalf("%d slots fully visible", visible)
	}
}

func settle(m *Machine, seconds float64) {
	for elapsed := 0.0; elapsed < seconds; elapsed += 1.0 / 60 {
		m.Update(1.0 / 60)
	}
}

func TestEnterAndExit(t *testing.T) {
	m := newMachine()
	m.Reset()

	m.Change(0, 1)
	s := m.SlotFor(1)
	if s.State != Entering {
		t.Fatalf("Expected entering, got %v", s.State)
	}
	if s.Props.Alpha != 0 || s.Props.Scale != restScale {
		t.Errorf("Enter must start from the rest state, got %+v", s.Props)
	}

	m.Update(0.05)
	if s.Props.Alpha != 0 {
		t.Errorf("Enter delay not honored, alpha %f", s.Props.Alpha)
	}

	settle(m, 1)
	if s.State != Visible || s.Props.Alpha != 1 || s.Props.Scale != 1 {
		t.Errorf("Expected visible at rest, got %v %+v", s.State, s.Props)
	}

	m.Change(1, 0)
	if s.State != Exiting {
		t.Errorf("Expected exiting, got %v", s.State)
	}
	settle(m, 1)
	if s.State != Hidden || s.Props.Alpha != 0 {
		t.Errorf("Expected hidden, got %v %+v", s.State, s.Props)
	}
}

func TestRapidSkip(t *testing.T) {
	m := newMachine()
	m.Reset()

	m.Change(0, 2)
	settle(m, 1)
	checkExclusive(t, m)

	// 2 -> 9 -> 3 within a single frame
	m.Change(2, 9)
	checkExclusive(t, m)
	m.Update(0.01)
	m.Change(9, 3)
	checkExclusive(t, m)

	for i := 0; i < 120; i++ {
		m.Update(1.0 / 60)
		checkExclusive(t, m)
	}

	for _, s := range m.Slots() {
		want := Hidden
		if s == m.SlotFor(3) {
			want = Visible
		}
		if s.State != want {
			t.Errorf("%v[%d]: state %v, want %v", s.Kind, s.Index, s.State, want)
		}
	}
}

func TestRandomWalkStaysExclusive(t *testing.T) {
	m := newMachine()
	m.Reset()

	segs := []int{0, 1, 5, 8, 12, 11, 3, 0, 7, 8, 9, 13, 2, 8, 1}
	prev := 0
	for _, seg := range segs {
		m.Change(prev, seg)
		prev = seg
		for i := 0; i < 7; i++ {
			m.Update(1.0 / 30)
			checkExclusive(t, m)
		}
	}
}

func TestPanelInteraction(t *testing.T) {
	m := newMachine()
	m.Reset()
	panel := m.SlotFor(8)

	m.Change(7, 8)
	if panel.Interactive {
		t.Error("Panel must not be interactive before the enter transition starts")
	}
	if panel.Props.YPercent != 100 {
		t.Errorf("Panel must start below the viewport, got %+v", panel.Props)
	}

	m.Update(EnterDelay + 0.01)
	if !panel.Interactive {
		t.Error("Panel must be interactive once the enter transition starts")
	}

	settle(m, 1)
	if panel.Props.YPercent != 0 || panel.State != Visible {
		t.Errorf("Expected panel at rest, got %v %+v", panel.State, panel.Props)
	}

	m.Change(8, 9)
	if panel.Interactive {
		t.Error("Panel must stop being interactive when the exit starts")
	}
	settle(m, 1)
	if panel.Props.YPercent != 100 || panel.State != Hidden {
		t.Errorf("Expected panel hidden, got %v %+v", panel.State, panel.Props)
	}
}

func TestPostPanelClamp(t *testing.T) {
	m := newMachine()
	m.Reset()

	// 11 and 12 both clamp to the last post-panel block
	if m.SlotFor(11) != m.SlotFor(12) {
		t.Fatal("Expected clamped segments to share a slot")
	}

	m.Change(10, 11)
	settle(m, 1)
	last := m.SlotFor(12)
	if last.State != Visible {
		t.Fatalf("Expected last post block visible, got %v", last.State)
	}

	m.Change(11, 12)
	if last.State != Entering {
		t.Errorf("Expected the shared slot to re-enter, got %v", last.State)
	}
	settle(m, 1)
	if last.State != Visible {
		t.Errorf("Expected visible after re-entry, got %v", last.State)
	}
}

func TestResetHidesEverything(t *testing.T) {
	m := newMachine()
	m.Change(0, 8)
	settle(m, 0.3)
	m.Change(8, 4)

	m.Reset()
	if m.Animating() {
		t.Error("Reset must cancel all transitions")
	}
	for _, s := range m.Slots() {
		if s.State != Hidden || s.Props.Alpha != 0 || s.Interactive {
			t.Errorf("%v[%d] not at rest: %v %+v", s.Kind, s.Index, s.State, s.Props)
		}
	}
}

func TestShortTextContent(t *testing.T) {
	content := config.Default().Overlays
	content.Text = content.Text[:2]
	m := New(content)

	if m.SlotFor(5) != nil {
		t.Error("A text segment without content must map to nothing")
	}
	m.Change(1, 5)
	settle(m, 1)
	checkExclusive(t, m)
}
