package catalog

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestBuildFrameListExample(t *testing.T) {
	list := BuildFrameList(FrameSpec{Total: 10, Excluded: []Range{{4, 6}}})

	want := []int{1, 2, 3, 7, 8, 9, 10}
	if !reflect.DeepEqual(list.IDs(), want) {
		t.Fatalf("Expected %v, got %v", want, list.IDs())
	}
	if list.Len() != 7 {
		t.Errorf("Expected 7 frames, got %d", list.Len())
	}
	if list.ID(3) != 7 {
		t.Errorf("Expected id 7 at position 3, got %d", list.ID(3))
	}
}

func TestBuildFrameListPageDefaults(t *testing.T) {
	list := BuildFrameList(FrameSpec{Total: 1345, Excluded: []Range{{532, 613}, {614, 1192}}})

	if list.Len() != 1345-(1192-532+1) {
		t.Errorf("Unexpected length %d", list.Len())
	}
	if list.ID(530) != 531 || list.ID(531) != 1193 {
		t.Errorf("Gap not bridged: %d -> %d", list.ID(530), list.ID(531))
	}
}

func TestBuildFrameListProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		total := r.Intn(300)
		var ranges []Range
		for k := r.Intn(5); k > 0; k-- {
			a := r.Intn(total+20) - 10
			b := a + r.Intn(40)
			ranges = append(ranges, Range{a, b})
		}
		spec := FrameSpec{Total: total, Excluded: ranges}
		list := BuildFrameList(spec)

		excluded := map[int]bool{}
		for _, rg := range ranges {
			for n := rg.From; n <= rg.To; n++ {
				if n >= 1 && n <= total {
					excluded[n] = true
				}
			}
		}

		if list.Len() != total-len(excluded) {
			t.Fatalf("spec %+v: expected length %d, got %d", spec, total-len(excluded), list.Len())
		}
		for p := 0; p < list.Len(); p++ {
			if p > 0 && list.ID(p) <= list.ID(p-1) {
				t.Fatalf("spec %+v: not strictly ascending at %d", spec, p)
			}
			if excluded[list.ID(p)] {
				t.Fatalf("spec %+v: excluded id %d survived", spec, list.ID(p))
			}
		}

		again := BuildFrameList(spec)
		if !reflect.DeepEqual(list.IDs(), again.IDs()) {
			t.Fatalf("spec %+v: not deterministic", spec)
		}
	}
}

func TestPosition(t *testing.T) {
	list := BuildFrameList(FrameSpec{Total: 10, Excluded: []Range{{4, 6}}})

	tests := []struct {
		id   int
		pos  int
		find bool
	}{
		{1, 0, true},
		{7, 3, true},
		{10, 6, true},
		{5, 0, false},
		{11, 0, false},
	}

	for _, tt := range tests {
		pos, ok := list.Position(tt.id)
		if ok != tt.find || (ok && pos != tt.pos) {
			t.Errorf("Position(%d) = %d, %v; want %d, %v", tt.id, pos, ok, tt.pos, tt.find)
		}
	}
}

func TestNamingPath(t *testing.T) {
	n := Naming{Dir: "/0fps", Prefix: "frame_", Extension: ".jpeg"}

	tests := []struct {
		id   int
		want string
	}{
		{7, "/0fps/frame_0007.jpeg"},
		{1345, "/0fps/frame_1345.jpeg"},
		{12345, "/0fps/frame_12345.jpeg"},
	}

	for _, tt := range tests {
		if got := n.Path(tt.id); got != tt.want {
			t.Errorf("Path(%d) = %s, want %s", tt.id, got, tt.want)
		}
	}

	if got := (Naming{Prefix: "f", Extension: ".png"}).Path(3); got != "f0003.png" {
		t.Errorf("Expected f0003.png, got %s", got)
	}
}
