package catalog

import (
	"fmt"
	"path"
	"sort"
)

// Range is an inclusive span of frame identifiers.
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

func (r Range) Contains(n int) bool {
	return n >= r.From && n <= r.To
}

// FrameSpec describes the on-disk numbering (1..Total) and the spans to omit.
type FrameSpec struct {
	Total    int
	Excluded []Range
}

func (s FrameSpec) excluded(n int) bool {
	for _, r := range s.Excluded {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// FrameList is the ordered, gap-filtered list of frame identifiers.
// Positions are indices into the list; identifiers are the numeric file suffixes.
type FrameList struct {
	ids []int
}

// BuildFrameList keeps every identifier in 1..Total that no exclusion range covers.
func BuildFrameList(spec FrameSpec) FrameList {
	ids := make([]int, 0, spec.Total)
	for n := 1; n <= spec.Total; n++ {
		if !spec.excluded(n) {
			ids = append(ids, n)
		}
	}
	return FrameList{ids: ids}
}

func (l FrameList) Len() int {
	return len(l.ids)
}

// ID returns the frame identifier at position pos.
func (l FrameList) ID(pos int) int {
	return l.ids[pos]
}

// Position finds the position of identifier id.
func (l FrameList) Position(id int) (int, bool) {
	i := sort.SearchInts(l.ids, id)
	if i < len(l.ids) && l.ids[i] == id {
		return i, true
	}
	return 0, false
}

func (l FrameList) IDs() []int {
	cp := make([]int, len(l.ids))
	copy(cp, l.ids)
	return cp
}

// Naming builds asset paths: {Dir}/{Prefix}{id zero-padded to 4}{Extension}.
type Naming struct {
	Dir       string
	Prefix    string
	Extension string
}

func (n Naming) File(id int) string {
	return fmt.Sprintf("%s%04d%s", n.Prefix, id, n.Extension)
}

func (n Naming) Path(id int) string {
	if n.Dir == "" {
		return n.File(id)
	}
	return path.Join(n.Dir, n.File(id))
}
