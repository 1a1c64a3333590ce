// Package overlay drives the narrative panels that appear over the frame
// sequence. Segments map to slots through a fixed band table; every segment
// change runs a kill-and-reset transition so at most one slot is ever shown.
package overlay

// Kind identifies which group of overlay content a slot belongs to.
type Kind int

const (
	None Kind = iota
	Text
	Panel
	Post
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Panel:
		return "panel"
	case Post:
		return "post"
	default:
		return "none"
	}
}

// Band table.
const (
	firstTextSegment = 1
	lastTextSegment  = 7
	panelSegment     = 8
	firstPostSegment = 9
	lastPostSegment  = 12
)

// Band is the slot a segment maps to.
type Band struct {
	Kind  Kind
	Index int
}

// SegmentOf buckets a sequence position into its segment.
func SegmentOf(pos, perSegment int) int {
	if perSegment <= 0 || pos < 0 {
		return 0
	}
	return pos / perSegment
}

// SegmentCount is ceil(total/perSegment).
func SegmentCount(total, perSegment int) int {
	if perSegment <= 0 || total <= 0 {
		return 0
	}
	return (total + perSegment - 1) / perSegment
}

// BandOf maps a segment to its slot. The text and panel bands are fixed;
// the post-panel index is clamped to the postCount defined entries. ok is
// false for segment 0, out-of-band segments and an empty post-panel list.
func BandOf(seg, postCount int) (Band, bool) {
	switch {
	case seg >= firstTextSegment && seg <= lastTextSegment:
		return Band{Kind: Text, Index: seg - firstTextSegment}, true
	case seg == panelSegment:
		return Band{Kind: Panel}, true
	case seg >= firstPostSegment && seg <= lastPostSegment:
		if postCount <= 0 {
			return Band{}, false
		}
		return Band{Kind: Post, Index: min(seg-firstPostSegment, postCount-1)}, true
	}
	return Band{}, false
}
