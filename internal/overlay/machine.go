package overlay

import (
	"github.com/gogpu/gg"

	"github.com/ivlev/framescrub/internal/config"
	"github.com/ivlev/framescrub/internal/effects"
)

type State int

const (
	Hidden State = iota
	Entering
	Visible
	Exiting
)

func (s State) String() string {
	switch s {
	case Entering:
		return "entering"
	case Visible:
		return "visible"
	case Exiting:
		return "exiting"
	default:
		return "hidden"
	}
}

// Transition timings, in seconds.
const (
	EnterDelay = 0.1

	textEnterDuration  = 0.35
	textExitDuration   = 0.25
	panelEnterDuration = 0.5
	panelExitDuration  = 0.4

	restScale = 0.985
)

var (
	textHidden  = effects.Props{Alpha: 0, Scale: 1}
	textFrom    = effects.Props{Alpha: 0, Scale: restScale}
	textShown   = effects.Props{Alpha: 1, Scale: 1}
	textExit    = effects.Props{Alpha: 0, Scale: restScale}
	panelHidden = effects.Props{Alpha: 0, Scale: 1, YPercent: 100}
	panelShown  = effects.Props{Alpha: 1, Scale: 1, YPercent: 0}
)

// Slot is one overlay instance with its animated properties.
type Slot struct {
	Kind  Kind
	Index int
	Props effects.Props
	State State
	// Interactive mirrors pointer events on the panel.
	Interactive bool
}

// Machine owns every slot and the tweens that animate them.
type Machine struct {
	content config.Overlays
	tweens  effects.Group

	text  []*Slot
	panel *Slot
	post  []*Slot

	qr     *gg.ImageBuf
	qrSize int
}

func New(content config.Overlays) *Machine {
	m := &Machine{content: content}
	for i := range content.Text {
		m.text = append(m.text, &Slot{Kind: Text, Index: i, Props: textHidden})
	}
	m.panel = &Slot{Kind: Panel, Props: panelHidden}
	for i := range content.Post {
		m.post = append(m.post, &Slot{Kind: Post, Index: i, Props: textHidden})
	}
	return m
}

// Slots lists all slots: text blocks, the panel, then post-panel blocks.
func (m *Machine) Slots() []*Slot {
	out := make([]*Slot, 0, len(m.text)+1+len(m.post))
	out = append(out, m.text...)
	out = append(out, m.panel)
	out = append(out, m.post...)
	return out
}

// SlotFor returns the slot a segment maps to, or nil.
func (m *Machine) SlotFor(seg int) *Slot {
	band, ok := BandOf(seg, len(m.post))
	if !ok {
		return nil
	}
	switch band.Kind {
	case Text:
		if band.Index < len(m.text) {
			return m.text[band.Index]
		}
	case Panel:
		return m.panel
	case Post:
		return m.post[band.Index]
	}
	return nil
}

// Reset cancels every tween and snaps all slots to their hidden rest state.
func (m *Machine) Reset() {
	m.tweens.KillAll()
	for _, s := range m.Slots() {
		m.hide(s)
	}
}

func (m *Machine) hide(s *Slot) {
	m.tweens.KillTweensOf(&s.Props)
	if s.Kind == Panel {
		m.tweens.Set(&s.Props, panelHidden)
	} else {
		m.tweens.Set(&s.Props, textHidden)
	}
	s.State = Hidden
	s.Interactive = false
}

// Change transitions from the overlay of prev to the overlay of next. Every
// slot other than prev's is snapped hidden first, so a skip across several
// segments can never leave two overlays on screen.
func (m *Machine) Change(prev, next int) {
	if prev == next {
		return
	}
	from := m.SlotFor(prev)
	to := m.SlotFor(next)

	for _, s := range m.Slots() {
		if s != from {
			m.hide(s)
		}
	}

	if from != nil && from != to {
		m.exit(from)
	}
	if to != nil {
		m.enter(to)
	}
}

func (m *Machine) exit(s *Slot) {
	if s.State == Hidden {
		return
	}
	s.State = Exiting

	if s.Kind == Panel {
		s.Interactive = false
		m.tweens.To(&s.Props, panelHidden, effects.Options{
			Duration:   panelExitDuration,
			Ease:       effects.EasePower2InOut,
			OnComplete: func() { s.State = Hidden },
		})
		return
	}

	m.tweens.To(&s.Props, textExit, effects.Options{
		Duration: textExitDuration,
		Ease:     effects.EasePower1Out,
		OnComplete: func() {
			s.State = Hidden
			s.Props = textHidden
		},
	})
}

func (m *Machine) enter(s *Slot) {
	s.State = Entering

	if s.Kind == Panel {
		m.tweens.FromTo(&s.Props, panelHidden, panelShown, effects.Options{
			Duration:   panelEnterDuration,
			Delay:      EnterDelay,
			Ease:       effects.EasePower2Out,
			OnStart:    func() { s.Interactive = true },
			OnComplete: func() { s.State = Visible },
		})
		return
	}

	m.tweens.FromTo(&s.Props, textFrom, textShown, effects.Options{
		Duration:   textEnterDuration,
		Delay:      EnterDelay,
		Ease:       effects.EasePower1Out,
		OnComplete: func() { s.State = Visible },
	})
}

// Update advances the transitions by dt seconds.
func (m *Machine) Update(dt float64) {
	m.tweens.Update(dt)
}

// Animating reports whether any transition is in flight.
func (m *Machine) Animating() bool {
	return m.tweens.Len() > 0
}
