// Package effects animates overlay properties with eased, delayable tweens.
// A Group is advanced manually by the owner's clock; nothing runs on its own.
package effects

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Props are the animatable overlay properties.
type Props struct {
	Alpha    float64
	Scale    float64
	YPercent float64
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func (p Props) lerp(to Props, t float64) Props {
	return Props{
		Alpha:    lerp(p.Alpha, to.Alpha, t),
		Scale:    lerp(p.Scale, to.Scale, t),
		YPercent: lerp(p.YPercent, to.YPercent, t),
	}
}

// Easing names follow the usual web animation vocabulary.
const (
	EaseNone        = "none"
	EasePower1Out   = "power1.out"
	EasePower2Out   = "power2.out"
	EasePower2InOut = "power2.inOut"
	EaseExpoOut     = "expo.out"
)

func Easing(name string) ease.TweenFunc {
	switch name {
	case EasePower1Out:
		return ease.OutQuad
	case EasePower2Out:
		return ease.OutCubic
	case EasePower2InOut:
		return ease.InOutCubic
	case EaseExpoOut:
		return ease.OutExpo
	default:
		return ease.Linear
	}
}

type Options struct {
	Duration   float64
	Delay      float64
	Ease       string
	OnStart    func()
	OnComplete func()
}

type Tween struct {
	target  *Props
	from    Props
	to      Props
	hasFrom bool
	opts    Options

	curve   *gween.Tween
	wait    float64
	started bool
	done    bool
	killed  bool
}

func newTween(target *Props, to Props, opts Options) *Tween {
	return &Tween{
		target: target,
		to:     to,
		opts:   opts,
		wait:   opts.Delay,
		curve:  gween.New(0, 1, float32(opts.Duration), Easing(opts.Ease)),
	}
}

func (t *Tween) Done() bool {
	return t.done
}

func (t *Tween) start() {
	t.started = true
	if !t.hasFrom {
		t.from = *t.target
	}
	*t.target = t.from
	if t.opts.OnStart != nil {
		t.opts.OnStart()
	}
}

func (t *Tween) update(dt float64) {
	if t.done {
		return
	}
	if !t.started {
		t.wait -= dt
		if t.wait > 0 {
			return
		}
		dt = -t.wait
		t.start()
	}

	if t.opts.Duration <= 0 {
		t.finish()
		return
	}

	v, finished := t.curve.Update(float32(dt))
	if finished {
		t.finish()
		return
	}
	*t.target = t.from.lerp(t.to, float64(v))
}

func (t *Tween) finish() {
	*t.target = t.to
	t.done = true
	if t.opts.OnComplete != nil {
		t.opts.OnComplete()
	}
}

func (t *Tween) kill() {
	t.done = true
	t.killed = true
}

// Group owns a set of tweens. Starting a tween on a target first kills the
// target's in-flight tweens, so transitions never stack.
type Group struct {
	tweens []*Tween
}

func (g *Group) Set(target *Props, p Props) {
	*target = p
}

func (g *Group) To(target *Props, to Props, opts Options) *Tween {
	g.KillTweensOf(target)
	tw := newTween(target, to, opts)
	g.tweens = append(g.tweens, tw)
	return tw
}

// FromTo renders the from state immediately, then animates after the delay.
func (g *Group) FromTo(target *Props, from, to Props, opts Options) *Tween {
	g.KillTweensOf(target)
	tw := newTween(target, to, opts)
	tw.from = from
	tw.hasFrom = true
	*target = from
	g.tweens = append(g.tweens, tw)
	return tw
}

func (g *Group) KillTweensOf(target *Props) {
	for _, tw := range g.tweens {
		if tw.target == target && !tw.done {
			tw.kill()
		}
	}
}

func (g *Group) KillAll() {
	for _, tw := range g.tweens {
		if !tw.done {
			tw.kill()
		}
	}
	g.tweens = nil
}

func (g *Group) Active(target *Props) bool {
	for _, tw := range g.tweens {
		if tw.target == target && !tw.done {
			return true
		}
	}
	return false
}

func (g *Group) Len() int {
	n := 0
	for _, tw := range g.tweens {
		if !tw.done {
			n++
		}
	}
	return n
}

// Update advances every tween by dt seconds. Callbacks may start new tweens.
func (g *Group) Update(dt float64) {
	current := make([]*Tween, len(g.tweens))
	copy(current, g.tweens)
	for _, tw := range current {
		tw.update(dt)
	}

	live := g.tweens[:0]
	for _, tw := range g.tweens {
		if !tw.done {
			live = append(live, tw)
		}
	}
	g.tweens = live
}
