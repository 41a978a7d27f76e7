package edit

import (
	"math"

	"go.uber.org/zap"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

// Driver owns the current state and turns raw input into operations.
// It is not safe for concurrent use; call it from the interaction loop.
type Driver struct {
	env     *Env
	state   *State
	pointer PointerInfo
}

// NewDriver starts in the given state.
func NewDriver(env *Env, initial *State) *Driver {
	return &Driver{env: env, state: initial}
}

// State returns the current state.
func (d *Driver) State() *State { return d.state }

// Linkage returns the current state's model.
func (d *Driver) Linkage() linkage.Model { return d.state.lk }

// Pointer returns the last known pointer.
func (d *Driver) Pointer() PointerInfo { return d.pointer }

// apply resolves next against the current state and reports whether it
// changed.
func (d *Driver) apply(ev Event, next *State) bool {
	if next == nil {
		return false
	}
	prev := d.state
	d.state = next
	if prev != next {
		prev.Release()
	}
	d.env.Log.Debug("transition",
		zap.Stringer("op", ev.Op),
		zap.Stringer("from", prev.kind),
		zap.Stringer("to", next.kind),
		zap.String("state", next.String()))
	return true
}

func (d *Driver) handle(ev Event) bool {
	return d.apply(ev, d.state.Handle(ev))
}

// PointerDown runs the generic handler first and falls back to the
// element under the pointer.
func (d *Driver) PointerDown(p geom.Point) {
	d.pointer = PointerInfo{Pos: p, Down: true}
	if d.handle(Event{Op: OpPointerDown, Point: p}) {
		return
	}
	hit := d.hitTest(p)
	switch hit.kind {
	case hitRotary:
		d.handle(Event{Op: OpRotaryDown, ID: hit.id})
	case hitGround:
		d.handle(Event{Op: OpGroundDown, ID: hit.id})
	case hitPoint:
		d.handle(Event{Op: OpPointDown, ID: hit.id})
	case hitSegment:
		d.handle(Event{Op: OpSegmentDown, ID: hit.id, ID2: hit.id2})
	default:
		d.handle(Event{Op: OpCanvasDown, Point: p})
	}
}

// PointerMove tracks the pointer and drags while it is down.
func (d *Driver) PointerMove(p geom.Point) {
	d.pointer.Pos = p
	if d.pointer.Down {
		d.handle(Event{Op: OpPointerDrag, Point: p})
	}
}

// PointerUp mirrors PointerDown for release.
func (d *Driver) PointerUp(p geom.Point) {
	d.pointer = PointerInfo{Pos: p}
	if d.handle(Event{Op: OpPointerUp, Point: p}) {
		return
	}
	hit := d.hitTest(p)
	switch hit.kind {
	case hitRotary, hitGround, hitPoint:
		d.handle(Event{Op: OpAnyPointUp, ID: hit.id})
	case hitSegment:
		d.handle(Event{Op: OpSegmentUp, ID: hit.id, ID2: hit.id2})
	default:
		d.handle(Event{Op: OpCanvasUp, Point: p})
	}
}

func (d *Driver) KeyDown(k Key)  { d.handle(Event{Op: OpKeyDown, Key: k}) }
func (d *Driver) KeyUp(k Key)    { d.handle(Event{Op: OpKeyUp, Key: k}) }
func (d *Driver) KeyPress(k Key) { d.handle(Event{Op: OpKeyPress, Key: k}) }

// Key delivers a complete keystroke: down, press, up.
func (d *Driver) Key(k Key) {
	d.KeyDown(k)
	d.KeyPress(k)
	d.KeyUp(k)
}

// Frame advances the simulation by dt seconds unless the state is paused.
func (d *Driver) Frame(dt float64) {
	if d.state.Paused() {
		return
	}
	if !d.state.lk.Step(dt) {
		d.env.Log.Debug("mechanism locked, reversed")
	}
	d.state.sample()
}

// Draw renders the current state.
func (d *Driver) Draw(r render.Renderer) {
	d.state.Draw(r, d.pointer)
}

// Close releases background work of the current state.
func (d *Driver) Close() {
	d.state.Release()
}

type hitKind int

const (
	hitNone hitKind = iota
	hitRotary
	hitGround
	hitPoint
	hitSegment
)

type hit struct {
	kind    hitKind
	id, id2 string
}

// hitTest finds the nearest point within HitRadius, then the nearest bar.
func (d *Driver) hitTest(p geom.Point) hit {
	lk := d.state.lk
	topo := lk.Topology()
	pos := lk.Positions()
	r := d.env.Settings.HitRadius

	best, bestD := "", math.Inf(1)
	for _, id := range topo.Points {
		if dist := geom.Dist(p, pos[id]); dist <= r && dist < bestD {
			best, bestD = id, dist
		}
	}
	if best != "" {
		switch {
		case topo.IsRotary(best):
			return hit{kind: hitRotary, id: best}
		case topo.IsGround(best):
			return hit{kind: hitGround, id: best}
		default:
			return hit{kind: hitPoint, id: best}
		}
	}

	var seg hit
	bestD = math.Inf(1)
	for _, b := range topo.Bars {
		if dist := geom.SegmentDist(p, pos[b.A], pos[b.B]); dist <= r && dist < bestD {
			seg, bestD = hit{kind: hitSegment, id: b.A, id2: b.B}, dist
		}
	}
	return seg
}
