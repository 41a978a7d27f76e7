package linkage

import (
	"fmt"
	"math"
	"sort"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

// Options configures a new Linkage.
type Options struct {
	RotaryLength    float64 // crank length of a new rotary input
	RotaryRefOffset float64 // distance from a rotary centre to its reference point
	PathSteps       int     // samples per drive cycle for Path
}

// DefaultOptions returns sensible defaults for canvas-unit coordinates.
func DefaultOptions() Options {
	return Options{
		RotaryLength:    4,
		RotaryRefOffset: 3,
		PathSteps:       90,
	}
}

type barKey struct{ a, b string }

func key(a, b string) barKey {
	if b < a {
		a, b = b, a
	}
	return barKey{a, b}
}

// Linkage is the in-tree Model implementation.
type Linkage struct {
	opts      Options
	ground    map[string]geom.Point
	pos       map[string]geom.Point // solved non-ground positions
	bars      map[barKey]float64
	extenders map[string]*Extender
	rotaries  map[string]string
	speed     float64
	nextID    int
}

var _ Model = (*Linkage)(nil)

// New creates an empty linkage.
func New(opts Options) *Linkage {
	if opts.PathSteps <= 0 {
		opts.PathSteps = DefaultOptions().PathSteps
	}
	return &Linkage{
		opts:      opts,
		ground:    make(map[string]geom.Point),
		pos:       make(map[string]geom.Point),
		bars:      make(map[barKey]float64),
		extenders: make(map[string]*Extender),
		rotaries:  make(map[string]string),
		speed:     1,
	}
}

// SetGround pins id at p.
func (l *Linkage) SetGround(id string, p geom.Point) {
	delete(l.pos, id)
	l.ground[id] = p
}

// SetPoint places a free point at p. The position only seeds the solver.
func (l *Linkage) SetPoint(id string, p geom.Point) {
	delete(l.ground, id)
	l.pos[id] = p
}

// Connect joins a and b with a bar whose length is their current distance.
func (l *Linkage) Connect(a, b string) error {
	pa, ok := l.Position(a)
	if !ok {
		return fmt.Errorf("unknown point %q", a)
	}
	pb, ok := l.Position(b)
	if !ok {
		return fmt.Errorf("unknown point %q", b)
	}
	l.bars[key(a, b)] = geom.Dist(pa, pb)
	return nil
}

// SetRotary installs a rotary input: ground centre and reference points and
// the extender they drive, with the crank initially pointing along +x.
func (l *Linkage) SetRotary(center, ref, ext string, at geom.Point, length, speed float64) {
	l.SetGround(center, at)
	l.SetGround(ref, at.Sub(geom.Pt(l.opts.RotaryRefOffset, 0)))
	l.extenders[ext] = &Extender{Base: center, Ref: ref, Length: length, Speed: speed}
	l.rotaries[center] = ext
	l.pos[ext] = at.Add(geom.Pt(length, 0))
}

// Speed returns the global speed multiplier.
func (l *Linkage) Speed() float64 {
	return l.speed
}

// Position returns the current position of a point.
func (l *Linkage) Position(id string) (geom.Point, bool) {
	if p, ok := l.ground[id]; ok {
		return p, true
	}
	p, ok := l.pos[id]
	return p, ok
}

// Positions returns a copy of all current positions.
func (l *Linkage) Positions() map[string]geom.Point {
	out := make(map[string]geom.Point, len(l.ground)+len(l.pos))
	for id, p := range l.pos {
		out[id] = p
	}
	for id, p := range l.ground {
		out[id] = p
	}
	return out
}

// Topology returns a copy of the static structure.
func (l *Linkage) Topology() Topology {
	t := Topology{
		GroundPoints: make(map[string]geom.Point, len(l.ground)),
		Rotaries:     make(map[string]string, len(l.rotaries)),
		Extenders:    make(map[string]Extender, len(l.extenders)),
		Bars:         make([]Bar, 0, len(l.bars)),
		Speed:        l.speed,
	}
	for id, p := range l.ground {
		t.GroundPoints[id] = p
		t.Points = append(t.Points, id)
	}
	for id := range l.pos {
		if _, g := l.ground[id]; !g {
			t.Points = append(t.Points, id)
		}
	}
	sort.Strings(t.Points)
	for c, e := range l.rotaries {
		t.Rotaries[c] = e
	}
	for id, e := range l.extenders {
		t.Extenders[id] = *e
	}
	for k, length := range l.bars {
		t.Bars = append(t.Bars, Bar{A: k.a, B: k.b, Length: length})
	}
	sort.Slice(t.Bars, func(i, j int) bool {
		if t.Bars[i].A != t.Bars[j].A {
			return t.Bars[i].A < t.Bars[j].A
		}
		return t.Bars[i].B < t.Bars[j].B
	})
	return t
}

// Clone returns an independent deep copy.
func (l *Linkage) Clone() Model {
	return l.clone()
}

func (l *Linkage) clone() *Linkage {
	c := New(l.opts)
	c.speed = l.speed
	c.nextID = l.nextID
	for id, p := range l.ground {
		c.ground[id] = p
	}
	for id, p := range l.pos {
		c.pos[id] = p
	}
	for k, v := range l.bars {
		c.bars[k] = v
	}
	for id, e := range l.extenders {
		ext := *e
		c.extenders[id] = &ext
	}
	for k, v := range l.rotaries {
		c.rotaries[k] = v
	}
	return c
}

// restore replaces l's contents with a snapshot taken by clone.
func (l *Linkage) restore(snap *Linkage) {
	*l = *snap
}

// transact runs edit and keeps its effect only when it succeeds and the
// result still solves.
func (l *Linkage) transact(edit func() bool) bool {
	snap := l.clone()
	if !edit() || !l.Recompute() {
		l.restore(snap)
		return false
	}
	return true
}

func (l *Linkage) newID() string {
	for {
		l.nextID++
		id := fmt.Sprintf("p%d", l.nextID)
		if _, ok := l.Position(id); !ok {
			if _, ext := l.extenders[id]; !ext {
				return id
			}
		}
	}
}

func (l *Linkage) exists(id string) bool {
	_, ok := l.Position(id)
	return ok
}

// adjacency returns the sorted bar neighbours of every point.
func (l *Linkage) adjacency() map[string][]string {
	adj := make(map[string][]string)
	for k := range l.bars {
		adj[k.a] = append(adj[k.a], k.b)
		adj[k.b] = append(adj[k.b], k.a)
	}
	for _, n := range adj {
		sort.Strings(n)
	}
	return adj
}

// Recompute re-solves every non-ground position. On failure the previous
// positions are kept.
func (l *Linkage) Recompute() bool {
	next, ok := l.solve()
	if !ok {
		return false
	}
	l.pos = next
	return true
}

// solve places points constructively: extenders from their base and
// reference, other points from the intersection of two bars whose far ends
// are already placed. The intersection nearest the previous position wins.
func (l *Linkage) solve() (map[string]geom.Point, bool) {
	adj := l.adjacency()
	placed := make(map[string]geom.Point, len(l.ground)+len(l.pos))
	for id, p := range l.ground {
		placed[id] = p
	}

	var pending []string
	for id := range l.pos {
		if _, g := l.ground[id]; !g {
			pending = append(pending, id)
		}
	}
	sort.Strings(pending)

	for len(pending) > 0 {
		var waiting []string
		for _, id := range pending {
			p, ok, ready := l.place(id, placed, adj)
			if !ready {
				waiting = append(waiting, id)
				continue
			}
			if !ok {
				return nil, false
			}
			placed[id] = p
		}
		if len(waiting) == len(pending) {
			return nil, false // underconstrained or cyclic
		}
		pending = waiting
	}

	out := make(map[string]geom.Point, len(l.pos))
	for id := range l.pos {
		out[id] = placed[id]
	}
	return out, true
}

// place returns a point's position given the already placed points. ready
// is false until its inputs are placed; ok is false when they are placed but
// no position satisfies them.
func (l *Linkage) place(id string, placed map[string]geom.Point, adj map[string][]string) (p geom.Point, ok, ready bool) {
	if e, isExt := l.extenders[id]; isExt {
		base, okB := placed[e.Base]
		ref, okR := placed[e.Ref]
		if !okB || !okR {
			return geom.Point{}, false, false
		}
		dir := base.Sub(ref).Angle() + e.Angle
		return geom.Polar(base, e.Length, dir), true, true
	}

	var anchors []string
	for _, n := range adj[id] {
		if _, ok := placed[n]; ok {
			anchors = append(anchors, n)
			if len(anchors) == 2 {
				break
			}
		}
	}
	if len(anchors) < 2 {
		return geom.Point{}, false, false
	}

	a, b := anchors[0], anchors[1]
	p1, p2, hit := geom.CircleIntersect(placed[a], l.bars[key(a, id)], placed[b], l.bars[key(b, id)])
	if !hit {
		return geom.Point{}, false, true
	}
	prev := l.pos[id]
	if geom.Dist(p2, prev) < geom.Dist(p1, prev) {
		return p2, true, true
	}
	return p1, true, true
}

// Step advances every rotary input by dt seconds. A step that locks the
// mechanism is undone and the rotaries reverse.
func (l *Linkage) Step(dt float64) bool {
	if len(l.rotaries) == 0 {
		return true
	}
	prev := make(map[string]float64, len(l.rotaries))
	for _, ext := range l.rotaries {
		e := l.extenders[ext]
		prev[ext] = e.Angle
		e.Angle = math.Mod(e.Angle+e.Speed*l.speed*dt, 2*math.Pi)
	}
	if l.Recompute() {
		return true
	}
	for ext, a := range prev {
		e := l.extenders[ext]
		e.Angle = a
		e.Speed = -e.Speed
	}
	return false
}

// Path samples the trajectory of id over one revolution of the first
// driven rotary. Other rotaries turn in proportion to their speeds.
func (l *Linkage) Path(id string) []geom.Point {
	if _, g := l.ground[id]; g {
		return nil
	}
	if _, ok := l.pos[id]; !ok {
		return nil
	}

	var lead float64
	for _, c := range sortedKeys(l.rotaries) {
		if s := l.extenders[l.rotaries[c]].Speed; s != 0 {
			lead = math.Abs(s)
			break
		}
	}
	if lead == 0 {
		return nil
	}

	sim := l.clone()
	step := 2 * math.Pi / float64(l.opts.PathSteps)
	path := make([]geom.Point, 0, l.opts.PathSteps)
	for i := 0; i < l.opts.PathSteps; i++ {
		for _, ext := range sim.rotaries {
			e := sim.extenders[ext]
			e.Angle += step * e.Speed / lead
		}
		if !sim.Recompute() {
			return nil
		}
		path = append(path, sim.pos[id])
	}
	return path
}
