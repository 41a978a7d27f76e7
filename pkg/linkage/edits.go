package linkage

import (
	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

// ScaleSpeed multiplies the global speed.
func (l *Linkage) ScaleSpeed(factor float64) {
	l.speed *= factor
}

// ReverseAll reverses every rotary input.
func (l *Linkage) ReverseAll() {
	l.speed = -l.speed
}

// ChangeRotarySpeed adds delta to one rotary input's speed.
func (l *Linkage) ChangeRotarySpeed(id string, delta float64) bool {
	ext, ok := l.rotaries[id]
	if !ok {
		return false
	}
	l.extenders[ext].Speed += delta
	return true
}

// ReverseRotary reverses one rotary input.
func (l *Linkage) ReverseRotary(id string) bool {
	ext, ok := l.rotaries[id]
	if !ok {
		return false
	}
	e := l.extenders[ext]
	e.Speed = -e.Speed
	return true
}

// RotarySpeed returns the speed of a rotary input.
func (l *Linkage) RotarySpeed(id string) (float64, bool) {
	ext, ok := l.rotaries[id]
	if !ok {
		return 0, false
	}
	return l.extenders[ext].Speed, true
}

// ScaleBar multiplies the length of the bar a-b.
func (l *Linkage) ScaleBar(a, b string, factor float64) bool {
	k := key(a, b)
	if _, ok := l.bars[k]; !ok || factor <= 0 {
		return false
	}
	return l.transact(func() bool {
		l.bars[k] *= factor
		return true
	})
}

// MoveGroundPoints moves several ground points at once.
func (l *Linkage) MoveGroundPoints(moves map[string]geom.Point) bool {
	for id := range moves {
		if _, ok := l.ground[id]; !ok {
			return false
		}
	}
	return l.transact(func() bool {
		for id, p := range moves {
			l.ground[id] = p
		}
		return true
	})
}

// MoveNonGroundPoint drags a free point to a new position by re-measuring
// the bars (or the extender arm) that hold it.
func (l *Linkage) MoveNonGroundPoint(id string, to geom.Point) bool {
	if _, ok := l.pos[id]; !ok {
		return false
	}
	if _, g := l.ground[id]; g {
		return false
	}
	adj := l.adjacency()
	return l.transact(func() bool {
		if e, ok := l.extenders[id]; ok {
			base, okB := l.Position(e.Base)
			ref, okR := l.Position(e.Ref)
			if !okB || !okR || geom.Dist(base, to) == 0 {
				return false
			}
			e.Length = geom.Dist(base, to)
			e.Angle = to.Sub(base).Angle() - base.Sub(ref).Angle()
		}
		l.pos[id] = to
		for _, n := range adj[id] {
			pn, ok := l.Position(n)
			if !ok {
				return false
			}
			l.bars[key(id, n)] = geom.Dist(to, pn)
		}
		return true
	})
}

// AddGroundSegment pins a new ground point at ground and adds a new point at
// at, barred to both the new ground point and anchor.
func (l *Linkage) AddGroundSegment(ground, at geom.Point, anchor string) (string, bool) {
	pa, ok := l.Position(anchor)
	if !ok {
		return "", false
	}
	var id string
	ok = l.transact(func() bool {
		g := l.newID()
		l.ground[g] = ground
		id = l.newID()
		l.pos[id] = at
		l.bars[key(g, id)] = geom.Dist(ground, at)
		l.bars[key(id, anchor)] = geom.Dist(at, pa)
		return true
	})
	if !ok {
		return "", false
	}
	return id, true
}

// AddTriangle adds a new point at at, held rigid by bars to a and b.
func (l *Linkage) AddTriangle(a, b string, at geom.Point) (string, bool) {
	pa, okA := l.Position(a)
	pb, okB := l.Position(b)
	if !okA || !okB || a == b {
		return "", false
	}
	var id string
	ok := l.transact(func() bool {
		id = l.newID()
		l.pos[id] = at
		l.bars[key(id, a)] = geom.Dist(at, pa)
		l.bars[key(id, b)] = geom.Dist(at, pb)
		return true
	})
	if !ok {
		return "", false
	}
	return id, true
}

// AddRotaryInput adds a rotary input centred at center and returns the id
// of its centre point.
func (l *Linkage) AddRotaryInput(center geom.Point) (string, bool) {
	var c string
	ok := l.transact(func() bool {
		c = l.newID()
		ref := l.newID()
		l.ground[c] = center
		l.ground[ref] = center.Sub(geom.Pt(l.opts.RotaryRefOffset, 0))
		ext := l.newID()
		l.pos[ext] = center.Add(geom.Pt(l.opts.RotaryLength, 0))
		l.extenders[ext] = &Extender{Base: c, Ref: ref, Length: l.opts.RotaryLength, Speed: 1}
		l.rotaries[c] = ext
		return true
	})
	if !ok {
		return "", false
	}
	return c, true
}

// TryRemovePoint removes a point and its bars. Rotary inputs are removed as
// a whole through their centre. The removal is refused when another point
// would be left with fewer than two bars, or when the point anchors an
// extender.
func (l *Linkage) TryRemovePoint(id string) bool {
	if !l.exists(id) {
		return false
	}
	return l.transact(func() bool {
		adj := l.adjacency()
		if ext, ok := l.rotaries[id]; ok {
			if len(adj[ext]) > 0 {
				return false
			}
			e := l.extenders[ext]
			delete(l.ground, id)
			delete(l.ground, e.Ref)
			delete(l.pos, ext)
			delete(l.extenders, ext)
			delete(l.rotaries, id)
			return true
		}
		if _, ok := l.extenders[id]; ok {
			return false
		}
		for _, e := range l.extenders {
			if e.Base == id || e.Ref == id {
				return false
			}
		}

		delete(l.ground, id)
		delete(l.pos, id)
		for _, n := range adj[id] {
			delete(l.bars, key(id, n))
		}

		after := l.adjacency()
		for p := range l.pos {
			if _, ext := l.extenders[p]; ext {
				continue
			}
			if len(after[p]) < 2 {
				return false
			}
		}
		return true
	})
}
