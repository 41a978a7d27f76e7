package edit

import (
	"maps"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// table maps each kind to the handlers it accepts. Kinds share behaviour by
// merging fragments: paused and unpaused key handling, and the idle
// handlers RotarySelected extends.
var table [numKinds]map[Op]handler

func init() {
	paused := map[Op]handler{OpKeyUp: pausedKeyUp}
	unpaused := map[Op]handler{OpKeyUp: unpausedKeyUp, OpKeyPress: unpausedKeyPress}
	selecting := map[Op]handler{
		OpGroundDown:  func(s *State, ev Event) *State { return newGroundPressed(s.env, s.lk, ev.ID) },
		OpPointDown:   func(s *State, ev Event) *State { return newPointPressed(s.env, s.lk, ev.ID) },
		OpRotaryDown:  func(s *State, ev Event) *State { return newRotaryPressed(s.env, s.lk, ev.ID) },
		OpSegmentDown: func(s *State, ev Event) *State { return newSegmentSelected(s.env, s.lk, ev.ID, ev.ID2) },
	}

	table[Unpaused] = unpaused
	table[Trace] = unpaused

	idle := merge(paused, selecting, map[Op]handler{
		OpCanvasDown: func(s *State, ev Event) *State { return newCanvas1(s.env, s.lk, ev.Point) },
		OpKeyDown: func(s *State, ev Event) *State {
			if ev.Key == KeyR {
				return newPlacingRotary(s.env, s.lk)
			}
			return nil
		},
	})
	table[Idle] = idle

	table[Canvas1] = merge(paused, map[Op]handler{
		OpCanvasUp: func(s *State, ev Event) *State {
			return newCanvas12(s.env, s.lk, s.pointA, ev.Point)
		},
		OpAnyPointUp: func(s *State, ev Event) *State {
			return newCanvasPoint(s.env, s.lk, s.pointA, ev.ID)
		},
	})

	table[Canvas12] = merge(paused, map[Op]handler{
		OpAnyPointUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddGroundSegment(s.pointA, s.pointB, ev.ID))
		},
	})

	table[CanvasPoint] = merge(paused, map[Op]handler{
		OpCanvasUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddGroundSegment(s.pointA, ev.Point, s.p1id))
		},
	})

	table[GroundPressed] = merge(paused, map[Op]handler{
		OpPointerDrag: func(s *State, ev Event) *State {
			s.lk.MoveGroundPoints(map[string]geom.Point{s.p0id: ev.Point})
			s.dragged = true
			return nil
		},
		OpPointerUp: func(s *State, ev Event) *State {
			if s.dragged {
				return newIdle(s.env, s.lk)
			}
			return newPointSelected(s.env, s.lk, s.p0id)
		},
	})

	table[PointPressed] = merge(paused, map[Op]handler{
		OpPointerDrag: func(s *State, ev Event) *State {
			s.lk.MoveNonGroundPoint(s.p0id, ev.Point)
			s.dragged = true
			return nil
		},
		OpPointerUp: table[GroundPressed][OpPointerUp],
	})

	table[RotaryPressed] = merge(paused, map[Op]handler{
		OpPointerDrag: func(s *State, ev Event) *State {
			moveRotary(s.lk, s.p0id, ev.Point)
			s.dragged = true
			return nil
		},
		OpPointerUp: func(s *State, ev Event) *State {
			if s.dragged {
				return newIdle(s.env, s.lk)
			}
			return newRotarySelected(s.env, s.lk, s.p0id)
		},
	})

	table[PointSelected] = merge(paused, map[Op]handler{
		OpAnyPointUp: func(s *State, ev Event) *State {
			return newTwoPointsSelected(s.env, s.lk, s.p0id, ev.ID)
		},
		OpCanvasUp: func(s *State, ev Event) *State {
			return newPointCanvas(s.env, s.lk, s.p0id, ev.Point)
		},
		OpKeyUp: func(s *State, ev Event) *State {
			switch ev.Key {
			case KeyD:
				if s.lk.TryRemovePoint(s.p0id) {
					return newIdle(s.env, s.lk)
				}
				return nil
			case KeyO:
				if path := s.lk.Path(s.p0id); path != nil {
					return newDrawOptimizePath(s.env, s.lk, s.p0id, path)
				}
				return nil
			case KeySpace:
				return newTrace(s.env, s.lk, s.p0id)
			}
			return pausedKeyUp(s, ev)
		},
	})

	table[TwoPointsSelected] = merge(paused, map[Op]handler{
		OpCanvasUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddTriangle(s.p0id, s.p1id, ev.Point))
		},
	})

	table[PointCanvas] = merge(paused, map[Op]handler{
		OpCanvasUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddGroundSegment(ev.Point, s.pointA, s.p0id))
		},
		OpAnyPointUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddTriangle(s.p0id, ev.ID, s.pointA))
		},
	})

	table[RotarySelected] = merge(idle, map[Op]handler{
		OpKeyUp: func(s *State, ev Event) *State {
			switch ev.Key {
			case KeySpace:
				return newRotaryMoving(s.env, s.lk, s.p0id)
			case KeyD:
				if s.lk.TryRemovePoint(s.p0id) {
					return newIdle(s.env, s.lk)
				}
				return nil
			}
			return pausedKeyUp(s, ev)
		},
	})

	table[SegmentSelected] = merge(paused, map[Op]handler{
		OpCanvasUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddTriangle(s.p0id, s.p1id, ev.Point))
		},
		OpKeyPress: func(s *State, ev Event) *State {
			switch ev.Key {
			case KeyS:
				s.lk.ScaleBar(s.p0id, s.p1id, 1-s.env.Settings.BarScale)
			case KeyW:
				s.lk.ScaleBar(s.p0id, s.p1id, 1+s.env.Settings.BarScale)
			}
			return nil
		},
	})

	table[RotaryMoving] = map[Op]handler{
		OpKeyUp: unpausedKeyUp,
		OpKeyPress: func(s *State, ev Event) *State {
			switch ev.Key {
			case KeyS:
				s.lk.ChangeRotarySpeed(s.p0id, -s.env.Settings.RotarySpeedStep)
			case KeyW:
				s.lk.ChangeRotarySpeed(s.p0id, s.env.Settings.RotarySpeedStep)
			case KeyT:
				s.lk.ReverseRotary(s.p0id)
			}
			return nil
		},
	}

	table[PlacingRotary] = merge(paused, map[Op]handler{
		OpKeyUp: func(s *State, ev Event) *State {
			if ev.Key == KeyR {
				return newIdle(s.env, s.lk)
			}
			return pausedKeyUp(s, ev)
		},
		OpPointerUp: func(s *State, ev Event) *State {
			return s.commit(s.lk.AddRotaryInput(ev.Point))
		},
	})

	table[DrawOptimizePath] = merge(paused, map[Op]handler{
		OpPointerDrag: func(s *State, ev Event) *State {
			s.drawnPoints = append(s.drawnPoints, ev.Point)
			return nil
		},
		OpPointerUp: func(s *State, ev Event) *State {
			if len(s.drawnPoints) == 0 {
				return nil
			}
			return newOptimizing(s.env, s.lk, s.p0id, s.drawnPoints, s.pointPath)
		},
	})

	table[Optimizing] = map[Op]handler{
		OpKeyUp: func(s *State, ev Event) *State {
			s.stopOptimizing()
			switch ev.Key {
			case KeySpace:
				return newTrace(s.env, s.lk, s.p0id)
			case KeyEscape:
				return newIdle(s.env, s.lk)
			}
			return nil
		},
	}
}

func merge(frags ...map[Op]handler) map[Op]handler {
	out := make(map[Op]handler)
	for _, f := range frags {
		maps.Copy(out, f)
	}
	return out
}

func pausedKeyUp(s *State, ev Event) *State {
	switch ev.Key {
	case KeySpace:
		return newUnpaused(s.env, s.lk)
	case KeyEscape:
		if s.kind == Idle {
			return nil
		}
		return newIdle(s.env, s.lk)
	}
	return nil
}

func unpausedKeyUp(s *State, ev Event) *State {
	if ev.Key == KeySpace || ev.Key == KeyEscape {
		return newIdle(s.env, s.lk)
	}
	return nil
}

func unpausedKeyPress(s *State, ev Event) *State {
	switch ev.Key {
	case KeyS:
		s.lk.ScaleSpeed(1 - s.env.Settings.SpeedScale)
	case KeyW:
		s.lk.ScaleSpeed(1 + s.env.Settings.SpeedScale)
	case KeyT:
		s.lk.ReverseAll()
	}
	return nil
}

// commit finishes a structural edit: Idle on success, unchanged on refusal.
func (s *State) commit(_ string, ok bool) *State {
	if !ok {
		return nil
	}
	return newIdle(s.env, s.lk)
}

// moveRotary translates a rotary centre together with its reference point.
func moveRotary(lk linkage.Model, center string, to geom.Point) bool {
	ref, ok := lk.Topology().RotaryRef(center)
	if !ok {
		return false
	}
	from, _ := lk.Position(center)
	refAt, _ := lk.Position(ref)
	d := to.Sub(from)
	return lk.MoveGroundPoints(map[string]geom.Point{center: to, ref: refAt.Add(d)})
}

// Constructors. Each captures the guard references of its kind.

// NewIdle returns the paused editing state.
func NewIdle(env *Env, lk linkage.Model) *State { return newIdle(env, lk) }

// NewUnpaused returns the running state.
func NewUnpaused(env *Env, lk linkage.Model) *State { return newUnpaused(env, lk) }

func newIdle(env *Env, lk linkage.Model) *State {
	return (&State{kind: Idle, env: env, lk: lk}).build(guardSpec{})
}

func newUnpaused(env *Env, lk linkage.Model) *State {
	return (&State{kind: Unpaused, env: env, lk: lk}).build(guardSpec{})
}

func newCanvas1(env *Env, lk linkage.Model, a geom.Point) *State {
	s := &State{kind: Canvas1, env: env, lk: lk, pointA: a}
	return s.build(refs(lk, nil, a), OpCanvasUp, OpAnyPointUp)
}

func newCanvas12(env *Env, lk linkage.Model, a, b geom.Point) *State {
	s := &State{kind: Canvas12, env: env, lk: lk, pointA: a, pointB: b}
	return s.build(refs(lk, nil, b), OpAnyPointUp)
}

func newCanvasPoint(env *Env, lk linkage.Model, a geom.Point, p1 string) *State {
	s := &State{kind: CanvasPoint, env: env, lk: lk, pointA: a, p1id: p1}
	return s.build(refs(lk, []string{p1}, a), OpCanvasUp)
}

func newGroundPressed(env *Env, lk linkage.Model, p0 string) *State {
	return (&State{kind: GroundPressed, env: env, lk: lk, p0id: p0}).build(guardSpec{})
}

func newPointPressed(env *Env, lk linkage.Model, p0 string) *State {
	return (&State{kind: PointPressed, env: env, lk: lk, p0id: p0}).build(guardSpec{})
}

func newRotaryPressed(env *Env, lk linkage.Model, p0 string) *State {
	return (&State{kind: RotaryPressed, env: env, lk: lk, p0id: p0}).build(guardSpec{})
}

func newPointSelected(env *Env, lk linkage.Model, p0 string) *State {
	s := &State{kind: PointSelected, env: env, lk: lk, p0id: p0}
	return s.build(refs(lk, []string{p0}), OpAnyPointUp, OpCanvasUp)
}

func newTwoPointsSelected(env *Env, lk linkage.Model, p0, p1 string) *State {
	s := &State{kind: TwoPointsSelected, env: env, lk: lk, p0id: p0, p1id: p1}
	return s.build(refs(lk, []string{p0, p1}), OpCanvasUp)
}

func newPointCanvas(env *Env, lk linkage.Model, p0 string, a geom.Point) *State {
	s := &State{kind: PointCanvas, env: env, lk: lk, p0id: p0, pointA: a}
	return s.build(refs(lk, []string{p0}, a), OpCanvasUp, OpAnyPointUp)
}

func newRotarySelected(env *Env, lk linkage.Model, p0 string) *State {
	return (&State{kind: RotarySelected, env: env, lk: lk, p0id: p0}).build(guardSpec{})
}

func newSegmentSelected(env *Env, lk linkage.Model, p0, p1 string) *State {
	s := &State{kind: SegmentSelected, env: env, lk: lk, p0id: p0, p1id: p1}
	return s.build(refs(lk, []string{p0, p1}), OpCanvasUp)
}

func newRotaryMoving(env *Env, lk linkage.Model, p0 string) *State {
	return (&State{kind: RotaryMoving, env: env, lk: lk, p0id: p0}).build(guardSpec{})
}

func newPlacingRotary(env *Env, lk linkage.Model) *State {
	return (&State{kind: PlacingRotary, env: env, lk: lk}).build(guardSpec{})
}

func newTrace(env *Env, lk linkage.Model, p0 string) *State {
	s := &State{kind: Trace, env: env, lk: lk, p0id: p0, trace: newPathBuffer(env.Settings.TraceCapacity)}
	return s.build(guardSpec{})
}

func newDrawOptimizePath(env *Env, lk linkage.Model, p0 string, path []geom.Point) *State {
	s := &State{kind: DrawOptimizePath, env: env, lk: lk, p0id: p0, pointPath: path}
	return s.build(guardSpec{})
}
