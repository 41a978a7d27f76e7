package edit

import (
	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// guardSpec lists what a guarded operation must not land on: the positions
// of the referenced points, captured at construction, and their ids.
type guardSpec struct {
	points []geom.Point
	ids    []string
}

// refs builds a guardSpec from point ids and free canvas locations.
func refs(lk linkage.Model, ids []string, free ...geom.Point) guardSpec {
	spec := guardSpec{ids: ids}
	for _, id := range ids {
		if p, ok := lk.Position(id); ok {
			spec.points = append(spec.points, p)
		}
	}
	spec.points = append(spec.points, free...)
	return spec
}

// guard returns a wrapper that lets CanvasUp and AnyPointUp through only
// when the candidate location lies strictly outside tol of every reference
// and, for AnyPointUp, names a point that is not itself referenced. Other
// operations pass through untouched.
func guard(tol float64, spec guardSpec) func(handler) handler {
	return func(next handler) handler {
		return func(s *State, ev Event) *State {
			var at geom.Point
			switch ev.Op {
			case OpCanvasUp:
				at = ev.Point
			case OpAnyPointUp:
				for _, id := range spec.ids {
					if id == ev.ID {
						return nil
					}
				}
				p, ok := s.lk.Position(ev.ID)
				if !ok {
					return nil
				}
				at = p
			default:
				return next(s, ev)
			}
			for _, ref := range spec.points {
				if geom.Near(at, ref, tol) {
					return nil
				}
			}
			return next(s, ev)
		}
	}
}
