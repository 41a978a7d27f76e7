package edit

import (
	"image/color"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

// PointerInfo is the pointer as the Driver last saw it.
type PointerInfo struct {
	Pos  geom.Point
	Down bool
}

var overlays = map[Kind]func(s *State, r render.Renderer, pi PointerInfo){
	Canvas1: func(s *State, r render.Renderer, pi PointerInfo) {
		s.marker(r, s.pointA, render.ColorGround)
		s.preview(r, s.pointA, pi.Pos)
	},
	Canvas12: func(s *State, r render.Renderer, pi PointerInfo) {
		s.marker(r, s.pointA, render.ColorGround)
		s.marker(r, s.pointB, render.ColorPreview)
		s.preview(r, s.pointA, s.pointB, pi.Pos)
	},
	CanvasPoint: func(s *State, r render.Renderer, pi PointerInfo) {
		s.marker(r, s.pointA, render.ColorGround)
		s.selected(r, s.p1id)
		s.preview(r, s.pointA, pi.Pos)
		s.previewFrom(r, s.p1id, pi.Pos)
	},
	GroundPressed: func(s *State, r render.Renderer, _ PointerInfo) { s.selected(r, s.p0id) },
	PointPressed:  func(s *State, r render.Renderer, _ PointerInfo) { s.selected(r, s.p0id) },
	RotaryPressed: func(s *State, r render.Renderer, _ PointerInfo) { s.rotary(r, s.p0id) },
	PointSelected: func(s *State, r render.Renderer, pi PointerInfo) {
		s.selected(r, s.p0id)
		s.previewFrom(r, s.p0id, pi.Pos)
	},
	TwoPointsSelected: func(s *State, r render.Renderer, pi PointerInfo) {
		s.selected(r, s.p0id)
		s.selected(r, s.p1id)
		s.previewFrom(r, s.p0id, pi.Pos)
		s.previewFrom(r, s.p1id, pi.Pos)
	},
	PointCanvas: func(s *State, r render.Renderer, pi PointerInfo) {
		s.selected(r, s.p0id)
		s.marker(r, s.pointA, render.ColorPreview)
		s.previewFrom(r, s.p0id, s.pointA)
		s.preview(r, s.pointA, pi.Pos)
	},
	RotarySelected: func(s *State, r render.Renderer, _ PointerInfo) { s.rotary(r, s.p0id) },
	RotaryMoving:   func(s *State, r render.Renderer, _ PointerInfo) { s.rotary(r, s.p0id) },
	SegmentSelected: func(s *State, r render.Renderer, pi PointerInfo) {
		a, okA := s.lk.Position(s.p0id)
		b, okB := s.lk.Position(s.p1id)
		if okA && okB {
			r.DrawLines([]geom.Point{a, b}, render.LineOptions{LineColor: render.ColorSelected})
		}
		s.previewFrom(r, s.p0id, pi.Pos)
		s.previewFrom(r, s.p1id, pi.Pos)
	},
	PlacingRotary: func(s *State, r render.Renderer, pi PointerInfo) {
		set := s.env.Settings
		ref := pi.Pos.Sub(geom.Pt(set.RotaryRefOffset, 0))
		ext := pi.Pos.Add(geom.Pt(set.RotaryLength, 0))
		r.DrawLines([]geom.Point{ref, pi.Pos, ext}, render.LineOptions{
			LineColor:  render.ColorPreview,
			PointColor: render.ColorRotary,
			DrawPoints: true,
		})
	},
	Trace: func(s *State, r render.Renderer, _ PointerInfo) {
		r.DrawLines(s.trace.Points(), render.LineOptions{LineColor: render.ColorTrace})
		s.selected(r, s.p0id)
	},
	DrawOptimizePath: func(s *State, r render.Renderer, _ PointerInfo) {
		r.DrawLines(s.pointPath, render.LineOptions{LineColor: render.ColorPath})
		r.DrawLines(s.drawnPoints, render.LineOptions{LineColor: render.ColorTarget})
		s.selected(r, s.p0id)
	},
	Optimizing: func(s *State, r render.Renderer, _ PointerInfo) {
		r.DrawLines(s.drawnPoints, render.LineOptions{LineColor: render.ColorTarget})
		r.DrawLines(s.pointPath, render.LineOptions{LineColor: render.ColorTrace})
		s.selected(r, s.p0id)
	},
}

// Draw renders the linkage and the overlay of the current kind. Optimizing
// first adopts the newest published linkage.
func (s *State) Draw(r render.Renderer, pi PointerInfo) {
	if s.kind == Optimizing {
		s.adopt()
	}
	r.DrawLinkage(s.lk.Positions(), s.lk.Topology())
	if draw, ok := overlays[s.kind]; ok {
		draw(s, r, pi)
	}
}

func (s *State) marker(r render.Renderer, p geom.Point, c color.Color) {
	r.DrawPoint(p, render.PointOptions{Color: c})
}

func (s *State) selected(r render.Renderer, id string) {
	if p, ok := s.lk.Position(id); ok {
		s.marker(r, p, render.ColorSelected)
	}
}

func (s *State) preview(r render.Renderer, pts ...geom.Point) {
	r.DrawLines(pts, render.LineOptions{LineColor: render.ColorPreview})
}

func (s *State) previewFrom(r render.Renderer, id string, to geom.Point) {
	if p, ok := s.lk.Position(id); ok {
		s.preview(r, p, to)
	}
}

// rotary highlights a rotary centre with its reference and extender.
func (s *State) rotary(r render.Renderer, center string) {
	topo := s.lk.Topology()
	c, ok := s.lk.Position(center)
	if !ok {
		return
	}
	pts := []geom.Point{c}
	if ref, ok := topo.RotaryRef(center); ok {
		if p, ok := s.lk.Position(ref); ok {
			pts = append([]geom.Point{p}, pts...)
		}
	}
	if ext, ok := topo.Rotaries[center]; ok {
		if p, ok := s.lk.Position(ext); ok {
			pts = append(pts, p)
		}
	}
	r.DrawLines(pts, render.LineOptions{LineColor: render.ColorSelected})
	s.marker(r, c, render.ColorRotary)
}
