package render

import (
	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// Call is one recorded draw call.
type Call struct {
	Op     string // "linkage", "lines" or "point"
	Points []geom.Point
	Line   LineOptions
	Point  PointOptions
}

// Recorder is a Renderer that remembers what it was asked to draw.
type Recorder struct {
	Calls []Call
}

var _ Renderer = (*Recorder)(nil)

func (r *Recorder) DrawLinkage(positions map[string]geom.Point, topo linkage.Topology) {
	pts := make([]geom.Point, 0, len(topo.Points))
	for _, id := range topo.Points {
		pts = append(pts, positions[id])
	}
	r.Calls = append(r.Calls, Call{Op: "linkage", Points: pts})
}

func (r *Recorder) DrawLines(pts []geom.Point, opts LineOptions) {
	cp := make([]geom.Point, len(pts))
	copy(cp, pts)
	r.Calls = append(r.Calls, Call{Op: "lines", Points: cp, Line: opts})
}

func (r *Recorder) DrawPoint(p geom.Point, opts PointOptions) {
	r.Calls = append(r.Calls, Call{Op: "point", Points: []geom.Point{p}, Point: opts})
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}
