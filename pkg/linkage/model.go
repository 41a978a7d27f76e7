// Package linkage provides a planar linkage model: ground points, rotary
// inputs driving extenders, and points held rigid by pairs of bars.
//
// The editor only talks to the Model interface; Linkage is the in-tree
// implementation with a simple constructive solver.
package linkage

import (
	"sort"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

// Model is the kinematic model an editor state operates on. Operations that
// can be refused report false and leave the model untouched.
type Model interface {
	// Position returns the current position of a point.
	Position(id string) (geom.Point, bool)
	// Positions returns a copy of all current positions.
	Positions() map[string]geom.Point
	// Topology returns a copy of the static structure.
	Topology() Topology
	// Path returns the trajectory of a point over one drive cycle, or nil
	// when the point has no well-defined periodic path.
	Path(id string) []geom.Point
	// Recompute re-solves every position from the current parameters.
	Recompute() bool
	// Step advances every rotary input by dt seconds.
	Step(dt float64) bool

	ScaleSpeed(factor float64)
	ReverseAll()
	ChangeRotarySpeed(id string, delta float64) bool
	ReverseRotary(id string) bool
	ScaleBar(a, b string, factor float64) bool

	MoveGroundPoints(moves map[string]geom.Point) bool
	MoveNonGroundPoint(id string, to geom.Point) bool

	AddGroundSegment(ground, at geom.Point, anchor string) (string, bool)
	AddTriangle(a, b string, at geom.Point) (string, bool)
	AddRotaryInput(center geom.Point) (string, bool)
	TryRemovePoint(id string) bool

	// Clone returns an independent deep copy.
	Clone() Model
}

// Extender is a point placed at a fixed distance from Base, at Angle
// relative to the direction Ref->Base. Rotary inputs drive their extender's
// angle at Speed radians per second.
type Extender struct {
	Base   string  `json:"base"`
	Ref    string  `json:"ref"`
	Angle  float64 `json:"angle"`
	Length float64 `json:"length"`
	Speed  float64 `json:"speed"`
}

// Bar is a rigid link of fixed length between two points.
type Bar struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Length float64 `json:"length"`
}

// Topology is a snapshot of a linkage's static structure.
type Topology struct {
	Points       []string              `json:"points"` // sorted, ground points included
	GroundPoints map[string]geom.Point `json:"ground_points"`
	Rotaries     map[string]string     `json:"rotaries"`  // rotary centre -> driven extender
	Extenders    map[string]Extender   `json:"extenders"` // extender -> definition (Ref is the reference point)
	Bars         []Bar                 `json:"bars"`
	Speed        float64               `json:"speed"`
}

// IsGround reports whether id is pinned to the canvas.
func (t Topology) IsGround(id string) bool {
	_, ok := t.GroundPoints[id]
	return ok
}

// IsRotary reports whether id is the centre of a rotary input.
func (t Topology) IsRotary(id string) bool {
	_, ok := t.Rotaries[id]
	return ok
}

// RotaryRef returns the reference ground point paired with a rotary centre.
func (t Topology) RotaryRef(center string) (string, bool) {
	ext, ok := t.Rotaries[center]
	if !ok {
		return "", false
	}
	e, ok := t.Extenders[ext]
	if !ok {
		return "", false
	}
	return e.Ref, true
}

// HasBar reports whether a and b are joined by a bar.
func (t Topology) HasBar(a, b string) bool {
	for _, bar := range t.Bars {
		if (bar.A == a && bar.B == b) || (bar.A == b && bar.B == a) {
			return true
		}
	}
	return false
}

// Edges returns every drawn link: bars plus the base->extender arms.
func (t Topology) Edges() [][2]string {
	edges := make([][2]string, 0, len(t.Bars)+len(t.Extenders))
	for _, b := range t.Bars {
		edges = append(edges, [2]string{b.A, b.B})
	}
	for _, id := range sortedKeys(t.Extenders) {
		edges = append(edges, [2]string{t.Extenders[id].Base, id})
	}
	return edges
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
