// Package render defines the drawing primitives the editor uses and
// provides PNG, SVG and recording implementations.
package render

import (
	"image/color"
	"math"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// Renderer draws in canvas coordinates.
type Renderer interface {
	DrawLinkage(positions map[string]geom.Point, topo linkage.Topology)
	DrawLines(pts []geom.Point, opts LineOptions)
	DrawPoint(p geom.Point, opts PointOptions)
}

// LineOptions styles a polyline.
type LineOptions struct {
	LineColor  color.Color
	PointColor color.Color
	DrawPoints bool
}

// PointOptions styles a single marker.
type PointOptions struct {
	Color  color.Color
	Radius float64 // in canvas units; 0 selects the renderer default
}

// Palette shared by every renderer and the editor overlays.
var (
	ColorBackground = color.RGBA{255, 255, 255, 255}
	ColorBar        = color.RGBA{51, 51, 51, 255}
	ColorGround     = color.RGBA{46, 125, 50, 255}
	ColorPoint      = color.RGBA{21, 101, 192, 255}
	ColorRotary     = color.RGBA{230, 81, 0, 255}
	ColorSelected   = color.RGBA{198, 40, 40, 255}
	ColorPreview    = color.RGBA{200, 162, 200, 255}
	ColorTrace      = color.RGBA{0, 137, 123, 255}
	ColorTarget     = color.RGBA{255, 179, 0, 255}
	ColorPath       = color.RGBA{144, 164, 174, 255}
)

// View maps canvas coordinates to output pixels.
type View struct {
	Scale  float64
	Offset geom.Point
}

// Apply transforms a canvas point.
func (v View) Apply(p geom.Point) (float64, float64) {
	return p.X*v.Scale + v.Offset.X, p.Y*v.Scale + v.Offset.Y
}

// Fit returns a view that shows every point of pts inside a w x h image
// with padding pixels to spare on each side.
func Fit(pts []geom.Point, w, h, padding int) View {
	min, max, ok := geom.Bounds(pts)
	if !ok {
		return View{Scale: 1, Offset: geom.Pt(float64(w)/2, float64(h)/2)}
	}
	cw := math.Max(max.X-min.X, 1)
	ch := math.Max(max.Y-min.Y, 1)
	aw := float64(w - 2*padding)
	ah := float64(h - 2*padding)
	scale := math.Min(aw/cw, ah/ch)
	return View{
		Scale: scale,
		Offset: geom.Pt(
			float64(padding)+(aw-cw*scale)/2-min.X*scale,
			float64(padding)+(ah-ch*scale)/2-min.Y*scale,
		),
	}
}

// SceneBounds collects the points a frame will show, for Fit.
func SceneBounds(positions map[string]geom.Point, extra ...[]geom.Point) []geom.Point {
	pts := make([]geom.Point, 0, len(positions))
	for _, p := range positions {
		pts = append(pts, p)
	}
	for _, e := range extra {
		pts = append(pts, e...)
	}
	return pts
}

// PointColor picks the colour a linkage point is drawn with.
func PointColor(id string, topo linkage.Topology) color.Color {
	switch {
	case topo.IsRotary(id):
		return ColorRotary
	case topo.IsGround(id):
		return ColorGround
	default:
		return ColorPoint
	}
}
