package render

import (
	"fmt"
	"html"
	"image/color"
	"strings"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	Width       int     // canvas width in pixels
	Height      int     // canvas height in pixels
	Padding     int     // padding around edges
	PointRadius float64 // marker radius in pixels
	FontSize    int     // label size; 0 disables labels
	Title       string
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:       800,
		Height:      600,
		Padding:     40,
		PointRadius: 5,
		FontSize:    12,
	}
}

// SVG accumulates one frame as SVG markup.
type SVG struct {
	opts SVGOptions
	view View
	body strings.Builder
}

var _ Renderer = (*SVG)(nil)

// NewSVG prepares a frame whose view fits scene.
func NewSVG(opts SVGOptions, scene []geom.Point) *SVG {
	if opts.Width == 0 {
		opts.Width = 800
	}
	if opts.Height == 0 {
		opts.Height = 600
	}
	if opts.PointRadius == 0 {
		opts.PointRadius = 5
	}
	return &SVG{opts: opts, view: Fit(scene, opts.Width, opts.Height, opts.Padding)}
}

// String returns the complete document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.opts.Width, s.opts.Height, s.opts.Width, s.opts.Height))
	sb.WriteString(fmt.Sprintf(`  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", hexColor(ColorBackground)))
	if s.opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" text-anchor="middle" font-family="Helvetica" font-size="%d">%s</text>`+"\n",
			s.opts.Width/2, s.opts.Padding/2+s.opts.FontSize/2, s.opts.FontSize+4, html.EscapeString(s.opts.Title)))
	}
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) DrawLinkage(positions map[string]geom.Point, topo linkage.Topology) {
	for _, e := range topo.Edges() {
		a, okA := positions[e[0]]
		b, okB := positions[e[1]]
		if !okA || !okB {
			continue
		}
		x1, y1 := s.view.Apply(a)
		x2, y2 := s.view.Apply(b)
		s.body.WriteString(fmt.Sprintf(`  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="2"/>`+"\n",
			x1, y1, x2, y2, hexColor(ColorBar)))
	}
	r := s.opts.PointRadius
	for _, id := range topo.Points {
		p, ok := positions[id]
		if !ok {
			continue
		}
		x, y := s.view.Apply(p)
		c := hexColor(PointColor(id, topo))
		if topo.IsGround(id) {
			s.body.WriteString(fmt.Sprintf(`  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
				x-r, y-r, 2*r, 2*r, c))
		} else {
			s.body.WriteString(fmt.Sprintf(`  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", x, y, r, c))
		}
		if s.opts.FontSize > 0 {
			s.body.WriteString(fmt.Sprintf(`  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="Helvetica" font-size="%d">%s</text>`+"\n",
				x, y-2*r, s.opts.FontSize, html.EscapeString(id)))
		}
	}
}

func (s *SVG) DrawLines(pts []geom.Point, opts LineOptions) {
	if len(pts) == 0 {
		return
	}
	lc := colorOr(opts.LineColor, ColorBar)
	coords := make([]string, len(pts))
	for i, p := range pts {
		x, y := s.view.Apply(p)
		coords[i] = fmt.Sprintf("%.2f,%.2f", x, y)
	}
	s.body.WriteString(fmt.Sprintf(`  <polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		strings.Join(coords, " "), hexColor(lc)))
	if opts.DrawPoints {
		pc := hexColor(colorOr(opts.PointColor, lc))
		for _, p := range pts {
			x, y := s.view.Apply(p)
			s.body.WriteString(fmt.Sprintf(`  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
				x, y, s.opts.PointRadius/2, pc))
		}
	}
}

func (s *SVG) DrawPoint(p geom.Point, opts PointOptions) {
	r := s.opts.PointRadius * 1.5
	if opts.Radius > 0 {
		r = opts.Radius * s.view.Scale
	}
	x, y := s.view.Apply(p)
	s.body.WriteString(fmt.Sprintf(`  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		x, y, r, hexColor(colorOr(opts.Color, ColorSelected))))
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
