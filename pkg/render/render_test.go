package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

func frame(t *testing.T) (map[string]geom.Point, linkage.Topology, []geom.Point) {
	t.Helper()
	l, err := linkage.Demo("fourbar", linkage.DefaultOptions())
	require.NoError(t, err)
	return l.Positions(), l.Topology(), l.Path("p2")
}

func TestFit(t *testing.T) {
	v := Fit([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 5)}, 120, 70, 10)
	x0, y0 := v.Apply(geom.Pt(0, 0))
	x1, y1 := v.Apply(geom.Pt(10, 5))
	assert.InDelta(t, 10, x0, 1e-9)
	assert.InDelta(t, 110, x1, 1e-9)
	assert.InDelta(t, 10, y0, 1e-9)
	assert.InDelta(t, 60, y1, 1e-9)

	empty := Fit(nil, 100, 50, 0)
	x, y := empty.Apply(geom.Pt(0, 0))
	assert.Equal(t, 50.0, x)
	assert.Equal(t, 25.0, y)
}

func TestPNG(t *testing.T) {
	pos, topo, path := frame(t)
	opts := DefaultPNGOptions()
	opts.Width, opts.Height = 200, 150
	opts.Title = "fourbar"

	p, err := NewPNG(opts, SceneBounds(pos, path))
	require.NoError(t, err)
	p.DrawLinkage(pos, topo)
	p.DrawLines(path, LineOptions{LineColor: ColorTrace, DrawPoints: true})
	p.DrawPoint(pos["p2"], PointOptions{Color: ColorSelected})

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	_, err = NewPNG(PNGOptions{}, nil)
	assert.Error(t, err)
}

func TestSVG(t *testing.T) {
	pos, topo, path := frame(t)
	s := NewSVG(SVGOptions{Title: "a<b"}, SceneBounds(pos, path))
	s.DrawLinkage(pos, topo)
	s.DrawLines(path, LineOptions{LineColor: ColorTrace})
	s.DrawLines(nil, LineOptions{})
	s.DrawPoint(pos["p2"], PointOptions{})

	out := s.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "<polyline")
	assert.Contains(t, out, "a&lt;b")
	assert.Equal(t, len(topo.Edges()), strings.Count(out, "<line "))
	assert.Contains(t, out, hexColor(ColorRotary))
}

func TestRecorder(t *testing.T) {
	pos, topo, path := frame(t)
	var r Recorder
	r.DrawLinkage(pos, topo)
	r.DrawLines(path, LineOptions{})
	path[0] = geom.Pt(-1, -1)
	r.DrawPoint(geom.Pt(1, 2), PointOptions{})

	assert.Equal(t, []string{"linkage", "lines", "point"}, r.Ops())
	assert.NotEqual(t, geom.Pt(-1, -1), r.Calls[1].Points[0], "recorder keeps its own copy")
	r.Reset()
	assert.Empty(t, r.Calls)
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#333333", hexColor(ColorBar))
	assert.Equal(t, "#ffffff", hexColor(ColorBackground))
}
