package linkage

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

func newFourBar(t *testing.T) *Linkage {
	t.Helper()
	l, err := Demo("fourbar", DefaultOptions())
	require.NoError(t, err)
	return l
}

func barLength(t *testing.T, l *Linkage, a, b string) float64 {
	t.Helper()
	pa, ok := l.Position(a)
	require.True(t, ok, a)
	pb, ok := l.Position(b)
	require.True(t, ok, b)
	return geom.Dist(pa, pb)
}

func TestDemosSolve(t *testing.T) {
	for _, name := range DemoNames() {
		t.Run(name, func(t *testing.T) {
			l, err := Demo(name, DefaultOptions())
			require.NoError(t, err)
			assert.True(t, l.Recompute())
		})
	}
	_, err := Demo("nope", DefaultOptions())
	assert.Error(t, err)
}

func TestStepKeepsBarLengths(t *testing.T) {
	l := newFourBar(t)
	topo := l.Topology()
	for i := 0; i < 200; i++ {
		l.Step(0.05)
	}
	for _, b := range topo.Bars {
		assert.InDelta(t, b.Length, barLength(t, l, b.A, b.B), 1e-6, "%s-%s", b.A, b.B)
	}
	assert.InDelta(t, 4, barLength(t, l, "r0", "e0"), 1e-9)
}

func TestPath(t *testing.T) {
	l := newFourBar(t)

	path := l.Path("p2")
	require.Len(t, path, DefaultOptions().PathSteps)

	// One full revolution brings the point back to where it started.
	start, _ := l.Position("p2")
	assert.InDelta(t, 0, geom.Dist(start, path[len(path)-1]), 1e-6)

	assert.Nil(t, l.Path("g1"), "ground points have no path")
	assert.Nil(t, l.Path("missing"))

	// Path must not disturb the model.
	after, _ := l.Position("p2")
	assert.Equal(t, start, after)

	assert.Nil(t, New(DefaultOptions()).Path("p1"))
}

func TestAddTriangleAndGroundSegment(t *testing.T) {
	l := newFourBar(t)

	id, ok := l.AddTriangle("g1", "p1", geom.Pt(26, 8))
	require.True(t, ok)
	assert.True(t, l.Topology().HasBar(id, "g1"))
	assert.True(t, l.Topology().HasBar(id, "p1"))

	before := len(l.Topology().GroundPoints)
	id, ok = l.AddGroundSegment(geom.Pt(30, 20), geom.Pt(28, 12), "p1")
	require.True(t, ok)
	topo := l.Topology()
	assert.Len(t, topo.GroundPoints, before+1)
	assert.True(t, topo.HasBar(id, "p1"))

	_, ok = l.AddTriangle("g1", "g1", geom.Pt(1, 1))
	assert.False(t, ok)
	_, ok = l.AddGroundSegment(geom.Pt(0, 0), geom.Pt(1, 1), "missing")
	assert.False(t, ok)
}

func TestAddRotaryInput(t *testing.T) {
	l := New(DefaultOptions())
	c, ok := l.AddRotaryInput(geom.Pt(5, 5))
	require.True(t, ok)

	topo := l.Topology()
	require.True(t, topo.IsRotary(c))
	ref, ok := topo.RotaryRef(c)
	require.True(t, ok)
	assert.True(t, topo.IsGround(ref))

	ext := topo.Rotaries[c]
	p, _ := l.Position(ext)
	assert.InDelta(t, 4, geom.Dist(p, geom.Pt(5, 5)), 1e-9)
	assert.Len(t, topo.Points, 3)
}

func TestTryRemovePoint(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"leaf coupler point", "p2", true},
		{"rocker tip holds p2", "p1", false},
		{"rocker pivot holds p1", "g1", false},
		{"crank tip", "e0", false},
		{"rotary reference", "ref0", false},
		{"rotary with attached bars", "r0", false},
		{"unknown", "zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newFourBar(t)
			before := l.Topology()
			got := l.TryRemovePoint(tt.id)
			assert.Equal(t, tt.want, got)
			if !got {
				if diff := cmp.Diff(before, l.Topology()); diff != "" {
					t.Errorf("refused removal changed topology (-before +after):\n%s", diff)
				}
			}
		})
	}
}

func TestRemoveBareRotary(t *testing.T) {
	l := New(DefaultOptions())
	c, ok := l.AddRotaryInput(geom.Pt(0, 0))
	require.True(t, ok)
	require.True(t, l.TryRemovePoint(c))
	assert.Empty(t, l.Topology().Points)
}

func TestScaleBar(t *testing.T) {
	l := newFourBar(t)
	before := barLength(t, l, "p1", "p2")
	require.True(t, l.ScaleBar("p2", "p1", 1.05))
	assert.InDelta(t, before*1.05, barLength(t, l, "p1", "p2"), 1e-6)

	assert.False(t, l.ScaleBar("p2", "g1", 1.1), "no such bar")

	// Stretching the rocker this far cannot close the loop and is refused.
	snapshot := l.Topology()
	assert.False(t, l.ScaleBar("g1", "p1", 3))
	assert.Empty(t, cmp.Diff(snapshot, l.Topology()))
}

func TestMoveGroundPoints(t *testing.T) {
	l := newFourBar(t)
	require.True(t, l.MoveGroundPoints(map[string]geom.Point{"g1": geom.Pt(22.5, 14)}))
	p, _ := l.Position("g1")
	assert.Equal(t, geom.Pt(22.5, 14), p)

	assert.False(t, l.MoveGroundPoints(map[string]geom.Point{"p1": geom.Pt(0, 0)}))
	assert.False(t, l.MoveGroundPoints(map[string]geom.Point{"g1": geom.Pt(500, 500)}))
	p, _ = l.Position("g1")
	assert.Equal(t, geom.Pt(22.5, 14), p)
}

func TestMoveNonGroundPoint(t *testing.T) {
	l := newFourBar(t)
	to := geom.Pt(18, 6)
	require.True(t, l.MoveNonGroundPoint("p1", to))
	p, _ := l.Position("p1")
	assert.InDelta(t, 0, geom.Dist(p, to), 1e-6)

	require.True(t, l.MoveNonGroundPoint("e0", geom.Pt(10, 19)))
	assert.InDelta(t, 5, barLength(t, l, "r0", "e0"), 1e-6)

	assert.False(t, l.MoveNonGroundPoint("g1", to))
}

func TestSpeeds(t *testing.T) {
	l := newFourBar(t)
	l.ScaleSpeed(1.1)
	assert.InDelta(t, 1.1, l.Speed(), 1e-9)
	l.ReverseAll()
	assert.InDelta(t, -1.1, l.Speed(), 1e-9)

	require.True(t, l.ChangeRotarySpeed("r0", 1))
	s, _ := l.RotarySpeed("r0")
	assert.Equal(t, 2.0, s)
	require.True(t, l.ReverseRotary("r0"))
	s, _ = l.RotarySpeed("r0")
	assert.Equal(t, -2.0, s)
	assert.False(t, l.ChangeRotarySpeed("g1", 1))
}

func TestCloneIsIndependent(t *testing.T) {
	l := newFourBar(t)
	c := l.Clone()
	c.Step(1)
	c.ScaleSpeed(3)
	p0, _ := l.Position("e0")
	assert.Equal(t, geom.Pt(14, 14), p0)
	assert.False(t, math.IsNaN(l.Speed()))
	assert.Equal(t, 1.0, l.Speed())
}
