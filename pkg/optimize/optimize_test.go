package optimize

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

func fourBar(t *testing.T) *linkage.Linkage {
	t.Helper()
	l, err := linkage.Demo("fourbar", linkage.DefaultOptions())
	require.NoError(t, err)
	return l
}

// shifted returns the point's own path moved by d, a target the optimizer
// can only approach.
func shifted(path []geom.Point, d geom.Point) []geom.Point {
	out := make([]geom.Point, len(path))
	for i, p := range path {
		out[i] = p.Add(d)
	}
	return out
}

func TestFitness(t *testing.T) {
	path := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}
	assert.Equal(t, 0.0, Fitness(nil, path))
	assert.True(t, math.IsInf(Fitness(path, nil), 1))
	assert.InDelta(t, 1.5, Fitness([]geom.Point{geom.Pt(0, 1), geom.Pt(10, 2)}, path), 1e-9)
}

func TestBeginDoesNotShareModel(t *testing.T) {
	l := fourBar(t)
	target := shifted(l.Path("p2"), geom.Pt(0.5, 0))
	c := DefaultFitter().Begin(target, l, "p2")

	assert.NotSame(t, l, c.Linkage)
	assert.Greater(t, c.Fitness, 0.0)
	target[0] = geom.Pt(999, 999)
	assert.NotEqual(t, geom.Pt(999, 999), c.Target[0])
}

func TestStepIsPure(t *testing.T) {
	l := fourBar(t)
	f := DefaultFitter()
	c := f.Begin(shifted(l.Path("p2"), geom.Pt(0.5, 0.5)), l, "p2")
	before := c.Linkage.Topology()

	a := f.Step(c)
	b := f.Step(c)

	assert.Empty(t, cmp.Diff(before, c.Linkage.Topology()), "input context mutated")
	assert.Equal(t, 0, c.Iteration)
	assert.Equal(t, 1, a.Iteration)
	assert.Equal(t, a.Fitness, b.Fitness, "same input, same output")
}

func TestStepNeverGetsWorse(t *testing.T) {
	l := fourBar(t)
	f := DefaultFitter()
	c := f.Begin(shifted(l.Path("p2"), geom.Pt(1, 0)), l, "p2")
	start := c.Fitness
	for i := 0; i < 15; i++ {
		next := f.Step(c)
		require.LessOrEqual(t, next.Fitness, c.Fitness)
		c = next
	}
	assert.Equal(t, 15, c.Iteration)
	assert.LessOrEqual(t, c.Fitness, start)
}

func TestStepWithoutTarget(t *testing.T) {
	l := fourBar(t)
	c := DefaultFitter().Begin(nil, l, "p2")
	next := DefaultFitter().Step(c)
	assert.Same(t, c.Linkage, next.Linkage)
	assert.Equal(t, 1, next.Iteration)
}
