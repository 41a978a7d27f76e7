package edit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/optimize"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

// countingOptimizer clones the linkage on every step and remembers the last
// one it returned.
type countingOptimizer struct {
	mu    sync.Mutex
	steps int
	last  linkage.Model
}

func (o *countingOptimizer) Begin(target []geom.Point, lk linkage.Model, id string) optimize.Context {
	return optimize.Context{Target: target, Linkage: lk.Clone(), PointID: id}
}

func (o *countingOptimizer) Step(c optimize.Context) optimize.Context {
	c.Linkage = c.Linkage.Clone()
	c.Iteration++
	o.mu.Lock()
	o.steps++
	o.last = c.Linkage
	o.mu.Unlock()
	return c
}

func (o *countingOptimizer) snapshot() (int, linkage.Model) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.steps, o.last
}

func optimizingState(t *testing.T, opt Optimizer) *State {
	t.Helper()
	s := DefaultSettings()
	s.OptimizeInterval = 0
	env := NewEnv(s, opt, nil)
	lk := fourBar(t)
	target := []geom.Point{geom.Pt(16, 2), geom.Pt(17, 3), geom.Pt(18, 4)}
	return newOptimizing(env, lk, "p2", target, lk.Path("p2"))
}

func TestOptimizingStopsOnKey(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		key  Key
		want Kind
		p0   string
	}{
		{KeySpace, Trace, "p2"},
		{KeyEscape, Idle, ""},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			opt := &countingOptimizer{}
			s := optimizingState(t, opt)
			require.Eventually(t, func() bool { return s.Steps() >= 3 }, time.Second, time.Millisecond)

			next := s.KeyUp(tt.key)
			require.NotNil(t, next)
			assert.Equal(t, tt.want, next.Kind())
			assert.Equal(t, tt.p0, next.P0())

			steps, last := opt.snapshot()
			time.Sleep(20 * time.Millisecond)
			after, _ := opt.snapshot()
			assert.Equal(t, steps, after, "no step may start after cancellation")
			assert.EqualValues(t, steps, s.Steps())
			assert.Same(t, last, next.Linkage())
			assert.Same(t, last, s.Linkage())
		})
	}
}

func TestOptimizingOtherKeyStaysStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	opt := &countingOptimizer{}
	s := optimizingState(t, opt)
	require.Eventually(t, func() bool { return s.Steps() >= 1 }, time.Second, time.Millisecond)

	assert.Nil(t, s.KeyUp(KeyW))
	steps, last := opt.snapshot()
	time.Sleep(10 * time.Millisecond)
	after, _ := opt.snapshot()
	assert.Equal(t, steps, after)
	assert.Same(t, last, s.Linkage())

	// Leaving later keeps the adopted linkage.
	next := s.KeyUp(KeyEscape)
	assert.Same(t, last, next.Linkage())
}

func TestOptimizingDrawAdopts(t *testing.T) {
	defer goleak.VerifyNone(t)

	opt := &countingOptimizer{}
	s := optimizingState(t, opt)
	defer s.Release()
	initial := s.Linkage()

	require.Eventually(t, func() bool {
		s.Draw(&render.Recorder{}, PointerInfo{})
		return s.Linkage() != initial
	}, time.Second, time.Millisecond)
	assert.NotEmpty(t, s.PointPath())
}

func TestOptimizingWithFitter(t *testing.T) {
	defer goleak.VerifyNone(t)

	lk := fourBar(t)
	path := lk.Path("p2")
	require.NotNil(t, path)
	// Aim a little outside the current path.
	target := make([]geom.Point, 0, len(path)/3)
	for i := 0; i < len(path); i += 3 {
		target = append(target, path[i].Scale(1.02))
	}

	env := testEnv()
	s := newOptimizing(env, lk, "p2", target, path)
	require.Eventually(t, func() bool { return s.Steps() >= 5 }, 5*time.Second, time.Millisecond)
	next := s.KeyUp(KeyEscape)
	require.Equal(t, Idle, next.Kind())

	before := optimize.Fitness(target, path)
	after := optimize.Fitness(target, next.Linkage().Path("p2"))
	assert.LessOrEqual(t, after, before)
}

func TestReleaseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := optimizingState(t, &countingOptimizer{})
	s.Release()
	s.Release()
	NewIdle(testEnv(), fourBar(t)).Release()
}
