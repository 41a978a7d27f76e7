// Package optimize fits a linkage so that one of its points follows a
// target path.
//
// The optimizer is a pure stepper: Step takes a Context and returns an
// improved copy without touching its input. Sequencing, scheduling and
// cancellation belong to the caller.
package optimize

import (
	"math"
	"math/rand"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// Context is the optimizer state carried from one step to the next.
type Context struct {
	Target    []geom.Point
	Linkage   linkage.Model
	PointID   string
	Fitness   float64 // mean target-to-path distance, lower is better
	Iteration int
}

// Fitter is a random local search over bar lengths.
type Fitter struct {
	Candidates int     // perturbations tried per step
	Spread     float64 // maximum relative change of one bar
	Seed       int64
}

// DefaultFitter returns sensible defaults.
func DefaultFitter() Fitter {
	return Fitter{
		Candidates: 8,
		Spread:     0.05,
		Seed:       1,
	}
}

// Begin builds the initial context. The linkage is cloned; the caller's
// model is never modified.
func (f Fitter) Begin(target []geom.Point, lk linkage.Model, id string) Context {
	m := lk.Clone()
	t := make([]geom.Point, len(target))
	copy(t, target)
	return Context{
		Target:  t,
		Linkage: m,
		PointID: id,
		Fitness: Fitness(t, m.Path(id)),
	}
}

// Step tries Candidates random bar perturbations and returns the best one
// if it beats the current fitness. The returned context shares nothing
// mutable with c.
func (f Fitter) Step(c Context) Context {
	next := c
	next.Iteration++
	if len(c.Target) == 0 || c.Linkage == nil {
		return next
	}
	bars := c.Linkage.Topology().Bars
	if len(bars) == 0 {
		return next
	}

	rng := rand.New(rand.NewSource(f.Seed + int64(c.Iteration)))
	for i := 0; i < f.Candidates; i++ {
		b := bars[rng.Intn(len(bars))]
		factor := 1 + (2*rng.Float64()-1)*f.Spread

		cand := c.Linkage.Clone()
		if !cand.ScaleBar(b.A, b.B, factor) {
			continue
		}
		if fit := Fitness(c.Target, cand.Path(c.PointID)); fit < next.Fitness {
			next.Linkage = cand
			next.Fitness = fit
		}
	}
	return next
}

// Fitness returns the mean distance from every target point to the nearest
// sample of path. A missing path is infinitely bad; an empty target is a
// perfect fit.
func Fitness(target, path []geom.Point) float64 {
	if len(target) == 0 {
		return 0
	}
	if len(path) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, p := range target {
		sum += geom.NearestDist(p, path)
	}
	return sum / float64(len(target))
}
