package edit

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/optimize"
)

// Optimizer is the stepwise path fitter the Optimizing state drives.
// optimize.Fitter implements it.
type Optimizer interface {
	Begin(target []geom.Point, lk linkage.Model, id string) optimize.Context
	Step(c optimize.Context) optimize.Context
}

var _ Optimizer = optimize.Fitter{}

// snapshot is what the task publishes after every completed step.
type snapshot struct {
	lk        linkage.Model
	path      []geom.Point
	fitness   float64
	iteration int
}

// optimizeTask runs optimizer steps until cancelled. Only the most recent
// snapshot is kept; the interaction loop polls it without blocking.
type optimizeTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	latest chan snapshot
	steps  atomic.Int64
}

func startOptimizeTask(env *Env, oc optimize.Context) *optimizeTask {
	ctx, cancel := context.WithCancel(context.Background())
	t := &optimizeTask{
		cancel: cancel,
		done:   make(chan struct{}),
		latest: make(chan snapshot, 1),
	}
	go t.run(ctx, env, oc)
	return t
}

func (t *optimizeTask) run(ctx context.Context, env *Env, oc optimize.Context) {
	defer close(t.done)
	log := env.Log.With(zap.String("point", oc.PointID), zap.Int("target", len(oc.Target)))
	log.Debug("optimizer started", zap.Float64("fitness", oc.Fitness))
	for ctx.Err() == nil {
		oc = env.Optimizer.Step(oc)
		t.steps.Add(1)
		snap := snapshot{lk: oc.Linkage, fitness: oc.Fitness, iteration: oc.Iteration}
		if oc.Linkage != nil {
			snap.path = oc.Linkage.Path(oc.PointID)
		}
		t.publish(snap)
		if !pause(ctx, env.Settings.OptimizeInterval) {
			break
		}
	}
	log.Debug("optimizer stopped",
		zap.Int64("steps", t.steps.Load()),
		zap.Float64("fitness", oc.Fitness))
}

// publish replaces whatever snapshot has not been collected yet.
func (t *optimizeTask) publish(s snapshot) {
	for {
		select {
		case t.latest <- s:
			return
		default:
		}
		select {
		case <-t.latest:
		default:
		}
	}
}

// poll returns the newest unread snapshot, if any.
func (t *optimizeTask) poll() (snapshot, bool) {
	select {
	case s := <-t.latest:
		return s, true
	default:
		return snapshot{}, false
	}
}

// stop cancels the task and waits for the step in flight to finish.
func (t *optimizeTask) stop() {
	t.cancel()
	<-t.done
}

// pause yields between steps and reports whether to continue.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func newOptimizing(env *Env, lk linkage.Model, p0 string, target, path []geom.Point) *State {
	s := &State{
		kind:        Optimizing,
		env:         env,
		lk:          lk,
		p0id:        p0,
		drawnPoints: target,
		pointPath:   path,
	}
	s.task = startOptimizeTask(env, env.Optimizer.Begin(target, lk, p0))
	return s.build(guardSpec{})
}

// adopt takes over the newest published linkage and path.
func (s *State) adopt() {
	if s.task == nil {
		return
	}
	if snap, ok := s.task.poll(); ok && snap.lk != nil {
		s.lk = snap.lk
		s.pointPath = snap.path
	}
}

func (s *State) stopOptimizing() {
	if s.task == nil {
		return
	}
	s.task.stop()
	s.adopt()
}

// Steps returns how many optimizer steps have completed so far.
func (s *State) Steps() int64 {
	if s.task == nil {
		return 0
	}
	return s.task.steps.Load()
}
