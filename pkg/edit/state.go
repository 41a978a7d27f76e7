package edit

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// Kind is the discriminant of a State.
type Kind int

const (
	Unpaused Kind = iota
	Idle
	Canvas1
	Canvas12
	CanvasPoint
	GroundPressed
	PointSelected
	TwoPointsSelected
	PointCanvas
	RotaryPressed
	RotarySelected
	SegmentSelected
	RotaryMoving
	PlacingRotary
	PointPressed
	Trace
	DrawOptimizePath
	Optimizing
	numKinds
)

var kindNames = [numKinds]string{
	"Unpaused", "Idle", "Canvas1", "Canvas12", "CanvasPoint", "GroundPressed",
	"PointSelected", "TwoPointsSelected", "PointCanvas", "RotaryPressed",
	"RotarySelected", "SegmentSelected", "RotaryMoving", "PlacingRotary",
	"PointPressed", "Trace", "DrawOptimizePath", "Optimizing",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Paused reports whether the simulation is frozen in this kind.
func (k Kind) Paused() bool {
	return k != Unpaused && k != RotaryMoving && k != Trace
}

// Op names an operation of the base contract.
type Op int

const (
	OpPointerDown Op = iota
	OpPointerDrag
	OpPointerUp
	OpKeyDown
	OpKeyUp
	OpKeyPress
	OpGroundDown
	OpPointDown
	OpRotaryDown
	OpSegmentDown
	OpSegmentUp
	OpCanvasDown
	OpCanvasUp
	OpAnyPointUp
)

var opNames = []string{
	"PointerDown", "PointerDrag", "PointerUp", "KeyDown", "KeyUp", "KeyPress",
	"GroundDown", "PointDown", "RotaryDown", "SegmentDown", "SegmentUp",
	"CanvasDown", "CanvasUp", "AnyPointUp",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Event is one operation call with its arguments.
type Event struct {
	Op    Op
	Point geom.Point
	ID    string
	ID2   string
	Key   Key
}

// handler implements one operation for one kind. nil means unchanged.
type handler func(s *State, ev Event) *State

// Settings tunes the editor.
type Settings struct {
	Tolerance        float64       // guard radius around reference points
	HitRadius        float64       // pointer hit-test radius
	TraceCapacity    int           // trail length in Trace
	SpeedScale       float64       // relative global speed change per S/W
	RotarySpeedStep  float64       // rotary speed change per S/W
	BarScale         float64       // relative bar length change per S/W
	RotaryLength     float64       // preview crank length while placing
	RotaryRefOffset  float64       // preview reference offset while placing
	OptimizeInterval time.Duration // pause between optimizer steps
}

// DefaultSettings returns sensible defaults for canvas units.
func DefaultSettings() Settings {
	o := linkage.DefaultOptions()
	return Settings{
		Tolerance:        0.25,
		HitRadius:        1,
		TraceCapacity:    100,
		SpeedScale:       0.1,
		RotarySpeedStep:  1,
		BarScale:         0.05,
		RotaryLength:     o.RotaryLength,
		RotaryRefOffset:  o.RotaryRefOffset,
		OptimizeInterval: 20 * time.Millisecond,
	}
}

// Env is what every state shares: settings, the optimizer and a logger.
type Env struct {
	Settings  Settings
	Optimizer Optimizer
	Log       *zap.Logger
}

// NewEnv creates an Env. A nil logger discards output.
func NewEnv(settings Settings, opt Optimizer, log *zap.Logger) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{Settings: settings, Optimizer: opt, Log: log}
}

// State is one editor state. It is immutable apart from the fields its own
// handlers update while dragging or optimizing.
type State struct {
	kind Kind
	env  *Env
	lk   linkage.Model
	ops  map[Op]handler

	p0id, p1id     string
	pointA, pointB geom.Point
	dragged        bool

	trace       *pathBuffer
	drawnPoints []geom.Point
	pointPath   []geom.Point
	task        *optimizeTask
}

// Resolve applies the unchanged-or-replace rule.
func Resolve(cur, next *State) *State {
	if next == nil {
		return cur
	}
	return next
}

// build installs the kind's handlers, wrapping the guarded ones.
func (s *State) build(spec guardSpec, guarded ...Op) *State {
	base := table[s.kind]
	s.ops = make(map[Op]handler, len(base))
	for op, h := range base {
		s.ops[op] = h
	}
	if len(guarded) > 0 {
		wrap := guard(s.env.Settings.Tolerance, spec)
		for _, op := range guarded {
			if h, ok := s.ops[op]; ok {
				s.ops[op] = wrap(h)
			}
		}
	}
	return s
}

// Handle runs one operation.
func (s *State) Handle(ev Event) *State {
	h, ok := s.ops[ev.Op]
	if !ok {
		return nil
	}
	return h(s, ev)
}

func (s *State) PointerDown() *State {
	return s.Handle(Event{Op: OpPointerDown})
}

func (s *State) PointerDrag(p geom.Point) *State {
	return s.Handle(Event{Op: OpPointerDrag, Point: p})
}

func (s *State) PointerUp(p geom.Point) *State {
	return s.Handle(Event{Op: OpPointerUp, Point: p})
}

func (s *State) KeyDown(k Key) *State {
	return s.Handle(Event{Op: OpKeyDown, Key: k})
}

func (s *State) KeyUp(k Key) *State {
	return s.Handle(Event{Op: OpKeyUp, Key: k})
}

func (s *State) KeyPress(k Key) *State {
	return s.Handle(Event{Op: OpKeyPress, Key: k})
}

func (s *State) GroundDown(id string) *State {
	return s.Handle(Event{Op: OpGroundDown, ID: id})
}

func (s *State) PointDown(id string) *State {
	return s.Handle(Event{Op: OpPointDown, ID: id})
}

func (s *State) RotaryDown(id string) *State {
	return s.Handle(Event{Op: OpRotaryDown, ID: id})
}

func (s *State) SegmentDown(a, b string) *State {
	return s.Handle(Event{Op: OpSegmentDown, ID: a, ID2: b})
}

func (s *State) SegmentUp(a, b string) *State {
	return s.Handle(Event{Op: OpSegmentUp, ID: a, ID2: b})
}

func (s *State) CanvasDown(p geom.Point) *State {
	return s.Handle(Event{Op: OpCanvasDown, Point: p})
}

func (s *State) CanvasUp(p geom.Point) *State {
	return s.Handle(Event{Op: OpCanvasUp, Point: p})
}

func (s *State) AnyPointUp(id string) *State {
	return s.Handle(Event{Op: OpAnyPointUp, ID: id})
}

// Kind returns the discriminant.
func (s *State) Kind() Kind {
	return s.kind
}

// Paused reports whether the simulation is frozen.
func (s *State) Paused() bool {
	return s.kind.Paused()
}

// Linkage returns the model this state operates on.
func (s *State) Linkage() linkage.Model {
	return s.lk
}

func (s *State) P0() string {
	return s.p0id
}

func (s *State) P1() string {
	return s.p1id
}

func (s *State) PointA() geom.Point {
	return s.pointA
}

func (s *State) PointB() geom.Point {
	return s.pointB
}

func (s *State) Dragged() bool {
	return s.dragged
}

func (s *State) PointPath() []geom.Point {
	return s.pointPath
}

// DrawnPoints returns the captured target path.
func (s *State) DrawnPoints() []geom.Point {
	return s.drawnPoints
}

// TracePoints returns the trail, oldest first.
func (s *State) TracePoints() []geom.Point {
	if s.trace == nil {
		return nil
	}
	return s.trace.Points()
}

// Accepts reports whether the state handles op at all.
func (s *State) Accepts(op Op) bool {
	_, ok := s.ops[op]
	return ok
}

// Release stops background work owned by the state. Safe to call on any
// state, more than once.
func (s *State) Release() {
	if s.task != nil {
		s.task.stop()
	}
}

func (s *State) String() string {
	var fields []string
	if s.p0id != "" {
		fields = append(fields, "p0id:"+s.p0id)
	}
	if s.p1id != "" {
		fields = append(fields, "p1id:"+s.p1id)
	}
	switch s.kind {
	case Canvas1, Canvas12, CanvasPoint, PointCanvas:
		fields = append(fields, fmt.Sprintf("pointA:(%g,%g)", s.pointA.X, s.pointA.Y))
	}
	if s.kind == Canvas12 {
		fields = append(fields, fmt.Sprintf("pointB:(%g,%g)", s.pointB.X, s.pointB.Y))
	}
	if s.dragged {
		fields = append(fields, "dragged")
	}
	return s.kind.String() + "{" + strings.Join(fields, ", ") + "}"
}

var hints = map[Kind]string{
	Unpaused:          "SPACE pause  S/W speed  T reverse",
	Idle:              "click points to build  R+click rotary  SPACE run",
	Canvas1:           "click a second spot or an existing point",
	Canvas12:          "click the point to bind to",
	CanvasPoint:       "click where the new point goes",
	GroundPressed:     "drag to move the ground point",
	PointSelected:     "click point/canvas  D delete  O optimize  SPACE trace",
	TwoPointsSelected: "click where the new point goes",
	PointCanvas:       "click canvas for a ground point or a point to bind",
	RotaryPressed:     "drag to move the rotary",
	RotarySelected:    "SPACE run this rotary  D delete",
	SegmentSelected:   "click for a new point  S/W shorten/lengthen",
	RotaryMoving:      "S/W speed  T reverse  SPACE stop",
	PlacingRotary:     "click to place the rotary  R cancel",
	PointPressed:      "drag to move the point",
	Trace:             "SPACE stop tracing",
	DrawOptimizePath:  "drag the path to fit",
	Optimizing:        "any key stops  SPACE trace  ESC done",
}

// Hint returns a one-line usage hint for the status bar.
func (s *State) Hint() string {
	return hints[s.kind]
}
