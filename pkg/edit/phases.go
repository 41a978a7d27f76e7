package edit

import "github.com/ha1tch/linkage-toolkit/pkg/fsm"

// Phases of the abstract editor table.
const (
	PhaseIdle          = "idle"
	PhaseOne           = "one"
	PhaseTwo           = "two"
	PhaseSegment       = "segment"
	PhaseRotary        = "rotary"
	PhaseRotaryRunning = "rotary-running"
	PhaseRunning       = "running"
	PhasePlacing       = "placing"
	PhasePressed       = "pressed"
	PhaseTracing       = "tracing"
	PhaseDrawing       = "drawing"
	PhaseOptimizing    = "optimizing"
)

// Gesture symbols. A point symbol is a completed click on a point or on the
// canvas, a segment symbol a click on a bar, a rotary symbol a click on a
// rotary centre and space a SPACE keystroke.
const (
	SymPoint   = "point"
	SymSegment = "segment"
	SymSpace   = "space"
	SymRotary  = "rotary"
)

var phaseOf = [numKinds]string{
	Unpaused:          PhaseRunning,
	Idle:              PhaseIdle,
	Canvas1:           PhaseOne,
	Canvas12:          PhaseTwo,
	CanvasPoint:       PhaseTwo,
	GroundPressed:     PhasePressed,
	PointSelected:     PhaseOne,
	TwoPointsSelected: PhaseTwo,
	PointCanvas:       PhaseTwo,
	RotaryPressed:     PhasePressed,
	RotarySelected:    PhaseRotary,
	SegmentSelected:   PhaseSegment,
	RotaryMoving:      PhaseRotaryRunning,
	PlacingRotary:     PhasePlacing,
	PointPressed:      PhasePressed,
	Trace:             PhaseTracing,
	DrawOptimizePath:  PhaseDrawing,
	Optimizing:        PhaseOptimizing,
}

// PhaseOf maps a kind to its abstract phase.
func PhaseOf(k Kind) string {
	if k < 0 || k >= numKinds {
		return ""
	}
	return phaseOf[k]
}

// Refines reports whether a kind is held to strict agreement with the
// phase table. Pressed kinds sit inside a gesture; the running, tracing and
// optimizing kinds are submachines with their own key handling.
func Refines(k Kind) bool {
	switch k {
	case GroundPressed, PointPressed, RotaryPressed,
		Unpaused, Trace, DrawOptimizePath, Optimizing:
		return false
	}
	return true
}

// PhaseTable returns the abstract editor as a deterministic table over
// gesture symbols.
func PhaseTable() *fsm.FSM {
	f := fsm.New("linkedit")
	f.Description = "Gesture-level phases of the linkage editor"
	for _, s := range []string{
		PhaseIdle, PhaseOne, PhaseTwo, PhaseSegment, PhaseRotary, PhaseRotaryRunning,
		PhaseRunning, PhasePlacing, PhasePressed, PhaseTracing, PhaseDrawing, PhaseOptimizing,
	} {
		f.AddState(s)
	}
	for _, sym := range []string{SymPoint, SymSegment, SymSpace, SymRotary} {
		f.AddInput(sym)
	}
	f.SetInitial(PhaseIdle)

	f.AddTransition(PhaseIdle, SymPoint, PhaseOne)
	f.AddTransition(PhaseIdle, SymSegment, PhaseSegment)
	f.AddTransition(PhaseIdle, SymSpace, PhaseRunning)
	f.AddTransition(PhaseIdle, SymRotary, PhaseRotary)

	f.AddTransition(PhaseOne, SymPoint, PhaseTwo)
	f.AddTransition(PhaseOne, SymSpace, PhaseTracing)
	f.AddTransition(PhaseTwo, SymPoint, PhaseIdle)
	f.AddTransition(PhaseSegment, SymPoint, PhaseIdle)

	f.AddTransition(PhaseRotary, SymPoint, PhaseOne)
	f.AddTransition(PhaseRotary, SymSegment, PhaseSegment)
	f.AddTransition(PhaseRotary, SymRotary, PhaseRotary)
	f.AddTransition(PhaseRotary, SymSpace, PhaseRotaryRunning)
	f.AddTransition(PhaseRotaryRunning, SymSpace, PhaseIdle)

	f.AddTransition(PhaseRunning, SymSpace, PhaseIdle)
	f.AddTransition(PhasePlacing, SymPoint, PhaseIdle)
	f.AddTransition(PhasePressed, SymPoint, PhaseOne)
	f.AddTransition(PhaseTracing, SymSpace, PhaseIdle)
	f.AddTransition(PhaseDrawing, SymPoint, PhaseOptimizing)
	f.AddTransition(PhaseOptimizing, SymSpace, PhaseTracing)
	return f
}
