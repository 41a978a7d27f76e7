// Package edit implements the interaction state machine of the linkage
// editor.
//
// Every editor state is a *State whose Kind selects the operations it
// accepts. Operations return the next state, or nil when the state is
// unchanged; Resolve applies that rule and the Driver applies it to every
// input event. Operations that must only fire on structurally legal points
// are wrapped once, at construction, by a validation guard.
//
// Trace, DrawOptimizePath and Optimizing form a submachine on top of the
// editing states. Optimizing runs the path fitter as a cancellable
// background task and hands improved linkages to the interaction loop
// through a single-slot channel polled on every redraw.
package edit
