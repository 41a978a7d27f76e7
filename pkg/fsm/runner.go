package fsm

import (
	"fmt"
)

// Runner walks an FSM one input at a time.
type Runner struct {
	fsm     *FSM
	current string
	history []Step
}

// Step records one step of execution.
type Step struct {
	From  string
	Input string
	To    string
}

// NewRunner creates a runner for the given FSM.
func NewRunner(f *FSM) (*Runner, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FSM: %w", err)
	}
	return &Runner{
		fsm:     f,
		current: f.Initial,
		history: make([]Step, 0),
	}, nil
}

// CurrentState returns the current state.
func (r *Runner) CurrentState() string {
	return r.current
}

// AvailableInputs returns the inputs valid from the current state.
func (r *Runner) AvailableInputs() []string {
	return r.fsm.Inputs(r.current)
}

// Step processes an input. It returns an error and stays put if the current
// state has no cell for the input.
func (r *Runner) Step(input string) (string, error) {
	to, ok := r.fsm.Next(r.current, input)
	if !ok {
		return r.current, fmt.Errorf("no transition from state %s on input %q", r.current, input)
	}
	r.history = append(r.history, Step{From: r.current, Input: input, To: to})
	r.current = to
	return to, nil
}

// Jump moves the runner to an arbitrary state without recording a step.
func (r *Runner) Jump(state string) error {
	if r.fsm.StateIndex(state) < 0 {
		return fmt.Errorf("unknown state %q", state)
	}
	r.current = state
	return nil
}

// Reset returns the runner to the initial state.
func (r *Runner) Reset() {
	r.current = r.fsm.Initial
	r.history = make([]Step, 0)
}

// History returns the execution history.
func (r *Runner) History() []Step {
	return r.history
}

// Run processes a sequence of inputs and returns the states visited.
func (r *Runner) Run(inputs []string) ([]string, error) {
	var visited []string
	for _, input := range inputs {
		to, err := r.Step(input)
		if err != nil {
			return visited, err
		}
		visited = append(visited, to)
	}
	return visited, nil
}

// Status returns a status string for the current state.
func (r *Runner) Status() string {
	return fmt.Sprintf("State: %s (accepts %v)", r.current, r.AvailableInputs())
}
