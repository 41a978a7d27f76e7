// Package fsm provides a small deterministic transition table and a runner
// that walks it one input symbol at a time.
package fsm

import (
	"fmt"
	"sort"
	"strings"
)

// Transition represents a single cell of the table.
type Transition struct {
	From  string `json:"from"`
	Input string `json:"input"`
	To    string `json:"to"`
}

// FSM is a deterministic finite state machine. Missing cells mean the input
// is not accepted in that state.
type FSM struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	States      []string     `json:"states"`
	Alphabet    []string     `json:"alphabet"`
	Initial     string       `json:"initial"`
	Transitions []Transition `json:"transitions"`
}

// New creates an empty FSM.
func New(name string) *FSM {
	return &FSM{
		Name:        name,
		States:      make([]string, 0),
		Alphabet:    make([]string, 0),
		Transitions: make([]Transition, 0),
	}
}

// AddState adds a state to the FSM.
func (f *FSM) AddState(name string) {
	if f.StateIndex(name) < 0 {
		f.States = append(f.States, name)
	}
}

// AddInput adds an input symbol to the alphabet.
func (f *FSM) AddInput(symbol string) {
	if f.InputIndex(symbol) < 0 {
		f.Alphabet = append(f.Alphabet, symbol)
	}
}

// AddTransition adds a cell to the table.
func (f *FSM) AddTransition(from, input, to string) {
	f.Transitions = append(f.Transitions, Transition{From: from, Input: input, To: to})
}

// SetInitial sets the initial state.
func (f *FSM) SetInitial(state string) {
	f.Initial = state
}

// Validate checks that the table is well-formed and deterministic.
func (f *FSM) Validate() error {
	if len(f.States) == 0 {
		return fmt.Errorf("FSM has no states")
	}
	if f.Initial == "" {
		return fmt.Errorf("FSM has no initial state")
	}
	if f.StateIndex(f.Initial) < 0 {
		return fmt.Errorf("initial state %q not in states", f.Initial)
	}

	seen := make(map[[2]string]string)
	for i, t := range f.Transitions {
		if f.StateIndex(t.From) < 0 {
			return fmt.Errorf("transition %d: from state %q not in states", i, t.From)
		}
		if f.StateIndex(t.To) < 0 {
			return fmt.Errorf("transition %d: to state %q not in states", i, t.To)
		}
		if f.InputIndex(t.Input) < 0 {
			return fmt.Errorf("transition %d: input %q not in alphabet", i, t.Input)
		}
		cell := [2]string{t.From, t.Input}
		if prev, dup := seen[cell]; dup && prev != t.To {
			return fmt.Errorf("transition %d: state %q on %q goes to both %q and %q",
				i, t.From, t.Input, prev, t.To)
		}
		seen[cell] = t.To
	}
	return nil
}

// StateIndex returns the index of a state, or -1 if not found.
func (f *FSM) StateIndex(state string) int {
	for i, s := range f.States {
		if s == state {
			return i
		}
	}
	return -1
}

// InputIndex returns the index of an input, or -1 if not found.
func (f *FSM) InputIndex(input string) int {
	for i, a := range f.Alphabet {
		if a == input {
			return i
		}
	}
	return -1
}

// Next returns the target of the cell (from, input).
func (f *FSM) Next(from, input string) (string, bool) {
	for _, t := range f.Transitions {
		if t.From == from && t.Input == input {
			return t.To, true
		}
	}
	return "", false
}

// Inputs returns the inputs accepted in a state, sorted.
func (f *FSM) Inputs(state string) []string {
	var inputs []string
	for _, t := range f.Transitions {
		if t.From == state {
			inputs = append(inputs, t.Input)
		}
	}
	sort.Strings(inputs)
	return inputs
}

// Reachable returns the states reachable from the initial state, in
// breadth-first order.
func (f *FSM) Reachable() []string {
	if f.Initial == "" {
		return nil
	}
	seen := map[string]bool{f.Initial: true}
	order := []string{f.Initial}
	for i := 0; i < len(order); i++ {
		for _, in := range f.Inputs(order[i]) {
			to, _ := f.Next(order[i], in)
			if !seen[to] {
				seen[to] = true
				order = append(order, to)
			}
		}
	}
	return order
}

// String returns a string representation of the FSM.
func (f *FSM) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("FSM: %s\n", f.Name))
	sb.WriteString(fmt.Sprintf("  States: %v\n", f.States))
	sb.WriteString(fmt.Sprintf("  Alphabet: %v\n", f.Alphabet))
	sb.WriteString(fmt.Sprintf("  Initial: %s\n", f.Initial))
	sb.WriteString(fmt.Sprintf("  Transitions: %d\n", len(f.Transitions)))
	return sb.String()
}
