package fsm

import (
	"strings"
	"testing"
)

func turnstile() *FSM {
	f := New("turnstile")
	f.AddState("locked")
	f.AddState("unlocked")
	f.AddInput("coin")
	f.AddInput("push")
	f.SetInitial("locked")
	f.AddTransition("locked", "coin", "unlocked")
	f.AddTransition("unlocked", "push", "locked")
	f.AddTransition("unlocked", "coin", "unlocked")
	return f
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *FSM)
		wantErr string
	}{
		{"well formed", func(f *FSM) {}, ""},
		{"no states", func(f *FSM) { f.States = nil }, "no states"},
		{"no initial", func(f *FSM) { f.Initial = "" }, "no initial"},
		{"unknown initial", func(f *FSM) { f.Initial = "open" }, "not in states"},
		{"unknown target", func(f *FSM) { f.AddTransition("locked", "push", "gone") }, "to state"},
		{"unknown input", func(f *FSM) { f.AddTransition("locked", "kick", "locked") }, "not in alphabet"},
		{"non-deterministic", func(f *FSM) { f.AddTransition("locked", "coin", "locked") }, "both"},
		{"duplicate cell, same target", func(f *FSM) { f.AddTransition("locked", "coin", "unlocked") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := turnstile()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAddIsIdempotent(t *testing.T) {
	f := turnstile()
	f.AddState("locked")
	f.AddInput("coin")
	if len(f.States) != 2 || len(f.Alphabet) != 2 {
		t.Errorf("duplicates added: states=%v alphabet=%v", f.States, f.Alphabet)
	}
}

func TestRunner(t *testing.T) {
	r, err := NewRunner(turnstile())
	if err != nil {
		t.Fatal(err)
	}

	visited, err := r.Run([]string{"coin", "coin", "push"})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(visited, ","); got != "unlocked,unlocked,locked" {
		t.Errorf("visited %s", got)
	}
	if len(r.History()) != 3 {
		t.Errorf("history length %d, want 3", len(r.History()))
	}

	if _, err := r.Step("push"); err == nil {
		t.Error("push while locked should have no transition")
	}
	if r.CurrentState() != "locked" {
		t.Errorf("failed step moved runner to %s", r.CurrentState())
	}

	if err := r.Jump("unlocked"); err != nil {
		t.Fatal(err)
	}
	if got := r.AvailableInputs(); strings.Join(got, ",") != "coin,push" {
		t.Errorf("inputs %v", got)
	}
	if err := r.Jump("nowhere"); err == nil {
		t.Error("jump to unknown state should fail")
	}

	r.Reset()
	if r.CurrentState() != "locked" || len(r.History()) != 0 {
		t.Errorf("reset left %s with %d steps", r.CurrentState(), len(r.History()))
	}
}

func TestNewRunnerRejectsInvalid(t *testing.T) {
	if _, err := NewRunner(New("empty")); err == nil {
		t.Error("expected error for empty FSM")
	}
}

func TestReachable(t *testing.T) {
	f := turnstile()
	f.AddState("broken")
	got := f.Reachable()
	if strings.Join(got, ",") != "locked,unlocked" {
		t.Errorf("reachable %v", got)
	}
}

func TestGenerateDOT(t *testing.T) {
	f := turnstile()
	dot := GenerateDOT(f, "Turn \"stile\"")
	for _, want := range []string{
		"digraph FSM {",
		`__start -> "locked"`,
		`"unlocked" -> "unlocked" [label="coin"]`,
		`label="Turn \"stile\""`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
