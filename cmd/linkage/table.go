package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/linkage-toolkit/pkg/edit"
	"github.com/ha1tch/linkage-toolkit/pkg/fsm"
)

func (a *app) tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect the editor's gesture-level phase table",
	}
	cmd.AddCommand(a.tableInfoCmd(), a.tableDotCmd(), a.tableRunCmd())
	return cmd
}

func (a *app) tableInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the phase table and how editor states map onto it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := edit.PhaseTable()
			if err := f.Validate(); err != nil {
				return fmt.Errorf("phase table invalid: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", f.Name)
			fmt.Fprintf(out, "Description: %s\n", f.Description)
			fmt.Fprintf(out, "States:      %d\n", len(f.States))
			fmt.Fprintf(out, "Inputs:      %d\n", len(f.Alphabet))
			fmt.Fprintf(out, "Transitions: %d\n", len(f.Transitions))
			fmt.Fprintf(out, "Initial:     %s\n", f.Initial)
			fmt.Fprintln(out)
			for _, t := range f.Transitions {
				fmt.Fprintf(out, "  %-14s --%s--> %s\n", t.From, t.Input, t.To)
			}
			reachable := make(map[string]bool)
			for _, s := range f.Reachable() {
				reachable[s] = true
			}
			for _, s := range f.States {
				if !reachable[s] {
					fmt.Fprintf(out, "  %-14s entered outside the gesture alphabet\n", s)
				}
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Editor states:")
			for k := edit.Unpaused; k <= edit.Optimizing; k++ {
				mark := ""
				if !edit.Refines(k) {
					mark = " (not strict)"
				}
				fmt.Fprintf(out, "  %-18s %s%s\n", k, edit.PhaseOf(k), mark)
			}
			return nil
		},
	}
}

func (a *app) tableDotCmd() *cobra.Command {
	var output, title string
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Generate Graphviz DOT for the phase table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := edit.PhaseTable()
			if title == "" {
				title = fmt.Sprintf("%s: %d phases", f.Name, len(f.States))
			}
			dot := fsm.GenerateDOT(f, title)
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), dot)
				return nil
			}
			if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVarP(&title, "title", "t", "", "graph title")
	return cmd
}

func (a *app) tableRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Walk the phase table interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := fsm.NewRunner(edit.PhaseTable())
			if err != nil {
				return fmt.Errorf("creating runner: %w", err)
			}
			return runTable(runner, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runTable(runner *fsm.Runner, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Commands: <symbol>, reset, status, history, inputs, quit")
	fmt.Fprintln(out)
	fmt.Fprintln(out, runner.Status())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "reset":
			runner.Reset()
			fmt.Fprintln(out, "Reset to initial phase")
			fmt.Fprintln(out, runner.Status())
		case "status":
			fmt.Fprintln(out, runner.Status())
		case "history":
			printHistory(out, runner)
		case "inputs":
			if inputs := runner.AvailableInputs(); len(inputs) == 0 {
				fmt.Fprintln(out, "No symbols accepted here")
			} else {
				fmt.Fprintf(out, "Accepted symbols: %v\n", inputs)
			}
		default:
			if _, err := runner.Step(line); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, runner.Status())
		}
	}
}

func printHistory(out io.Writer, r *fsm.Runner) {
	history := r.History()
	if len(history) == 0 {
		fmt.Fprintln(out, "No history yet")
		return
	}
	fmt.Fprintln(out, "History:")
	for i, step := range history {
		fmt.Fprintf(out, "  %d: %s --%s--> %s\n", i+1, step.From, step.Input, step.To)
	}
}
