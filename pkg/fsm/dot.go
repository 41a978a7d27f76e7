package fsm

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateDOT converts an FSM to Graphviz DOT format. Cells sharing an edge
// are merged into one comma-separated label.
func GenerateDOT(f *FSM, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FSM {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, shape=box, style=rounded];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	if f.Initial != "" {
		sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
		sb.WriteString(fmt.Sprintf("    __start -> \"%s\";\n", escapeDOT(f.Initial)))
		sb.WriteString("\n")
	}

	for _, state := range f.States {
		sb.WriteString(fmt.Sprintf("    \"%s\";\n", escapeDOT(state)))
	}
	sb.WriteString("\n")

	edgeLabels := make(map[[2]string][]string)
	var edges [][2]string
	for _, t := range f.Transitions {
		k := [2]string{t.From, t.To}
		if _, ok := edgeLabels[k]; !ok {
			edges = append(edges, k)
		}
		edgeLabels[k] = append(edgeLabels[k], t.Input)
	}

	for _, k := range edges {
		labels := edgeLabels[k]
		sort.Strings(labels)
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(k[0]), escapeDOT(k[1]), escapeDOT(strings.Join(labels, ", "))))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
