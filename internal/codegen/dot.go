package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/KromDaniel/renfa/internal/nfa"
)

// WriteDot renders the automaton in Graphviz dot format for inspection.
// Final states are drawn as double circles, entry states as bold circles and
// the dummy initial state as a point.
func WriteDot(w io.Writer, name string, n *nfa.NFA) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	b.WriteString("\trankdir=LR;\n")

	for _, s := range n.States() {
		fmt.Fprintf(&b, "\t%s [label=%q%s];\n", StateName(s.ID()), stateLabel(s), stateAttrs(s))
	}
	for _, s := range n.States() {
		for _, t := range s.Successors() {
			fmt.Fprintf(&b, "\t%s -> %s [label=%q];\n",
				StateName(t.Source().ID()), StateName(t.Target().ID()), edgeLabel(t))
		}
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write dot output: %w", err)
	}
	return nil
}

func stateLabel(s *nfa.State) string {
	label := StateName(s.ID())
	if s.MustAdvance() {
		label += "*"
	}
	return label
}

func stateAttrs(s *nfa.State) string {
	switch {
	case s.IsFinal():
		return " shape=doublecircle"
	case s.IsAnchoredInitial() || s.IsUnAnchoredInitial():
		return " shape=circle style=bold"
	case s.MatcherSet().IsEmpty():
		return " shape=point"
	}
	return " shape=circle"
}

func edgeLabel(t *nfa.Transition) string {
	label := t.CodePointSet().String()
	if gb := t.GroupBoundaries(); !gb.IsEmpty() {
		label += " " + gb.String()
	}
	return label
}
