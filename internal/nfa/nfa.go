// Package nfa builds non-deterministic finite automata from lowered regex
// trees. States are deduplicated by the structural identity of their term
// sets, transitions carry capture-group boundary descriptors, and both
// state and transition ids are dense 0-based indices suitable for
// array-backed downstream encodings.
package nfa

import (
	"fmt"

	"github.com/KromDaniel/renfa/internal/ast"
	"github.com/KromDaniel/renfa/internal/charset"
)

// State is one node of the automaton. States are created once per unique
// (state-set, must-advance) fingerprint and only mutated by the generator
// while the graph is under construction.
type State struct {
	id         int
	stateSet   *ast.StateSet
	matcherSet charset.CodePointSet

	successors   []*Transition
	predecessors []*Transition

	anchoredInitial   bool
	unAnchoredInitial bool
	anchoredFinal     bool
	unAnchoredFinal   bool
	hasPrefixStates   bool
	mustAdvance       bool
}

// ID returns the dense 0-based state id.
func (s *State) ID() int { return s.id }

// StateSet returns the owning set of AST position markers.
func (s *State) StateSet() *ast.StateSet { return s.stateSet }

// MatcherSet returns the code-point condition for being in the state. It is
// empty only for the dummy initial state.
func (s *State) MatcherSet() charset.CodePointSet { return s.matcherSet }

// Successors returns the outgoing transitions in priority order.
func (s *State) Successors() []*Transition { return s.successors }

// Predecessors returns the incoming transitions.
func (s *State) Predecessors() []*Transition { return s.predecessors }

// IsAnchoredInitial reports whether the state is an anchored entry state.
func (s *State) IsAnchoredInitial() bool { return s.anchoredInitial }

// IsUnAnchoredInitial reports whether the state is an unanchored entry state.
func (s *State) IsUnAnchoredInitial() bool { return s.unAnchoredInitial }

// IsAnchoredFinal reports whether the state accepts at end of input.
func (s *State) IsAnchoredFinal() bool { return s.anchoredFinal }

// IsUnAnchoredFinal reports whether the state accepts anywhere.
func (s *State) IsUnAnchoredFinal() bool { return s.unAnchoredFinal }

// IsFinal reports whether the state is one of the two final states.
func (s *State) IsFinal() bool { return s.anchoredFinal || s.unAnchoredFinal }

// HasPrefixStates reports whether the state belongs to the optional
// pre-loop prefix region of the automaton.
func (s *State) HasPrefixStates() bool { return s.hasPrefixStates }

// MustAdvance reports whether the state is only valid once at least one
// input symbol has been consumed since the search origin.
func (s *State) MustAdvance() bool { return s.mustAdvance }

func (s *State) String() string {
	return fmt.Sprintf("s%d%s", s.id, s.stateSet)
}

// Transition is a directed edge of the automaton.
type Transition struct {
	id              int
	source          *State
	target          *State
	codePointSet    charset.CodePointSet
	groupBoundaries ast.GroupBoundaries
}

// ID returns the dense 0-based transition id.
func (t *Transition) ID() int { return t.id }

// Source returns the state the transition leaves.
func (t *Transition) Source() *State { return t.source }

// Target returns the state the transition enters.
func (t *Transition) Target() *State { return t.target }

// CodePointSet returns the condition gating the edge. Synthetic entry and
// loop-back transitions are gated by the encoding's full set.
func (t *Transition) CodePointSet() charset.CodePointSet { return t.codePointSet }

// GroupBoundaries returns the capture-group boundary slots updated and
// cleared when the transition fires.
func (t *Transition) GroupBoundaries() ast.GroupBoundaries { return t.groupBoundaries }

func (t *Transition) String() string {
	return fmt.Sprintf("e%d:s%d->s%d%s", t.id, t.source.id, t.target.id, t.codePointSet)
}

// NFA is the finished graph handed to downstream compilers. State and
// transition ids are stable, monotonically assigned and 0-based; downstream
// encodings may size arrays by NumStates and NumTransitions.
type NFA struct {
	tree *ast.Tree

	dummyInitialState *State
	anchoredFinal     *State
	unAnchoredFinal   *State

	anchoredEntries   []*Transition
	unAnchoredEntries []*Transition

	anchoredReverseEntry   *Transition
	unAnchoredReverseEntry *Transition
	initialLoopBack        *Transition

	states           []*State // dense, indexed by id
	numTransitions   int
	hardPrefixStates []*State
}

// Tree returns the lowered pattern the automaton was generated from.
func (n *NFA) Tree() *ast.Tree { return n.tree }

// DummyInitialState returns the synthetic pre-match state.
func (n *NFA) DummyInitialState() *State { return n.dummyInitialState }

// AnchoredFinalState returns the state accepting at end of input.
func (n *NFA) AnchoredFinalState() *State { return n.anchoredFinal }

// UnAnchoredFinalState returns the state accepting anywhere.
func (n *NFA) UnAnchoredFinalState() *State { return n.unAnchoredFinal }

// AnchoredEntries returns the entry transitions for matches pinned to
// position 0, one per prefix-consumption depth. When the pattern has no
// reachable caret this is the same slice as UnAnchoredEntries.
func (n *NFA) AnchoredEntries() []*Transition { return n.anchoredEntries }

// UnAnchoredEntries returns the search entry transitions, one per
// prefix-consumption depth.
func (n *NFA) UnAnchoredEntries() []*Transition { return n.unAnchoredEntries }

// AnchoredReverseEntry returns the synthetic backward edge from the
// anchored final state to the dummy initial state.
func (n *NFA) AnchoredReverseEntry() *Transition { return n.anchoredReverseEntry }

// UnAnchoredReverseEntry returns the synthetic backward edge from the
// unanchored final state to the dummy initial state.
func (n *NFA) UnAnchoredReverseEntry() *Transition { return n.unAnchoredReverseEntry }

// InitialLoopBack returns the self-loop implementing "advance one position
// and retry" search semantics.
func (n *NFA) InitialLoopBack() *Transition { return n.initialLoopBack }

// States returns every state of the automaton indexed by id.
func (n *NFA) States() []*State { return n.states }

// NumStates returns the number of states, which is also one past the
// highest state id.
func (n *NFA) NumStates() int { return len(n.states) }

// NumTransitions returns the number of transitions, which is also one past
// the highest transition id.
func (n *NFA) NumTransitions() int { return n.numTransitions }

// HardPrefixStates returns the states tracked by the optional prefix
// bookkeeping.
func (n *NFA) HardPrefixStates() []*State { return n.hardPrefixStates }

// EntriesAliased reports whether the anchored and unanchored entry arrays
// are the same objects. This holds exactly when the pattern has no
// reachable caret, and callers may rely on the reference equality.
func (n *NFA) EntriesAliased() bool {
	return len(n.anchoredEntries) == len(n.unAnchoredEntries) &&
		(len(n.anchoredEntries) == 0 || &n.anchoredEntries[0] == &n.unAnchoredEntries[0])
}
