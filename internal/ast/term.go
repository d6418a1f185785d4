// Package ast provides the syntax-tree collaborator consumed by the NFA
// generator. Patterns are lowered from regexp/syntax into a tree of position
// markers (terms); every term carries a precomputed, priority-ordered list of
// successor transitions, which is the stepping seam the generator walks.
package ast

import (
	"fmt"

	"github.com/KromDaniel/renfa/internal/charset"
)

// TermKind classifies a position marker.
type TermKind int

const (
	// TermCharClass is a character-consuming position.
	TermCharClass TermKind = iota
	// TermCaret is a begin-of-input assertion. Carets are resolved while the
	// anchored entry successors are built and never appear as step targets.
	TermCaret
	// TermDollar is an end-of-input assertion.
	TermDollar
	// TermMatchFound is the synthetic node reached when the pattern is done.
	TermMatchFound
	// TermRootGroup is the synthetic marker owning the dummy initial state.
	TermRootGroup
	// TermInitial is a synthetic entry marker, one per prefix depth and
	// anchoring variant.
	TermInitial
)

func (k TermKind) String() string {
	switch k {
	case TermCharClass:
		return "charclass"
	case TermCaret:
		return "caret"
	case TermDollar:
		return "dollar"
	case TermMatchFound:
		return "matchfound"
	case TermRootGroup:
		return "root"
	case TermInitial:
		return "initial"
	}
	return "unknown"
}

// Term is an AST position marker. Terms are comparable by pointer within one
// Tree and carry a dense id used for state-set ordering and fingerprints.
type Term struct {
	id         int
	kind       TermKind
	cps        charset.CodePointSet
	hardPrefix bool

	// successors is the prioritized step result, filled by the builder.
	successors []Transition

	// reachesMatch and finalBoundaries are only meaningful for dollar terms:
	// whether the pattern can complete immediately after the assertion holds,
	// and the group boundaries crossed on that zero-width completion path.
	reachesMatch    bool
	finalBoundaries GroupBoundaries
}

// ID returns the term's dense id within its tree.
func (t *Term) ID() int { return t.id }

// Kind returns the marker classification.
func (t *Term) Kind() TermKind { return t.kind }

// CodePointSet returns the matchable condition of a character-class term.
func (t *Term) CodePointSet() charset.CodePointSet { return t.cps }

// IsHardPrefix reports whether the term belongs to the mandatory
// lookbehind-style prefix region.
func (t *Term) IsHardPrefix() bool { return t.hardPrefix }

// FinalBoundaries returns, for a reachable dollar term, the group boundaries
// crossed on the zero-width path from the assertion to match completion.
func (t *Term) FinalBoundaries() GroupBoundaries { return t.finalBoundaries }

func (t *Term) String() string {
	if t.kind == TermCharClass {
		return fmt.Sprintf("t%d%s", t.id, t.cps)
	}
	return fmt.Sprintf("t%d<%s>", t.id, t.kind)
}

// Transition is one prioritized step edge from a term to a successor term,
// annotated with the capture-group boundaries crossed along the way.
type Transition struct {
	target     *Term
	boundaries GroupBoundaries
}

// Target returns the successor term.
func (t Transition) Target() *Term { return t.target }

// Boundaries returns the group-boundary descriptor of the edge.
func (t Transition) Boundaries() GroupBoundaries { return t.boundaries }
