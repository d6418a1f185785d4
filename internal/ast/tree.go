package ast

import (
	"github.com/KromDaniel/renfa/internal/bitset"
	"github.com/KromDaniel/renfa/internal/charset"
)

// node is an internal syntax-tree node. Leaves own the position-marker terms;
// interior nodes only shape the successor computation.
type node interface {
	base() *nodeBase
}

type nodeBase struct {
	parent node
	index  int // position within the parent sequence
}

func (b *nodeBase) base() *nodeBase { return b }

type leafNode struct {
	nodeBase
	term *Term
}

type emptyNode struct {
	nodeBase
}

// deadNode matches nothing; produced for regexp/syntax OpNoMatch.
type deadNode struct {
	nodeBase
}

type seqNode struct {
	nodeBase
	children []node
}

type altNode struct {
	nodeBase
	children []node // priority order, first is highest
}

type groupNode struct {
	nodeBase
	capture int // capture index, -1 for non-capturing
	child   node
}

// repNode models *, + and ? quantifiers. Bounded repetitions are unrolled
// during lowering, so min is always 0 or 1 here.
type repNode struct {
	nodeBase
	child   node
	min     int
	canLoop bool // true for * and +, false for ?
	greedy  bool

	innerCaptures *bitset.BitSet // boundary slots of capture groups inside child, lazily built
}

// Tree is the lowered pattern consumed by the NFA generator.
type Tree struct {
	pattern string

	terms      []*Term
	matchFound *Term
	rootGroup  *Term

	unAnchoredInitial []*Term // length prefixLength+1, index = prefix chars remaining
	anchoredInitial   []*Term

	prefixLeaves []*leafNode // the mandatory prefix chain, in consumption order
	root         node        // wrapped root: prefix chain + capture group 0

	numGroups       int
	reachableCarets *StateSet
	reachableDollar *StateSet
	hardPrefix      *StateSet

	caretTerms []*Term
}

// Pattern returns the source pattern the tree was lowered from.
func (t *Tree) Pattern() string { return t.pattern }

// NumberOfCaptureGroups returns the capture group count including the
// implicit whole-match group 0.
func (t *Tree) NumberOfCaptureGroups() int { return t.numGroups }

// WrappedPrefixLength returns the length of the mandatory fixed-length
// prefix preceding the match proper.
func (t *Tree) WrappedPrefixLength() int { return len(t.prefixLeaves) }

// NumTerms returns the number of position markers in the tree.
func (t *Tree) NumTerms() int { return len(t.terms) }

// Term returns the marker with the given id.
func (t *Tree) Term(id int) *Term { return t.terms[id] }

// MatchFoundTerm returns the synthetic match-completion marker.
func (t *Tree) MatchFoundTerm() *Term { return t.matchFound }

// RootGroupTerm returns the synthetic marker identifying the dummy initial
// state of the NFA.
func (t *Tree) RootGroupTerm() *Term { return t.rootGroup }

// UnAnchoredInitialTerm returns the entry marker for searches with i prefix
// characters still to consume. Index 0 is the plain search entry.
func (t *Tree) UnAnchoredInitialTerm(i int) *Term { return t.unAnchoredInitial[i] }

// AnchoredInitialTerm returns the entry marker for matches starting at
// position 0 with i prefix characters still to consume.
func (t *Tree) AnchoredInitialTerm(i int) *Term { return t.anchoredInitial[i] }

// ReachableCarets returns the caret assertions satisfiable at an anchored
// entry. The set is empty iff the anchored and unanchored entries behave
// identically, which lets the generator alias the two entry arrays.
func (t *Tree) ReachableCarets() *StateSet { return t.reachableCarets }

// ReachableDollars returns the dollar assertions from which the pattern can
// complete without consuming further input.
func (t *Tree) ReachableDollars() *StateSet { return t.reachableDollar }

// HardPrefixNodes returns the character-class terms of the mandatory prefix
// region.
func (t *Tree) HardPrefixNodes() *StateSet { return t.hardPrefix }

// FullSet returns the encoding's full code-point set, used to gate synthetic
// entry and loop-back transitions.
func (t *Tree) FullSet() charset.CodePointSet { return charset.Full() }

// Successors returns the prioritized step edges leaving the given marker.
// The returned slice is owned by the tree and must not be modified.
func (t *Tree) Successors(term *Term) []Transition { return term.successors }

func (t *Tree) newTerm(kind TermKind, cps charset.CodePointSet, hardPrefix bool) *Term {
	term := &Term{
		id:         len(t.terms),
		kind:       kind,
		cps:        cps,
		hardPrefix: hardPrefix,
	}
	t.terms = append(t.terms, term)
	return term
}

// setParents wires parent links and sequence indices, bottom of the
// successor walk.
func setParents(n node, parent node, index int) {
	b := n.base()
	b.parent = parent
	b.index = index
	switch v := n.(type) {
	case *seqNode:
		for i, c := range v.children {
			setParents(c, v, i)
		}
	case *altNode:
		for i, c := range v.children {
			setParents(c, v, i)
		}
	case *groupNode:
		setParents(v.child, v, 0)
	case *repNode:
		setParents(v.child, v, 0)
	}
}

// captureBoundaries returns the boundary slots of every capture group inside
// the repetition body. These are the slots cleared when a loop iteration
// restarts.
func (r *repNode) captureBoundaries() *bitset.BitSet {
	if r.innerCaptures == nil {
		r.innerCaptures = bitset.New(2)
		collectCaptureBoundaries(r.child, r.innerCaptures)
	}
	return r.innerCaptures
}

func collectCaptureBoundaries(n node, out *bitset.BitSet) {
	switch v := n.(type) {
	case *seqNode:
		for _, c := range v.children {
			collectCaptureBoundaries(c, out)
		}
	case *altNode:
		for _, c := range v.children {
			collectCaptureBoundaries(c, out)
		}
	case *groupNode:
		if v.capture > 0 {
			out.Set(2 * v.capture)
			out.Set(2*v.capture + 1)
		}
		collectCaptureBoundaries(v.child, out)
	case *repNode:
		collectCaptureBoundaries(v.child, out)
	}
}
