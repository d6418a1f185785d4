package ast

import "github.com/KromDaniel/renfa/internal/bitset"

// gbPath accumulates group-boundary crossings along one zero-width walk
// through the tree. Values are copied on write so sibling branches never
// share mutable state.
type gbPath struct {
	updates *bitset.BitSet
	clears  *bitset.BitSet
	last    int
}

func emptyPath() gbPath { return gbPath{last: -1} }

func (g gbPath) withStart(group int) gbPath {
	g.updates = copyBits(g.updates)
	g.updates.Set(2 * group)
	return g
}

func (g gbPath) withEnd(group int) gbPath {
	g.updates = copyBits(g.updates)
	g.updates.Set(2*group + 1)
	if group > 0 {
		g.last = group
	}
	return g
}

func (g gbPath) withClears(b *bitset.BitSet) gbPath {
	if b == nil || b.IsEmpty() {
		return g
	}
	g.clears = copyBits(g.clears)
	g.clears.Or(b)
	return g
}

func (g gbPath) finish() GroupBoundaries {
	return NewGroupBoundaries(g.updates, g.clears, g.last)
}

func copyBits(b *bitset.BitSet) *bitset.BitSet {
	if b == nil {
		return bitset.New(2)
	}
	return b.Copy()
}

// succWalker computes the prioritized successor transitions reachable from a
// point in the tree by a zero-width walk. Alternation order and quantifier
// greediness determine emission order, which downstream becomes transition
// priority.
type succWalker struct {
	tree *Tree

	// anchored walks step through caret assertions (and mark them
	// reachable); unanchored walks drop caret-guarded branches.
	anchored bool

	out     []Transition
	looping map[*repNode]bool
}

func newSuccWalker(t *Tree, anchored bool) *succWalker {
	return &succWalker{tree: t, anchored: anchored, looping: make(map[*repNode]bool)}
}

// enter descends into n from its left edge.
func (w *succWalker) enter(n node, gb gbPath) {
	switch v := n.(type) {
	case *leafNode:
		switch v.term.kind {
		case TermCaret:
			if w.anchored {
				w.markCaretReachable(v.term)
				w.next(v, gb)
			}
			// unanchored: the assertion cannot hold, branch is dead
		default:
			w.out = append(w.out, Transition{target: v.term, boundaries: gb.finish()})
		}
	case *emptyNode:
		w.next(v, gb)
	case *deadNode:
		// matches nothing
	case *seqNode:
		if len(v.children) == 0 {
			w.next(v, gb)
			return
		}
		w.enter(v.children[0], gb)
	case *altNode:
		for _, c := range v.children {
			w.enter(c, gb)
		}
	case *groupNode:
		if v.capture >= 0 {
			gb = gb.withStart(v.capture)
		}
		w.enter(v.child, gb)
	case *repNode:
		if v.min == 0 {
			if v.greedy {
				w.enter(v.child, gb)
				w.next(v, gb)
			} else {
				w.next(v, gb)
				w.enter(v.child, gb)
			}
		} else {
			w.enter(v.child, gb)
		}
	}
}

// next continues the walk after n has been fully traversed.
func (w *succWalker) next(n node, gb gbPath) {
	p := n.base().parent
	if p == nil {
		w.out = append(w.out, Transition{target: w.tree.matchFound, boundaries: gb.finish()})
		return
	}
	switch v := p.(type) {
	case *seqNode:
		if idx := n.base().index; idx+1 < len(v.children) {
			w.enter(v.children[idx+1], gb)
		} else {
			w.next(v, gb)
		}
	case *altNode:
		w.next(v, gb)
	case *groupNode:
		if v.capture >= 0 {
			gb = gb.withEnd(v.capture)
		}
		w.next(v, gb)
	case *repNode:
		loop := func() {
			if !v.canLoop || w.looping[v] {
				return
			}
			// a repeated zero-width iteration contributes nothing, so each
			// repetition is re-entered at most once per walk
			w.looping[v] = true
			w.enter(v.child, gb.withClears(v.captureBoundaries()))
			delete(w.looping, v)
		}
		if v.greedy {
			loop()
			w.next(v, gb)
		} else {
			w.next(v, gb)
			loop()
		}
	}
}

func (w *succWalker) markCaretReachable(t *Term) {
	for _, c := range w.tree.caretTerms {
		if c == t {
			return
		}
	}
	w.tree.caretTerms = append(w.tree.caretTerms, t)
}

// successorsFrom runs a fresh walk entering n.
func (t *Tree) successorsFrom(n node, anchored bool) []Transition {
	w := newSuccWalker(t, anchored)
	w.enter(n, emptyPath())
	return w.out
}

// successorsAfter runs a fresh walk continuing past n.
func (t *Tree) successorsAfter(n node, anchored bool) []Transition {
	w := newSuccWalker(t, anchored)
	w.next(n, emptyPath())
	return w.out
}
