package nfa

import (
	"sort"

	"github.com/KromDaniel/renfa/internal/ast"
	"github.com/KromDaniel/renfa/internal/charset"
)

type builderKind int

const (
	builderMatcher builderKind = iota
	builderAnchoredFinal
	builderUnAnchoredFinal
)

// transitionBuilder is one canonicalized transition-to-be. Matcher builders
// accumulate every AST transition whose condition covers the builder's
// code-point partition; their targets together form the successor state-set.
type transitionBuilder struct {
	kind        builderKind
	order       int // index of the first contributing AST transition
	transitions []ast.Transition
	cs          charset.CodePointSet

	targetSet      *ast.StateSet
	containsPrefix bool
}

// lastGroup returns the last-group marker of the highest-priority
// contributing transition.
func (b *transitionBuilder) lastGroup() int {
	if len(b.transitions) == 0 {
		return -1
	}
	return b.transitions[0].Boundaries().LastGroup()
}

// canonicalizeTransitions turns the prioritized AST step results of one
// state into a minimal transition list. Character-consuming alternatives are
// partitioned into pairwise-disjoint code-point sets; alternatives that
// converge on the same target state-set are merged, with the earlier one's
// priority winning. Zero-width completions (match found, reachable dollar)
// become single entries at their priority position, and everything behind an
// unconditional match is dead and dropped.
func canonicalizeTransitions(in []ast.Transition, tree *ast.Tree) []*transitionBuilder {
	var zeroWidth []*transitionBuilder
	var matchers []*transitionBuilder
	seenMatchFound := false
	seenDollar := false
	matchFoundOrder := -1

	for idx, tr := range in {
		switch tr.Target().Kind() {
		case ast.TermMatchFound:
			if seenMatchFound {
				continue
			}
			seenMatchFound = true
			matchFoundOrder = idx
			zeroWidth = append(zeroWidth, &transitionBuilder{
				kind:        builderUnAnchoredFinal,
				order:       idx,
				transitions: []ast.Transition{tr},
			})
		case ast.TermDollar:
			// dollars that cannot complete the match are dead ends
			if seenDollar || !tree.ReachableDollars().Contains(tr.Target()) {
				continue
			}
			seenDollar = true
			zeroWidth = append(zeroWidth, &transitionBuilder{
				kind:        builderAnchoredFinal,
				order:       idx,
				transitions: []ast.Transition{tr},
			})
		case ast.TermCharClass:
			matchers = insertMatcher(matchers, tr, idx)
		}
	}

	matchers = mergeSameTargets(matchers)
	for _, b := range matchers {
		b.finalizeTargets()
	}

	out := make([]*transitionBuilder, 0, len(zeroWidth)+len(matchers))
	out = append(out, zeroWidth...)
	out = append(out, matchers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].order < out[j].order })

	if matchFoundOrder >= 0 {
		for i, b := range out {
			if b.kind == builderUnAnchoredFinal {
				out = out[:i+1]
				break
			}
		}
	}
	return out
}

// insertMatcher threads one character-consuming AST transition into the
// disjoint partition, splitting existing builders where conditions overlap.
// Builders stay ordered by their first contributor.
func insertMatcher(matchers []*transitionBuilder, tr ast.Transition, idx int) []*transitionBuilder {
	rem := tr.Target().CodePointSet()
	if rem.IsEmpty() {
		return matchers
	}
	for i := 0; i < len(matchers) && !rem.IsEmpty(); i++ {
		b := matchers[i]
		isect := b.cs.Intersect(rem)
		if isect.IsEmpty() {
			continue
		}
		if isect.Equal(b.cs) {
			b.transitions = append(b.transitions, tr)
		} else {
			split := &transitionBuilder{
				kind:        builderMatcher,
				order:       b.order,
				cs:          isect,
				transitions: append(append([]ast.Transition(nil), b.transitions...), tr),
			}
			b.cs = b.cs.Subtract(isect)
			matchers = append(matchers, nil)
			copy(matchers[i+2:], matchers[i+1:])
			matchers[i+1] = split
			i++ // the split already contains tr
		}
		rem = rem.Subtract(isect)
	}
	if !rem.IsEmpty() {
		matchers = append(matchers, &transitionBuilder{
			kind:        builderMatcher,
			order:       idx,
			cs:          rem,
			transitions: []ast.Transition{tr},
		})
	}
	return matchers
}

// mergeSameTargets unions the conditions of builders that lead to identical
// target state-sets, keeping the earlier builder's position and priority.
func mergeSameTargets(matchers []*transitionBuilder) []*transitionBuilder {
	byKey := make(map[string]*transitionBuilder, len(matchers))
	out := matchers[:0]
	for _, b := range matchers {
		key := targetKey(b.transitions)
		if prev, ok := byKey[key]; ok {
			prev.cs = prev.cs.Union(b.cs)
			prev.transitions = append(prev.transitions, b.transitions...)
			if b.order < prev.order {
				prev.order = b.order
			}
			continue
		}
		byKey[key] = b
		out = append(out, b)
	}
	return out
}

func targetKey(transitions []ast.Transition) string {
	terms := make([]*ast.Term, 0, len(transitions))
	for _, tr := range transitions {
		terms = append(terms, tr.Target())
	}
	return ast.NewStateSet(terms...).Key()
}

func (b *transitionBuilder) finalizeTargets() {
	terms := make([]*ast.Term, 0, len(b.transitions))
	for _, tr := range b.transitions {
		terms = append(terms, tr.Target())
		if tr.Target().IsHardPrefix() {
			b.containsPrefix = true
		}
	}
	b.targetSet = ast.NewStateSet(terms...)
}
