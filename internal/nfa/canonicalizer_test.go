package nfa

import (
	"regexp/syntax"
	"testing"

	"github.com/KromDaniel/renfa/internal/ast"
	"github.com/KromDaniel/renfa/internal/charset"
)

func mustLower(t *testing.T, pattern string) *ast.Tree {
	t.Helper()
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", pattern, err)
	}
	tree, err := ast.Lower(pattern, re.Simplify(), ast.Options{})
	if err != nil {
		t.Fatalf("failed to lower %q: %v", pattern, err)
	}
	return tree
}

func entryBuilders(t *testing.T, pattern string) (*ast.Tree, []*transitionBuilder) {
	t.Helper()
	tree := mustLower(t, pattern)
	in := tree.Successors(tree.UnAnchoredInitialTerm(0))
	return tree, canonicalizeTransitions(in, tree)
}

func TestCanonicalizePartitionSplit(t *testing.T) {
	// the overlap of the two alternatives must split into two disjoint
	// cells, with the shared range leading to both targets; the capture
	// groups keep the parser from folding the branches into one class
	_, builders := entryBuilders(t, "(a)|([ab])")

	if len(builders) != 2 {
		t.Fatalf("builders = %d, want 2", len(builders))
	}

	first := builders[0]
	if first.kind != builderMatcher || !first.cs.Equal(charset.Single('a')) {
		t.Errorf("first cell = %v %s, want matcher on [a]", first.kind, first.cs)
	}
	if first.targetSet.Len() != 2 {
		t.Errorf("first cell targets = %d, want 2", first.targetSet.Len())
	}

	second := builders[1]
	if !second.cs.Equal(charset.Single('b')) {
		t.Errorf("second cell = %s, want [b]", second.cs)
	}
	if second.targetSet.Len() != 1 {
		t.Errorf("second cell targets = %d, want 1", second.targetSet.Len())
	}
}

func TestCanonicalizeDisjointAlternatives(t *testing.T) {
	_, builders := entryBuilders(t, "(a)|(b)")

	if len(builders) != 2 {
		t.Fatalf("builders = %d, want 2", len(builders))
	}
	for _, b := range builders {
		if b.targetSet.Len() != 1 {
			t.Errorf("cell targets = %d, want 1", b.targetSet.Len())
		}
	}
	// priority order follows the alternation
	if !builders[0].cs.Contains('a') || !builders[1].cs.Contains('b') {
		t.Error("cells out of priority order")
	}
}

func TestCanonicalizeDeadCutAfterMatch(t *testing.T) {
	// |a: the empty first alternative finishes the match unconditionally,
	// so the lower-priority a branch is unreachable
	_, builders := entryBuilders(t, "|a")

	if len(builders) != 1 {
		t.Fatalf("builders = %d, want 1", len(builders))
	}
	if builders[0].kind != builderUnAnchoredFinal {
		t.Errorf("kind = %v, want unanchored final", builders[0].kind)
	}
}

func TestCanonicalizeMatchLastStays(t *testing.T) {
	// a|: the empty alternative has lower priority, nothing is cut
	_, builders := entryBuilders(t, "a|")

	if len(builders) != 2 {
		t.Fatalf("builders = %d, want 2", len(builders))
	}
	if builders[0].kind != builderMatcher || builders[1].kind != builderUnAnchoredFinal {
		t.Errorf("builder kinds = %v, %v", builders[0].kind, builders[1].kind)
	}
}

func TestCanonicalizeUnreachableDollarDropped(t *testing.T) {
	tree := mustLower(t, "a$b")

	// from a, the only continuation is the dollar, which cannot complete
	var a *ast.Term
	for i := 0; i < tree.NumTerms(); i++ {
		if tree.Term(i).Kind() == ast.TermCharClass && tree.Term(i).CodePointSet().Contains('a') {
			a = tree.Term(i)
			break
		}
	}
	builders := canonicalizeTransitions(tree.Successors(a), tree)
	if len(builders) != 0 {
		t.Errorf("builders = %d, want none", len(builders))
	}
}

func TestCanonicalizeReachableDollar(t *testing.T) {
	tree := mustLower(t, "a$")
	var a *ast.Term
	for i := 0; i < tree.NumTerms(); i++ {
		if tree.Term(i).Kind() == ast.TermCharClass {
			a = tree.Term(i)
			break
		}
	}
	builders := canonicalizeTransitions(tree.Successors(a), tree)
	if len(builders) != 1 || builders[0].kind != builderAnchoredFinal {
		t.Fatalf("builders = %v, want one anchored final", builders)
	}
}

func TestCanonicalizeDuplicateFinalsCollapse(t *testing.T) {
	// the two copies of a land in one partition cell; the merged state then
	// reaches the match through two zero-width paths, of which the
	// higher-priority one wins
	tree := mustLower(t, "(a)|(a)")
	in := tree.Successors(tree.UnAnchoredInitialTerm(0))
	builders := canonicalizeTransitions(in, tree)

	if len(builders) != 1 {
		t.Fatalf("entry builders = %d, want 1", len(builders))
	}
	if builders[0].targetSet.Len() != 2 {
		t.Fatalf("target set = %d terms, want 2", builders[0].targetSet.Len())
	}

	// the merged state has two match-found successors; only one survives
	var stepped []ast.Transition
	for _, term := range builders[0].targetSet.Terms() {
		stepped = append(stepped, tree.Successors(term)...)
	}
	finals := canonicalizeTransitions(stepped, tree)
	if len(finals) != 1 || finals[0].kind != builderUnAnchoredFinal {
		t.Errorf("finals = %d, want exactly 1 unanchored final", len(finals))
	}
}
