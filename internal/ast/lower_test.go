package ast

import (
	"errors"
	"reflect"
	"regexp/syntax"
	"testing"

	"github.com/KromDaniel/renfa/internal/charset"
)

func mustLower(t *testing.T, pattern string, opts Options) *Tree {
	t.Helper()
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", pattern, err)
	}
	tree, err := Lower(pattern, re.Simplify(), opts)
	if err != nil {
		t.Fatalf("failed to lower %q: %v", pattern, err)
	}
	return tree
}

// charTerm returns the n-th character-class term containing r.
func charTerm(t *testing.T, tree *Tree, r rune, n int) *Term {
	t.Helper()
	seen := 0
	for i := 0; i < tree.NumTerms(); i++ {
		term := tree.Term(i)
		if term.Kind() == TermCharClass && term.CodePointSet().Contains(r) {
			if seen == n {
				return term
			}
			seen++
		}
	}
	t.Fatalf("no term %d containing %q", n, r)
	return nil
}

func TestLowerLiteralChain(t *testing.T) {
	tree := mustLower(t, "ab", Options{})

	if got := tree.NumberOfCaptureGroups(); got != 1 {
		t.Errorf("NumberOfCaptureGroups = %d, want 1", got)
	}

	entry := tree.Successors(tree.UnAnchoredInitialTerm(0))
	if len(entry) != 1 {
		t.Fatalf("entry successors = %d, want 1", len(entry))
	}
	a := charTerm(t, tree, 'a', 0)
	if entry[0].Target() != a {
		t.Errorf("entry target = %v, want %v", entry[0].Target(), a)
	}
	// entering the pattern opens the whole-match group
	if got := entry[0].Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("entry updates = %v, want [0]", got)
	}

	b := charTerm(t, tree, 'b', 0)
	aSucc := tree.Successors(a)
	if len(aSucc) != 1 || aSucc[0].Target() != b {
		t.Fatalf("successors of a = %v, want [b]", aSucc)
	}
	if !aSucc[0].Boundaries().IsEmpty() {
		t.Errorf("a->b boundaries = %v, want empty", aSucc[0].Boundaries())
	}

	bSucc := tree.Successors(b)
	if len(bSucc) != 1 || bSucc[0].Target().Kind() != TermMatchFound {
		t.Fatalf("successors of b = %v, want [matchfound]", bSucc)
	}
	if got := bSucc[0].Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("b->match updates = %v, want [1]", got)
	}
}

func TestLowerAlternationPriority(t *testing.T) {
	// multi-rune branches keep the parser from folding the alternation
	tree := mustLower(t, "ab|cd", Options{})

	entry := tree.Successors(tree.UnAnchoredInitialTerm(0))
	if len(entry) != 2 {
		t.Fatalf("entry successors = %d, want 2", len(entry))
	}
	if !entry[0].Target().CodePointSet().Contains('a') {
		t.Error("first alternative is not ab")
	}
	if !entry[1].Target().CodePointSet().Contains('c') {
		t.Error("second alternative is not cd")
	}
}

func TestLowerQuantifierGreediness(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		matchFirst bool
	}{
		{"greedy star prefers loop", "a*", false},
		{"lazy star prefers exit", "a*?", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustLower(t, tt.pattern, Options{})
			entry := tree.Successors(tree.UnAnchoredInitialTerm(0))
			if len(entry) != 2 {
				t.Fatalf("entry successors = %d, want 2", len(entry))
			}
			gotFirst := entry[0].Target().Kind() == TermMatchFound
			if gotFirst != tt.matchFirst {
				t.Errorf("match-found first = %v, want %v", gotFirst, tt.matchFirst)
			}
		})
	}
}

func TestLowerCaptureBoundaries(t *testing.T) {
	tree := mustLower(t, "(a)(b)", Options{})

	if got := tree.NumberOfCaptureGroups(); got != 3 {
		t.Errorf("NumberOfCaptureGroups = %d, want 3", got)
	}

	a := charTerm(t, tree, 'a', 0)
	b := charTerm(t, tree, 'b', 0)

	entry := tree.Successors(tree.UnAnchoredInitialTerm(0))
	if got := entry[0].Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("entry updates = %v, want [0 2]", got)
	}

	aSucc := tree.Successors(a)
	if len(aSucc) != 1 || aSucc[0].Target() != b {
		t.Fatalf("successors of a = %v, want [b]", aSucc)
	}
	if got := aSucc[0].Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("a->b updates = %v, want [3 4]", got)
	}
	if got := aSucc[0].Boundaries().LastGroup(); got != 1 {
		t.Errorf("a->b last group = %d, want 1", got)
	}

	bSucc := tree.Successors(b)
	if got := bSucc[0].Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{1, 5}) {
		t.Errorf("b->match updates = %v, want [1 5]", got)
	}
	if got := bSucc[0].Boundaries().LastGroup(); got != 2 {
		t.Errorf("b->match last group = %d, want 2", got)
	}
}

func TestLowerLoopClearsInnerCaptures(t *testing.T) {
	tree := mustLower(t, "(?:(a)|b)+", Options{})

	a := charTerm(t, tree, 'a', 0)
	b := charTerm(t, tree, 'b', 0)

	// restarting the loop from b must clear group 1's stale boundaries
	var bToB *Transition
	for i, tr := range tree.Successors(b) {
		if tr.Target() == b {
			bToB = &tree.Successors(b)[i]
		}
	}
	if bToB == nil {
		t.Fatal("no loop transition b->b")
	}
	if got := bToB.Boundaries().ClearedIndices(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("b->b clears = %v, want [2 3]", got)
	}

	// re-entering through a opens group 1 again, so only the end slot clears
	var bToA *Transition
	for i, tr := range tree.Successors(b) {
		if tr.Target() == a {
			bToA = &tree.Successors(b)[i]
		}
	}
	if bToA == nil {
		t.Fatal("no loop transition b->a")
	}
	if got := bToA.Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("b->a updates = %v, want [2]", got)
	}
	if got := bToA.Boundaries().ClearedIndices(); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("b->a clears = %v, want [3]", got)
	}
}

func TestLowerCaretReachability(t *testing.T) {
	tree := mustLower(t, "^a", Options{})

	if got := tree.Successors(tree.UnAnchoredInitialTerm(0)); len(got) != 0 {
		t.Errorf("unanchored entry successors = %v, want none", got)
	}
	anchored := tree.Successors(tree.AnchoredInitialTerm(0))
	if len(anchored) != 1 || !anchored[0].Target().CodePointSet().Contains('a') {
		t.Errorf("anchored entry successors = %v, want [a]", anchored)
	}
	if got := tree.ReachableCarets().Len(); got != 1 {
		t.Errorf("ReachableCarets = %d, want 1", got)
	}

	tree = mustLower(t, "a", Options{})
	if got := tree.ReachableCarets().Len(); got != 0 {
		t.Errorf("ReachableCarets without ^ = %d, want 0", got)
	}
}

func TestLowerDollarReachability(t *testing.T) {
	tree := mustLower(t, "a$", Options{})
	if got := tree.ReachableDollars().Len(); got != 1 {
		t.Fatalf("ReachableDollars = %d, want 1", got)
	}
	dollar := tree.ReachableDollars().Terms()[0]
	if got := dollar.FinalBoundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("dollar final updates = %v, want [1]", got)
	}

	// a dollar in the middle of the pattern can never complete the match
	tree = mustLower(t, "a$b", Options{})
	if got := tree.ReachableDollars().Len(); got != 0 {
		t.Errorf("ReachableDollars for a$b = %d, want 0", got)
	}
}

func TestLowerMandatoryPrefix(t *testing.T) {
	tree := mustLower(t, "a", Options{
		MandatoryPrefix: []charset.CodePointSet{charset.Single('x'), charset.Single('y')},
	})

	if got := tree.WrappedPrefixLength(); got != 2 {
		t.Fatalf("WrappedPrefixLength = %d, want 2", got)
	}
	if got := tree.HardPrefixNodes().Len(); got != 2 {
		t.Errorf("HardPrefixNodes = %d, want 2", got)
	}

	// depth 2 starts at the x leaf, depth 1 at the y leaf
	deep := tree.Successors(tree.UnAnchoredInitialTerm(2))
	if len(deep) != 1 || !deep[0].Target().CodePointSet().Contains('x') {
		t.Errorf("depth-2 entry = %v, want [x]", deep)
	}
	mid := tree.Successors(tree.UnAnchoredInitialTerm(1))
	if len(mid) != 1 || !mid[0].Target().CodePointSet().Contains('y') {
		t.Errorf("depth-1 entry = %v, want [y]", mid)
	}

	// the prefix sits outside group 0: the match opens after y
	y := charTerm(t, tree, 'y', 0)
	ySucc := tree.Successors(y)
	if len(ySucc) != 1 || !ySucc[0].Target().CodePointSet().Contains('a') {
		t.Fatalf("successors of y = %v, want [a]", ySucc)
	}
	if got := ySucc[0].Boundaries().UpdatedIndices(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("y->a updates = %v, want [0]", got)
	}
}

func TestLowerBoundedRepeatUnrolls(t *testing.T) {
	tree := mustLower(t, "a{2,4}", Options{})

	// four distinct copies of the leaf exist
	count := 0
	for i := 0; i < tree.NumTerms(); i++ {
		if tree.Term(i).Kind() == TermCharClass {
			count++
		}
	}
	if count != 4 {
		t.Errorf("char terms = %d, want 4", count)
	}

	// the second copy can either continue or finish the match
	second := charTerm(t, tree, 'a', 1)
	succ := tree.Successors(second)
	if len(succ) != 2 {
		t.Fatalf("successors of second copy = %d, want 2", len(succ))
	}
	if succ[0].Target().Kind() != TermCharClass {
		t.Error("greedy repeat should try the next copy first")
	}
	if succ[1].Target().Kind() != TermMatchFound {
		t.Error("second alternative should finish the match")
	}

	// the first copy cannot finish: min is 2
	first := charTerm(t, tree, 'a', 0)
	for _, tr := range tree.Successors(first) {
		if tr.Target().Kind() == TermMatchFound {
			t.Error("first copy may not finish the match")
		}
	}
}

func TestLowerTreeSizeCeiling(t *testing.T) {
	re, err := syntax.Parse("(ab){1,100}", syntax.Perl)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Lower("(ab){1,100}", re.Simplify(), Options{MaxParseTreeSize: 50})
	if !errors.Is(err, ErrTreeTooLarge) {
		t.Errorf("err = %v, want ErrTreeTooLarge", err)
	}
}

func TestLowerUnsupported(t *testing.T) {
	re, err := syntax.Parse(`\bfoo`, syntax.Perl)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Lower(`\bfoo`, re.Simplify(), Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestLowerFoldCase(t *testing.T) {
	tree := mustLower(t, "(?i)a", Options{})
	a := charTerm(t, tree, 'a', 0)
	if !a.CodePointSet().Contains('A') {
		t.Error("case-folded literal does not contain 'A'")
	}
}
