package ast

import (
	"testing"

	"github.com/KromDaniel/renfa/internal/charset"
)

func makeTerms(n int) []*Term {
	tree := &Tree{}
	terms := make([]*Term, n)
	for i := range terms {
		terms[i] = tree.newTerm(TermCharClass, charset.Single('a'), false)
	}
	return terms
}

func TestStateSetDedupAndOrder(t *testing.T) {
	terms := makeTerms(4)
	s := NewStateSet(terms[2], terms[0], terms[2], terms[1])

	if got := s.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	for i, want := range []*Term{terms[0], terms[1], terms[2]} {
		if s.Terms()[i] != want {
			t.Errorf("Terms()[%d] = %v, want %v", i, s.Terms()[i], want)
		}
	}
}

func TestStateSetKeyIsOrderInsensitive(t *testing.T) {
	terms := makeTerms(3)
	a := NewStateSet(terms[0], terms[2])
	b := NewStateSet(terms[2], terms[0])
	c := NewStateSet(terms[0], terms[1])

	if a.Key() != b.Key() {
		t.Errorf("keys differ for same set: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Errorf("distinct sets share key %q", a.Key())
	}
}

func TestStateSetContains(t *testing.T) {
	terms := makeTerms(5)
	s := NewStateSet(terms[1], terms[3])

	if !s.Contains(terms[1]) || !s.Contains(terms[3]) {
		t.Error("Contains misses member")
	}
	if s.Contains(terms[0]) || s.Contains(terms[4]) {
		t.Error("Contains reports non-member")
	}
}

func TestStateSetIsDisjoint(t *testing.T) {
	terms := makeTerms(4)
	a := NewStateSet(terms[0], terms[1])
	b := NewStateSet(terms[2], terms[3])
	c := NewStateSet(terms[1], terms[2])

	if !a.IsDisjoint(b) {
		t.Error("disjoint sets reported overlapping")
	}
	if a.IsDisjoint(c) {
		t.Error("overlapping sets reported disjoint")
	}
	if !a.IsDisjoint(NewStateSet()) {
		t.Error("empty set not disjoint")
	}
}

func TestStateSetEqual(t *testing.T) {
	terms := makeTerms(3)
	if !NewStateSet(terms[0], terms[1]).Equal(NewStateSet(terms[1], terms[0])) {
		t.Error("same members not Equal")
	}
	if NewStateSet(terms[0]).Equal(NewStateSet(terms[0], terms[1])) {
		t.Error("different sizes Equal")
	}
}
