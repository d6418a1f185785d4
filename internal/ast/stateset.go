package ast

import (
	"sort"
	"strconv"
	"strings"
)

// StateSet is an ordered, deduplicated set of terms. It is the identity unit
// of NFA states: two NFA states are the same iff their state sets and
// must-advance flags are equal.
type StateSet struct {
	terms []*Term // sorted by id, no duplicates
}

// NewStateSet builds a state set from the given terms.
func NewStateSet(terms ...*Term) *StateSet {
	s := &StateSet{terms: make([]*Term, len(terms))}
	copy(s.terms, terms)
	sort.Slice(s.terms, func(i, j int) bool { return s.terms[i].id < s.terms[j].id })
	// drop duplicates in place
	out := s.terms[:0]
	for i, t := range s.terms {
		if i == 0 || t.id != s.terms[i-1].id {
			out = append(out, t)
		}
	}
	s.terms = out
	return s
}

// Len returns the number of terms in the set.
func (s *StateSet) Len() int { return len(s.terms) }

// Terms returns the terms in ascending id order. The caller must not modify
// the returned slice.
func (s *StateSet) Terms() []*Term { return s.terms }

// Contains reports whether the set contains the given term.
func (s *StateSet) Contains(t *Term) bool {
	i := sort.Search(len(s.terms), func(i int) bool { return s.terms[i].id >= t.id })
	return i < len(s.terms) && s.terms[i].id == t.id
}

// IsDisjoint reports whether the two sets share no term.
func (s *StateSet) IsDisjoint(o *StateSet) bool {
	i, j := 0, 0
	for i < len(s.terms) && j < len(o.terms) {
		switch {
		case s.terms[i].id < o.terms[j].id:
			i++
		case s.terms[i].id > o.terms[j].id:
			j++
		default:
			return false
		}
	}
	return true
}

// Equal reports whether both sets contain exactly the same terms.
func (s *StateSet) Equal(o *StateSet) bool {
	if len(s.terms) != len(o.terms) {
		return false
	}
	for i, t := range s.terms {
		if o.terms[i].id != t.id {
			return false
		}
	}
	return true
}

// Key returns a canonical fingerprint of the set, suitable as a map key.
func (s *StateSet) Key() string {
	var b strings.Builder
	for i, t := range s.terms {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(t.id))
	}
	return b.String()
}

func (s *StateSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, t := range s.terms {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
	}
	b.WriteByte('}')
	return b.String()
}
