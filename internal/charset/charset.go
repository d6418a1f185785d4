// Package charset implements code point sets as sorted, non-overlapping
// rune ranges. The NFA generator treats these as opaque match conditions;
// the canonicalizer relies on union, intersection and subtraction to keep
// transition conditions disjoint.
package charset

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxCodePoint is the highest code point representable in a set.
const MaxCodePoint = unicode.MaxRune

// CodePointSet is an immutable set of code points stored as sorted,
// non-adjacent [lo, hi] ranges. The zero value is the empty set.
type CodePointSet struct {
	ranges []rune // pairs: lo0, hi0, lo1, hi1, ...
}

// Empty returns the empty set.
func Empty() CodePointSet {
	return CodePointSet{}
}

// Full returns the set covering every code point.
func Full() CodePointSet {
	return CodePointSet{ranges: []rune{0, MaxCodePoint}}
}

// Single returns a set containing exactly one code point.
func Single(r rune) CodePointSet {
	return CodePointSet{ranges: []rune{r, r}}
}

// Range returns a set containing the inclusive range [lo, hi].
func Range(lo, hi rune) CodePointSet {
	if lo > hi {
		return Empty()
	}
	return CodePointSet{ranges: []rune{lo, hi}}
}

// FromRunePairs builds a set from a regexp/syntax rune-pair list
// (lo0, hi0, lo1, hi1, ...). The input is already sorted and merged,
// which regexp/syntax guarantees for OpCharClass.
func FromRunePairs(pairs []rune) CodePointSet {
	if len(pairs) == 0 {
		return Empty()
	}
	ranges := make([]rune, len(pairs))
	copy(ranges, pairs)
	return CodePointSet{ranges: ranges}
}

// IsEmpty reports whether the set contains no code points.
func (c CodePointSet) IsEmpty() bool {
	return len(c.ranges) == 0
}

// Contains reports whether r is in the set.
func (c CodePointSet) Contains(r rune) bool {
	lo, hi := 0, len(c.ranges)/2
	for lo < hi {
		mid := (lo + hi) / 2
		if r < c.ranges[mid*2] {
			hi = mid
		} else if r > c.ranges[mid*2+1] {
			lo = mid + 1
		} else {
			return true
		}
	}
	return false
}

// Size returns the number of code points in the set.
func (c CodePointSet) Size() int {
	n := 0
	for i := 0; i < len(c.ranges); i += 2 {
		n += int(c.ranges[i+1]-c.ranges[i]) + 1
	}
	return n
}

// RangeCount returns the number of disjoint ranges in the set.
func (c CodePointSet) RangeCount() int {
	return len(c.ranges) / 2
}

// RangeAt returns the i-th range of the set.
func (c CodePointSet) RangeAt(i int) (lo, hi rune) {
	return c.ranges[i*2], c.ranges[i*2+1]
}

// Equal reports whether both sets contain exactly the same code points.
func (c CodePointSet) Equal(o CodePointSet) bool {
	if len(c.ranges) != len(o.ranges) {
		return false
	}
	for i, r := range c.ranges {
		if o.ranges[i] != r {
			return false
		}
	}
	return true
}

// Union returns the set of code points in either set.
func (c CodePointSet) Union(o CodePointSet) CodePointSet {
	if c.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return c
	}
	var out []rune
	i, j := 0, 0
	appendRange := func(lo, hi rune) {
		if n := len(out); n > 0 && lo <= out[n-1]+1 {
			if hi > out[n-1] {
				out[n-1] = hi
			}
			return
		}
		out = append(out, lo, hi)
	}
	for i < len(c.ranges) || j < len(o.ranges) {
		if j >= len(o.ranges) || (i < len(c.ranges) && c.ranges[i] <= o.ranges[j]) {
			appendRange(c.ranges[i], c.ranges[i+1])
			i += 2
		} else {
			appendRange(o.ranges[j], o.ranges[j+1])
			j += 2
		}
	}
	return CodePointSet{ranges: out}
}

// Intersect returns the set of code points in both sets.
func (c CodePointSet) Intersect(o CodePointSet) CodePointSet {
	var out []rune
	i, j := 0, 0
	for i < len(c.ranges) && j < len(o.ranges) {
		lo := maxRune(c.ranges[i], o.ranges[j])
		hi := minRune(c.ranges[i+1], o.ranges[j+1])
		if lo <= hi {
			out = append(out, lo, hi)
		}
		if c.ranges[i+1] < o.ranges[j+1] {
			i += 2
		} else {
			j += 2
		}
	}
	return CodePointSet{ranges: out}
}

// Subtract returns the set of code points in c but not in o.
func (c CodePointSet) Subtract(o CodePointSet) CodePointSet {
	var out []rune
	j := 0
	for i := 0; i < len(c.ranges); i += 2 {
		lo, hi := c.ranges[i], c.ranges[i+1]
		for j < len(o.ranges) && o.ranges[j+1] < lo {
			j += 2
		}
		k := j
		for lo <= hi && k < len(o.ranges) && o.ranges[k] <= hi {
			if o.ranges[k] > lo {
				out = append(out, lo, o.ranges[k]-1)
			}
			lo = o.ranges[k+1] + 1
			k += 2
		}
		if lo <= hi {
			out = append(out, lo, hi)
		}
	}
	return CodePointSet{ranges: out}
}

// Intersects reports whether the two sets share at least one code point.
func (c CodePointSet) Intersects(o CodePointSet) bool {
	i, j := 0, 0
	for i < len(c.ranges) && j < len(o.ranges) {
		if c.ranges[i+1] < o.ranges[j] {
			i += 2
		} else if o.ranges[j+1] < c.ranges[i] {
			j += 2
		} else {
			return true
		}
	}
	return false
}

// String renders the set in a compact character-class style, e.g. [a-cx].
func (c CodePointSet) String() string {
	if c.IsEmpty() {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < len(c.ranges); i += 2 {
		lo, hi := c.ranges[i], c.ranges[i+1]
		if lo == hi {
			b.WriteString(escapeRune(lo))
		} else {
			fmt.Fprintf(&b, "%s-%s", escapeRune(lo), escapeRune(hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func escapeRune(r rune) string {
	if r >= 0x20 && r < 0x7f {
		return string(r)
	}
	return fmt.Sprintf("\\u%04x", r)
}

func minRune(a, b rune) rune {
	if a < b {
		return a
	}
	return b
}

func maxRune(a, b rune) rune {
	if a > b {
		return a
	}
	return b
}
