// Package bitset provides a small fixed-capacity bit set backed by uint64
// words. The NFA generator uses two of these as scratch storage for
// capture-group boundary indices while building a single transition.
package bitset

import "math/bits"

// BitSet is a growable set of small non-negative integers.
// The zero value is an empty set.
type BitSet struct {
	words []uint64
}

// New returns a bit set with capacity for at least n bits.
func New(n int) *BitSet {
	return &BitSet{words: make([]uint64, (n+63)/64)}
}

// Set adds i to the set, growing as needed.
func (b *BitSet) Set(i int) {
	w := i >> 6
	for w >= len(b.words) {
		b.words = append(b.words, 0)
	}
	b.words[w] |= 1 << uint(i&63)
}

// Unset removes i from the set.
func (b *BitSet) Unset(i int) {
	w := i >> 6
	if w < len(b.words) {
		b.words[w] &^= 1 << uint(i&63)
	}
}

// Get reports whether i is in the set.
func (b *BitSet) Get(i int) bool {
	w := i >> 6
	return w < len(b.words) && b.words[w]&(1<<uint(i&63)) != 0
}

// IsEmpty reports whether no bit is set.
func (b *BitSet) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Clear removes all bits from the set.
func (b *BitSet) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Count returns the number of set bits.
func (b *BitSet) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Or adds every bit of o to b.
func (b *BitSet) Or(o *BitSet) {
	for len(b.words) < len(o.words) {
		b.words = append(b.words, 0)
	}
	for i, w := range o.words {
		b.words[i] |= w
	}
}

// AndNot removes every bit of o from b.
func (b *BitSet) AndNot(o *BitSet) {
	for i := range b.words {
		if i < len(o.words) {
			b.words[i] &^= o.words[i]
		}
	}
}

// ForEach calls f for every set bit in ascending order.
func (b *BitSet) ForEach(f func(i int)) {
	for wi, w := range b.words {
		for w != 0 {
			i := bits.TrailingZeros64(w)
			f(wi*64 + i)
			w &= w - 1
		}
	}
}

// Slice returns the set bits in ascending order.
func (b *BitSet) Slice() []int {
	out := make([]int, 0, b.Count())
	b.ForEach(func(i int) { out = append(out, i) })
	return out
}

// Copy returns an independent copy of the set.
func (b *BitSet) Copy() *BitSet {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return &BitSet{words: words}
}

// Equal reports whether both sets contain exactly the same bits.
func (b *BitSet) Equal(o *BitSet) bool {
	long, short := b.words, o.words
	if len(short) > len(long) {
		long, short = short, long
	}
	for i, w := range long {
		var ow uint64
		if i < len(short) {
			ow = short[i]
		}
		if w != ow {
			return false
		}
	}
	return true
}
