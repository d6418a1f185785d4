package ast

import (
	"fmt"
	"strings"

	"github.com/KromDaniel/renfa/internal/bitset"
)

// GroupBoundaries describes which capture-group boundary slots a transition
// updates or clears when it fires. Boundary index 2*g is the start of group
// g, 2*g+1 its end. The value is immutable once created.
type GroupBoundaries struct {
	updates   *bitset.BitSet // nil means empty
	clears    *bitset.BitSet
	lastGroup int // index of the last group closed on the path, -1 if none
}

// EmptyBoundaries returns the descriptor that touches no boundary slot.
func EmptyBoundaries() GroupBoundaries {
	return GroupBoundaries{lastGroup: -1}
}

// NewGroupBoundaries captures the given update/clear sets into an immutable
// descriptor. The inputs are copied; indices present in both sets are treated
// as updates.
func NewGroupBoundaries(updates, clears *bitset.BitSet, lastGroup int) GroupBoundaries {
	g := GroupBoundaries{lastGroup: lastGroup}
	if updates != nil && !updates.IsEmpty() {
		g.updates = updates.Copy()
	}
	if clears != nil && !clears.IsEmpty() {
		c := clears.Copy()
		if g.updates != nil {
			c.AndNot(g.updates)
		}
		if !c.IsEmpty() {
			g.clears = c
		}
	}
	return g
}

// IsEmpty reports whether the descriptor touches no boundary slot and
// carries no last-group marker.
func (g GroupBoundaries) IsEmpty() bool {
	return g.updates == nil && g.clears == nil && g.lastGroup == -1
}

// LastGroup returns the index of the last capture group closed by the
// transition, or -1 for synthetic transitions.
func (g GroupBoundaries) LastGroup() int { return g.lastGroup }

// UpdatedIndices returns the updated boundary slots in ascending order.
func (g GroupBoundaries) UpdatedIndices() []int {
	if g.updates == nil {
		return nil
	}
	return g.updates.Slice()
}

// ClearedIndices returns the cleared boundary slots in ascending order.
func (g GroupBoundaries) ClearedIndices() []int {
	if g.clears == nil {
		return nil
	}
	return g.clears.Slice()
}

// ApplyToBitSets ORs the descriptor's update and clear slots into the given
// scratch sets.
func (g GroupBoundaries) ApplyToBitSets(updates, clears *bitset.BitSet) {
	if g.updates != nil {
		updates.Or(g.updates)
	}
	if g.clears != nil {
		clears.Or(g.clears)
	}
}

// Equal reports whether both descriptors touch the same slots and carry the
// same last-group marker.
func (g GroupBoundaries) Equal(o GroupBoundaries) bool {
	if g.lastGroup != o.lastGroup {
		return false
	}
	return eqBits(g.updates, o.updates) && eqBits(g.clears, o.clears)
}

func eqBits(a, b *bitset.BitSet) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return b.IsEmpty()
	case b == nil:
		return a.IsEmpty()
	}
	return a.Equal(b)
}

func (g GroupBoundaries) String() string {
	if g.IsEmpty() {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	if g.updates != nil {
		fmt.Fprintf(&b, "set%v", g.updates.Slice())
	}
	if g.clears != nil {
		fmt.Fprintf(&b, "clear%v", g.clears.Slice())
	}
	if g.lastGroup >= 0 {
		fmt.Fprintf(&b, "last=%d", g.lastGroup)
	}
	b.WriteByte('}')
	return b.String()
}
