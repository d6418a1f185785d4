package ast

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"unicode"

	"github.com/KromDaniel/renfa/internal/charset"
)

// DefaultMaxParseTreeSize bounds the number of tree nodes created during
// lowering. Bounded repetitions are unrolled, so deeply nested quantifiers
// hit this ceiling before they can exhaust memory.
const DefaultMaxParseTreeSize = 100000

// ErrTreeTooLarge is returned when unrolling a pattern exceeds the parse
// tree size ceiling.
var ErrTreeTooLarge = errors.New("parse tree explosion")

// ErrUnsupported is returned for constructs the lowering cannot express.
var ErrUnsupported = errors.New("unsupported construct")

// Options configures pattern lowering.
type Options struct {
	// MaxParseTreeSize overrides DefaultMaxParseTreeSize when positive.
	MaxParseTreeSize int

	// MandatoryPrefix is a fixed-length chain of code point sets that must
	// immediately precede the match, in consumption order. This models
	// lookbehind-induced prefixes; regexp/syntax cannot parse lookbehind, so
	// the chain is supplied programmatically.
	MandatoryPrefix []charset.CodePointSet
}

// Lower converts a parsed regexp/syntax tree into the marker-based tree the
// NFA generator consumes.
func Lower(pattern string, re *syntax.Regexp, opts Options) (*Tree, error) {
	maxNodes := opts.MaxParseTreeSize
	if maxNodes <= 0 {
		maxNodes = DefaultMaxParseTreeSize
	}
	t := &Tree{pattern: pattern}
	l := &lowerer{tree: t, maxNodes: maxNodes}

	// The prefix chain precedes the body, so its terms get the lowest ids.
	for _, cps := range opts.MandatoryPrefix {
		if cps.IsEmpty() {
			return nil, fmt.Errorf("empty code point set in mandatory prefix")
		}
		leaf := &leafNode{term: t.newTerm(TermCharClass, cps, true)}
		t.prefixLeaves = append(t.prefixLeaves, leaf)
	}

	body, err := l.convert(re)
	if err != nil {
		return nil, err
	}

	// Wrap the body in the implicit whole-match group 0. The prefix chain
	// sits outside it: prefix characters are not part of the match.
	group0 := &groupNode{capture: 0, child: body}
	rootChildren := make([]node, 0, len(t.prefixLeaves)+1)
	for _, p := range t.prefixLeaves {
		rootChildren = append(rootChildren, p)
	}
	rootChildren = append(rootChildren, group0)
	t.root = &seqNode{children: rootChildren}
	setParents(t.root, nil, 0)

	t.matchFound = t.newTerm(TermMatchFound, charset.Empty(), false)
	t.rootGroup = t.newTerm(TermRootGroup, charset.Empty(), false)

	nEntries := len(t.prefixLeaves) + 1
	t.unAnchoredInitial = make([]*Term, nEntries)
	t.anchoredInitial = make([]*Term, nEntries)
	for i := 0; i < nEntries; i++ {
		t.unAnchoredInitial[i] = t.newTerm(TermInitial, charset.Empty(), false)
	}
	for i := 0; i < nEntries; i++ {
		t.anchoredInitial[i] = t.newTerm(TermInitial, charset.Empty(), false)
	}

	t.numGroups = l.maxCap + 1
	l.computeSuccessors(group0)
	return t, nil
}

type lowerer struct {
	tree      *Tree
	nodeCount int
	maxNodes  int
	maxCap    int

	charLeaves   []*leafNode
	dollarLeaves []*leafNode
}

func (l *lowerer) alloc() error {
	l.nodeCount++
	if l.nodeCount > l.maxNodes {
		return fmt.Errorf("pattern expands past %d nodes: %w", l.maxNodes, ErrTreeTooLarge)
	}
	return nil
}

func (l *lowerer) charLeaf(cps charset.CodePointSet) (node, error) {
	if err := l.alloc(); err != nil {
		return nil, err
	}
	if cps.IsEmpty() {
		return &deadNode{}, nil
	}
	leaf := &leafNode{term: l.tree.newTerm(TermCharClass, cps, false)}
	l.charLeaves = append(l.charLeaves, leaf)
	return leaf, nil
}

func (l *lowerer) convert(re *syntax.Regexp) (node, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		return &deadNode{}, nil

	case syntax.OpEmptyMatch:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		return &emptyNode{}, nil

	case syntax.OpLiteral:
		children := make([]node, 0, len(re.Rune))
		for _, r := range re.Rune {
			leaf, err := l.charLeaf(literalSet(r, re.Flags))
			if err != nil {
				return nil, err
			}
			children = append(children, leaf)
		}
		return l.wrapSeq(children)

	case syntax.OpCharClass:
		return l.charLeaf(charset.FromRunePairs(re.Rune))

	case syntax.OpAnyChar:
		return l.charLeaf(charset.Full())

	case syntax.OpAnyCharNotNL:
		return l.charLeaf(charset.Full().Subtract(charset.Single('\n')))

	case syntax.OpBeginLine, syntax.OpBeginText:
		// single-line semantics: ^ asserts the start of input
		if err := l.alloc(); err != nil {
			return nil, err
		}
		leaf := &leafNode{term: l.tree.newTerm(TermCaret, charset.Empty(), false)}
		return leaf, nil

	case syntax.OpEndLine, syntax.OpEndText:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		leaf := &leafNode{term: l.tree.newTerm(TermDollar, charset.Empty(), false)}
		l.dollarLeaves = append(l.dollarLeaves, leaf)
		return leaf, nil

	case syntax.OpCapture:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		if re.Cap > l.maxCap {
			l.maxCap = re.Cap
		}
		child, err := l.convert(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return &groupNode{capture: re.Cap, child: child}, nil

	case syntax.OpStar, syntax.OpPlus:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		child, err := l.convert(re.Sub[0])
		if err != nil {
			return nil, err
		}
		min := 0
		if re.Op == syntax.OpPlus {
			min = 1
		}
		return &repNode{child: child, min: min, canLoop: true, greedy: isGreedy(re)}, nil

	case syntax.OpQuest:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		child, err := l.convert(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return &repNode{child: child, min: 0, canLoop: false, greedy: isGreedy(re)}, nil

	case syntax.OpRepeat:
		return l.unrollRepeat(re)

	case syntax.OpConcat:
		children := make([]node, 0, len(re.Sub))
		for _, sub := range re.Sub {
			c, err := l.convert(sub)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return l.wrapSeq(children)

	case syntax.OpAlternate:
		if err := l.alloc(); err != nil {
			return nil, err
		}
		children := make([]node, 0, len(re.Sub))
		for _, sub := range re.Sub {
			c, err := l.convert(sub)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return &altNode{children: children}, nil

	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return nil, fmt.Errorf("word boundary assertions: %w", ErrUnsupported)

	default:
		return nil, fmt.Errorf("regexp op %d: %w", re.Op, ErrUnsupported)
	}
}

func (l *lowerer) wrapSeq(children []node) (node, error) {
	if err := l.alloc(); err != nil {
		return nil, err
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &seqNode{children: children}, nil
}

// unrollRepeat expands a bounded repetition x{min,max} into min mandatory
// copies followed by a nested optional chain (or a trailing star when max is
// unbounded). Each copy allocates fresh terms, which is what makes
// pathological counted repetitions grow the tree and eventually trip the
// size ceiling.
func (l *lowerer) unrollRepeat(re *syntax.Regexp) (node, error) {
	sub := re.Sub[0]
	greedy := isGreedy(re)
	var children []node
	for i := 0; i < re.Min; i++ {
		c, err := l.convert(sub)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if re.Max == -1 {
		c, err := l.convert(sub)
		if err != nil {
			return nil, err
		}
		if err := l.alloc(); err != nil {
			return nil, err
		}
		children = append(children, &repNode{child: c, min: 0, canLoop: true, greedy: greedy})
	} else {
		// x{0,3} becomes (x(x(x)?)?)? so an inner copy is only reachable
		// once the outer copies matched
		var tail node
		for i := re.Max - re.Min; i > 0; i-- {
			c, err := l.convert(sub)
			if err != nil {
				return nil, err
			}
			inner := c
			if tail != nil {
				var werr error
				inner, werr = l.wrapSeq([]node{c, tail})
				if werr != nil {
					return nil, werr
				}
			}
			if err := l.alloc(); err != nil {
				return nil, err
			}
			tail = &repNode{child: inner, min: 0, canLoop: false, greedy: greedy}
		}
		if tail != nil {
			children = append(children, tail)
		}
	}
	if len(children) == 0 {
		if err := l.alloc(); err != nil {
			return nil, err
		}
		return &emptyNode{}, nil
	}
	return l.wrapSeq(children)
}

// computeSuccessors fills every term's prioritized successor list and
// resolves assertion reachability. Must run after parent links are wired.
func (l *lowerer) computeSuccessors(group0 *groupNode) {
	t := l.tree

	for _, leaf := range t.prefixLeaves {
		leaf.term.successors = t.successorsAfter(leaf, false)
	}
	for _, leaf := range l.charLeaves {
		leaf.term.successors = t.successorsAfter(leaf, false)
	}

	var reachableDollars []*Term
	for _, leaf := range l.dollarLeaves {
		cont := t.successorsAfter(leaf, false)
		for _, tr := range cont {
			if tr.target.kind == TermMatchFound {
				leaf.term.reachesMatch = true
				leaf.term.finalBoundaries = tr.boundaries
				reachableDollars = append(reachableDollars, leaf.term)
				break
			}
		}
	}

	k := len(t.prefixLeaves)
	for i := range t.unAnchoredInitial {
		if i == 0 {
			t.unAnchoredInitial[0].successors = t.successorsFrom(group0, false)
		} else {
			t.unAnchoredInitial[i].successors = []Transition{
				{target: t.prefixLeaves[k-i].term, boundaries: EmptyBoundaries()},
			}
		}
	}
	for i := range t.anchoredInitial {
		if i == 0 {
			// this walk steps through carets and marks them reachable
			t.anchoredInitial[0].successors = t.successorsFrom(group0, true)
		} else {
			t.anchoredInitial[i].successors = []Transition{
				{target: t.prefixLeaves[k-i].term, boundaries: EmptyBoundaries()},
			}
		}
	}

	t.reachableCarets = NewStateSet(t.caretTerms...)
	t.reachableDollar = NewStateSet(reachableDollars...)
	prefixTerms := make([]*Term, 0, len(t.prefixLeaves))
	for _, p := range t.prefixLeaves {
		prefixTerms = append(prefixTerms, p.term)
	}
	t.hardPrefix = NewStateSet(prefixTerms...)
}

func isGreedy(re *syntax.Regexp) bool {
	return re.Flags&syntax.NonGreedy == 0
}

// literalSet returns the code point set for a literal rune, expanding its
// simple case-folding orbit when the fold flag is set.
func literalSet(r rune, flags syntax.Flags) charset.CodePointSet {
	set := charset.Single(r)
	if flags&syntax.FoldCase != 0 {
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			set = set.Union(charset.Single(f))
		}
	}
	return set
}
