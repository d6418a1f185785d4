package nfa

import (
	"fmt"

	"github.com/KromDaniel/renfa/internal/ast"
	"github.com/KromDaniel/renfa/internal/bitset"
	"github.com/KromDaniel/renfa/internal/charset"
)

// Config controls NFA generation.
type Config struct {
	// MaxStates aborts generation with an ExplosionError once more states
	// than this would be created. Zero selects MaxStates.
	MaxStates int
	// MaxTransitions is the matching ceiling for transitions. Zero selects
	// MaxTransitions.
	MaxTransitions int
	// MustAdvance requires at least one consumed input symbol between the
	// search origin and a match.
	MustAdvance bool
	// Logger receives verbose construction output. Nil disables logging.
	Logger *Logger
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxStates <= 0 {
		out.MaxStates = MaxStates
	}
	if out.MaxTransitions <= 0 {
		out.MaxTransitions = MaxTransitions
	}
	return out
}

// Generate builds the NFA for a lowered pattern tree.
func Generate(tree *ast.Tree, cfg Config) (*NFA, error) {
	g, err := newGenerator(tree, cfg.withDefaults())
	if err != nil {
		return nil, err
	}
	return g.build()
}

// stateFingerprint is the dedup identity of a state: the structural key of
// its term set plus the must-advance variant bit.
type stateFingerprint struct {
	key         string
	mustAdvance bool
}

// scratchBoundaries is the shared pair of bit sets the expansion loop uses
// to accumulate group boundaries. Both sets are empty between transitions;
// createTransition consumes and clears them.
type scratchBoundaries struct {
	updates *bitset.BitSet
	clears  *bitset.BitSet
}

func (s *scratchBoundaries) assertEmpty(stage string) {
	if !s.updates.IsEmpty() || !s.clears.IsEmpty() {
		panic(fmt.Sprintf("scratch boundary sets not cleared %s", stage))
	}
}

type generator struct {
	tree *ast.Tree
	cfg  Config
	log  *Logger

	stateID      *ThresholdCounter
	transitionID *ThresholdCounter

	states     map[stateFingerprint]*State
	statesByID []*State

	expansionQueue    []*State
	transitionsBuffer []*Transition
	scratch           scratchBoundaries

	dummyInitialState     *State
	anchoredFinalState    *State
	finalState            *State
	advancedInitialState  *State
	initialStates         []*State
	anchoredInitialStates []*State

	anchoredEntries   []*Transition
	unAnchoredEntries []*Transition

	anchoredReverseEntry   *Transition
	unAnchoredReverseEntry *Transition
	initialLoopBack        *Transition

	hardPrefixStates []*State
}

// newGenerator seeds the fixed part of every automaton: the dummy initial
// state, the two final states, the reverse entries and the per-prefix-depth
// entry states. Construction order pins the id layout: state 0 is the dummy,
// states 1 and 2 the finals, transitions 0 and 1 the reverse entries.
func newGenerator(tree *ast.Tree, cfg Config) (*generator, error) {
	g := &generator{
		tree:         tree,
		cfg:          cfg,
		log:          cfg.Logger,
		stateID:      NewThresholdCounter(cfg.MaxStates, stateExplosionKind),
		transitionID: NewThresholdCounter(cfg.MaxTransitions, transitionExplosionKind),
		states:       make(map[stateFingerprint]*State),
		scratch: scratchBoundaries{
			updates: bitset.New(tree.NumberOfCaptureGroups() * 2),
			clears:  bitset.New(tree.NumberOfCaptureGroups() * 2),
		},
	}

	var err error
	g.dummyInitialState, err = g.newState(
		ast.NewStateSet(tree.RootGroupTerm()), charset.Empty(), false, cfg.MustAdvance)
	if err != nil {
		return nil, err
	}
	g.anchoredFinalState, err = g.newState(tree.ReachableDollars(), tree.FullSet(), false, false)
	if err != nil {
		return nil, err
	}
	g.anchoredFinalState.anchoredFinal = true
	g.finalState, err = g.newState(
		ast.NewStateSet(tree.MatchFoundTerm()), tree.FullSet(), false, false)
	if err != nil {
		return nil, err
	}
	g.finalState.unAnchoredFinal = true

	g.anchoredReverseEntry, err = g.createTransition(
		g.anchoredFinalState, g.dummyInitialState, tree.FullSet(), -1)
	if err != nil {
		return nil, err
	}
	g.unAnchoredReverseEntry, err = g.createTransition(
		g.finalState, g.dummyInitialState, tree.FullSet(), -1)
	if err != nil {
		return nil, err
	}
	if g.anchoredReverseEntry.id != 0 || g.unAnchoredReverseEntry.id != 1 {
		panic("reverse entries must own transition ids 0 and 1")
	}
	g.dummyInitialState.predecessors = []*Transition{g.anchoredReverseEntry, g.unAnchoredReverseEntry}

	if cfg.MustAdvance {
		// entry once at least one symbol has been consumed; shares the entry
		// term of initialStates[0] but without the must-advance bit
		g.advancedInitialState, err = g.newState(
			ast.NewStateSet(tree.UnAnchoredInitialTerm(0)), tree.FullSet(), false, false)
		if err != nil {
			return nil, err
		}
		g.advancedInitialState.unAnchoredInitial = true
	}

	nEntries := tree.WrappedPrefixLength() + 1
	g.initialStates = make([]*State, nEntries)
	g.unAnchoredEntries = make([]*Transition, nEntries)
	for i := 0; i < nEntries; i++ {
		st, err := g.newState(
			ast.NewStateSet(tree.UnAnchoredInitialTerm(i)), tree.FullSet(), i > 0, cfg.MustAdvance)
		if err != nil {
			return nil, err
		}
		st.unAnchoredInitial = true
		g.initialStates[i] = st
		g.unAnchoredEntries[i], err = g.createTransition(g.dummyInitialState, st, tree.FullSet(), -1)
		if err != nil {
			return nil, err
		}
	}

	if tree.ReachableCarets().Len() == 0 {
		// no satisfiable ^ assertion: anchored and unanchored entries are the
		// same objects, and callers may rely on the aliasing
		g.anchoredInitialStates = g.initialStates
		g.anchoredEntries = g.unAnchoredEntries
		for _, st := range g.initialStates {
			st.anchoredInitial = true
		}
		g.dummyInitialState.successors = append([]*Transition(nil), g.unAnchoredEntries...)
	} else {
		g.anchoredInitialStates = make([]*State, nEntries)
		g.anchoredEntries = make([]*Transition, nEntries)
		for i := 0; i < nEntries; i++ {
			st, err := g.newState(
				ast.NewStateSet(tree.AnchoredInitialTerm(i)), tree.FullSet(), i > 0, cfg.MustAdvance)
			if err != nil {
				return nil, err
			}
			st.anchoredInitial = true
			g.anchoredInitialStates[i] = st
			g.anchoredEntries[i], err = g.createTransition(g.dummyInitialState, st, tree.FullSet(), -1)
			if err != nil {
				return nil, err
			}
		}
		g.dummyInitialState.successors = make([]*Transition, 0, 2*nEntries)
		g.dummyInitialState.successors = append(g.dummyInitialState.successors, g.anchoredEntries...)
		g.dummyInitialState.successors = append(g.dummyInitialState.successors, g.unAnchoredEntries...)
	}

	g.scratch.assertEmpty("after seeding")
	return g, nil
}

func (g *generator) build() (*NFA, error) {
	g.log.Section("NFA Construction")
	g.log.Log("pattern %q: %d terms, prefix length %d, must-advance=%t",
		g.tree.Pattern(), g.tree.NumTerms(), g.tree.WrappedPrefixLength(), g.cfg.MustAdvance)

	g.expansionQueue = append(g.expansionQueue, g.initialStates...)
	if g.advancedInitialState != nil {
		g.expansionQueue = append(g.expansionQueue, g.advancedInitialState)
	}
	if g.tree.ReachableCarets().Len() > 0 {
		g.expansionQueue = append(g.expansionQueue, g.anchoredInitialStates...)
	}

	for len(g.expansionQueue) > 0 {
		s := g.expansionQueue[0]
		g.expansionQueue = g.expansionQueue[1:]
		if err := g.expandState(s); err != nil {
			return nil, err
		}
	}
	g.scratch.assertEmpty("after expansion")

	if err := g.wireLoopBacks(); err != nil {
		return nil, err
	}
	g.flagHardPrefixStates()
	g.linkPredecessors()

	g.log.Log("generated %d states, %d transitions", g.stateID.Count(), g.transitionID.Count())

	return &NFA{
		tree:                   g.tree,
		dummyInitialState:      g.dummyInitialState,
		anchoredFinal:          g.anchoredFinalState,
		unAnchoredFinal:        g.finalState,
		anchoredEntries:        g.anchoredEntries,
		unAnchoredEntries:      g.unAnchoredEntries,
		anchoredReverseEntry:   g.anchoredReverseEntry,
		unAnchoredReverseEntry: g.unAnchoredReverseEntry,
		initialLoopBack:        g.initialLoopBack,
		states:                 g.statesByID,
		numTransitions:         g.transitionID.Count(),
		hardPrefixStates:       g.hardPrefixStates,
	}, nil
}

// expandState computes the canonicalized outgoing transitions of one state
// and enqueues every newly discovered successor.
func (g *generator) expandState(s *State) error {
	var astTransitions []ast.Transition
	for _, term := range s.stateSet.Terms() {
		astTransitions = append(astTransitions, g.tree.Successors(term)...)
	}
	builders := canonicalizeTransitions(astTransitions, g.tree)

	g.transitionsBuffer = g.transitionsBuffer[:0]
	for _, b := range builders {
		switch b.kind {
		case builderUnAnchoredFinal:
			// a must-advance state cannot complete a match yet
			if s.mustAdvance {
				continue
			}
			tr := b.transitions[0]
			tr.Boundaries().ApplyToBitSets(g.scratch.updates, g.scratch.clears)
			t, err := g.createTransition(s, g.finalState, g.tree.FullSet(), tr.Boundaries().LastGroup())
			if err != nil {
				return err
			}
			g.transitionsBuffer = append(g.transitionsBuffer, t)

		case builderAnchoredFinal:
			if s.mustAdvance {
				continue
			}
			tr := b.transitions[0]
			tr.Boundaries().ApplyToBitSets(g.scratch.updates, g.scratch.clears)
			final := tr.Target().FinalBoundaries()
			final.ApplyToBitSets(g.scratch.updates, g.scratch.clears)
			lastGroup := final.LastGroup()
			if lastGroup < 0 {
				lastGroup = tr.Boundaries().LastGroup()
			}
			t, err := g.createTransition(s, g.anchoredFinalState, g.tree.FullSet(), lastGroup)
			if err != nil {
				return err
			}
			g.transitionsBuffer = append(g.transitionsBuffer, t)

		case builderMatcher:
			for _, tr := range b.transitions {
				tr.Boundaries().ApplyToBitSets(g.scratch.updates, g.scratch.clears)
			}
			mustAdvance := s.mustAdvance && !g.tree.HardPrefixNodes().IsDisjoint(b.targetSet)
			target, err := g.registerMatcherState(b.targetSet, b.cs, b.containsPrefix, mustAdvance)
			if err != nil {
				return err
			}
			t, err := g.createTransition(s, target, b.cs, b.lastGroup())
			if err != nil {
				return err
			}
			g.transitionsBuffer = append(g.transitionsBuffer, t)
		}
	}
	s.successors = append([]*Transition(nil), g.transitionsBuffer...)
	return nil
}

// registerMatcherState returns the state owning the given term set, creating
// and enqueueing it on first sight.
func (g *generator) registerMatcherState(stateSet *ast.StateSet, matcherSet charset.CodePointSet, containsPrefix, mustAdvance bool) (*State, error) {
	fp := stateFingerprint{key: stateSet.Key(), mustAdvance: mustAdvance}
	if existing, ok := g.states[fp]; ok {
		return existing, nil
	}
	if matcherSet.IsEmpty() {
		panic("matcher state with empty code-point set")
	}
	st, err := g.newState(stateSet, matcherSet, containsPrefix, mustAdvance)
	if err != nil {
		return nil, err
	}
	g.log.Log("state s%d <- %s must-advance=%t", st.id, stateSet, mustAdvance)
	g.expansionQueue = append(g.expansionQueue, st)
	return st, nil
}

func (g *generator) newState(stateSet *ast.StateSet, matcherSet charset.CodePointSet, hasPrefix, mustAdvance bool) (*State, error) {
	id, err := g.stateID.Inc()
	if err != nil {
		return nil, err
	}
	st := &State{
		id:              id,
		stateSet:        stateSet,
		matcherSet:      matcherSet,
		hasPrefixStates: hasPrefix,
		mustAdvance:     mustAdvance,
	}
	g.states[stateFingerprint{key: stateSet.Key(), mustAdvance: mustAdvance}] = st
	g.statesByID = append(g.statesByID, st)
	return st, nil
}

// createTransition allocates an edge and consumes the scratch boundary sets.
// The scratch sets are empty on entry except for the boundaries the caller
// accumulated for exactly this edge; they are empty again on return.
func (g *generator) createTransition(source, target *State, cs charset.CodePointSet, lastGroup int) (*Transition, error) {
	id, err := g.transitionID.Inc()
	if err != nil {
		return nil, err
	}
	t := &Transition{
		id:              id,
		source:          source,
		target:          target,
		codePointSet:    cs,
		groupBoundaries: ast.NewGroupBoundaries(g.scratch.updates, g.scratch.clears, lastGroup),
	}
	g.scratch.updates.Clear()
	g.scratch.clears.Clear()
	return t, nil
}

// wireLoopBacks chains the prefix entry states together and closes the
// "advance one position and retry" self-loop used by unanchored search.
func (g *generator) wireLoopBacks() error {
	for i := 1; i < len(g.initialStates); i++ {
		if err := g.addLoopBack(g.initialStates[i], g.initialStates[i-1]); err != nil {
			return err
		}
	}
	var err error
	if g.advancedInitialState != nil {
		if err = g.addLoopBack(g.initialStates[0], g.advancedInitialState); err != nil {
			return err
		}
		g.initialLoopBack, err = g.createTransition(
			g.advancedInitialState, g.advancedInitialState, g.tree.FullSet(), -1)
		if err != nil {
			return err
		}
		g.advancedInitialState.successors = append(g.advancedInitialState.successors, g.initialLoopBack)
	} else {
		g.initialLoopBack, err = g.createTransition(
			g.initialStates[0], g.initialStates[0], g.tree.FullSet(), -1)
		if err != nil {
			return err
		}
		g.initialStates[0].successors = append(g.initialStates[0].successors, g.initialLoopBack)
	}
	return nil
}

func (g *generator) addLoopBack(source, target *State) error {
	t, err := g.createTransition(source, target, g.tree.FullSet(), -1)
	if err != nil {
		return err
	}
	source.successors = append(source.successors, t)
	return nil
}

// flagHardPrefixStates marks every state whose term set touches the
// mandatory prefix region. Must-advance variants are exempt: they exist to
// delay the match proper, not to track prefix consumption.
func (g *generator) flagHardPrefixStates() {
	prefix := g.tree.HardPrefixNodes()
	if prefix.Len() == 0 {
		return
	}
	for _, s := range g.statesByID {
		if s == g.dummyInitialState || s.mustAdvance {
			continue
		}
		if !prefix.IsDisjoint(s.stateSet) {
			s.hasPrefixStates = true
		}
	}
	for _, s := range g.statesByID {
		if s.hasPrefixStates {
			g.hardPrefixStates = append(g.hardPrefixStates, s)
		}
	}
}

// linkPredecessors fills the reverse adjacency after the graph is complete.
// The dummy initial state keeps its preassigned reverse entries.
func (g *generator) linkPredecessors() {
	for _, s := range g.statesByID {
		for _, t := range s.successors {
			t.target.predecessors = append(t.target.predecessors, t)
		}
	}
}
