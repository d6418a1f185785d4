package nfa

import "math"

// Size ceilings protecting against pathological patterns. Both counters use
// increment-before-check, so the ceilings are exact: a graph of exactly
// MaxStates states is still accepted, one more aborts generation.
const (
	// MaxStates is the default ceiling for the state-id counter.
	MaxStates = 3500

	// MaxTransitions is the default ceiling for the transition-id counter.
	// Transition ids must fit a signed 16-bit index, which compact
	// downstream encodings rely on.
	MaxTransitions = math.MaxInt16
)

// Explosion error tags, also used as the Kind of the corresponding
// ExplosionError.
const (
	stateExplosionKind      = "NFA explosion"
	transitionExplosionKind = "NFA transition explosion"
)
