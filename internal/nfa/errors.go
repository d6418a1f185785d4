package nfa

import "fmt"

// ExplosionError reports that graph construction would exceed a configured
// size ceiling. It aborts generation; no partial NFA is usable afterwards.
type ExplosionError struct {
	// Kind is the human-readable subsystem tag, e.g. "NFA explosion".
	Kind string
	// Threshold is the ceiling that would have been exceeded.
	Threshold int
}

func (e *ExplosionError) Error() string {
	return fmt.Sprintf("%s: automaton exceeds %d elements", e.Kind, e.Threshold)
}

// IsStateExplosion reports whether the error is a state-count explosion.
func (e *ExplosionError) IsStateExplosion() bool { return e.Kind == stateExplosionKind }

// IsTransitionExplosion reports whether the error is a transition-count
// explosion.
func (e *ExplosionError) IsTransitionExplosion() bool { return e.Kind == transitionExplosionKind }
