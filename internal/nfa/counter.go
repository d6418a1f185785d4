package nfa

// ThresholdCounter hands out dense 0-based ids up to a configured ceiling.
// The discipline is increment-before-check: the counter is advanced first
// and the ceiling verified afterwards, which keeps id assignment
// deterministic across runs and under fuzzing.
type ThresholdCounter struct {
	count int
	max   int
	kind  string
}

// NewThresholdCounter returns a counter that fails once more than max ids
// have been handed out. kind tags the resulting ExplosionError.
func NewThresholdCounter(max int, kind string) *ThresholdCounter {
	return &ThresholdCounter{max: max, kind: kind}
}

// Inc returns the next id or an ExplosionError when the ceiling is passed.
func (c *ThresholdCounter) Inc() (int, error) {
	id := c.count
	c.count++
	if c.count > c.max {
		return 0, &ExplosionError{Kind: c.kind, Threshold: c.max}
	}
	return id, nil
}

// Count returns the number of ids handed out so far.
func (c *ThresholdCounter) Count() int { return c.count }
