package renfa

import (
	"sort"
)

// AnalysisResult contains the results of pattern analysis without code
// generation. This is useful for determining which labels apply to a pattern
// for testing.
type AnalysisResult struct {
	// Stats holds the size and shape of the generated automaton.
	Stats Stats

	// FeatureLabels is derived from the automaton structure, sorted
	// alphabetically for deterministic comparison.
	FeatureLabels []string
}

// Analyze compiles the pattern and returns structural labels without
// generating code.
//
// Example:
//
//	result, err := renfa.Analyze(`(\w+)@(\w+)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.FeatureLabels) // ["Captures"]
func Analyze(pattern string) (*AnalysisResult, error) {
	c, err := Compile(Options{Pattern: pattern})
	if err != nil {
		return nil, err
	}

	var labels []string
	tree := c.nfa.Tree()
	if tree.NumberOfCaptureGroups() > 1 {
		labels = append(labels, "Captures")
	}
	if tree.ReachableCarets().Len() > 0 {
		labels = append(labels, "AnchoredStart")
	}
	if tree.ReachableDollars().Len() > 0 {
		labels = append(labels, "AnchoredEnd")
	}
	if len(c.nfa.HardPrefixStates()) > 0 {
		labels = append(labels, "Prefix")
	}
	sort.Strings(labels)

	return &AnalysisResult{Stats: c.Stats(), FeatureLabels: labels}, nil
}
