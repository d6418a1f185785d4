// Command mass_compiler compiles a built-in corpus of patterns and reports
// per-category construction statistics. It is the smoke harness for automaton
// generation: every corpus pattern must either compile or fail with a size
// ceiling, never panic.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/KromDaniel/renfa/internal/nfa"
	"github.com/KromDaniel/renfa/pkg/renfa"
)

type patternCategory string

const (
	categorySimple    patternCategory = "simple"
	categoryCaptures  patternCategory = "captures"
	categoryAnchored  patternCategory = "anchored"
	categoryExplosive patternCategory = "explosive" // rejected by the size ceilings
)

type patternSpec struct {
	Category patternCategory
	Name     string
	Pattern  string
}

var corpus = []patternSpec{
	{categorySimple, "Literal", "hello world"},
	{categorySimple, "Email", `[\w.+-]+@[\w.-]+\.[\w.-]+`},
	{categorySimple, "Hex", "0x[0-9a-fA-F]+"},
	{categorySimple, "Whitespace", `\s+`},
	{categoryCaptures, "Date", `(\d{4})-(\d{2})-(\d{2})`},
	{categoryCaptures, "KeyValue", `(\w+)=("[^"]*"|\S+)`},
	{categoryCaptures, "SemVer", `(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?`},
	{categoryAnchored, "FullLine", "^.*$"},
	{categoryAnchored, "Identifier", "^[A-Za-z_][A-Za-z0-9_]*$"},
	{categoryAnchored, "Float", `^-?\d+(\.\d+)?$`},
	{categoryExplosive, "WideRepeat", "(?:ab|cd|ef){0,1000}"},
	{categoryExplosive, "RepeatChain", "a{0,1000}b{0,1000}c{0,1000}d{0,1000}"},
}

type categoryStats struct {
	Patterns    int
	Failed      int
	Bounded     int // rejected by a size ceiling, which counts as success
	States      int
	Transitions int
}

func main() {
	maxStates := flag.Int("max-states", 0, "state count ceiling (0 = default)")
	verbose := flag.Bool("v", false, "enable verbose construction logging")
	category := flag.String("category", "", "only run one corpus category")
	flag.Parse()

	stats := make(map[patternCategory]*categoryStats)
	failed := 0
	start := time.Now()

	for _, spec := range corpus {
		if *category != "" && string(spec.Category) != *category {
			continue
		}
		cs := stats[spec.Category]
		if cs == nil {
			cs = &categoryStats{}
			stats[spec.Category] = cs
		}
		cs.Patterns++

		c, err := renfa.Compile(renfa.Options{
			Pattern:   spec.Pattern,
			Name:      spec.Name,
			MaxStates: *maxStates,
			Verbose:   *verbose,
		})
		if err != nil {
			var exp *nfa.ExplosionError
			if errors.As(err, &exp) && spec.Category == categoryExplosive {
				cs.Bounded++
				fmt.Printf("  %-14s bounded: %v\n", spec.Name, err)
				continue
			}
			cs.Failed++
			failed++
			fmt.Fprintf(os.Stderr, "  %-14s FAILED: %v\n", spec.Name, err)
			continue
		}

		s := c.Stats()
		cs.States += s.States
		cs.Transitions += s.Transitions
		fmt.Printf("  %-14s %4d states %5d transitions %d groups\n",
			spec.Name, s.States, s.Transitions, s.CaptureGroups)
	}

	fmt.Printf("\n%-12s %8s %8s %8s %10s %12s\n",
		"category", "patterns", "failed", "bounded", "states", "transitions")
	for _, cat := range []patternCategory{categorySimple, categoryCaptures, categoryAnchored, categoryExplosive} {
		cs := stats[cat]
		if cs == nil {
			continue
		}
		fmt.Printf("%-12s %8d %8d %8d %10d %12d\n",
			cat, cs.Patterns, cs.Failed, cs.Bounded, cs.States, cs.Transitions)
	}
	fmt.Printf("\ndone in %v\n", time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		os.Exit(1)
	}
}
