// Command renfa compiles regular expressions into NFA tables.
//
// Usage:
//
//	renfa -pattern '(\w+)@(\w+)' -name Email -package mailcheck -output email_nfa.go
//	renfa -pattern 'a+b' -dot -
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/KromDaniel/renfa/internal/codegen"
	"github.com/KromDaniel/renfa/pkg/renfa"
)

// arrayFlags collects repeated flag values.
type arrayFlags []string

func (f *arrayFlags) String() string {
	return strings.Join(*f, ", ")
}

func (f *arrayFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("renfa", flag.ContinueOnError)

	var patterns arrayFlags
	var names arrayFlags
	fs.Var(&patterns, "pattern", "regular expression to compile (repeatable)")
	fs.Var(&names, "name", "identifier prefix for the generated tables, one per pattern")
	output := fs.String("output", "", "output file for generated Go code")
	pkg := fs.String("package", "", "package name for generated Go code")
	dot := fs.String("dot", "", "write the automaton in Graphviz dot format to this file ('-' for stdout)")
	mustAdvance := fs.Bool("must-advance", false, "require matches to start after at least one consumed symbol")
	maxStates := fs.Int("max-states", 0, "state count ceiling (0 = default)")
	maxTransitions := fs.Int("max-transitions", 0, "transition count ceiling (0 = default)")
	verbose := fs.Bool("v", false, "enable verbose construction logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(patterns) == 0 {
		return fmt.Errorf("at least one -pattern is required")
	}
	if *output != "" {
		if *pkg == "" {
			return fmt.Errorf("-package is required with -output")
		}
		if len(names) != len(patterns) {
			return fmt.Errorf("need exactly one -name per -pattern, got %d names for %d patterns",
				len(names), len(patterns))
		}
	}
	if *dot != "" && len(patterns) != 1 {
		return fmt.Errorf("-dot supports exactly one pattern")
	}

	var gen *codegen.Generator
	if *output != "" {
		gen = codegen.New(*pkg)
	}

	for i, pattern := range patterns {
		opts := renfa.Options{
			Pattern:        pattern,
			MustAdvance:    *mustAdvance,
			MaxStates:      *maxStates,
			MaxTransitions: *maxTransitions,
			Verbose:        *verbose,
		}
		if len(names) > i {
			opts.Name = names[i]
		}
		c, err := renfa.Compile(opts)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}

		stats := c.Stats()
		fmt.Printf("compiled %q: %d states, %d transitions, %d capture groups\n",
			pattern, stats.States, stats.Transitions, stats.CaptureGroups)

		if gen != nil {
			if err := gen.Add(opts.Name, pattern, c.NFA()); err != nil {
				return fmt.Errorf("pattern %q: %w", pattern, err)
			}
		}
		if *dot != "" {
			if err := writeDot(*dot, c); err != nil {
				return err
			}
		}
	}

	if gen != nil {
		if err := gen.Save(*output); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *output)
	}
	return nil
}

func writeDot(path string, c *renfa.Compiled) error {
	if path == "-" {
		return c.WriteDot(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dot file: %w", err)
	}
	defer f.Close()
	if err := c.WriteDot(f); err != nil {
		return err
	}
	return nil
}
