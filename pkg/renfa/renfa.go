// Package renfa compiles regular expressions into non-deterministic finite
// automata with capture-group tracking, and emits them as static Go tables
// at build time.
package renfa

import (
	"fmt"
	"io"
	"regexp/syntax"

	"github.com/KromDaniel/renfa/internal/ast"
	"github.com/KromDaniel/renfa/internal/codegen"
	"github.com/KromDaniel/renfa/internal/nfa"
)

// Options configures the automaton compilation process.
type Options struct {
	// Pattern is the regular expression to compile
	Pattern string

	// Name is the prefix for generated identifiers (e.g., "Email" generates "EmailStates")
	Name string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Package is the Go package name for the generated code
	Package string

	// MustAdvance requires matches to start after at least one consumed input symbol
	MustAdvance bool

	// MaxStates caps the automaton state count (0 = use default)
	MaxStates int

	// MaxTransitions caps the automaton transition count (0 = use default)
	MaxTransitions int

	// MaxParseTreeSize caps pattern unrolling during lowering (0 = use default)
	MaxParseTreeSize int

	// Verbose enables construction logging to stderr
	Verbose bool
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.Pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if o.OutputFile != "" {
		if o.Name == "" {
			return fmt.Errorf("name cannot be empty when an output file is set")
		}
		if o.Package == "" {
			return fmt.Errorf("package cannot be empty when an output file is set")
		}
	}
	return nil
}

// Stats summarizes a compiled automaton.
type Stats struct {
	States         int
	Transitions    int
	CaptureGroups  int
	PrefixLength   int
	EntriesAliased bool
}

// Compiled is a generated automaton ready for inspection or code emission.
type Compiled struct {
	opts Options
	nfa  *nfa.NFA
}

// Compile builds the automaton for the given pattern.
// It returns an error if the pattern is invalid or the automaton would
// exceed a configured size ceiling.
func Compile(opts Options) (*Compiled, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	regexAST, err := syntax.Parse(opts.Pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	regexAST = regexAST.Simplify()

	tree, err := ast.Lower(opts.Pattern, regexAST, ast.Options{
		MaxParseTreeSize: opts.MaxParseTreeSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lower pattern: %w", err)
	}

	automaton, err := nfa.Generate(tree, nfa.Config{
		MaxStates:      opts.MaxStates,
		MaxTransitions: opts.MaxTransitions,
		MustAdvance:    opts.MustAdvance,
		Logger:         nfa.NewLogger(opts.Verbose),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate automaton: %w", err)
	}

	return &Compiled{opts: opts, nfa: automaton}, nil
}

// Generate compiles the pattern and writes the automaton tables to the
// configured output file.
func Generate(opts Options) error {
	if opts.OutputFile == "" {
		return fmt.Errorf("invalid options: output file cannot be empty")
	}
	c, err := Compile(opts)
	if err != nil {
		return err
	}
	return c.Generate()
}

// NFA returns the underlying automaton graph.
func (c *Compiled) NFA() *nfa.NFA { return c.nfa }

// Stats returns size and shape information about the automaton.
func (c *Compiled) Stats() Stats {
	return Stats{
		States:         c.nfa.NumStates(),
		Transitions:    c.nfa.NumTransitions(),
		CaptureGroups:  c.nfa.Tree().NumberOfCaptureGroups(),
		PrefixLength:   c.nfa.Tree().WrappedPrefixLength(),
		EntriesAliased: c.nfa.EntriesAliased(),
	}
}

// WriteDot renders the automaton in Graphviz dot format.
func (c *Compiled) WriteDot(w io.Writer) error {
	name := c.opts.Name
	if name == "" {
		name = "nfa"
	}
	return codegen.WriteDot(w, name, c.nfa)
}

// Generate writes the automaton tables as Go source to the output file.
func (c *Compiled) Generate() error {
	gen := codegen.New(c.opts.Package)
	if err := gen.Add(c.opts.Name, c.opts.Pattern, c.nfa); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	if err := gen.Save(c.opts.OutputFile); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}
