package codegen

import (
	"fmt"
	"io"
	"unicode"

	"github.com/KromDaniel/renfa/internal/charset"
	"github.com/KromDaniel/renfa/internal/nfa"
	"github.com/dave/jennifer/jen"
)

// Generator emits automata as static Go tables. Several automata can share
// one output file; each Add contributes a per-name state type, transition
// type and table variables.
type Generator struct {
	file *jen.File
}

// New creates a generator writing into a fresh file of the given package.
func New(pkg string) *Generator {
	return &Generator{file: jen.NewFile(pkg)}
}

// Add emits the tables for one automaton under the given name prefix.
func (g *Generator) Add(name, pattern string, n *nfa.NFA) error {
	if err := validateName(name); err != nil {
		return fmt.Errorf("invalid automaton name: %w", err)
	}
	name = UpperFirst(name)

	g.file.Comment(fmt.Sprintf("Code generated by renfa for pattern: %s", pattern))
	g.file.Comment("DO NOT EDIT.")
	g.file.Line()

	g.emitTypes(name)
	g.emitStates(name, n)
	g.emitEntries(name, n)
	return nil
}

// Save writes the accumulated file to disk, gofmt-formatted.
func (g *Generator) Save(path string) error {
	if err := g.file.Save(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// Render writes the accumulated file to w, gofmt-formatted.
func (g *Generator) Render(w io.Writer) error {
	if err := g.file.Render(w); err != nil {
		return fmt.Errorf("failed to render file: %w", err)
	}
	return nil
}

func (g *Generator) emitTypes(name string) {
	trType := name + TransitionSuffix
	stType := name + StateSuffix

	g.file.Commentf("%s is one edge of the %s automaton. Ranges holds", trType, name)
	g.file.Comment("flattened lo,hi code-point pairs; an empty slice gates on any input.")
	g.file.Type().Id(trType).Struct(
		jen.Id("Target").Int(),
		jen.Id("Ranges").Index().Rune(),
		jen.Id("Updates").Index().Int(),
		jen.Id("Clears").Index().Int(),
		jen.Id("LastGroup").Int(),
	)
	g.file.Line()

	g.file.Type().Id(stType).Struct(
		jen.Id("Successors").Index().Id(trType),
		jen.Id("AnchoredInitial").Bool(),
		jen.Id("UnAnchoredInitial").Bool(),
		jen.Id("AnchoredFinal").Bool(),
		jen.Id("UnAnchoredFinal").Bool(),
		jen.Id("MustAdvance").Bool(),
	)
	g.file.Line()
}

func (g *Generator) emitStates(name string, n *nfa.NFA) {
	stType := name + StateSuffix

	g.file.Const().Id(name + NumGroupsSuffix).Op("=").
		Lit(n.Tree().NumberOfCaptureGroups())
	g.file.Line()

	states := make([]jen.Code, 0, n.NumStates())
	for _, s := range n.States() {
		states = append(states, g.stateLiteral(name, s))
	}
	g.file.Var().Id(name+StatesVarSuffix).Op("=").
		Index().Id(stType).Values(states...)
	g.file.Line()
}

func (g *Generator) stateLiteral(name string, s *nfa.State) jen.Code {
	d := jen.Dict{}
	if len(s.Successors()) > 0 {
		succ := make([]jen.Code, 0, len(s.Successors()))
		for _, t := range s.Successors() {
			succ = append(succ, transitionLiteral(t))
		}
		d[jen.Id("Successors")] = jen.Index().Id(name + TransitionSuffix).Values(succ...)
	}
	if s.IsAnchoredInitial() {
		d[jen.Id("AnchoredInitial")] = jen.True()
	}
	if s.IsUnAnchoredInitial() {
		d[jen.Id("UnAnchoredInitial")] = jen.True()
	}
	if s.IsAnchoredFinal() {
		d[jen.Id("AnchoredFinal")] = jen.True()
	}
	if s.IsUnAnchoredFinal() {
		d[jen.Id("UnAnchoredFinal")] = jen.True()
	}
	if s.MustAdvance() {
		d[jen.Id("MustAdvance")] = jen.True()
	}
	return jen.Values(d)
}

func transitionLiteral(t *nfa.Transition) jen.Code {
	d := jen.Dict{
		jen.Id("Target"): jen.Lit(t.Target().ID()),
	}
	// the full set stays implicit (empty Ranges) to keep tables small
	if cs := t.CodePointSet(); !isFullSet(cs) {
		ranges := make([]jen.Code, 0, cs.RangeCount()*2)
		for i := 0; i < cs.RangeCount(); i++ {
			lo, hi := cs.RangeAt(i)
			ranges = append(ranges, jen.LitRune(lo), jen.LitRune(hi))
		}
		d[jen.Id("Ranges")] = jen.Index().Rune().Values(ranges...)
	}
	gb := t.GroupBoundaries()
	if idx := gb.UpdatedIndices(); len(idx) > 0 {
		d[jen.Id("Updates")] = intSlice(idx)
	}
	if idx := gb.ClearedIndices(); len(idx) > 0 {
		d[jen.Id("Clears")] = intSlice(idx)
	}
	d[jen.Id("LastGroup")] = jen.Lit(gb.LastGroup())
	return jen.Values(d)
}

func isFullSet(cs charset.CodePointSet) bool {
	if cs.RangeCount() != 1 {
		return false
	}
	lo, hi := cs.RangeAt(0)
	return lo == 0 && hi == unicode.MaxRune
}

func intSlice(values []int) jen.Code {
	lits := make([]jen.Code, 0, len(values))
	for _, v := range values {
		lits = append(lits, jen.Lit(v))
	}
	return jen.Index().Int().Values(lits...)
}

func (g *Generator) emitEntries(name string, n *nfa.NFA) {
	anchored := make([]jen.Code, 0, len(n.AnchoredEntries()))
	for _, t := range n.AnchoredEntries() {
		anchored = append(anchored, jen.Lit(t.Target().ID()))
	}
	unAnchored := make([]jen.Code, 0, len(n.UnAnchoredEntries()))
	for _, t := range n.UnAnchoredEntries() {
		unAnchored = append(unAnchored, jen.Lit(t.Target().ID()))
	}
	g.file.Var().Id(name+AnchoredEntriesSuffix).Op("=").
		Index().Int().Values(anchored...)
	g.file.Var().Id(name+UnAnchoredEntriesSuffix).Op("=").
		Index().Int().Values(unAnchored...)
	g.file.Line()
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("name %q is not a valid Go identifier", name)
	}
	return nil
}
