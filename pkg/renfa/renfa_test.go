package renfa

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KromDaniel/renfa/internal/nfa"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name:    "empty pattern",
			opts:    Options{},
			wantErr: true,
		},
		{
			name:    "pattern only",
			opts:    Options{Pattern: "a+"},
			wantErr: false,
		},
		{
			name:    "output without name",
			opts:    Options{Pattern: "a+", OutputFile: "out.go", Package: "x"},
			wantErr: true,
		},
		{
			name:    "output without package",
			opts:    Options{Pattern: "a+", OutputFile: "out.go", Name: "Test"},
			wantErr: true,
		},
		{
			name:    "full output options",
			opts:    Options{Pattern: "a+", OutputFile: "out.go", Name: "Test", Package: "x"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	if _, err := Compile(Options{Pattern: "a(b"}); err == nil {
		t.Error("Compile accepted an unbalanced pattern")
	}
}

func TestCompileStats(t *testing.T) {
	c, err := Compile(Options{Pattern: `(\d)([a-z])`})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	stats := c.Stats()
	if stats.CaptureGroups != 3 {
		t.Errorf("CaptureGroups = %d, want 3", stats.CaptureGroups)
	}
	if stats.States == 0 || stats.Transitions == 0 {
		t.Errorf("empty stats: %+v", stats)
	}
	if !stats.EntriesAliased {
		t.Error("entries not aliased for caret-free pattern")
	}

	c, err = Compile(Options{Pattern: "^abc"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if c.Stats().EntriesAliased {
		t.Error("entries aliased despite caret")
	}
}

func TestCompileExplosionSurfaces(t *testing.T) {
	_, err := Compile(Options{Pattern: "(?:ab|cd){0,200}", MaxStates: 100})
	var exp *nfa.ExplosionError
	if !errors.As(err, &exp) {
		t.Fatalf("err = %v, want ExplosionError", err)
	}
	if !exp.IsStateExplosion() {
		t.Errorf("explosion kind = %q", exp.Kind)
	}
}

func TestGenerateWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo_nfa.go")
	err := Generate(Options{
		Pattern:    "(a)b",
		Name:       "Demo",
		Package:    "demopkg",
		OutputFile: out,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	src := string(data)
	if !strings.Contains(src, "package demopkg") {
		t.Error("output missing package clause")
	}
	if !strings.Contains(src, "var DemoStates") {
		t.Error("output missing state table")
	}
}

func TestGenerateRequiresOutputFile(t *testing.T) {
	if err := Generate(Options{Pattern: "a"}); err == nil {
		t.Error("Generate accepted empty output file")
	}
}

func TestWriteDot(t *testing.T) {
	c, err := Compile(Options{Pattern: "a+", Name: "Plus"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	var buf bytes.Buffer
	if err := c.WriteDot(&buf); err != nil {
		t.Fatalf("WriteDot failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "digraph Plus {") {
		t.Errorf("dot output = %q...", buf.String()[:30])
	}
}

func TestAnalyzeLabels(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"abc", nil},
		{`(\w+)`, []string{"Captures"}},
		{"^a$", []string{"AnchoredEnd", "AnchoredStart"}},
		{"(a)$", []string{"AnchoredEnd", "Captures"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			result, err := Analyze(tt.pattern)
			if err != nil {
				t.Fatalf("Analyze(%q) failed: %v", tt.pattern, err)
			}
			if !reflect.DeepEqual(result.FeatureLabels, tt.want) {
				t.Errorf("FeatureLabels = %v, want %v", result.FeatureLabels, tt.want)
			}
		})
	}
}

func TestCompileMustAdvance(t *testing.T) {
	c, err := Compile(Options{Pattern: "a*", MustAdvance: true})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	lb := c.NFA().InitialLoopBack()
	if lb.Source() != lb.Target() {
		t.Error("initial loop back is not a self loop")
	}
	if lb.Source().MustAdvance() {
		t.Error("loop back lives on a must-advance state")
	}
}
