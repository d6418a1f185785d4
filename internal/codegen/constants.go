// Package codegen emits Go source embedding a generated automaton as static
// tables, plus a Graphviz view for debugging.
package codegen

import "fmt"

// Identifier suffixes used in generated code
const (
	StateSuffix             = "State"
	TransitionSuffix        = "Transition"
	StatesVarSuffix         = "States"
	AnchoredEntriesSuffix   = "AnchoredEntries"
	UnAnchoredEntriesSuffix = "UnAnchoredEntries"
	NumGroupsSuffix         = "NumCaptureGroups"
)

// StateName returns the node label used in the Graphviz output.
func StateName(id int) string {
	return fmt.Sprintf("s%d", id)
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}
