package main

import (
	"testing"
)

func TestArrayFlagsString(t *testing.T) {
	tests := []struct {
		name     string
		flags    arrayFlags
		expected string
	}{
		{
			name:     "empty",
			flags:    arrayFlags{},
			expected: "",
		},
		{
			name:     "single",
			flags:    arrayFlags{`(\w+)@(\w+)`},
			expected: `(\w+)@(\w+)`,
		},
		{
			name:     "multiple",
			flags:    arrayFlags{`(\w+)@(\w+)`, "a+b", "^abc$"},
			expected: `(\w+)@(\w+), a+b, ^abc$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.flags.String()
			if result != tt.expected {
				t.Errorf("String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestArrayFlagsSet(t *testing.T) {
	var flags arrayFlags

	if err := flags.Set("a+b"); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if len(flags) != 1 || flags[0] != "a+b" {
		t.Errorf("Set() = %v, want [\"a+b\"]", flags)
	}

	if err := flags.Set("^abc$"); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if len(flags) != 2 || flags[1] != "^abc$" {
		t.Errorf("Set() = %v, want [\"a+b\", \"^abc$\"]", flags)
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "no patterns",
			args: []string{},
		},
		{
			name: "output without package",
			args: []string{"-pattern", "a+b", "-name", "Test", "-output", "out.go"},
		},
		{
			name: "output without matching names",
			args: []string{"-pattern", "a+b", "-output", "out.go", "-package", "x"},
		},
		{
			name: "dot with multiple patterns",
			args: []string{"-pattern", "a+b", "-pattern", "c*d", "-dot", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args); err == nil {
				t.Errorf("run(%v) = nil, want error", tt.args)
			}
		})
	}
}
