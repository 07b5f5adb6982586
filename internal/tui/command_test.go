package tui

import (
	"slices"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs []string
	}{
		{"", "", nil},
		{"quit", "quit", []string{}},
		{" Q ", "quit", []string{}},
		{"search  senior go ", "search", []string{"senior", "go"}},
		{"new cand-1 job-9", "new", []string{"cand-1", "job-9"}},
		{"h", "help", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseCommand(tt.input)
			if got.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Name, tt.wantName)
			}
			if !slices.Equal(got.Args, tt.wantArgs) {
				t.Errorf("args = %q, want %q", got.Args, tt.wantArgs)
			}
		})
	}
}

func TestCommandRest(t *testing.T) {
	c := ParseCommand("search remote  golang")
	if got := c.Rest(); got != "remote golang" {
		t.Errorf("Rest() = %q", got)
	}
}
