package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "root", want: "root\n"},
		{name: "depth 1", depth: 1, format: "rule", want: "  rule\n"},
		{name: "depth 2", depth: 2, format: "decl", want: "    decl\n"},
		{name: "with formatting", depth: 1, format: "atrule %s (%d nodes)", args: []any{"@media", 3}, want: "  atrule @media (3 nodes)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{name: "plain", depth: 0, label: "value", value: "#05878a", want: "value: \"#05878a\"\n"},
		{name: "empty value", depth: 1, label: "params", value: "", want: "  params: \"\"\n"},
		{name: "newline is escaped", depth: 1, label: "comment", value: "/* a\nb */", want: "  comment: \"/* a\\nb */\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Accumulates(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "root")
	tw.TextBlock(1, "selector", "a")
	want := "root\n  selector: \"a\"\n"
	if got := tw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
