package source

import (
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		a, b Loc
		want Loc
	}{
		{Range(0, 3), Range(5, 9), Range(0, 9)},
		{Range(5, 9), Range(0, 3), Range(0, 9)},
		{Range(2, 4), Range(3, 4), Range(2, 4)},
		{At(7), Range(1, 2), Range(1, 7)},
	}
	for _, tt := range tests {
		if got := Merge(tt.a, tt.b); got != tt.want {
			t.Errorf("Merge(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPosition(t *testing.T) {
	f := NewFile("a.tact", "ab\ncd\n\nef", OriginUser)
	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{1, 1}},
		{1, Position{1, 2}},
		{3, Position{2, 1}},
		{6, Position{3, 1}},
		{8, Position{4, 2}},
		{100, Position{4, 3}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.offset); got != tt.want {
			t.Errorf("Position(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
	if got := f.Line(2); got != "cd" {
		t.Errorf("Line(2) = %q, want %q", got, "cd")
	}
	if got := f.Line(9); got != "" {
		t.Errorf("Line(9) = %q, want empty", got)
	}
}

func TestCompileErrorFormat(t *testing.T) {
	f := NewFile("main.tact", "let __tact_x = 1;\n", OriginUser)
	err := SyntaxError(Span{File: f, Loc: Range(4, 12)}, "reserved prefix")
	if got, want := err.Error(), "main.tact:1:5: reserved prefix"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	out := err.Format(false)
	for _, want := range []string{"error: reserved prefix", "--> main.tact:1:5", "1 | let __tact_x = 1;", "    ^^^^^^^^"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() = %q, missing %q", out, want)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("Format(false) contains color codes")
	}
	if !strings.Contains(err.Format(true), "\033[1;31m") {
		t.Errorf("Format(true) has no color codes")
	}
}
