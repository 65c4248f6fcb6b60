// Package source holds source files, locations and the compile error type
// shared by every stage of the compiler.
package source

import (
	"fmt"
	"sort"
	"strings"
)

// Loc is a byte range inside a file, or a synthetic point when Point is set.
type Loc struct {
	Start int
	End   int
	Point bool
}

// Range returns the location [start, end).
func Range(start, end int) Loc {
	return Loc{Start: start, End: end}
}

// At returns a synthetic point location.
func At(pos int) Loc {
	return Loc{Start: pos, End: pos, Point: true}
}

// Empty is the location used by recovery placeholders.
var Empty = Range(0, 0)

// Merge returns the smallest range covering both locations.
func Merge(a, b Loc) Loc {
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	return Range(start, end)
}

func (l Loc) String() string {
	if l.Point {
		return fmt.Sprintf("@%d", l.Start)
	}
	return fmt.Sprintf("%d..%d", l.Start, l.End)
}

// Origin tells whether a file belongs to the user program or the standard library.
type Origin int

const (
	OriginUser Origin = iota
	OriginStdlib
)

func (o Origin) String() string {
	if o == OriginStdlib {
		return "stdlib"
	}
	return "user"
}

// File is a loaded source file.
type File struct {
	Path   string
	Code   string
	Origin Origin

	lineStarts []int
}

// NewFile creates a file and indexes its line starts.
func NewFile(path, code string, origin Origin) *File {
	f := &File{Path: path, Code: code, Origin: origin}
	f.lineStarts = append(f.lineStarts, 0)
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// Position converts a byte offset into a line and column.
func (f *File) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Code) {
		offset = len(f.Code)
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	return Position{Line: line + 1, Column: offset - f.lineStarts[line] + 1}
}

// Line returns the text of the 1-based line n without its newline.
func (f *File) Line(n int) string {
	if n <= 0 || n > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[n-1]
	end := len(f.Code)
	if n < len(f.lineStarts) {
		end = f.lineStarts[n] - 1
	}
	return strings.TrimSuffix(f.Code[start:end], "\r")
}

// Text returns the source text covered by loc.
func (f *File) Text(loc Loc) string {
	if loc.Start < 0 || loc.End > len(f.Code) || loc.Start > loc.End {
		return ""
	}
	return f.Code[loc.Start:loc.End]
}

// Span is a location bound to the file it came from.
type Span struct {
	File *File
	Loc  Loc
}

func (s Span) String() string {
	if s.File == nil {
		return s.Loc.String()
	}
	p := s.File.Position(s.Loc.Start)
	return fmt.Sprintf("%s:%d:%d", s.File.Path, p.Line, p.Column)
}

// Merge returns a span covering both spans. The file of s wins.
func (s Span) Merge(other Span) Span {
	return Span{File: s.File, Loc: Merge(s.Loc, other.Loc)}
}
