// Package imports models import paths and resolves them to files.
package imports

import (
	"strings"
)

// Language is the language of an imported file.
type Language int

const (
	LangTact Language = iota
	LangFunC
)

func (l Language) String() string {
	if l == LangFunC {
		return "func"
	}
	return "tact"
}

// Kind tells whether an import is relative to the importer or to the standard library.
type Kind int

const (
	KindRelative Kind = iota
	KindStdlib
)

// StdlibPrefix marks standard library imports.
const StdlibPrefix = "@stdlib/"

// Path is a normalized relative path: StepsUp leading ".." followed by Segments.
type Path struct {
	StepsUp  int
	Segments []string
}

// EmptyPath is the path used when an import could not be parsed.
var EmptyPath = Path{}

// FromString normalizes a '/' separated path, folding "." and "..".
func FromString(raw string) Path {
	var p Path
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(p.Segments) > 0 {
				p.Segments = p.Segments[:len(p.Segments)-1]
			} else {
				p.StepsUp++
			}
		default:
			p.Segments = append(p.Segments, seg)
		}
	}
	return p
}

func (p Path) String() string {
	parts := make([]string, 0, p.StepsUp+len(p.Segments))
	for i := 0; i < p.StepsUp; i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, p.Segments...)
	if p.StepsUp == 0 {
		return "./" + strings.Join(parts, "/")
	}
	return strings.Join(parts, "/")
}

// ImportPath is a parsed import.
type ImportPath struct {
	Path     Path
	Kind     Kind
	Language Language
}

func (ip ImportPath) String() string {
	if ip.Kind == KindStdlib {
		return StdlibPrefix + strings.Join(ip.Path.Segments, "/")
	}
	return ip.Path.String()
}

// DetectLanguage returns the language implied by the file extension, if any.
func DetectLanguage(path string) (Language, bool) {
	switch {
	case strings.HasSuffix(path, ".fc"), strings.HasSuffix(path, ".func"):
		return LangFunC, true
	case strings.HasSuffix(path, ".tact"):
		return LangTact, true
	}
	return LangTact, false
}

// GuessExtension appends ".tact" to paths without a known extension.
func GuessExtension(path string) (string, Language) {
	if lang, ok := DetectLanguage(path); ok {
		return path, lang
	}
	return path + ".tact", LangTact
}
