// Package grammar turns source text into the concrete parse tree.
package grammar

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

// TokenKind classifies tokens
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenString
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenString:
		return "string"
	default:
		return "punctuation"
	}
}

// Token is a lexed token. Value holds the identifier, the operator, the raw
// string body, or the integer digits without their base prefix.
type Token struct {
	Kind  TokenKind
	Value string
	Base  cst.Base
	Start int
	End   int
}

func (t Token) Loc() source.Loc {
	return source.Range(t.Start, t.End)
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of file"
	case TokenString:
		return fmt.Sprintf("string %q", t.Value)
	case TokenInt:
		return "integer " + t.Base.Prefix() + t.Value
	}
	return fmt.Sprintf("%q", t.Value)
}

// Operators, longest first
var operators = []string{
	"<<=", ">>=", "&&=", "||=",
	"!!", "==", "!=", "<=", ">=", "<<", ">>", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "->", "..",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "<", ">", "=",
	"?", ":", ";", ",", ".", "(", ")", "{", "}", "@",
}

// Lexer produces tokens on demand
type Lexer struct {
	file *source.File
	src  string
	pos  int
}

func NewLexer(file *source.File) *Lexer {
	return &Lexer{file: file, src: file.Code}
}

func (l *Lexer) fail(start, end int, format string, args ...any) {
	raise(source.SyntaxError(source.Span{File: l.file, Loc: source.Range(start, end)}, fmt.Sprintf(format, args...)))
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// skipSpace skips whitespace and comments
func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch {
		case isSpace(l.src[l.pos]):
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				l.fail(l.pos, l.pos+2, "unterminated block comment")
			}
			l.pos += end + 4
		default:
			return
		}
	}
}

func (l *Lexer) NextToken() Token {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Start: start, End: start}
	}
	ch := l.src[l.pos]

	if ch == '"' {
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			if l.src[l.pos] == '\n' {
				l.fail(start, l.pos, "unterminated string literal")
			}
			if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
				l.pos += 2
			} else {
				l.pos++
			}
		}
		if l.pos >= len(l.src) {
			l.fail(start, l.pos, "unterminated string literal")
		}
		l.pos++
		return Token{Kind: TokenString, Value: l.src[start+1 : l.pos-1], Start: start, End: l.pos}
	}

	if isDigit(ch) {
		return l.number()
	}

	if isLetter(ch) {
		for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}
		return Token{Kind: TokenIdent, Value: l.src[start:l.pos], Start: start, End: l.pos}
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			return Token{Kind: TokenPunct, Value: op, Start: start, End: l.pos}
		}
	}
	l.fail(start, start+1, "unexpected character %q", ch)
	return Token{}
}

func (l *Lexer) number() Token {
	start := l.pos
	base := cst.Dec
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X':
			base = cst.Hex
		case 'b', 'B':
			base = cst.Bin
		case 'o', 'O':
			base = cst.Oct
		}
	}
	if base != cst.Dec {
		l.pos += 2
	}
	digitsStart := l.pos
	for l.pos < len(l.src) && (isDigitOf(l.src[l.pos], base) || l.src[l.pos] == '_') {
		l.pos++
	}
	digits := l.src[digitsStart:l.pos]
	if digits == "" || strings.HasPrefix(digits, "_") || strings.HasSuffix(digits, "_") || strings.Contains(digits, "__") {
		l.fail(start, l.pos, "malformed integer literal")
	}
	if l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
		l.fail(start, l.pos+1, "invalid digit in integer literal")
	}
	return Token{Kind: TokenInt, Value: digits, Base: base, Start: start, End: l.pos}
}

func isDigitOf(ch byte, base cst.Base) bool {
	switch base {
	case cst.Bin:
		return ch == '0' || ch == '1'
	case cst.Oct:
		return ch >= '0' && ch <= '7'
	case cst.Hex:
		return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
	}
	return isDigit(ch)
}

// RawBlock scans from just after an opening '{' to its matching '}' and
// returns the text in between. Nested braces are balanced.
func (l *Lexer) RawBlock(from int) (string, int) {
	depth := 1
	for i := from; i < len(l.src); i++ {
		switch l.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				l.pos = i + 1
				return l.src[from:i], i
			}
		}
	}
	l.fail(from-1, from, "unterminated block")
	return "", 0
}

// RawParen scans from just after '(' to the next ')'.
func (l *Lexer) RawParen(from int) (string, int) {
	end := strings.IndexByte(l.src[from:], ')')
	if end < 0 {
		l.fail(from-1, from, "unterminated parenthesis")
	}
	l.pos = from + end + 1
	return l.src[from : from+end], from + end
}
