package grammar

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

// bailout carries a syntax error up to the entry point
type bailout struct {
	err *source.CompileError
}

func raise(err *source.CompileError) {
	panic(bailout{err})
}

// keywords cannot be used as identifiers
var keywords = map[string]bool{
	"fun": true, "let": true, "return": true, "if": true, "else": true,
	"while": true, "repeat": true, "do": true, "until": true, "try": true,
	"catch": true, "foreach": true, "as": true, "map": true, "struct": true,
	"message": true, "contract": true, "trait": true, "import": true,
	"native": true, "primitive": true, "const": true, "true": true,
	"false": true, "null": true, "initOf": true, "codeOf": true, "asm": true,
}

var functionAttributes = map[string]bool{
	"get": true, "mutates": true, "extends": true, "virtual": true,
	"override": true, "inline": true, "abstract": true,
}

var constantAttributes = map[string]bool{
	"virtual": true, "override": true, "abstract": true,
}

var assignOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"|=": true, "&=": true, "^=": true, "<<=": true, ">>=": true,
	"&&=": true, "||=": true,
}

// binaryLevels lists binary operators from loosest to tightest binding
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

// Parser is a recursive descent parser with arbitrary lookahead
type Parser struct {
	file    *source.File
	lex     *Lexer
	buf     []Token
	prevEnd int // end offset of the last consumed token
}

func NewParser(file *source.File) *Parser {
	return &Parser{file: file, lex: NewLexer(file)}
}

func (p *Parser) run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	fn()
	return nil
}

// ParseModule parses a whole source file
func ParseModule(file *source.File) (*cst.Module, error) {
	p := NewParser(file)
	var m *cst.Module
	err := p.run(func() { m = p.module() })
	return m, err
}

// ParseImports parses only the leading import list of a file
func ParseImports(file *source.File) ([]*cst.Import, error) {
	p := NewParser(file)
	var imports []*cst.Import
	err := p.run(func() { imports = p.imports() })
	return imports, err
}

// ParseExpression parses a single expression spanning the whole input
func ParseExpression(file *source.File) (cst.Expr, error) {
	p := NewParser(file)
	var e cst.Expr
	err := p.run(func() {
		e = p.expression()
		p.expectEOF()
	})
	return e, err
}

// ParseStatement parses a single statement spanning the whole input
func ParseStatement(file *source.File) (cst.Statement, error) {
	p := NewParser(file)
	var s cst.Statement
	err := p.run(func() {
		s = p.statement()
		p.expectEOF()
	})
	return s, err
}

func (p *Parser) peekAt(n int) Token {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lex.NextToken())
	}
	return p.buf[n]
}

func (p *Parser) current() Token {
	return p.peekAt(0)
}

func (p *Parser) next() Token {
	t := p.current()
	p.buf = p.buf[1:]
	p.prevEnd = t.End
	return t
}

// locFrom returns the range from start to the end of the last consumed token
func (p *Parser) locFrom(start int) source.Loc {
	return source.Range(start, p.prevEnd)
}

func (p *Parser) fail(t Token, expected string) {
	raise(source.UnexpectedTokenError(source.Span{File: p.file, Loc: t.Loc()}, expected, t.String()))
}

func (p *Parser) isPunct(value string) bool {
	t := p.current()
	return t.Kind == TokenPunct && t.Value == value
}

func (p *Parser) isWord(value string) bool {
	t := p.current()
	return t.Kind == TokenIdent && t.Value == value
}

func (p *Parser) peekPunct(n int, value string) bool {
	t := p.peekAt(n)
	return t.Kind == TokenPunct && t.Value == value
}

func (p *Parser) peekWord(n int, value string) bool {
	t := p.peekAt(n)
	return t.Kind == TokenIdent && t.Value == value
}

func (p *Parser) accept(value string) bool {
	if p.isPunct(value) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(value string) Token {
	if !p.isPunct(value) {
		p.fail(p.current(), fmt.Sprintf("%q", value))
	}
	return p.next()
}

// expectCloseAngle consumes a '>' and splits a '>>' token when generics nest
func (p *Parser) expectCloseAngle() Token {
	t := p.current()
	if t.Kind == TokenPunct && strings.HasPrefix(t.Value, ">") && t.Value != ">" {
		p.buf[0] = Token{Kind: TokenPunct, Value: t.Value[1:], Start: t.Start + 1, End: t.End}
		p.prevEnd = t.Start + 1
		return Token{Kind: TokenPunct, Value: ">", Start: t.Start, End: t.Start + 1}
	}
	return p.expect(">")
}

func (p *Parser) expectWord(value string) Token {
	if !p.isWord(value) {
		p.fail(p.current(), fmt.Sprintf("%q", value))
	}
	return p.next()
}

func (p *Parser) expectEOF() {
	if t := p.current(); t.Kind != TokenEOF {
		p.fail(t, "end of input")
	}
}

func (p *Parser) id() *cst.Id {
	t := p.current()
	if t.Kind != TokenIdent || keywords[t.Value] {
		p.fail(t, "identifier")
	}
	p.next()
	return &cst.Id{Name: t.Value, Loc: t.Loc()}
}

func isTypeName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) typeId() *cst.TypeId {
	t := p.current()
	if t.Kind != TokenIdent || !isTypeName(t.Value) {
		p.fail(t, "type name")
	}
	p.next()
	return &cst.TypeId{Name: t.Value, Loc: t.Loc()}
}

func (p *Parser) stringLiteral() *cst.StringLiteral {
	t := p.current()
	if t.Kind != TokenString {
		p.fail(t, "string")
	}
	p.next()
	return &cst.StringLiteral{Value: t.Value, Loc: t.Loc()}
}

// commaList parses `item ("," item)* ","?` until the closing punctuation
func commaList[T any](p *Parser, closing string, item func() T) []T {
	var out []T
	for !p.isPunct(closing) {
		out = append(out, item())
		if !p.accept(",") {
			break
		}
	}
	return out
}

func (p *Parser) module() *cst.Module {
	m := &cst.Module{Imports: p.imports()}
	for p.current().Kind != TokenEOF {
		m.Items = append(m.Items, p.moduleItem())
	}
	m.Loc = source.Range(0, len(p.file.Code))
	return m
}

func (p *Parser) imports() []*cst.Import {
	var out []*cst.Import
	for p.isWord("import") {
		start := p.next()
		path := p.stringLiteral()
		p.expect(";")
		out = append(out, &cst.Import{Path: path, Loc: p.locFrom(start.Start)})
	}
	return out
}
