// Package builder converts the concrete parse tree into the validated AST.
//
// Every rule the grammar cannot express is enforced here: reserved names,
// wildcard placement, literal well-formedness, attribute combinations and
// the shape of types, receivers and imports. Building stops at the first
// error unless a custom ErrorHandler is installed.
package builder

import (
	"math/big"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/grammar"
	"github.com/xyproto/tactc/internal/literal"
	"github.com/xyproto/tactc/internal/source"
)

// Builder holds the per-file state of one AST construction.
type Builder struct {
	file    *source.File
	onError ErrorHandler
}

// Option configures a Builder
type Option func(*Builder)

// WithErrorHandler replaces the default fail-fast handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Builder) {
		b.onError = h
	}
}

// New creates a builder for nodes parsed from file.
func New(file *source.File, opts ...Option) *Builder {
	b := &Builder{file: file, onError: panicHandler}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			bail, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = bail.err
		}
	}()
	fn()
	return nil
}

// Module builds a whole module.
func (b *Builder) Module(m *cst.Module) (*ast.Module, error) {
	var out *ast.Module
	err := b.run(func() {
		out = &ast.Module{File: b.file}
		for _, imp := range m.Imports {
			out.Imports = append(out.Imports, b.importNode(imp))
		}
		for _, item := range m.Items {
			out.Items = append(out.Items, b.moduleItem(item))
		}
	})
	return out, err
}

// Imports builds only the import list.
func (b *Builder) Imports(list []*cst.Import) ([]*ast.Import, error) {
	var out []*ast.Import
	err := b.run(func() {
		for _, imp := range list {
			out = append(out, b.importNode(imp))
		}
	})
	return out, err
}

// Expression builds a single expression.
func (b *Builder) Expression(e cst.Expr) (ast.Expression, error) {
	var out ast.Expression
	err := b.run(func() { out = b.expr(e) })
	return out, err
}

// Statement builds a single statement.
func (b *Builder) Statement(s cst.Statement) (ast.Statement, error) {
	var out ast.Statement
	err := b.run(func() { out = b.stmt(s) })
	return out, err
}

// ParseModule parses and builds a source file in one step.
func ParseModule(file *source.File, opts ...Option) (*ast.Module, error) {
	tree, err := grammar.ParseModule(file)
	if err != nil {
		return nil, err
	}
	return New(file, opts...).Module(tree)
}

// ParseImports parses and builds the import list of a source file.
func ParseImports(file *source.File, opts ...Option) ([]*ast.Import, error) {
	tree, err := grammar.ParseImports(file)
	if err != nil {
		return nil, err
	}
	return New(file, opts...).Imports(tree)
}

// ParseExpression parses and builds a standalone expression.
func ParseExpression(file *source.File, opts ...Option) (ast.Expression, error) {
	tree, err := grammar.ParseExpression(file)
	if err != nil {
		return nil, err
	}
	return New(file, opts...).Expression(tree)
}

// ParseStatement parses and builds a standalone statement.
func ParseStatement(file *source.File, opts ...Option) (ast.Statement, error) {
	tree, err := grammar.ParseStatement(file)
	if err != nil {
		return nil, err
	}
	return New(file, opts...).Statement(tree)
}

func (b *Builder) span(loc source.Loc) source.Span {
	return source.Span{File: b.file, Loc: loc}
}

func (b *Builder) fail(loc source.Loc, message string) {
	b.onError(source.SyntaxError(b.span(loc), message))
}

// id validates a name in a position where "_" is not allowed
func (b *Builder) id(name string, loc source.Loc) *ast.Id {
	if err := literal.CheckIdent(name); err != nil {
		b.fail(loc, err.Error())
	}
	return &ast.Id{Text: name, Loc: b.span(loc)}
}

// optionalId validates a binder, where "_" discards the value
func (b *Builder) optionalId(name string, loc source.Loc) ast.OptionalId {
	if err := literal.CheckPrefix(name); err != nil {
		b.fail(loc, err.Error())
	}
	if name == literal.Wildcard {
		return &ast.Wildcard{Loc: b.span(loc)}
	}
	return &ast.Id{Text: name, Loc: b.span(loc)}
}

func (b *Builder) ident(n *cst.Id) *ast.Id {
	return b.id(n.Name, n.Loc)
}

// typeName builds a declared type name, which follows identifier rules
func (b *Builder) typeName(n *cst.TypeId) *ast.Id {
	return b.id(n.Name, n.Loc)
}

func (b *Builder) typeRef(n *cst.TypeId) *ast.TypeId {
	return &ast.TypeId{Text: n.Name, Loc: b.span(n.Loc)}
}

func (b *Builder) number(n *cst.IntegerLiteral) *ast.Number {
	v, err := literal.ParseInteger(int(n.Base), n.Digits)
	if err != nil {
		b.fail(n.Loc, err.Error())
	}
	if v == nil {
		v = big.NewInt(0)
	}
	return &ast.Number{Base: int(n.Base), Value: v, Loc: b.span(n.Loc)}
}

func (b *Builder) str(n *cst.StringLiteral) *ast.String {
	value, err := literal.Unescape(n.Value)
	if err != nil {
		b.fail(n.Loc, err.Error())
	}
	return &ast.String{Value: value, Loc: b.span(n.Loc)}
}

func (b *Builder) funcId(n *cst.FuncId) *ast.FuncId {
	if err := literal.CheckFuncId(n.Name); err != nil {
		b.fail(n.Loc, err.Error())
	}
	return &ast.FuncId{Text: n.Accessor + n.Name, Loc: b.span(n.Loc)}
}

func (b *Builder) importNode(n *cst.Import) *ast.Import {
	text := b.str(n.Path).Value
	return &ast.Import{Path: b.importPath(text, n.Loc), Loc: b.span(n.Loc)}
}
