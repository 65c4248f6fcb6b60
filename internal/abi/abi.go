// Package abi implements the functions the compiler provides on structs and
// maps. Each one is resolved against the argument types at the call site and
// then lowered to FunC by the code generator.
package abi

import (
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/types"
)

// Lowering is the part of the code generator an ABI function writes through
type Lowering interface {
	// Used records that the function being generated calls name
	Used(name string) string
	// Expression lowers a checked expression
	Expression(e ast.Expression) string
}

// Function is a built-in method. The receiver counts as the first argument
// in both steps.
type Function struct {
	Name     string
	resolve  func(p *types.Program, args []types.Ref, loc source.Span) (types.Ref, error)
	generate func(w Lowering, args []types.Ref, exprs []ast.Expression, loc source.Span) (string, error)
}

// Resolve returns the result type of a call or a located error
func (f *Function) Resolve(p *types.Program, args []types.Ref, loc source.Span) (types.Ref, error) {
	return f.resolve(p, args, loc)
}

// Generate returns the FunC expression for a resolved call
func (f *Function) Generate(w Lowering, args []types.Ref, exprs []ast.Expression, loc source.Span) (string, error) {
	return f.generate(w, args, exprs, loc)
}

// Builtins adapts a function table for the type checker
func Builtins(table map[string]*Function) map[string]types.Builtin {
	out := make(map[string]types.Builtin, len(table))
	for name, f := range table {
		out[name] = f
	}
	return out
}

func semantic(loc source.Span, message string) error {
	return source.SemanticError(loc, message)
}
