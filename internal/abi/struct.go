package abi

import (
	"strings"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/types"
)

// StructFunctions are available on every struct and message type
var StructFunctions = map[string]*Function{
	"toCell": {
		Name: "toCell",
		resolve: func(p *types.Program, args []types.Ref, loc source.Span) (types.Ref, error) {
			if len(args) != 1 {
				return types.Ref{}, semantic(loc, "toCell() expects no arguments")
			}
			if args[0].Kind == types.RefType {
				return types.Ref{}, semantic(loc, "toCell() needs a value of type "+args[0].Name+", not the type itself")
			}
			if !isStruct(p, args[0]) {
				return types.Ref{}, semantic(loc, "toCell() is implemented only a struct type")
			}
			return types.Named("Cell"), nil
		},
		generate: func(w Lowering, args []types.Ref, exprs []ast.Expression, loc source.Span) (string, error) {
			if len(args) != 1 || args[0].Kind != types.RefNamed {
				return "", semantic(loc, "toCell() expects no arguments")
			}
			return w.Used(ops.WriterCell(args[0].Name)) + "(" + expressions(w, exprs) + ")", nil
		},
	},

	"fromCell": fromFunction("fromCell", "Cell", ".begin_parse()"),

	"fromSlice": fromFunction("fromSlice", "Slice", ""),
}

// fromFunction builds S.fromCell and S.fromSlice, which differ only in the
// argument type and in how the slice is obtained from it
func fromFunction(name, argType, toSlice string) *Function {
	return &Function{
		Name: name,
		resolve: func(p *types.Program, args []types.Ref, loc source.Span) (types.Ref, error) {
			if len(args) != 2 {
				return types.Ref{}, semantic(loc, name+"() expects one argument")
			}
			if args[0].Kind != types.RefType {
				return types.Ref{}, semantic(loc, name+"() is called on a type, not on a value of type "+args[0].String())
			}
			if !isStruct(p, args[0]) {
				return types.Ref{}, semantic(loc, name+"() is implemented only for struct types")
			}
			if !args[1].Is(argType) {
				return types.Ref{}, semantic(loc, name+"() expects a "+argType+" as an argument")
			}
			return types.Named(args[0].Name), nil
		},
		generate: func(w Lowering, args []types.Ref, exprs []ast.Expression, loc source.Span) (string, error) {
			if len(args) != 2 || len(exprs) != 2 {
				return "", semantic(loc, name+"() expects one argument")
			}
			return w.Used(ops.ReaderNonModifying(args[0].Name)) + "(" + w.Expression(exprs[1]) + toSlice + ")", nil
		},
	}
}

func isStruct(p *types.Program, t types.Ref) bool {
	if (t.Kind != types.RefNamed && t.Kind != types.RefType) || t.Optional {
		return false
	}
	d, ok := p.Lookup(t.Name)
	return ok && d.IsStruct()
}

func expressions(w Lowering, exprs []ast.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = w.Expression(e)
	}
	return strings.Join(parts, ", ")
}
