package abi

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/dict"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/types"
)

// AddressBits is the size of a standard internal address used as a key
const AddressBits = 267

// Layout is how a map type is stored in a dictionary
type Layout struct {
	Key       dict.KeyEncoding
	KeyBits   int
	Value     dict.ValueEncoding
	ValueBits int // only for int and uint values
	ValueType types.Ref
	KeyType   types.Ref
}

// Width returns the extra value width argument of a matrix call, if any
func (l Layout) Width() string {
	if l.Value.HasWidth() {
		return ", " + strconv.Itoa(l.ValueBits)
	}
	return ""
}

// MapLayout derives the dictionary layout of a map type
func MapLayout(t types.Ref) (Layout, error) {
	if t.Kind != types.RefMap {
		return Layout{}, errors.Errorf("%s is not a map", t)
	}
	l := Layout{KeyType: types.Named(t.Key), ValueType: types.Named(t.Value)}

	switch t.Key {
	case "Int":
		format, err := types.ParseFormat(t.KeyAs)
		if err != nil {
			return Layout{}, err
		}
		l.Key, l.KeyBits = dict.KeyInt, format.Width
		if format.Name == "uint" {
			l.Key = dict.KeyUint
		}
	case "Address":
		l.Key, l.KeyBits = dict.KeySlice, AddressBits
	default:
		return Layout{}, errors.Errorf("map keys of type %s are not supported", t.Key)
	}

	switch t.Value {
	case "Int":
		format, err := types.ParseFormat(t.ValueAs)
		if err != nil {
			return Layout{}, err
		}
		v, ok := dict.ParseValue(format.Name)
		if !ok {
			return Layout{}, errors.Errorf("unsupported map value format %s", format)
		}
		l.Value, l.ValueBits = v, format.Width
	case "Bool":
		l.Value, l.ValueBits = dict.ValueInt, 1
	case "Cell":
		l.Value = dict.ValueCell
	case "Address":
		l.Value = dict.ValueSlice
	default:
		return Layout{}, errors.Errorf("maps with %s values are not supported", t.Value)
	}
	return l, nil
}

type mapOp struct {
	name     string
	params   int  // arguments after the receiver
	withVal  bool // second argument is a value
	mutating bool
	result   func(t types.Ref) types.Ref
	emit     func(w Lowering, l Layout, self string, args []string) string
}

// MapFunctions are available on every map type
var MapFunctions = map[string]*Function{}

func init() {
	optionalValue := func(t types.Ref) types.Ref { return types.Optional(t.Value) }
	boolean := func(types.Ref) types.Ref { return types.Named("Bool") }
	void := func(types.Ref) types.Ref { return types.Void }

	for _, op := range []mapOp{
		{
			name: "set", params: 2, withVal: true, mutating: true, result: void,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return self + "~" + w.Used(dict.FuncName(dict.OpSet, l.Key, l.Value)) +
					fmt.Sprintf("(%d, %s, %s%s)", l.KeyBits, args[0], args[1], l.Width())
			},
		},
		{
			name: "get", params: 1, result: optionalValue,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return w.Used(dict.FuncName(dict.OpGet, l.Key, l.Value)) +
					fmt.Sprintf("(%s, %d, %s%s)", self, l.KeyBits, args[0], l.Width())
			},
		},
		{
			// deleting is a replace with null that reports whether the key existed
			name: "del", params: 1, mutating: true, result: boolean,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return self + "~" + w.Used(dict.FuncName(dict.OpReplace, l.Key, l.Value)) +
					fmt.Sprintf("(%d, %s, null()%s)", l.KeyBits, args[0], l.Width())
			},
		},
		{
			name: "deleteGet", params: 1, mutating: true, result: optionalValue,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return self + "~" + w.Used(dict.FuncName(dict.OpDeleteGet, l.Key, l.Value)) +
					fmt.Sprintf("(%d, %s%s)", l.KeyBits, args[0], l.Width())
			},
		},
		{
			name: "replace", params: 2, withVal: true, mutating: true, result: boolean,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return self + "~" + w.Used(dict.FuncName(dict.OpReplace, l.Key, l.Value)) +
					fmt.Sprintf("(%d, %s, %s%s)", l.KeyBits, args[0], args[1], l.Width())
			},
		},
		{
			name: "replaceGet", params: 2, withVal: true, mutating: true, result: optionalValue,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return self + "~" + w.Used(dict.FuncName(dict.OpReplaceGet, l.Key, l.Value)) +
					fmt.Sprintf("(%d, %s, %s%s)", l.KeyBits, args[0], args[1], l.Width())
			},
		},
		{
			name: "exists", params: 1, result: boolean,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return w.Used(dict.ExistsName(l.Key)) + fmt.Sprintf("(%s, %d, %s)", self, l.KeyBits, args[0])
			},
		},
		{
			name: "isEmpty", result: boolean,
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return "null?(" + self + ")"
			},
		},
		{
			name: "asCell", result: func(types.Ref) types.Ref { return types.Optional("Cell") },
			emit: func(w Lowering, l Layout, self string, args []string) string {
				return self
			},
		},
	} {
		MapFunctions[op.name] = op.function()
	}
}

func (op mapOp) function() *Function {
	call := op.name + "()"
	return &Function{
		Name: op.name,
		resolve: func(p *types.Program, args []types.Ref, loc source.Span) (types.Ref, error) {
			if len(args) == 0 || args[0].Kind != types.RefMap {
				return types.Ref{}, semantic(loc, call+" is implemented only for maps")
			}
			self := args[0]
			if len(args)-1 != op.params {
				return types.Ref{}, semantic(loc, fmt.Sprintf("%s expects %d arguments, got %d", call, op.params, len(args)-1))
			}
			if op.params > 0 && !types.Assignable(args[1], types.Named(self.Key)) {
				return types.Ref{}, semantic(loc, fmt.Sprintf("%s expects a key of type %s, got %s", call, self.Key, args[1]))
			}
			if op.withVal && !types.Assignable(args[2], types.Optional(self.Value)) {
				return types.Ref{}, semantic(loc, fmt.Sprintf("%s expects a value of type %s, got %s", call, self.Value, args[2]))
			}
			return op.result(self), nil
		},
		generate: func(w Lowering, args []types.Ref, exprs []ast.Expression, loc source.Span) (string, error) {
			l, err := MapLayout(args[0])
			if err != nil {
				return "", source.CodegenError(loc, err.Error())
			}
			if op.mutating && !isPath(exprs[0]) {
				return "", source.CodegenError(loc, call+" can only modify a variable or a field")
			}
			lowered := make([]string, len(exprs)-1)
			for i, e := range exprs[1:] {
				lowered[i] = w.Expression(e)
			}
			return op.emit(w, l, w.Expression(exprs[0]), lowered), nil
		},
	}
}

func isPath(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Id:
		return true
	case *ast.FieldAccess:
		return isPath(n.Aggregate)
	}
	return false
}
