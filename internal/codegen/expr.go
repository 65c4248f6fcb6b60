package codegen

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/xyproto/tactc/internal/abi"
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cell"
	"github.com/xyproto/tactc/internal/dict"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/source"
	"github.com/xyproto/tactc/internal/stdlib"
	"github.com/xyproto/tactc/internal/types"
	"github.com/xyproto/tactc/internal/writer"
)

// maxStringBytes is what fits in the data of one cell
const maxStringBytes = 127

// Expression lowers e to a FunC expression. It implements abi.Lowering.
func (g *Generator) Expression(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Number:
		return n.Value.String()
	case *ast.Boolean:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.Null:
		return "null()"
	case *ast.String:
		return g.stringLiteral(n)
	case *ast.Id:
		if k, ok := g.prog.ConstRefs[n]; ok {
			return "(" + g.Expression(k.Value) + ")"
		}
		return g.variable(n.Text, g.prog.TypeOf(n))
	case *ast.FieldAccess:
		if path, ok := g.localPath(n); ok {
			return g.variable(path, g.prog.TypeOf(n))
		}
		d := g.structOf(g.prog.TypeOf(n.Aggregate))
		return g.Used(ops.Getter(d.Name, n.Field.Text)) + "(" + g.Expression(n.Aggregate) + ")"
	case *ast.OpBinary:
		return g.binary(n)
	case *ast.OpUnary:
		return g.unary(n)
	case *ast.Conditional:
		return fmt.Sprintf("(%s ? %s : %s)", g.Expression(n.Condition), g.Expression(n.Then), g.Expression(n.Else))
	case *ast.StaticCall:
		return g.staticCall(n)
	case *ast.MethodCall:
		return g.methodCall(n)
	case *ast.StructInstance:
		return g.structInstance(n)
	case *ast.MapLiteral:
		return g.mapLiteral(n)
	}
	g.fail(e.Location(), fmt.Sprintf("%s cannot be used here", e))
	return ""
}

// localPath returns the flattened variable name of a field path rooted at a
// local variable
func (g *Generator) localPath(e ast.Expression) (string, bool) {
	switch n := e.(type) {
	case *ast.Id:
		if _, ok := g.prog.ConstRefs[n]; ok {
			return "", false
		}
		return n.Text, true
	case *ast.FieldAccess:
		path, ok := g.localPath(n.Aggregate)
		if !ok {
			return "", false
		}
		return path + "'" + n.Field.Text, true
	}
	return "", false
}

func (g *Generator) stringLiteral(n *ast.String) string {
	data := []byte(n.Value)
	if len(data) > maxStringBytes {
		g.fail(n.Loc, fmt.Sprintf("string literal is too long: %d bytes, at most %d fit in a cell", len(data), maxStringBytes))
	}
	for _, b := range data {
		if b < 0x20 || b > 0x7e || b == '"' || b == '\\' {
			return `"` + hex.EncodeToString(data) + `"s`
		}
	}
	return `"` + n.Value + `"`
}

func (g *Generator) binary(n *ast.OpBinary) string {
	switch n.Op {
	case "&&":
		return fmt.Sprintf("((%s) ? (%s) : (false))", g.Expression(n.Left), g.Expression(n.Right))
	case "||":
		return fmt.Sprintf("((%s) ? (true) : (%s))", g.Expression(n.Left), g.Expression(n.Right))
	case "==", "!=":
		return g.equality(n)
	}
	return fmt.Sprintf("(%s %s %s)", g.Expression(n.Left), n.Op, g.Expression(n.Right))
}

func isNull(e string, negate bool) string {
	if negate {
		return "(~ null?(" + e + "))"
	}
	return "null?(" + e + ")"
}

func (g *Generator) equality(n *ast.OpBinary) string {
	a, b := g.prog.TypeOf(n.Left), g.prog.TypeOf(n.Right)
	negate := n.Op == "!="

	if a.Kind == types.RefNull && b.Kind == types.RefNull {
		if negate {
			return "false"
		}
		return "true"
	}
	left, right := g.Expression(n.Left), g.Expression(n.Right)
	switch {
	case a.Kind == types.RefNull:
		return isNull(right, negate)
	case b.Kind == types.RefNull:
		return isNull(left, negate)
	case a.Kind == types.RefMap:
		l, err := abi.MapLayout(a)
		if err != nil {
			g.fail(n.Loc, err.Error())
		}
		call := fmt.Sprintf("%s(%s, %s, %d)", g.Used("__tact_dict_eq"), left, right, l.KeyBits)
		if negate {
			return "(~ " + call + ")"
		}
		return call
	}

	nullable := ""
	switch {
	case a.Optional && b.Optional:
		nullable = "both"
	case a.Optional:
		nullable = "left"
	case b.Optional:
		nullable = "right"
	}
	family := ""
	switch a.Name {
	case "Int", "Bool":
		if nullable == "" {
			return fmt.Sprintf("(%s %s %s)", left, n.Op, right)
		}
		family = "int"
	case "Cell":
		family = "cell"
	case "Slice", "String":
		family = "slice"
	case "Address":
		name := "__tact_slice_eq_bits"
		if nullable != "" {
			name += "_nullable"
		}
		if nullable == "left" || nullable == "right" {
			name += "_" + nullable
		}
		call := fmt.Sprintf("%s(%s, %s)", g.Used(name), left, right)
		if negate {
			return "(~ " + call + ")"
		}
		return call
	default:
		g.fail(n.Loc, fmt.Sprintf("values of type %s cannot be compared", a))
	}
	return fmt.Sprintf("%s(%s, %s)", g.Used(stdlib.EqualityName(family, negate, nullable)), left, right)
}

func (g *Generator) unary(n *ast.OpUnary) string {
	x := g.Expression(n.Operand)
	switch n.Op {
	case "!!":
		return g.Used("__tact_not_null") + "(" + x + ")"
	case "!", "~":
		return "(~ " + x + ")"
	case "-":
		return "(- " + x + ")"
	case "+":
		return x
	}
	g.fail(n.Loc, fmt.Sprintf("unsupported operator %q", n.Op))
	return ""
}

func (g *Generator) arguments(args []ast.Expression) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = g.Expression(a)
	}
	return out
}

// native returns the FunC name of a native function, recording the
// dependency when the runtime provides it
func (g *Generator) native(name string) string {
	if g.ctx.IsDeclared(name) {
		return g.Used(name)
	}
	return name
}

func (g *Generator) staticCall(n *ast.StaticCall) string {
	fn, ok := g.prog.Functions[n.Function.Text]
	if !ok {
		if n.Function.Text == "emptyMap" {
			return "null()"
		}
		g.fail(n.Loc, fmt.Sprintf("function %q is not found", n.Function.Text))
	}
	args := strings.Join(g.arguments(n.Args), ", ")
	if fn.Native != "" {
		return g.native(fn.Native) + "(" + args + ")"
	}
	return g.Used(funcName(fn)) + "(" + args + ")"
}

func (g *Generator) methodCall(n *ast.MethodCall) string {
	call, ok := g.prog.Calls[n]
	if !ok {
		g.fail(n.Loc, fmt.Sprintf("call of %q was not resolved", n.Method.Text))
	}
	switch call.Kind {
	case types.CallStructABI:
		return g.builtin(abi.StructFunctions[n.Method.Text], call, n)
	case types.CallMapABI:
		return g.builtin(abi.MapFunctions[n.Method.Text], call, n)
	}

	fn := call.Function
	self := g.Expression(n.Self)
	args := g.arguments(n.Args)
	if fn.Native != "" {
		native := fn.Native
		switch {
		case strings.HasPrefix(native, "~"):
			return self + "~" + g.native(native[1:]) + "(" + strings.Join(args, ", ") + ")"
		case strings.HasPrefix(native, "."):
			return self + "." + g.native(native[1:]) + "(" + strings.Join(args, ", ") + ")"
		case fn.Mutates:
			return self + "~" + g.native(native) + "(" + strings.Join(args, ", ") + ")"
		}
		return g.native(native) + "(" + strings.Join(append([]string{self}, args...), ", ") + ")"
	}
	name := g.Used(funcName(fn))
	if fn.Mutates {
		return self + "~" + name + "(" + strings.Join(args, ", ") + ")"
	}
	return name + "(" + strings.Join(append([]string{self}, args...), ", ") + ")"
}

func (g *Generator) builtin(f *abi.Function, call *types.Call, n *ast.MethodCall) string {
	exprs := append([]ast.Expression{n.Self}, n.Args...)
	code, err := f.Generate(g, call.Args, exprs, n.Loc)
	if err != nil {
		panic(bailout{err})
	}
	return code
}

func (g *Generator) structInstance(n *ast.StructInstance) string {
	d, ok := g.prog.Lookup(n.Type.Text)
	if !ok || !d.IsStruct() {
		g.fail(n.Loc, fmt.Sprintf("%s is not a struct", n.Type.Text))
	}
	byName := make(map[string]ast.Expression, len(n.Args))
	for _, init := range n.Args {
		byName[init.Field.Text] = init.Initializer
	}
	var given, args []string
	for _, f := range d.Fields {
		if e, ok := byName[f.Name]; ok {
			given = append(given, f.Name)
			args = append(args, g.Expression(e))
		}
	}
	return g.Used(g.constructor(d, given)) + "(" + strings.Join(args, ", ") + ")"
}

// mapLiteral lowers a map literal to a function building the dictionary
func (g *Generator) mapLiteral(n *ast.MapLiteral) string {
	if len(n.Fields) == 0 {
		return "null()"
	}
	l, err := abi.MapLayout(g.prog.TypeOf(n))
	if err != nil {
		g.fail(n.Loc, err.Error())
	}
	seen := make(map[string]bool)
	for _, f := range n.Fields {
		for _, e := range []ast.Expression{f.Key, f.Value} {
			if !g.isConstant(e) {
				g.fail(e.Location(), "map literal entries must be constant")
			}
		}
		key := f.Key.String()
		if v, ok := intLiteral(f.Key); ok {
			key = v.String()
			g.checkKey(l, v, f.Key.Location())
		}
		if seen[key] {
			g.fail(f.Key.Location(), fmt.Sprintf("duplicate key %s in map literal", f.Key))
		}
		seen[key] = true
		if v, ok := intLiteral(f.Value); ok && l.Value.HasWidth() && !l.ValueType.Is("Bool") {
			if err := l.Value.Store(cell.NewBuilder(), v, l.ValueBits); err != nil {
				g.fail(f.Value.Location(), fmt.Sprintf("value %s does not fit in %s", v, l.Value))
			}
		}
	}

	name := ops.Temp("map_literal", g.literals)
	g.literals++
	set := dict.FuncName(dict.OpSet, l.Key, l.Value)
	g.ctx.Fun(name, func() {
		restore := g.enter(name)
		defer restore()
		g.ctx.Signature("cell " + name + "()")
		g.ctx.Flag(writer.FlagInline)
		g.ctx.Tag("literal")
		g.ctx.Body(func() {
			g.emit("cell d = null();")
			for _, f := range n.Fields {
				g.emit(fmt.Sprintf("d~%s(%d, %s, %s%s);", g.Used(set), l.KeyBits, g.Expression(f.Key), g.Expression(f.Value), l.Width()))
			}
			g.emit("return d;")
		})
	})
	return g.Used(name) + "()"
}

func (g *Generator) checkKey(l abi.Layout, v *big.Int, loc source.Span) {
	var err error
	switch l.Key {
	case dict.KeyInt:
		err = cell.NewBuilder().StoreInt(v, l.KeyBits)
	case dict.KeyUint:
		err = cell.NewBuilder().StoreUint(v, l.KeyBits)
	}
	if err != nil {
		g.fail(loc, fmt.Sprintf("key %s does not fit in %s%d", v, l.Key, l.KeyBits))
	}
}

// intLiteral returns the value of a possibly negated number literal
func intLiteral(e ast.Expression) (*big.Int, bool) {
	switch n := e.(type) {
	case *ast.Number:
		return n.Value, true
	case *ast.OpUnary:
		if n.Op != "-" {
			return nil, false
		}
		if v, ok := intLiteral(n.Operand); ok {
			return new(big.Int).Neg(v), true
		}
	}
	return nil, false
}

// isConstant reports whether e only depends on literals and constants
func (g *Generator) isConstant(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Number, *ast.Boolean, *ast.Null, *ast.String:
		return true
	case *ast.Id:
		_, ok := g.prog.ConstRefs[n]
		return ok
	case *ast.OpUnary:
		return g.isConstant(n.Operand)
	case *ast.OpBinary:
		return g.isConstant(n.Left) && g.isConstant(n.Right)
	case *ast.Conditional:
		return g.isConstant(n.Condition) && g.isConstant(n.Then) && g.isConstant(n.Else)
	}
	return false
}
