package codegen

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/abi"
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/dict"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/types"
)

func (g *Generator) statements(stmts []ast.Statement) {
	for _, s := range stmts {
		g.statement(s)
	}
}

// block lowers stmts one level deeper
func (g *Generator) block(stmts []ast.Statement) {
	g.depth++
	g.statements(stmts)
	g.depth--
}

// temp returns a fresh local name
func (g *Generator) temp(name string) string {
	g.temps++
	return ops.Temp(name, g.temps)
}

// binder is the FunC variable a name binds, or "_" for a wildcard
func (g *Generator) binder(id ast.OptionalId, t types.Ref) string {
	name := ast.IdText(id)
	if name == "_" {
		return "_"
	}
	return g.variable(name, t)
}

func (g *Generator) statement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.StatementLet:
		t := g.prog.Bindings[n]
		e := g.Expression(n.Expression)
		switch name := ast.IdText(n.Name); {
		case name == "_":
			g.emit(e + ";")
		case g.structOf(t) != nil:
			g.emit(fmt.Sprintf("var %s = %s;", g.variable(name, t), e))
		default:
			g.emit(fmt.Sprintf("%s %s = %s;", g.funcType(t, n.Loc), ops.Variable(name), e))
		}

	case *ast.StatementDestruct:
		d, _ := g.prog.Lookup(n.Type.Text)
		binders := make(map[string]ast.OptionalId, len(n.Identifiers))
		for _, b := range n.Identifiers {
			binders[b.Field.Text] = b.Binder
		}
		vars := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			vars[i] = "_"
			if id, ok := binders[f.Name]; ok {
				vars[i] = g.binder(id, f.Type)
			}
		}
		g.emit(fmt.Sprintf("var (%s) = %s;", strings.Join(vars, ", "), g.Expression(n.Expression)))

	case *ast.StatementBlock:
		g.emit("{")
		g.block(n.Statements)
		g.emit("}")

	case *ast.StatementReturn:
		g.ret(n)

	case *ast.StatementExpression:
		g.emit(g.Expression(n.Expression) + ";")

	case *ast.StatementAssign:
		g.emit(fmt.Sprintf("%s = %s;", g.lvalue(n.Path), g.Expression(n.Expression)))

	case *ast.StatementAugmentedAssign:
		lhs, rhs := g.lvalue(n.Path), g.Expression(n.Expression)
		switch n.Op {
		case "&&":
			g.emit(fmt.Sprintf("%s = ((%s) ? (%s) : (false));", lhs, lhs, rhs))
		case "||":
			g.emit(fmt.Sprintf("%s = ((%s) ? (true) : (%s));", lhs, lhs, rhs))
		default:
			g.emit(fmt.Sprintf("%s = (%s %s (%s));", lhs, lhs, n.Op, rhs))
		}

	case *ast.StatementCondition:
		g.condition(n, "if")

	case *ast.StatementWhile:
		g.emit("while (" + g.Expression(n.Condition) + ") {")
		g.block(n.Statements)
		g.emit("}")

	case *ast.StatementUntil:
		g.emit("do {")
		g.block(n.Statements)
		g.emit("} until (" + g.Expression(n.Condition) + ");")

	case *ast.StatementRepeat:
		g.emit("repeat (" + g.Expression(n.Iterations) + ") {")
		g.block(n.Statements)
		g.emit("}")

	case *ast.StatementTry:
		g.emit("try {")
		g.block(n.Statements)
		if n.Catch == nil {
			g.emit("} catch (_) { }")
			return
		}
		g.emit("} catch (_, " + g.binder(n.Catch.CatchName, types.Named("Int")) + ") {")
		g.block(n.Catch.CatchStatements)
		g.emit("}")

	case *ast.StatementForEach:
		g.foreach(n)

	default:
		g.fail(s.Location(), fmt.Sprintf("%T cannot be lowered", s))
	}
}

// lvalue is the FunC form of an assignment target
func (g *Generator) lvalue(e ast.Expression) string {
	path, ok := g.localPath(e)
	if !ok {
		g.fail(e.Location(), "only variables and fields can be assigned")
	}
	return g.variable(path, g.prog.TypeOf(e))
}

func (g *Generator) ret(n *ast.StatementReturn) {
	fn := g.fn
	value := "()"
	if n.Expression != nil {
		value = g.Expression(n.Expression)
	}
	if fn.Mutates {
		g.emit("return (" + g.variable("self", *fn.Self) + ", " + value + ");")
		return
	}
	g.emit("return " + value + ";")
}

// condition lowers an if statement, folding else-if chains into elseif
func (g *Generator) condition(n *ast.StatementCondition, keyword string) {
	g.emit(keyword + " (" + g.Expression(n.Condition) + ") {")
	g.block(n.TrueStatements)
	if n.FalseStatements == nil {
		g.emit("}")
		return
	}
	if len(n.FalseStatements) == 1 {
		if nested, ok := n.FalseStatements[0].(*ast.StatementCondition); ok {
			g.condition(nested, "} elseif")
			return
		}
	}
	g.emit("} else {")
	g.block(n.FalseStatements)
	g.emit("}")
}

// foreach walks a dictionary from its smallest key:
//
//	var (k, v, found) = min(m);
//	while (found) { ...; (k, v, found) = next(m, k); }
func (g *Generator) foreach(n *ast.StatementForEach) {
	t := g.prog.Bindings[n]
	l, err := abi.MapLayout(t)
	if err != nil {
		g.fail(n.Map.Location(), err.Error())
	}
	m := g.Expression(n.Map)

	name := func(id ast.OptionalId, what string) string {
		if ast.IdText(id) == "_" {
			return g.temp(what)
		}
		return ops.Variable(ast.IdText(id))
	}
	key, value, found := name(n.KeyName, "key"), name(n.ValueName, "value"), g.temp("fresh")

	g.emit(fmt.Sprintf("var (%s, %s, %s) = %s(%s, %d%s);", key, value, found,
		g.Used(dict.FuncName(dict.OpMin, l.Key, l.Value)), m, l.KeyBits, l.Width()))
	g.emit("while (" + found + ") {")
	g.block(n.Statements)
	g.depth++
	g.emit(fmt.Sprintf("(%s, %s, %s) = %s(%s, %d, %s%s);", key, value, found,
		g.Used(dict.FuncName(dict.OpNext, l.Key, l.Value)), m, l.KeyBits, key, l.Width()))
	g.depth--
	g.emit("}")
}
