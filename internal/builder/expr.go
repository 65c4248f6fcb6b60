package builder

import (
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

func (b *Builder) expr(e cst.Expr) ast.Expression {
	v := &exprBuilder{b: b}
	e.Accept(v)
	return v.result
}

func (b *Builder) exprs(list []cst.Expr) []ast.Expression {
	out := make([]ast.Expression, len(list))
	for i, e := range list {
		out[i] = b.expr(e)
	}
	return out
}

type exprBuilder struct {
	b      *Builder
	result ast.Expression
}

func (v *exprBuilder) VisitConditional(n *cst.Conditional) {
	cond := v.b.expr(n.Head)
	if n.Tail == nil {
		v.result = cond
		return
	}
	v.result = &ast.Conditional{
		Condition: cond,
		Then:      v.b.expr(n.Tail.Then),
		Else:      v.b.expr(n.Tail.Else),
		Loc:       v.b.span(n.Loc),
	}
}

// VisitBinary folds left to right; every step covers the accumulated left
// side, the operator and the right operand.
func (v *exprBuilder) VisitBinary(n *cst.Binary) {
	child := v.b.expr(n.Head)
	loc := n.Head.Location()
	for _, t := range n.Tail {
		loc = source.Merge(loc, source.Merge(t.Op.Loc, t.Right.Location()))
		child = &ast.OpBinary{Op: t.Op.Name, Left: child, Right: v.b.expr(t.Right), Loc: v.b.span(loc)}
	}
	v.result = child
}

// VisitUnary folds the prefix operators right to left.
func (v *exprBuilder) VisitUnary(n *cst.Unary) {
	child := v.b.expr(n.Operand)
	loc := n.Operand.Location()
	for i := len(n.Prefixes) - 1; i >= 0; i-- {
		op := n.Prefixes[i]
		loc = source.Merge(op.Loc, loc)
		child = &ast.OpUnary{Op: op.Name, Operand: child, Loc: v.b.span(loc)}
	}
	v.result = child
}

func (v *exprBuilder) VisitSuffix(n *cst.Suffix) {
	s := &suffixBuilder{b: v.b, child: v.b.expr(n.Operand), loc: n.Operand.Location()}
	for _, op := range n.Suffixes {
		s.loc = source.Merge(s.loc, op.Location())
		op.AcceptSuffix(s)
	}
	v.result = s.child
}

func (v *exprBuilder) VisitParens(n *cst.Parens) {
	v.result = v.b.expr(n.Child)
}

func (v *exprBuilder) VisitStructInstance(n *cst.StructInstance) {
	name := v.b.typeName(n.Type)
	out := &ast.StructInstance{
		Type: &ast.TypeId{Text: name.Text, Loc: name.Loc},
		Loc:  v.b.span(n.Loc),
	}
	for _, f := range n.Fields {
		field := v.b.ident(f.Name)
		var init ast.Expression = field
		if f.Init != nil {
			init = v.b.expr(f.Init)
		}
		out.Args = append(out.Args, &ast.StructFieldInitializer{Field: field, Initializer: init, Loc: v.b.span(f.Loc)})
	}
	v.result = out
}

func (v *exprBuilder) VisitMapLiteral(n *cst.MapLiteral) {
	mt, ok := v.b.mapType(n.TypeArgs, n.Loc).(*ast.MapType)
	if !ok {
		v.result = &ast.Id{Text: "ERROR", Loc: v.b.span(n.Loc)}
		return
	}
	out := &ast.MapLiteral{Type: mt, Loc: v.b.span(n.Loc)}
	for _, f := range n.Fields {
		out.Fields = append(out.Fields, ast.MapField{Key: v.b.expr(f.Key), Value: v.b.expr(f.Value)})
	}
	v.result = out
}

func (v *exprBuilder) VisitSetLiteral(n *cst.SetLiteral) {
	v.b.fail(n.Loc, msgNoSetLiterals)
	v.result = &ast.Id{Text: "ERROR", Loc: v.b.span(n.Loc)}
}

func (v *exprBuilder) VisitIntegerLiteral(n *cst.IntegerLiteral) {
	v.result = v.b.number(n)
}

func (v *exprBuilder) VisitBoolLiteral(n *cst.BoolLiteral) {
	v.result = &ast.Boolean{Value: n.Value, Loc: v.b.span(n.Loc)}
}

func (v *exprBuilder) VisitStringLiteral(n *cst.StringLiteral) {
	v.result = v.b.str(n)
}

func (v *exprBuilder) VisitNull(n *cst.Null) {
	v.result = &ast.Null{Loc: v.b.span(n.Loc)}
}

func (v *exprBuilder) VisitInitOf(n *cst.InitOf) {
	v.result = &ast.InitOf{Contract: v.b.ident(n.Name), Args: v.b.exprs(n.Args), Loc: v.b.span(n.Loc)}
}

func (v *exprBuilder) VisitCodeOf(n *cst.CodeOf) {
	v.result = &ast.CodeOf{Contract: v.b.ident(n.Name), Loc: v.b.span(n.Loc)}
}

func (v *exprBuilder) VisitId(n *cst.Id) {
	v.result = v.b.ident(n)
}

// suffixBuilder applies one suffix to the accumulated child
type suffixBuilder struct {
	b     *Builder
	child ast.Expression
	loc   source.Loc
}

func (s *suffixBuilder) VisitUnboxNotNull(*cst.SuffixUnboxNotNull) {
	s.child = &ast.OpUnary{Op: "!!", Operand: s.child, Loc: s.b.span(s.loc)}
}

func (s *suffixBuilder) VisitCall(n *cst.SuffixCall) {
	args := s.b.exprs(n.Args)
	switch callee := s.child.(type) {
	case *ast.Id:
		s.child = &ast.StaticCall{Function: callee, Args: args, Loc: s.b.span(s.loc)}
	case *ast.FieldAccess:
		s.child = &ast.MethodCall{Self: callee.Aggregate, Method: callee.Field, Args: args, Loc: s.b.span(s.loc)}
	default:
		s.b.fail(s.loc, msgNotCallable)
		s.child = &ast.StaticCall{
			Function: &ast.Id{Text: "__invalid__", Loc: s.b.span(s.loc)},
			Args:     args,
			Loc:      s.b.span(s.loc),
		}
	}
}

func (s *suffixBuilder) VisitFieldAccess(n *cst.SuffixFieldAccess) {
	s.child = &ast.FieldAccess{Aggregate: s.child, Field: s.b.ident(n.Name), Loc: s.b.span(s.loc)}
}
