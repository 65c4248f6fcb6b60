package builder

import (
	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cst"
)

func (b *Builder) stmt(s cst.Statement) ast.Statement {
	v := &stmtBuilder{b: b}
	s.AcceptStatement(v)
	return v.result
}

func (b *Builder) stmts(list []cst.Statement) []ast.Statement {
	out := make([]ast.Statement, len(list))
	for i, s := range list {
		out[i] = b.stmt(s)
	}
	return out
}

type stmtBuilder struct {
	b      *Builder
	result ast.Statement
}

func (v *stmtBuilder) VisitLet(n *cst.StatementLet) {
	out := &ast.StatementLet{Name: v.b.optionalId(n.Name.Name, n.Name.Loc), Loc: v.b.span(n.Loc)}
	if n.Type != nil {
		out.Type = v.b.typ(n.Type)
	}
	out.Expression = v.b.expr(n.Init)
	v.result = out
}

// destructItem turns a destructuring entry into a field and its binder
type destructItem struct {
	b       *Builder
	binding ast.DestructBinding
}

func (d *destructItem) VisitPunnedField(n *cst.PunnedField) {
	d.binding = ast.DestructBinding{Field: d.b.ident(n.Name), Binder: d.b.ident(n.Name)}
}

func (d *destructItem) VisitRegularField(n *cst.RegularField) {
	d.binding = ast.DestructBinding{Field: d.b.ident(n.Field), Binder: d.b.optionalId(n.Var.Name, n.Var.Loc)}
}

// VisitDestruct keeps the first position of every field name; a repeated
// field is an error and its later binder replaces the earlier one.
func (v *stmtBuilder) VisitDestruct(n *cst.StatementDestruct) {
	var bindings []ast.DestructBinding
	seen := make(map[string]int)
	for _, item := range n.Fields {
		d := &destructItem{b: v.b}
		item.AcceptDestruct(d)
		name := d.binding.Field.Text
		if i, ok := seen[name]; ok {
			v.b.fail(item.Location(), msgDuplicateField(name))
			bindings[i] = d.binding
			continue
		}
		seen[name] = len(bindings)
		bindings = append(bindings, d.binding)
	}
	v.result = &ast.StatementDestruct{
		Type:                    v.b.typeRef(n.Type),
		Identifiers:             bindings,
		IgnoreUnspecifiedFields: n.Rest,
		Expression:              v.b.expr(n.Init),
		Loc:                     v.b.span(n.Loc),
	}
}

func (v *stmtBuilder) VisitBlock(n *cst.StatementBlock) {
	v.result = &ast.StatementBlock{Statements: v.b.stmts(n.Body), Loc: v.b.span(n.Loc)}
}

func (v *stmtBuilder) VisitReturn(n *cst.StatementReturn) {
	out := &ast.StatementReturn{Loc: v.b.span(n.Loc)}
	if n.Expr != nil {
		out.Expression = v.b.expr(n.Expr)
	}
	v.result = out
}

func (v *stmtBuilder) VisitCondition(n *cst.StatementCondition) {
	v.result = v.b.condition(n)
}

func (b *Builder) condition(n *cst.StatementCondition) *ast.StatementCondition {
	out := &ast.StatementCondition{
		Condition:      b.expr(n.Cond),
		TrueStatements: b.stmts(n.Then),
		Loc:            b.span(n.Loc),
	}
	switch e := n.Else.(type) {
	case *cst.ElseBlock:
		out.FalseStatements = b.stmts(e.Body)
	case *cst.StatementCondition:
		out.FalseStatements = []ast.Statement{b.condition(e)}
	}
	return out
}

func (v *stmtBuilder) VisitWhile(n *cst.StatementWhile) {
	v.result = &ast.StatementWhile{Condition: v.b.expr(n.Cond), Statements: v.b.stmts(n.Body), Loc: v.b.span(n.Loc)}
}

func (v *stmtBuilder) VisitRepeat(n *cst.StatementRepeat) {
	v.result = &ast.StatementRepeat{Iterations: v.b.expr(n.Count), Statements: v.b.stmts(n.Body), Loc: v.b.span(n.Loc)}
}

func (v *stmtBuilder) VisitUntil(n *cst.StatementUntil) {
	v.result = &ast.StatementUntil{Condition: v.b.expr(n.Cond), Statements: v.b.stmts(n.Body), Loc: v.b.span(n.Loc)}
}

func (v *stmtBuilder) VisitTry(n *cst.StatementTry) {
	out := &ast.StatementTry{Statements: v.b.stmts(n.Body), Loc: v.b.span(n.Loc)}
	if h := n.Handler; h != nil {
		out.Catch = &ast.CatchBlock{
			CatchName:       v.b.optionalId(h.Name.Name, h.Name.Loc),
			CatchStatements: v.b.stmts(h.Body),
		}
	}
	v.result = out
}

func (v *stmtBuilder) VisitForEach(n *cst.StatementForEach) {
	v.result = &ast.StatementForEach{
		KeyName:    v.b.optionalId(n.Key.Name, n.Key.Loc),
		ValueName:  v.b.optionalId(n.Value.Name, n.Value.Loc),
		Map:        v.b.expr(n.Map),
		Statements: v.b.stmts(n.Body),
		Loc:        v.b.span(n.Loc),
	}
}

func (v *stmtBuilder) VisitExpression(n *cst.StatementExpression) {
	v.result = &ast.StatementExpression{Expression: v.b.expr(n.Expr), Loc: v.b.span(n.Loc)}
}

func (v *stmtBuilder) VisitAssign(n *cst.StatementAssign) {
	path := v.b.expr(n.Left)
	value := v.b.expr(n.Right)
	if n.Op.Name == "=" {
		v.result = &ast.StatementAssign{Path: path, Expression: value, Loc: v.b.span(n.Loc)}
		return
	}
	v.result = &ast.StatementAugmentedAssign{
		Op:         n.Op.Name[:len(n.Op.Name)-1],
		Path:       path,
		Expression: value,
		Loc:        v.b.span(n.Loc),
	}
}
