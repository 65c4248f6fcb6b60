package cst

import "github.com/xyproto/tactc/internal/source"

// Statement is a statement node.
type Statement interface {
	Node
	AcceptStatement(v StatementVisitor)
}

type StatementVisitor interface {
	VisitLet(*StatementLet)
	VisitDestruct(*StatementDestruct)
	VisitBlock(*StatementBlock)
	VisitReturn(*StatementReturn)
	VisitCondition(*StatementCondition)
	VisitWhile(*StatementWhile)
	VisitRepeat(*StatementRepeat)
	VisitUntil(*StatementUntil)
	VisitTry(*StatementTry)
	VisitForEach(*StatementForEach)
	VisitExpression(*StatementExpression)
	VisitAssign(*StatementAssign)
}

// StatementLet has a nil Type when the type is inferred.
type StatementLet struct {
	Name *Id
	Type *TypeAs
	Init Expr
	Loc  source.Loc
}

// StatementDestruct is `let T { a, b: c, .. } = init;`.
type StatementDestruct struct {
	Type   *TypeId
	Fields []DestructItem
	Rest   bool
	Init   Expr
	Loc    source.Loc
}

type DestructItem interface {
	Node
	AcceptDestruct(v DestructVisitor)
}

type DestructVisitor interface {
	VisitPunnedField(*PunnedField)
	VisitRegularField(*RegularField)
}

// PunnedField binds a field to a variable of the same name.
type PunnedField struct {
	Name *Id
	Loc  source.Loc
}

// RegularField binds Field to the variable Var.
type RegularField struct {
	Field *Id
	Var   *Id
	Loc   source.Loc
}

type StatementBlock struct {
	Body []Statement
	Loc  source.Loc
}

// StatementReturn has a nil Expr for a bare return.
type StatementReturn struct {
	Expr Expr
	Loc  source.Loc
}

// StatementCondition is if/else. Else is nil, an *ElseBlock or a nested *StatementCondition.
type StatementCondition struct {
	Cond Expr
	Then []Statement
	Else Node
	Loc  source.Loc
}

type ElseBlock struct {
	Body []Statement
	Loc  source.Loc
}

type StatementWhile struct {
	Cond Expr
	Body []Statement
	Loc  source.Loc
}

type StatementRepeat struct {
	Count Expr
	Body  []Statement
	Loc   source.Loc
}

// StatementUntil is `do { ... } until (cond);`.
type StatementUntil struct {
	Body []Statement
	Cond Expr
	Loc  source.Loc
}

type StatementTry struct {
	Body    []Statement
	Handler *CatchClause
	Loc     source.Loc
}

type CatchClause struct {
	Name *Id
	Body []Statement
	Loc  source.Loc
}

type StatementForEach struct {
	Key   *Id
	Value *Id
	Map   Expr
	Body  []Statement
	Loc   source.Loc
}

type StatementExpression struct {
	Expr Expr
	Loc  source.Loc
}

// StatementAssign covers '=' and the augmented operators such as "+=".
type StatementAssign struct {
	Left  Expr
	Op    *Operator
	Right Expr
	Loc   source.Loc
}

func (n *StatementLet) Location() source.Loc        { return n.Loc }
func (n *StatementDestruct) Location() source.Loc   { return n.Loc }
func (n *PunnedField) Location() source.Loc         { return n.Loc }
func (n *RegularField) Location() source.Loc        { return n.Loc }
func (n *StatementBlock) Location() source.Loc      { return n.Loc }
func (n *StatementReturn) Location() source.Loc     { return n.Loc }
func (n *StatementCondition) Location() source.Loc  { return n.Loc }
func (n *ElseBlock) Location() source.Loc           { return n.Loc }
func (n *StatementWhile) Location() source.Loc      { return n.Loc }
func (n *StatementRepeat) Location() source.Loc     { return n.Loc }
func (n *StatementUntil) Location() source.Loc      { return n.Loc }
func (n *StatementTry) Location() source.Loc        { return n.Loc }
func (n *CatchClause) Location() source.Loc         { return n.Loc }
func (n *StatementForEach) Location() source.Loc    { return n.Loc }
func (n *StatementExpression) Location() source.Loc { return n.Loc }
func (n *StatementAssign) Location() source.Loc     { return n.Loc }

func (n *StatementLet) AcceptStatement(v StatementVisitor)        { v.VisitLet(n) }
func (n *StatementDestruct) AcceptStatement(v StatementVisitor)   { v.VisitDestruct(n) }
func (n *StatementBlock) AcceptStatement(v StatementVisitor)      { v.VisitBlock(n) }
func (n *StatementReturn) AcceptStatement(v StatementVisitor)     { v.VisitReturn(n) }
func (n *StatementCondition) AcceptStatement(v StatementVisitor)  { v.VisitCondition(n) }
func (n *StatementWhile) AcceptStatement(v StatementVisitor)      { v.VisitWhile(n) }
func (n *StatementRepeat) AcceptStatement(v StatementVisitor)     { v.VisitRepeat(n) }
func (n *StatementUntil) AcceptStatement(v StatementVisitor)      { v.VisitUntil(n) }
func (n *StatementTry) AcceptStatement(v StatementVisitor)        { v.VisitTry(n) }
func (n *StatementForEach) AcceptStatement(v StatementVisitor)    { v.VisitForEach(n) }
func (n *StatementExpression) AcceptStatement(v StatementVisitor) { v.VisitExpression(n) }
func (n *StatementAssign) AcceptStatement(v StatementVisitor)     { v.VisitAssign(n) }

func (n *PunnedField) AcceptDestruct(v DestructVisitor)  { v.VisitPunnedField(n) }
func (n *RegularField) AcceptDestruct(v DestructVisitor) { v.VisitRegularField(n) }
