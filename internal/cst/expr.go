package cst

import "github.com/xyproto/tactc/internal/source"

// Expr is an expression node.
type Expr interface {
	Node
	Accept(v ExprVisitor)
}

// ExprVisitor handles every expression kind.
type ExprVisitor interface {
	VisitConditional(*Conditional)
	VisitBinary(*Binary)
	VisitUnary(*Unary)
	VisitSuffix(*Suffix)
	VisitParens(*Parens)
	VisitStructInstance(*StructInstance)
	VisitMapLiteral(*MapLiteral)
	VisitSetLiteral(*SetLiteral)
	VisitIntegerLiteral(*IntegerLiteral)
	VisitBoolLiteral(*BoolLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitNull(*Null)
	VisitInitOf(*InitOf)
	VisitCodeOf(*CodeOf)
	VisitId(*Id)
}

// Conditional is `head ? then : else`; Tail is nil when there is no '?'.
type Conditional struct {
	Head Expr
	Tail *ConditionalTail
	Loc  source.Loc
}

type ConditionalTail struct {
	Then Expr
	Else Expr
	Loc  source.Loc
}

// Binary is one precedence level: head followed by (operator, operand) pairs.
type Binary struct {
	Head Expr
	Tail []BinaryTail
	Loc  source.Loc
}

type BinaryTail struct {
	Op    *Operator
	Right Expr
}

// Unary is a chain of prefix operators applied to an operand.
type Unary struct {
	Prefixes []*Operator
	Operand  Expr
	Loc      source.Loc
}

// Suffix is an operand followed by calls, field accesses and '!!'.
type Suffix struct {
	Operand  Expr
	Suffixes []SuffixOp
	Loc      source.Loc
}

type Parens struct {
	Child Expr
	Loc   source.Loc
}

// StructInstance is `Type { field: value, punned }`.
type StructInstance struct {
	Type   *TypeId
	Fields []*StructFieldInit
	Loc    source.Loc
}

// StructFieldInit has a nil Init when the field is punned.
type StructFieldInit struct {
	Name *Id
	Init Expr
	Loc  source.Loc
}

// MapLiteral is `map<K, V> { k: v, ... }`.
type MapLiteral struct {
	TypeArgs []*TypeAs
	Fields   []*MapField
	Loc      source.Loc
}

type MapField struct {
	Key   Expr
	Value Expr
	Loc   source.Loc
}

// SetLiteral is `set<T> { ... }`, which the language does not support yet.
type SetLiteral struct {
	TypeArgs []*TypeAs
	Fields   []Expr
	Loc      source.Loc
}

// Base is the radix of an integer literal.
type Base int

const (
	Bin Base = 2
	Oct Base = 8
	Dec Base = 10
	Hex Base = 16
)

// Prefix returns the literal prefix for the base.
func (b Base) Prefix() string {
	switch b {
	case Bin:
		return "0b"
	case Oct:
		return "0o"
	case Hex:
		return "0x"
	}
	return ""
}

// IntegerLiteral keeps the digits without the base prefix.
type IntegerLiteral struct {
	Base   Base
	Digits string
	Loc    source.Loc
}

type BoolLiteral struct {
	Value bool
	Loc   source.Loc
}

// StringLiteral keeps the raw text between the quotes.
type StringLiteral struct {
	Value string
	Loc   source.Loc
}

type Null struct {
	Loc source.Loc
}

type InitOf struct {
	Name *Id
	Args []Expr
	Loc  source.Loc
}

type CodeOf struct {
	Name *Id
	Loc  source.Loc
}

func (n *Conditional) Location() source.Loc     { return n.Loc }
func (n *ConditionalTail) Location() source.Loc { return n.Loc }
func (n *Binary) Location() source.Loc          { return n.Loc }
func (n *Unary) Location() source.Loc           { return n.Loc }
func (n *Suffix) Location() source.Loc          { return n.Loc }
func (n *Parens) Location() source.Loc          { return n.Loc }
func (n *StructInstance) Location() source.Loc  { return n.Loc }
func (n *StructFieldInit) Location() source.Loc { return n.Loc }
func (n *MapLiteral) Location() source.Loc      { return n.Loc }
func (n *MapField) Location() source.Loc        { return n.Loc }
func (n *SetLiteral) Location() source.Loc      { return n.Loc }
func (n *IntegerLiteral) Location() source.Loc  { return n.Loc }
func (n *BoolLiteral) Location() source.Loc     { return n.Loc }
func (n *StringLiteral) Location() source.Loc   { return n.Loc }
func (n *Null) Location() source.Loc            { return n.Loc }
func (n *InitOf) Location() source.Loc          { return n.Loc }
func (n *CodeOf) Location() source.Loc          { return n.Loc }

func (n *Conditional) Accept(v ExprVisitor)    { v.VisitConditional(n) }
func (n *Binary) Accept(v ExprVisitor)         { v.VisitBinary(n) }
func (n *Unary) Accept(v ExprVisitor)          { v.VisitUnary(n) }
func (n *Suffix) Accept(v ExprVisitor)         { v.VisitSuffix(n) }
func (n *Parens) Accept(v ExprVisitor)         { v.VisitParens(n) }
func (n *StructInstance) Accept(v ExprVisitor) { v.VisitStructInstance(n) }
func (n *MapLiteral) Accept(v ExprVisitor)     { v.VisitMapLiteral(n) }
func (n *SetLiteral) Accept(v ExprVisitor)     { v.VisitSetLiteral(n) }
func (n *IntegerLiteral) Accept(v ExprVisitor) { v.VisitIntegerLiteral(n) }
func (n *BoolLiteral) Accept(v ExprVisitor)    { v.VisitBoolLiteral(n) }
func (n *StringLiteral) Accept(v ExprVisitor)  { v.VisitStringLiteral(n) }
func (n *Null) Accept(v ExprVisitor)           { v.VisitNull(n) }
func (n *InitOf) Accept(v ExprVisitor)         { v.VisitInitOf(n) }
func (n *CodeOf) Accept(v ExprVisitor)         { v.VisitCodeOf(n) }
func (n *Id) Accept(v ExprVisitor)             { v.VisitId(n) }

// SuffixOp is one element of a suffix chain.
type SuffixOp interface {
	Node
	AcceptSuffix(v SuffixVisitor)
}

type SuffixVisitor interface {
	VisitUnboxNotNull(*SuffixUnboxNotNull)
	VisitCall(*SuffixCall)
	VisitFieldAccess(*SuffixFieldAccess)
}

// SuffixUnboxNotNull is the '!!' operator.
type SuffixUnboxNotNull struct {
	Loc source.Loc
}

type SuffixCall struct {
	Args []Expr
	Loc  source.Loc
}

type SuffixFieldAccess struct {
	Name *Id
	Loc  source.Loc
}

func (n *SuffixUnboxNotNull) Location() source.Loc { return n.Loc }
func (n *SuffixCall) Location() source.Loc         { return n.Loc }
func (n *SuffixFieldAccess) Location() source.Loc  { return n.Loc }

func (n *SuffixUnboxNotNull) AcceptSuffix(v SuffixVisitor) { v.VisitUnboxNotNull(n) }
func (n *SuffixCall) AcceptSuffix(v SuffixVisitor)         { v.VisitCall(n) }
func (n *SuffixFieldAccess) AcceptSuffix(v SuffixVisitor)  { v.VisitFieldAccess(n) }
