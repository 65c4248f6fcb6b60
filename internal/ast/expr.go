package ast

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/xyproto/tactc/internal/source"
)

// Expression is any expression node.
type Expression interface {
	Node
	expressionNode()
}

type OpBinary struct {
	Op    string
	Left  Expression
	Right Expression
	Loc   source.Span
}

type OpUnary struct {
	Op      string
	Operand Expression
	Loc     source.Span
}

type FieldAccess struct {
	Aggregate Expression
	Field     *Id
	Loc       source.Span
}

type MethodCall struct {
	Self   Expression
	Method *Id
	Args   []Expression
	Loc    source.Span
}

type StaticCall struct {
	Function *Id
	Args     []Expression
	Loc      source.Span
}

type StructFieldInitializer struct {
	Field       *Id
	Initializer Expression
	Loc         source.Span
}

type StructInstance struct {
	Type *TypeId
	Args []*StructFieldInitializer
	Loc  source.Span
}

type MapField struct {
	Key   Expression
	Value Expression
}

type MapLiteral struct {
	Type   *MapType
	Fields []MapField
	Loc    source.Span
}

type InitOf struct {
	Contract *Id
	Args     []Expression
	Loc      source.Span
}

type CodeOf struct {
	Contract *Id
	Loc      source.Span
}

type Conditional struct {
	Condition Expression
	Then      Expression
	Else      Expression
	Loc       source.Span
}

// Number is an integer literal. Base only affects printing.
type Number struct {
	Base  int
	Value *big.Int
	Loc   source.Span
}

type Boolean struct {
	Value bool
	Loc   source.Span
}

type Null struct {
	Loc source.Span
}

// String is a string literal with escapes already decoded.
type String struct {
	Value string
	Loc   source.Span
}

func (*OpBinary) expressionNode()       {}
func (*OpUnary) expressionNode()        {}
func (*FieldAccess) expressionNode()    {}
func (*MethodCall) expressionNode()     {}
func (*StaticCall) expressionNode()     {}
func (*StructInstance) expressionNode() {}
func (*MapLiteral) expressionNode()     {}
func (*InitOf) expressionNode()         {}
func (*CodeOf) expressionNode()         {}
func (*Conditional) expressionNode()    {}
func (*Number) expressionNode()         {}
func (*Boolean) expressionNode()        {}
func (*Null) expressionNode()           {}
func (*String) expressionNode()         {}
func (*Id) expressionNode()             {}

func (n *OpBinary) Location() source.Span               { return n.Loc }
func (n *OpUnary) Location() source.Span                { return n.Loc }
func (n *FieldAccess) Location() source.Span            { return n.Loc }
func (n *MethodCall) Location() source.Span             { return n.Loc }
func (n *StaticCall) Location() source.Span             { return n.Loc }
func (n *StructFieldInitializer) Location() source.Span { return n.Loc }
func (n *StructInstance) Location() source.Span         { return n.Loc }
func (n *MapLiteral) Location() source.Span             { return n.Loc }
func (n *InitOf) Location() source.Span                 { return n.Loc }
func (n *CodeOf) Location() source.Span                 { return n.Loc }
func (n *Conditional) Location() source.Span            { return n.Loc }
func (n *Number) Location() source.Span                 { return n.Loc }
func (n *Boolean) Location() source.Span                { return n.Loc }
func (n *Null) Location() source.Span                   { return n.Loc }
func (n *String) Location() source.Span                 { return n.Loc }

func (n *OpBinary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n *OpUnary) String() string {
	if n.Op == "!!" {
		return fmt.Sprintf("%s!!", n.Operand)
	}
	return fmt.Sprintf("%s%s", n.Op, n.Operand)
}

func (n *FieldAccess) String() string {
	return fmt.Sprintf("%s.%s", n.Aggregate, n.Field)
}

func (n *MethodCall) String() string {
	return fmt.Sprintf("%s.%s(%s)", n.Self, n.Method, joinNodes(n.Args, ", "))
}

func (n *StaticCall) String() string {
	return fmt.Sprintf("%s(%s)", n.Function, joinNodes(n.Args, ", "))
}

func (n *StructFieldInitializer) String() string {
	return fmt.Sprintf("%s: %s", n.Field, n.Initializer)
}

func (n *StructInstance) String() string {
	if len(n.Args) == 0 {
		return n.Type.String() + " {}"
	}
	return fmt.Sprintf("%s { %s }", n.Type, joinNodes(n.Args, ", "))
}

func (n *MapLiteral) String() string {
	s := n.Type.String() + " {"
	for i, f := range n.Fields {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf(" %s: %s", f.Key, f.Value)
	}
	if len(n.Fields) > 0 {
		s += " "
	}
	return s + "}"
}

func (n *InitOf) String() string {
	return fmt.Sprintf("initOf %s(%s)", n.Contract, joinNodes(n.Args, ", "))
}

func (n *CodeOf) String() string {
	return "codeOf " + n.Contract.String()
}

func (n *Conditional) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Condition, n.Then, n.Else)
}

func (n *Number) String() string {
	switch n.Base {
	case 2:
		return "0b" + n.Value.Text(2)
	case 8:
		return "0o" + n.Value.Text(8)
	case 16:
		return "0x" + n.Value.Text(16)
	}
	return n.Value.String()
}

func (n *Boolean) String() string {
	return strconv.FormatBool(n.Value)
}

func (n *Null) String() string {
	return "null"
}

func (n *String) String() string {
	return strconv.Quote(n.Value)
}
