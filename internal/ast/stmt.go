package ast

import (
	"fmt"

	"github.com/xyproto/tactc/internal/source"
)

// Statement is any statement node.
type Statement interface {
	Node
	statementNode()
}

// StatementLet has a nil Type when the type is inferred.
type StatementLet struct {
	Name       OptionalId
	Type       Type
	Expression Expression
	Loc        source.Span
}

// DestructBinding binds Field of the destructured value to Binder.
type DestructBinding struct {
	Field  *Id
	Binder OptionalId
}

// StatementDestruct lists its bindings in source order; field names are unique.
type StatementDestruct struct {
	Type                    *TypeId
	Identifiers             []DestructBinding
	IgnoreUnspecifiedFields bool
	Expression              Expression
	Loc                     source.Span
}

type StatementBlock struct {
	Statements []Statement
	Loc        source.Span
}

type StatementReturn struct {
	Expression Expression
	Loc        source.Span
}

type StatementExpression struct {
	Expression Expression
	Loc        source.Span
}

type StatementAssign struct {
	Path       Expression
	Expression Expression
	Loc        source.Span
}

// StatementAugmentedAssign is `path op= expression`; Op has no '='.
type StatementAugmentedAssign struct {
	Op         string
	Path       Expression
	Expression Expression
	Loc        source.Span
}

// StatementCondition has nil FalseStatements when there is no else branch.
// An `else if` is a single nested StatementCondition.
type StatementCondition struct {
	Condition       Expression
	TrueStatements  []Statement
	FalseStatements []Statement
	Loc             source.Span
}

type StatementWhile struct {
	Condition  Expression
	Statements []Statement
	Loc        source.Span
}

type StatementUntil struct {
	Condition  Expression
	Statements []Statement
	Loc        source.Span
}

type StatementRepeat struct {
	Iterations Expression
	Statements []Statement
	Loc        source.Span
}

type CatchBlock struct {
	CatchName       OptionalId
	CatchStatements []Statement
}

type StatementTry struct {
	Statements []Statement
	Catch      *CatchBlock
	Loc        source.Span
}

type StatementForEach struct {
	KeyName    OptionalId
	ValueName  OptionalId
	Map        Expression
	Statements []Statement
	Loc        source.Span
}

func (*StatementLet) statementNode()             {}
func (*StatementDestruct) statementNode()        {}
func (*StatementBlock) statementNode()           {}
func (*StatementReturn) statementNode()          {}
func (*StatementExpression) statementNode()      {}
func (*StatementAssign) statementNode()          {}
func (*StatementAugmentedAssign) statementNode() {}
func (*StatementCondition) statementNode()       {}
func (*StatementWhile) statementNode()           {}
func (*StatementUntil) statementNode()           {}
func (*StatementRepeat) statementNode()          {}
func (*StatementTry) statementNode()             {}
func (*StatementForEach) statementNode()         {}

func (n *StatementLet) Location() source.Span             { return n.Loc }
func (n *StatementDestruct) Location() source.Span        { return n.Loc }
func (n *StatementBlock) Location() source.Span           { return n.Loc }
func (n *StatementReturn) Location() source.Span          { return n.Loc }
func (n *StatementExpression) Location() source.Span      { return n.Loc }
func (n *StatementAssign) Location() source.Span          { return n.Loc }
func (n *StatementAugmentedAssign) Location() source.Span { return n.Loc }
func (n *StatementCondition) Location() source.Span       { return n.Loc }
func (n *StatementWhile) Location() source.Span           { return n.Loc }
func (n *StatementUntil) Location() source.Span           { return n.Loc }
func (n *StatementRepeat) Location() source.Span          { return n.Loc }
func (n *StatementTry) Location() source.Span             { return n.Loc }
func (n *StatementForEach) Location() source.Span         { return n.Loc }

func (n *StatementLet) String() string {
	if n.Type == nil {
		return fmt.Sprintf("let %s = %s;", IdText(n.Name), n.Expression)
	}
	return fmt.Sprintf("let %s: %s = %s;", IdText(n.Name), n.Type, n.Expression)
}

func (n *StatementDestruct) String() string {
	s := "let " + n.Type.String() + " {"
	for i, b := range n.Identifiers {
		if i > 0 {
			s += ","
		}
		if id, ok := b.Binder.(*Id); ok && id.Text == b.Field.Text {
			s += " " + b.Field.Text
		} else {
			s += fmt.Sprintf(" %s: %s", b.Field, IdText(b.Binder))
		}
	}
	if n.IgnoreUnspecifiedFields {
		if len(n.Identifiers) > 0 {
			s += ","
		}
		s += " .."
	}
	return fmt.Sprintf("%s } = %s;", s, n.Expression)
}

func (n *StatementBlock) String() string { return block(n.Statements) }

func (n *StatementReturn) String() string {
	if n.Expression == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", n.Expression)
}

func (n *StatementExpression) String() string { return n.Expression.String() + ";" }

func (n *StatementAssign) String() string {
	return fmt.Sprintf("%s = %s;", n.Path, n.Expression)
}

func (n *StatementAugmentedAssign) String() string {
	return fmt.Sprintf("%s %s= %s;", n.Path, n.Op, n.Expression)
}

func (n *StatementCondition) String() string {
	s := fmt.Sprintf("if (%s) %s", n.Condition, block(n.TrueStatements))
	if n.FalseStatements == nil {
		return s
	}
	if len(n.FalseStatements) == 1 {
		if nested, ok := n.FalseStatements[0].(*StatementCondition); ok {
			return s + " else " + nested.String()
		}
	}
	return s + " else " + block(n.FalseStatements)
}

func (n *StatementWhile) String() string {
	return fmt.Sprintf("while (%s) %s", n.Condition, block(n.Statements))
}

func (n *StatementUntil) String() string {
	return fmt.Sprintf("do %s until (%s);", block(n.Statements), n.Condition)
}

func (n *StatementRepeat) String() string {
	return fmt.Sprintf("repeat (%s) %s", n.Iterations, block(n.Statements))
}

func (n *StatementTry) String() string {
	s := "try " + block(n.Statements)
	if n.Catch != nil {
		s += fmt.Sprintf(" catch (%s) %s", IdText(n.Catch.CatchName), block(n.Catch.CatchStatements))
	}
	return s
}

func (n *StatementForEach) String() string {
	return fmt.Sprintf("foreach (%s, %s in %s) %s", IdText(n.KeyName), IdText(n.ValueName), n.Map, block(n.Statements))
}
