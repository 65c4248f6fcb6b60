package cst

import "github.com/xyproto/tactc/internal/source"

// TypeAs is a type followed by zero or more `as format` annotations.
type TypeAs struct {
	Type *TypeOptional
	As   []*Id
	Loc  source.Loc
}

// TypeOptional is a type followed by zero or more '?'.
type TypeOptional struct {
	Type      TypeInner
	Optionals []source.Loc
	Loc       source.Loc
}

// TypeInner is either a named type or a generic application.
type TypeInner interface {
	Node
	AcceptType(v TypeVisitor)
}

type TypeVisitor interface {
	VisitTypeRegular(*TypeRegular)
	VisitTypeGeneric(*TypeGeneric)
}

type TypeRegular struct {
	Child *TypeId
	Loc   source.Loc
}

// GenericKind names the head of a generic type.
type GenericKind int

const (
	GenericMap GenericKind = iota
	GenericBounced
	GenericNamed
)

type GenericName struct {
	Kind GenericKind
	Name string
	Loc  source.Loc
}

type TypeGeneric struct {
	Name *GenericName
	Args []*TypeAs
	Loc  source.Loc
}

func (n *TypeAs) Location() source.Loc       { return n.Loc }
func (n *TypeOptional) Location() source.Loc { return n.Loc }
func (n *TypeRegular) Location() source.Loc  { return n.Loc }
func (n *GenericName) Location() source.Loc  { return n.Loc }
func (n *TypeGeneric) Location() source.Loc  { return n.Loc }

func (n *TypeRegular) AcceptType(v TypeVisitor) { v.VisitTypeRegular(n) }
func (n *TypeGeneric) AcceptType(v TypeVisitor) { v.VisitTypeGeneric(n) }
