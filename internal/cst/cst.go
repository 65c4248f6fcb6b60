// Package cst defines the concrete parse tree produced by the grammar.
//
// Nodes are immutable once built. Every node kind that can appear in a
// polymorphic position implements an Accept method for the matching visitor
// interface, so adding a node kind forces every visitor to handle it.
package cst

import "github.com/xyproto/tactc/internal/source"

// Node is any parse-tree node.
type Node interface {
	Location() source.Loc
}

// Id is a lower-case or upper-case identifier token.
type Id struct {
	Name string
	Loc  source.Loc
}

// TypeId is an identifier in type position.
type TypeId struct {
	Name string
	Loc  source.Loc
}

// FuncId is a FunC function name with an optional '.' or '~' accessor.
type FuncId struct {
	Accessor string
	Name     string
	Loc      source.Loc
}

// Operator is an operator token.
type Operator struct {
	Name string
	Loc  source.Loc
}

func (n *Id) Location() source.Loc       { return n.Loc }
func (n *TypeId) Location() source.Loc   { return n.Loc }
func (n *FuncId) Location() source.Loc   { return n.Loc }
func (n *Operator) Location() source.Loc { return n.Loc }

// Module is a whole source file.
type Module struct {
	Imports []*Import
	Items   []ModuleItem
	Loc     source.Loc
}

func (n *Module) Location() source.Loc { return n.Loc }

// Import is `import "path";`.
type Import struct {
	Path *StringLiteral
	Loc  source.Loc
}

func (n *Import) Location() source.Loc { return n.Loc }
