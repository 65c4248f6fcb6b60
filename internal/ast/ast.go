// Package ast defines the validated abstract syntax tree.
//
// Nodes own their children exclusively and are never mutated after the
// builder returns them, so they can be shared freely.
package ast

import (
	"strings"

	"github.com/xyproto/tactc/internal/source"
)

// Node is any AST node.
type Node interface {
	Location() source.Span
	String() string
}

// Id is a validated identifier.
type Id struct {
	Text string
	Loc  source.Span
}

// Wildcard is the discard binder '_'.
type Wildcard struct {
	Loc source.Span
}

// OptionalId is an identifier or a wildcard.
type OptionalId interface {
	Node
	optionalId()
}

// FuncId is a validated FunC function name.
type FuncId struct {
	Text string
	Loc  source.Span
}

func (n *Id) Location() source.Span       { return n.Loc }
func (n *Wildcard) Location() source.Span { return n.Loc }
func (n *FuncId) Location() source.Span   { return n.Loc }

func (n *Id) String() string       { return n.Text }
func (n *Wildcard) String() string { return "_" }
func (n *FuncId) String() string   { return n.Text }

func (*Id) optionalId()       {}
func (*Wildcard) optionalId() {}

// IdText returns the binder name, or "_" for a wildcard.
func IdText(id OptionalId) string {
	if n, ok := id.(*Id); ok {
		return n.Text
	}
	return "_"
}

// Module is a parsed source file.
type Module struct {
	Imports []*Import
	Items   []ModuleItem
	File    *source.File
}

func (m *Module) Location() source.Span {
	return source.Span{File: m.File, Loc: source.Range(0, len(m.File.Code))}
}

func (m *Module) String() string {
	var sb strings.Builder
	for _, imp := range m.Imports {
		sb.WriteString(imp.String())
		sb.WriteString("\n")
	}
	for i, item := range m.Items {
		if i > 0 || len(m.Imports) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(item.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinNodes[T Node](nodes []T, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join(lines, "\n")
}

func block(stmts []Statement) string {
	if len(stmts) == 0 {
		return "{}"
	}
	return "{\n" + indent(joinNodes(stmts, "\n")) + "\n}"
}
