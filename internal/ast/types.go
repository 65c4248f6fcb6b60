package ast

import (
	"github.com/xyproto/tactc/internal/source"
)

// Type is a type expression.
type Type interface {
	Node
	typeNode()
}

type TypeId struct {
	Text string
	Loc  source.Span
}

// OptionalType is `T?`.
type OptionalType struct {
	TypeArg *TypeId
	Loc     source.Span
}

// MapType is `map<K as kf, V as vf>`; the storage formats are nil when absent.
type MapType struct {
	KeyType          *TypeId
	KeyStorageType   *Id
	ValueType        *TypeId
	ValueStorageType *Id
	Loc              source.Span
}

// BouncedMessageType is `bounced<M>`.
type BouncedMessageType struct {
	MessageType *TypeId
	Loc         source.Span
}

func (*TypeId) typeNode()             {}
func (*OptionalType) typeNode()       {}
func (*MapType) typeNode()            {}
func (*BouncedMessageType) typeNode() {}

func (n *TypeId) Location() source.Span             { return n.Loc }
func (n *OptionalType) Location() source.Span       { return n.Loc }
func (n *MapType) Location() source.Span            { return n.Loc }
func (n *BouncedMessageType) Location() source.Span { return n.Loc }

func (n *TypeId) String() string       { return n.Text }
func (n *OptionalType) String() string { return n.TypeArg.String() + "?" }

func (n *MapType) String() string {
	key := n.KeyType.String()
	if n.KeyStorageType != nil {
		key += " as " + n.KeyStorageType.Text
	}
	value := n.ValueType.String()
	if n.ValueStorageType != nil {
		value += " as " + n.ValueStorageType.Text
	}
	return "map<" + key + ", " + value + ">"
}

func (n *BouncedMessageType) String() string {
	return "bounced<" + n.MessageType.String() + ">"
}
