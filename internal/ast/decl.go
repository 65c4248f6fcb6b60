package ast

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/imports"
	"github.com/xyproto/tactc/internal/source"
)

// ModuleItem is a top-level declaration.
type ModuleItem interface {
	Node
	moduleItem()
}

// ContractDeclaration may appear inside a contract.
type ContractDeclaration interface {
	Node
	contractDeclaration()
}

// TraitDeclaration may appear inside a trait.
type TraitDeclaration interface {
	Node
	traitDeclaration()
}

type Import struct {
	Path imports.ImportPath
	Loc  source.Span
}

func (n *Import) Location() source.Span { return n.Loc }
func (n *Import) String() string        { return fmt.Sprintf("import %q;", n.Path.String()) }

// FunctionAttribute is get, mutates, extends, virtual, override, inline or
// abstract. MethodId is only set for `get(id)`.
type FunctionAttribute struct {
	Type     string
	MethodId Expression
	Loc      source.Span
}

func (a *FunctionAttribute) String() string {
	if a.MethodId != nil {
		return fmt.Sprintf("%s(%s)", a.Type, a.MethodId)
	}
	return a.Type
}

// TypedParameter is a function, init or receiver parameter.
type TypedParameter struct {
	Name OptionalId
	Type Type
	As   *Id
	Loc  source.Span
}

func (p *TypedParameter) Location() source.Span { return p.Loc }

func (p *TypedParameter) String() string {
	s := fmt.Sprintf("%s: %s", IdText(p.Name), p.Type)
	if p.As != nil {
		s += " as " + p.As.Text
	}
	return s
}

func attrs(list []*FunctionAttribute) string {
	var sb strings.Builder
	for _, a := range list {
		sb.WriteString(a.String())
		sb.WriteString(" ")
	}
	return sb.String()
}

func signature(name *Id, params []*TypedParameter, ret Type) string {
	s := fmt.Sprintf("%s(%s)", name, joinNodes(params, ", "))
	if ret != nil {
		s += ": " + ret.String()
	}
	return s
}

type FunctionDef struct {
	Attributes []*FunctionAttribute
	Name       *Id
	Return     Type
	Params     []*TypedParameter
	Statements []Statement
	Loc        source.Span
}

// FunctionDecl is a function without a body, only legal in traits.
type FunctionDecl struct {
	Attributes []*FunctionAttribute
	Name       *Id
	Return     Type
	Params     []*TypedParameter
	Loc        source.Span
}

type AsmShuffle struct {
	Args []*Id
	Ret  []*Number
}

func (s AsmShuffle) String() string {
	if len(s.Args) == 0 && len(s.Ret) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.Args)+len(s.Ret)+1)
	for _, a := range s.Args {
		parts = append(parts, a.Text)
	}
	if len(s.Ret) > 0 {
		parts = append(parts, "->")
		for _, r := range s.Ret {
			parts = append(parts, r.Value.String())
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type AsmFunctionDef struct {
	Shuffle      AsmShuffle
	Attributes   []*FunctionAttribute
	Name         *Id
	Return       Type
	Params       []*TypedParameter
	Instructions []string
	Loc          source.Span
}

type NativeFunctionDecl struct {
	Attributes []*FunctionAttribute
	Name       *Id
	NativeName *FuncId
	Params     []*TypedParameter
	Return     Type
	Loc        source.Span
}

// ConstantAttribute is virtual, override or abstract.
type ConstantAttribute struct {
	Type string
	Loc  source.Span
}

type ConstantDef struct {
	Attributes  []*ConstantAttribute
	Name        *Id
	Type        Type
	Initializer Expression
	Loc         source.Span
}

// ConstantDecl is a constant without a value, only legal as abstract in traits.
type ConstantDecl struct {
	Attributes []*ConstantAttribute
	Name       *Id
	Type       Type
	Loc        source.Span
}

type FieldDecl struct {
	Name        *Id
	Type        Type
	Initializer Expression
	As          *Id
	Loc         source.Span
}

type StructDecl struct {
	Name   *Id
	Fields []*FieldDecl
	Loc    source.Span
}

// MessageDecl has a nil Opcode when the opcode is derived from the signature.
type MessageDecl struct {
	Name   *Id
	Opcode Expression
	Fields []*FieldDecl
	Loc    source.Span
}

type PrimitiveTypeDecl struct {
	Name *Id
	Loc  source.Span
}

type ContractAttribute struct {
	Name *String
	Loc  source.Span
}

// Contract has nil Params when it has no parameter list at all.
type Contract struct {
	Name         *Id
	Traits       []*Id
	Attributes   []*ContractAttribute
	Params       []*FieldDecl
	Declarations []ContractDeclaration
	Loc          source.Span
}

type Trait struct {
	Name         *Id
	Traits       []*Id
	Attributes   []*ContractAttribute
	Declarations []TraitDeclaration
	Loc          source.Span
}

type ContractInit struct {
	Params     []*TypedParameter
	Statements []Statement
	Loc        source.Span
}

// ReceiverKind selects between internal, external and bounced receivers.
type ReceiverKind interface {
	String() string
	receiverKind()
}

// ReceiverSubKind is the parameter shape of an internal or external receiver.
type ReceiverSubKind interface {
	String() string
	receiverSubKind()
}

// ReceiverSimple takes a typed message parameter.
type ReceiverSimple struct {
	Param *TypedParameter
}

// ReceiverFallback takes no parameter.
type ReceiverFallback struct{}

// ReceiverComment matches a text comment.
type ReceiverComment struct {
	Comment *String
}

type ReceiverInternal struct {
	SubKind ReceiverSubKind
	Loc     source.Span
}

type ReceiverExternal struct {
	SubKind ReceiverSubKind
	Loc     source.Span
}

type ReceiverBounce struct {
	Param *TypedParameter
	Loc   source.Span
}

func (ReceiverSimple) receiverSubKind()   {}
func (ReceiverFallback) receiverSubKind() {}
func (ReceiverComment) receiverSubKind()  {}
func (*ReceiverInternal) receiverKind()   {}
func (*ReceiverExternal) receiverKind()   {}
func (*ReceiverBounce) receiverKind()     {}

func (s ReceiverSimple) String() string    { return s.Param.String() }
func (ReceiverFallback) String() string    { return "" }
func (s ReceiverComment) String() string   { return s.Comment.String() }
func (r *ReceiverInternal) String() string { return "receive(" + r.SubKind.String() + ")" }
func (r *ReceiverExternal) String() string { return "external(" + r.SubKind.String() + ")" }
func (r *ReceiverBounce) String() string   { return "bounced(" + r.Param.String() + ")" }

type Receiver struct {
	Selector   ReceiverKind
	Statements []Statement
	Loc        source.Span
}

func (*FunctionDef) moduleItem()        {}
func (*AsmFunctionDef) moduleItem()     {}
func (*NativeFunctionDecl) moduleItem() {}
func (*ConstantDef) moduleItem()        {}
func (*StructDecl) moduleItem()         {}
func (*MessageDecl) moduleItem()        {}
func (*PrimitiveTypeDecl) moduleItem()  {}
func (*Contract) moduleItem()           {}
func (*Trait) moduleItem()              {}

func (*FunctionDef) contractDeclaration()    {}
func (*AsmFunctionDef) contractDeclaration() {}
func (*ConstantDef) contractDeclaration()    {}
func (*FieldDecl) contractDeclaration()      {}
func (*ContractInit) contractDeclaration()   {}
func (*Receiver) contractDeclaration()       {}

func (*FunctionDef) traitDeclaration()    {}
func (*FunctionDecl) traitDeclaration()   {}
func (*AsmFunctionDef) traitDeclaration() {}
func (*ConstantDef) traitDeclaration()    {}
func (*ConstantDecl) traitDeclaration()   {}
func (*FieldDecl) traitDeclaration()      {}
func (*Receiver) traitDeclaration()       {}

func (n *FunctionDef) Location() source.Span        { return n.Loc }
func (n *FunctionDecl) Location() source.Span       { return n.Loc }
func (n *AsmFunctionDef) Location() source.Span     { return n.Loc }
func (n *NativeFunctionDecl) Location() source.Span { return n.Loc }
func (n *ConstantDef) Location() source.Span        { return n.Loc }
func (n *ConstantDecl) Location() source.Span       { return n.Loc }
func (n *FieldDecl) Location() source.Span          { return n.Loc }
func (n *StructDecl) Location() source.Span         { return n.Loc }
func (n *MessageDecl) Location() source.Span        { return n.Loc }
func (n *PrimitiveTypeDecl) Location() source.Span  { return n.Loc }
func (n *Contract) Location() source.Span           { return n.Loc }
func (n *Trait) Location() source.Span              { return n.Loc }
func (n *ContractInit) Location() source.Span       { return n.Loc }
func (n *Receiver) Location() source.Span           { return n.Loc }

func (n *FunctionDef) String() string {
	return fmt.Sprintf("%sfun %s %s", attrs(n.Attributes), signature(n.Name, n.Params, n.Return), block(n.Statements))
}

func (n *FunctionDecl) String() string {
	return fmt.Sprintf("%sfun %s;", attrs(n.Attributes), signature(n.Name, n.Params, n.Return))
}

func (n *AsmFunctionDef) String() string {
	return fmt.Sprintf("asm%s %sfun %s { %s }", n.Shuffle, attrs(n.Attributes),
		signature(n.Name, n.Params, n.Return), strings.Join(n.Instructions, " "))
}

func (n *NativeFunctionDecl) String() string {
	return fmt.Sprintf("@name(%s) %snative %s;", n.NativeName, attrs(n.Attributes), signature(n.Name, n.Params, n.Return))
}

func constAttrs(list []*ConstantAttribute) string {
	var sb strings.Builder
	for _, a := range list {
		sb.WriteString(a.Type + " ")
	}
	return sb.String()
}

func (n *ConstantDef) String() string {
	return fmt.Sprintf("%sconst %s: %s = %s;", constAttrs(n.Attributes), n.Name, n.Type, n.Initializer)
}

func (n *ConstantDecl) String() string {
	return fmt.Sprintf("%sconst %s: %s;", constAttrs(n.Attributes), n.Name, n.Type)
}

func (n *FieldDecl) String() string {
	s := fmt.Sprintf("%s: %s", n.Name, n.Type)
	if n.As != nil {
		s += " as " + n.As.Text
	}
	if n.Initializer != nil {
		s += " = " + n.Initializer.String()
	}
	return s + ";"
}

func fields(list []*FieldDecl) string {
	if len(list) == 0 {
		return "{}"
	}
	return "{\n" + indent(joinNodes(list, "\n")) + "\n}"
}

func (n *StructDecl) String() string {
	return fmt.Sprintf("struct %s %s", n.Name, fields(n.Fields))
}

func (n *MessageDecl) String() string {
	if n.Opcode != nil {
		return fmt.Sprintf("message(%s) %s %s", n.Opcode, n.Name, fields(n.Fields))
	}
	return fmt.Sprintf("message %s %s", n.Name, fields(n.Fields))
}

func (n *PrimitiveTypeDecl) String() string {
	return fmt.Sprintf("primitive %s;", n.Name)
}

func header(kind string, attributes []*ContractAttribute, name *Id) string {
	var sb strings.Builder
	for _, a := range attributes {
		sb.WriteString(fmt.Sprintf("@interface(%s)\n", a.Name))
	}
	sb.WriteString(kind + " " + name.Text)
	return sb.String()
}

func withTraits(traits []*Id) string {
	if len(traits) == 0 {
		return ""
	}
	return " with " + joinNodes(traits, ", ")
}

func declarations[T Node](list []T) string {
	if len(list) == 0 {
		return "{}"
	}
	return "{\n" + indent(joinNodes(list, "\n\n")) + "\n}"
}

func (n *Contract) String() string {
	s := header("contract", n.Attributes, n.Name)
	if n.Params != nil {
		parts := make([]string, len(n.Params))
		for i, p := range n.Params {
			parts[i] = strings.TrimSuffix(p.String(), ";")
		}
		s += "(" + strings.Join(parts, ", ") + ")"
	}
	return s + withTraits(n.Traits) + " " + declarations(n.Declarations)
}

func (n *Trait) String() string {
	return header("trait", n.Attributes, n.Name) + withTraits(n.Traits) + " " + declarations(n.Declarations)
}

func (n *ContractInit) String() string {
	return fmt.Sprintf("init(%s) %s", joinNodes(n.Params, ", "), block(n.Statements))
}

func (n *Receiver) String() string {
	return n.Selector.String() + " " + block(n.Statements)
}
