package cst

import "github.com/xyproto/tactc/internal/source"

// ModuleItem is a top-level declaration.
type ModuleItem interface {
	Node
	AcceptModuleItem(v ModuleItemVisitor)
}

type ModuleItemVisitor interface {
	VisitPrimitiveTypeDecl(*PrimitiveTypeDecl)
	VisitFunction(*Function)
	VisitAsmFunction(*AsmFunction)
	VisitNativeFunctionDecl(*NativeFunctionDecl)
	VisitConstant(*Constant)
	VisitStructDecl(*StructDecl)
	VisitMessageDecl(*MessageDecl)
	VisitContract(*Contract)
	VisitTrait(*Trait)
}

// ContractItem is a declaration inside a contract body.
type ContractItem interface {
	Node
	AcceptContractItem(v ContractItemVisitor)
}

type ContractItemVisitor interface {
	VisitContractInit(*ContractInit)
	VisitFieldDecl(*FieldDecl)
	VisitReceiver(*Receiver)
	VisitFunction(*Function)
	VisitAsmFunction(*AsmFunction)
	VisitConstant(*Constant)
}

// TraitItem is a declaration inside a trait body.
type TraitItem interface {
	Node
	AcceptTraitItem(v TraitItemVisitor)
}

type TraitItemVisitor interface {
	VisitFieldDecl(*FieldDecl)
	VisitReceiver(*Receiver)
	VisitFunction(*Function)
	VisitAsmFunction(*AsmFunction)
	VisitConstant(*Constant)
}

type PrimitiveTypeDecl struct {
	Name *TypeId
	Loc  source.Loc
}

// FunctionAttribute is one of get, get(id), mutates, extends, virtual,
// override, inline or abstract. MethodId is set only for get(id).
type FunctionAttribute struct {
	Name     string
	MethodId Expr
	Loc      source.Loc
}

type Parameter struct {
	Name *Id
	Type *TypeAs
	Loc  source.Loc
}

// FunctionBody is nil for a declaration without a body.
type FunctionBody struct {
	Statements []Statement
	Loc        source.Loc
}

type Function struct {
	Attributes []*FunctionAttribute
	Name       *Id
	Params     []*Parameter
	ReturnType *TypeAs
	Body       *FunctionBody
	Loc        source.Loc
}

// AsmShuffle is the `(a b -> 1 0)` part of an asm function header.
type AsmShuffle struct {
	Ids []*Id
	To  []*IntegerLiteral
	Loc source.Loc
}

type AsmFunction struct {
	Shuffle      *AsmShuffle
	Attributes   []*FunctionAttribute
	Name         *Id
	Params       []*Parameter
	ReturnType   *TypeAs
	Instructions []string
	Loc          source.Loc
}

type NativeFunctionDecl struct {
	Attributes []*FunctionAttribute
	NativeName *FuncId
	Name       *Id
	Params     []*Parameter
	ReturnType *TypeAs
	Loc        source.Loc
}

// ConstantAttribute is one of virtual, override or abstract.
type ConstantAttribute struct {
	Name string
	Loc  source.Loc
}

// Constant has a nil Init when it is only declared.
type Constant struct {
	Attributes []*ConstantAttribute
	Name       *Id
	Type       *TypeAs
	Init       Expr
	Loc        source.Loc
}

type FieldDecl struct {
	Name *Id
	Type *TypeAs
	Init Expr
	Loc  source.Loc
}

type StructDecl struct {
	Name   *TypeId
	Fields []*FieldDecl
	Loc    source.Loc
}

type MessageDecl struct {
	Opcode Expr
	Name   *TypeId
	Fields []*FieldDecl
	Loc    source.Loc
}

type ContractAttribute struct {
	Name *StringLiteral
	Loc  source.Loc
}

// ContractParams is nil when the contract has no parameter list.
type ContractParams struct {
	Values []*Parameter
	Loc    source.Loc
}

type Contract struct {
	Attributes []*ContractAttribute
	Name       *TypeId
	Params     *ContractParams
	Traits     []*TypeId
	Items      []ContractItem
	Loc        source.Loc
}

type Trait struct {
	Attributes []*ContractAttribute
	Name       *TypeId
	Traits     []*TypeId
	Items      []TraitItem
	Loc        source.Loc
}

type ContractInit struct {
	Params []*Parameter
	Body   []Statement
	Loc    source.Loc
}

// ReceiverKind is "receive", "external" or "bounced".
type ReceiverKind struct {
	Name string
	Loc  source.Loc
}

// Receiver has a Param that is nil, a *Parameter or a *StringLiteral.
type Receiver struct {
	Kind  *ReceiverKind
	Param Node
	Body  []Statement
	Loc   source.Loc
}

func (n *PrimitiveTypeDecl) Location() source.Loc  { return n.Loc }
func (n *FunctionAttribute) Location() source.Loc  { return n.Loc }
func (n *Parameter) Location() source.Loc          { return n.Loc }
func (n *FunctionBody) Location() source.Loc       { return n.Loc }
func (n *Function) Location() source.Loc           { return n.Loc }
func (n *AsmShuffle) Location() source.Loc         { return n.Loc }
func (n *AsmFunction) Location() source.Loc        { return n.Loc }
func (n *NativeFunctionDecl) Location() source.Loc { return n.Loc }
func (n *ConstantAttribute) Location() source.Loc  { return n.Loc }
func (n *Constant) Location() source.Loc           { return n.Loc }
func (n *FieldDecl) Location() source.Loc          { return n.Loc }
func (n *StructDecl) Location() source.Loc         { return n.Loc }
func (n *MessageDecl) Location() source.Loc        { return n.Loc }
func (n *ContractAttribute) Location() source.Loc  { return n.Loc }
func (n *ContractParams) Location() source.Loc     { return n.Loc }
func (n *Contract) Location() source.Loc           { return n.Loc }
func (n *Trait) Location() source.Loc              { return n.Loc }
func (n *ContractInit) Location() source.Loc       { return n.Loc }
func (n *ReceiverKind) Location() source.Loc       { return n.Loc }
func (n *Receiver) Location() source.Loc           { return n.Loc }

func (n *PrimitiveTypeDecl) AcceptModuleItem(v ModuleItemVisitor)  { v.VisitPrimitiveTypeDecl(n) }
func (n *Function) AcceptModuleItem(v ModuleItemVisitor)           { v.VisitFunction(n) }
func (n *AsmFunction) AcceptModuleItem(v ModuleItemVisitor)        { v.VisitAsmFunction(n) }
func (n *NativeFunctionDecl) AcceptModuleItem(v ModuleItemVisitor) { v.VisitNativeFunctionDecl(n) }
func (n *Constant) AcceptModuleItem(v ModuleItemVisitor)           { v.VisitConstant(n) }
func (n *StructDecl) AcceptModuleItem(v ModuleItemVisitor)         { v.VisitStructDecl(n) }
func (n *MessageDecl) AcceptModuleItem(v ModuleItemVisitor)        { v.VisitMessageDecl(n) }
func (n *Contract) AcceptModuleItem(v ModuleItemVisitor)           { v.VisitContract(n) }
func (n *Trait) AcceptModuleItem(v ModuleItemVisitor)              { v.VisitTrait(n) }

func (n *ContractInit) AcceptContractItem(v ContractItemVisitor) { v.VisitContractInit(n) }
func (n *FieldDecl) AcceptContractItem(v ContractItemVisitor)    { v.VisitFieldDecl(n) }
func (n *Receiver) AcceptContractItem(v ContractItemVisitor)     { v.VisitReceiver(n) }
func (n *Function) AcceptContractItem(v ContractItemVisitor)     { v.VisitFunction(n) }
func (n *AsmFunction) AcceptContractItem(v ContractItemVisitor)  { v.VisitAsmFunction(n) }
func (n *Constant) AcceptContractItem(v ContractItemVisitor)     { v.VisitConstant(n) }

func (n *FieldDecl) AcceptTraitItem(v TraitItemVisitor)   { v.VisitFieldDecl(n) }
func (n *Receiver) AcceptTraitItem(v TraitItemVisitor)    { v.VisitReceiver(n) }
func (n *Function) AcceptTraitItem(v TraitItemVisitor)    { v.VisitFunction(n) }
func (n *AsmFunction) AcceptTraitItem(v TraitItemVisitor) { v.VisitAsmFunction(n) }
func (n *Constant) AcceptTraitItem(v TraitItemVisitor)    { v.VisitConstant(n) }
