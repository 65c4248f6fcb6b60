package builder

import (
	"math/big"
	"strings"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

// scope selects the rules that differ between module, contract and trait items
type scope int

const (
	scopeModule scope = iota
	scopeContract
	scopeTrait
)

func (b *Builder) moduleItem(item cst.ModuleItem) ast.ModuleItem {
	v := &declBuilder{b: b, scope: scopeModule}
	item.AcceptModuleItem(v)
	return v.module
}

func (b *Builder) contractItem(item cst.ContractItem) ast.ContractDeclaration {
	v := &declBuilder{b: b, scope: scopeContract}
	item.AcceptContractItem(v)
	return v.contract
}

func (b *Builder) traitItem(item cst.TraitItem) ast.TraitDeclaration {
	v := &declBuilder{b: b, scope: scopeTrait}
	item.AcceptTraitItem(v)
	return v.trait
}

// declBuilder implements the module, contract and trait item visitors. Only
// the result field matching scope is set.
type declBuilder struct {
	b        *Builder
	scope    scope
	module   ast.ModuleItem
	contract ast.ContractDeclaration
	trait    ast.TraitDeclaration
}

// set stores n in every result slot whose interface it satisfies
func (v *declBuilder) set(n ast.Node) {
	if m, ok := n.(ast.ModuleItem); ok {
		v.module = m
	}
	if c, ok := n.(ast.ContractDeclaration); ok {
		v.contract = c
	}
	if t, ok := n.(ast.TraitDeclaration); ok {
		v.trait = t
	}
}

func (v *declBuilder) VisitPrimitiveTypeDecl(n *cst.PrimitiveTypeDecl) {
	v.set(&ast.PrimitiveTypeDecl{Name: v.b.typeName(n.Name), Loc: v.b.span(n.Loc)})
}

func (v *declBuilder) VisitFunction(n *cst.Function) {
	fn := v.b.function(n)
	if v.scope == scopeTrait {
		v.set(fn)
		return
	}
	decl, ok := fn.(*ast.FunctionDecl)
	if !ok {
		v.set(fn)
		return
	}
	v.b.fail(n.Loc, msgNoFunctionDecl)
	v.set(&ast.FunctionDef{
		Attributes: decl.Attributes,
		Name:       decl.Name,
		Return:     decl.Return,
		Params:     decl.Params,
		Loc:        decl.Loc,
	})
}

func (v *declBuilder) VisitAsmFunction(n *cst.AsmFunction) {
	if v.scope != scopeModule {
		v.b.fail(n.Loc, msgUnsupportedAsmInScope)
	}
	v.set(v.b.asmFunction(n))
}

func (v *declBuilder) VisitNativeFunctionDecl(n *cst.NativeFunctionDecl) {
	out := &ast.NativeFunctionDecl{Loc: v.b.span(n.Loc)}
	for _, a := range n.Attributes {
		out.Attributes = append(out.Attributes, v.b.functionAttribute(a))
	}
	out.Name = v.b.ident(n.Name)
	out.NativeName = v.b.funcId(n.NativeName)
	out.Params = v.b.params(n.Params)
	if n.ReturnType != nil {
		out.Return = v.b.typ(n.ReturnType)
	}
	v.set(out)
}

func (v *declBuilder) VisitConstant(n *cst.Constant) {
	c := v.b.constant(n, v.scope == scopeModule)
	if v.scope == scopeTrait {
		v.set(c)
		return
	}
	decl, ok := c.(*ast.ConstantDecl)
	if !ok {
		v.set(c)
		return
	}
	v.b.fail(n.Loc, msgNoConstantDecl)
	v.set(&ast.ConstantDef{
		Attributes:  decl.Attributes,
		Name:        decl.Name,
		Type:        decl.Type,
		Initializer: zero(decl.Loc),
		Loc:         decl.Loc,
	})
}

func (v *declBuilder) VisitStructDecl(n *cst.StructDecl) {
	v.set(&ast.StructDecl{Name: v.b.typeName(n.Name), Fields: v.b.fields(n.Fields), Loc: v.b.span(n.Loc)})
}

func (v *declBuilder) VisitMessageDecl(n *cst.MessageDecl) {
	out := &ast.MessageDecl{Name: v.b.typeName(n.Name), Loc: v.b.span(n.Loc)}
	if n.Opcode != nil {
		out.Opcode = v.b.expr(n.Opcode)
	}
	out.Fields = v.b.fields(n.Fields)
	v.set(out)
}

func (v *declBuilder) VisitContract(n *cst.Contract) {
	out := &ast.Contract{Loc: v.b.span(n.Loc)}
	if n.Params != nil {
		out.Params = []*ast.FieldDecl{}
		for _, p := range n.Params.Values {
			out.Params = append(out.Params, v.b.field(&cst.FieldDecl{Name: p.Name, Type: p.Type, Loc: p.Loc}))
		}
	}
	out.Name = v.b.typeName(n.Name)
	out.Traits = v.b.traitNames(n.Traits)
	out.Attributes = v.b.contractAttributes(n.Attributes)
	for _, item := range n.Items {
		out.Declarations = append(out.Declarations, v.b.contractItem(item))
	}
	v.set(out)
}

func (v *declBuilder) VisitTrait(n *cst.Trait) {
	out := &ast.Trait{
		Name:       v.b.typeName(n.Name),
		Traits:     v.b.traitNames(n.Traits),
		Attributes: v.b.contractAttributes(n.Attributes),
		Loc:        v.b.span(n.Loc),
	}
	for _, item := range n.Items {
		out.Declarations = append(out.Declarations, v.b.traitItem(item))
	}
	v.set(out)
}

func (v *declBuilder) VisitContractInit(n *cst.ContractInit) {
	out := &ast.ContractInit{Loc: v.b.span(n.Loc)}
	for _, p := range n.Params {
		out.Params = append(out.Params, v.b.initParam(p))
	}
	out.Statements = v.b.stmts(n.Body)
	v.set(out)
}

func (v *declBuilder) VisitFieldDecl(n *cst.FieldDecl) {
	v.set(v.b.field(n))
}

func (v *declBuilder) VisitReceiver(n *cst.Receiver) {
	v.set(v.b.receiver(n))
}

func zero(loc source.Span) *ast.Number {
	return &ast.Number{Base: 10, Value: big.NewInt(0), Loc: loc}
}

func (b *Builder) traitNames(list []*cst.TypeId) []*ast.Id {
	out := []*ast.Id{}
	for _, t := range list {
		out = append(out, b.typeName(t))
	}
	return out
}

func (b *Builder) contractAttributes(list []*cst.ContractAttribute) []*ast.ContractAttribute {
	var out []*ast.ContractAttribute
	for _, a := range list {
		out = append(out, &ast.ContractAttribute{Name: b.str(a.Name), Loc: b.span(a.Loc)})
	}
	return out
}

func (b *Builder) field(n *cst.FieldDecl) *ast.FieldDecl {
	out := &ast.FieldDecl{Name: b.ident(n.Name), Loc: b.span(n.Loc)}
	if n.Init != nil {
		out.Initializer = b.expr(n.Init)
	}
	out.As = b.firstAs(n.Type, n.Loc, msgFieldOnlyOneAs)
	out.Type = b.typeOptional(n.Type)
	return out
}

func (b *Builder) fields(list []*cst.FieldDecl) []*ast.FieldDecl {
	var out []*ast.FieldDecl
	for _, f := range list {
		out = append(out, b.field(f))
	}
	return out
}

func (b *Builder) param(n *cst.Parameter) *ast.TypedParameter {
	return &ast.TypedParameter{
		Name: b.optionalId(n.Name.Name, n.Name.Loc),
		Type: b.typ(n.Type),
		Loc:  b.span(n.Loc),
	}
}

func (b *Builder) params(list []*cst.Parameter) []*ast.TypedParameter {
	var out []*ast.TypedParameter
	for _, p := range list {
		out = append(out, b.param(p))
	}
	return out
}

// initParam allows one serialization format, like a contract field
func (b *Builder) initParam(n *cst.Parameter) *ast.TypedParameter {
	t := b.typeOptional(n.Type)
	as := b.firstAs(n.Type, n.Loc, msgParameterOnlyOneAs)
	return &ast.TypedParameter{
		Name: b.optionalId(n.Name.Name, n.Name.Loc),
		Type: t,
		As:   as,
		Loc:  b.span(n.Loc),
	}
}

func (b *Builder) functionAttribute(n *cst.FunctionAttribute) *ast.FunctionAttribute {
	out := &ast.FunctionAttribute{Type: n.Name, Loc: b.span(n.Loc)}
	if n.MethodId != nil {
		out.MethodId = b.expr(n.MethodId)
	}
	return out
}

// checkAttributes rejects repeated attributes and enforces that exactly the
// bodiless declarations are abstract
func (b *Builder) checkAttributes(kind string, bodiless bool, names []string, locs []source.Loc, loc source.Loc) {
	seen := make(map[string]bool)
	for i, name := range names {
		if seen[name] {
			b.fail(locs[i], msgDuplicateAttribute(kind, name))
		}
		seen[name] = true
	}
	if bodiless && !seen["abstract"] {
		b.fail(loc, msgNotAbstract(kind))
	}
	if !bodiless && seen["abstract"] {
		b.fail(loc, msgTooAbstract(kind))
	}
}

func (b *Builder) functionAttributes(list []*cst.FunctionAttribute, bodiless bool, loc source.Loc) []*ast.FunctionAttribute {
	names := make([]string, len(list))
	locs := make([]source.Loc, len(list))
	for i, a := range list {
		names[i], locs[i] = a.Name, a.Loc
	}
	b.checkAttributes("function", bodiless, names, locs, loc)
	var out []*ast.FunctionAttribute
	for _, a := range list {
		out = append(out, b.functionAttribute(a))
	}
	return out
}

// function returns a *ast.FunctionDef, or a *ast.FunctionDecl without a body
func (b *Builder) function(n *cst.Function) ast.Node {
	name := b.ident(n.Name)
	var ret ast.Type
	if n.ReturnType != nil {
		ret = b.typ(n.ReturnType)
	}
	params := b.params(n.Params)
	if n.Body == nil {
		return &ast.FunctionDecl{
			Attributes: b.functionAttributes(n.Attributes, true, n.Loc),
			Name:       name,
			Return:     ret,
			Params:     params,
			Loc:        b.span(n.Loc),
		}
	}
	attrs := b.functionAttributes(n.Attributes, false, n.Loc)
	return &ast.FunctionDef{
		Attributes: attrs,
		Name:       name,
		Return:     ret,
		Params:     params,
		Statements: b.stmts(n.Body.Statements),
		Loc:        b.span(n.Loc),
	}
}

func (b *Builder) asmFunction(n *cst.AsmFunction) *ast.AsmFunctionDef {
	var shuffle ast.AsmShuffle
	if n.Shuffle != nil {
		for _, id := range n.Shuffle.Ids {
			shuffle.Args = append(shuffle.Args, b.ident(id))
		}
		for _, to := range n.Shuffle.To {
			shuffle.Ret = append(shuffle.Ret, b.number(to))
		}
	}
	out := &ast.AsmFunctionDef{
		Shuffle:    shuffle,
		Attributes: b.functionAttributes(n.Attributes, false, n.Loc),
		Name:       b.ident(n.Name),
		Loc:        b.span(n.Loc),
	}
	if n.ReturnType != nil {
		out.Return = b.typ(n.ReturnType)
	}
	out.Params = b.params(n.Params)
	for _, ins := range n.Instructions {
		out.Instructions = append(out.Instructions, strings.TrimSpace(ins))
	}
	return out
}

// constant returns a *ast.ConstantDef, or a *ast.ConstantDecl without a value
func (b *Builder) constant(n *cst.Constant, noAttributes bool) ast.Node {
	name := b.ident(n.Name)
	t := b.typ(n.Type)

	if noAttributes && len(n.Attributes) > 0 {
		b.fail(n.Attributes[0].Loc, msgTopLevelConstAttr)
	}
	names := make([]string, len(n.Attributes))
	locs := make([]source.Loc, len(n.Attributes))
	var attrs []*ast.ConstantAttribute
	for i, a := range n.Attributes {
		names[i], locs[i] = a.Name, a.Loc
	}
	b.checkAttributes("constant", n.Init == nil, names, locs, n.Loc)
	for _, a := range n.Attributes {
		attrs = append(attrs, &ast.ConstantAttribute{Type: a.Name, Loc: b.span(a.Loc)})
	}

	if n.Init == nil {
		return &ast.ConstantDecl{Attributes: attrs, Name: name, Type: t, Loc: b.span(n.Loc)}
	}
	return &ast.ConstantDef{Attributes: attrs, Name: name, Type: t, Initializer: b.expr(n.Init), Loc: b.span(n.Loc)}
}

// repairParam stands in for the parameter of a malformed bounced receiver
var repairParam = &cst.Parameter{
	Name: &cst.Id{Name: "__invalid__", Loc: source.Empty},
	Type: &cst.TypeAs{
		Type: &cst.TypeOptional{
			Type: &cst.TypeRegular{Child: &cst.TypeId{Name: "__Invalid__", Loc: source.Empty}, Loc: source.Empty},
			Loc:  source.Empty,
		},
		Loc: source.Empty,
	},
	Loc: source.Empty,
}

func (b *Builder) receiverSubKind(param cst.Node) ast.ReceiverSubKind {
	switch p := param.(type) {
	case *cst.Parameter:
		return ast.ReceiverSimple{Param: b.param(p)}
	case *cst.StringLiteral:
		return ast.ReceiverComment{Comment: b.str(p)}
	}
	return ast.ReceiverFallback{}
}

func (b *Builder) receiver(n *cst.Receiver) *ast.Receiver {
	kindLoc := b.span(n.Kind.Loc)
	var selector ast.ReceiverKind
	switch n.Kind.Name {
	case "receive":
		selector = &ast.ReceiverInternal{SubKind: b.receiverSubKind(n.Param), Loc: kindLoc}
	case "external":
		selector = &ast.ReceiverExternal{SubKind: b.receiverSubKind(n.Param), Loc: kindLoc}
	case "bounced":
		param, ok := n.Param.(*cst.Parameter)
		switch {
		case n.Param == nil:
			b.fail(n.Loc, msgNoBouncedWithoutArg)
			param = repairParam
		case !ok:
			b.fail(n.Loc, msgNoBouncedWithString)
			param = repairParam
		}
		selector = &ast.ReceiverBounce{Param: b.param(param), Loc: kindLoc}
	default:
		b.onError(source.InternalError(b.span(n.Kind.Loc), "unknown receiver kind "+n.Kind.Name))
		selector = &ast.ReceiverInternal{SubKind: ast.ReceiverFallback{}, Loc: kindLoc}
	}
	return &ast.Receiver{Selector: selector, Statements: b.stmts(n.Body), Loc: b.span(n.Loc)}
}
