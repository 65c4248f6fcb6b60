package types

import (
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/source"
)

// Primitives are known without a declaration
var Primitives = []string{"Int", "Bool", "Builder", "Slice", "Cell", "Address", "String", "StringBuilder"}

// Builtin is a method implemented by the compiler rather than by a
// declaration. args holds the type of the receiver first.
type Builtin interface {
	Resolve(p *Program, args []Ref, loc source.Span) (Ref, error)
}

// Options configures resolution
type Options struct {
	StructMethods map[string]Builtin
	MapMethods    map[string]Builtin
	Logf          func(format string, args ...any)
}

// bailout carries the first error up to Resolve
type bailout struct {
	err error
}

type resolver struct {
	prog *Program
	opts Options
}

func (r *resolver) fail(span source.Span, message string) {
	panic(bailout{source.SemanticError(span, message)})
}

func (r *resolver) failSuggest(span source.Span, message, suggestion string) {
	err := source.SemanticError(span, message)
	err.Context.Suggestion = suggestion
	panic(bailout{err})
}

func (r *resolver) logf(format string, args ...any) {
	if r.opts.Logf != nil {
		r.opts.Logf(format, args...)
	}
}

// Resolve collects the declarations of all modules and type checks every
// function body and constant initializer. Modules are processed in order;
// a name declared twice across modules is an error.
func Resolve(modules []*ast.Module, opts Options) (prog *Program, err error) {
	r := &resolver{prog: newProgram(), opts: opts}
	defer func() {
		if x := recover(); x != nil {
			bail, ok := x.(bailout)
			if !ok {
				panic(x)
			}
			prog, err = nil, bail.err
		}
	}()

	for _, name := range Primitives {
		r.addType(&Description{Name: name, Kind: KindPrimitive, Functions: make(map[string]*Function)})
	}

	// Names first so that declarations may refer to each other in any order
	for _, m := range modules {
		for _, item := range m.Items {
			r.declareType(item)
		}
	}
	for _, m := range modules {
		for _, item := range m.Items {
			r.resolveFields(item)
		}
	}
	for _, m := range modules {
		for _, item := range m.Items {
			r.declareFunction(item)
		}
	}
	for _, name := range r.prog.TypeOrder {
		if d := r.prog.Types[name]; d.Kind == KindMessage {
			r.logf("message %s has opcode 0x%08x", d.Name, d.Opcode)
		}
	}

	c := newChecker(r)
	c.checkAll()
	return r.prog, nil
}

func (r *resolver) addType(d *Description) {
	r.prog.Types[d.Name] = d
	r.prog.TypeOrder = append(r.prog.TypeOrder, d.Name)
}

func (r *resolver) declareType(item ast.ModuleItem) {
	var (
		name *ast.Id
		kind Kind
	)
	switch n := item.(type) {
	case *ast.PrimitiveTypeDecl:
		if d, ok := r.prog.Types[n.Name.Text]; ok && d.Kind == KindPrimitive {
			return
		}
		name, kind = n.Name, KindPrimitive
	case *ast.StructDecl:
		name, kind = n.Name, KindStruct
	case *ast.MessageDecl:
		name, kind = n.Name, KindMessage
	case *ast.Contract:
		name, kind = n.Name, KindContract
	case *ast.Trait:
		name, kind = n.Name, KindTrait
	default:
		return
	}
	if _, ok := r.prog.Types[name.Text]; ok {
		r.fail(name.Loc, fmt.Sprintf("type %q is already declared", name.Text))
	}
	r.addType(&Description{
		Name:      name.Text,
		Kind:      kind,
		Functions: make(map[string]*Function),
		Loc:       item.Location(),
	})
}

func (r *resolver) resolveFields(item ast.ModuleItem) {
	switch n := item.(type) {
	case *ast.StructDecl:
		r.fields(r.prog.Types[n.Name.Text], n.Fields)
	case *ast.MessageDecl:
		d := r.prog.Types[n.Name.Text]
		r.fields(d, n.Fields)
		d.Opcode = r.opcode(d, n)
	case *ast.Contract:
		d := r.prog.Types[n.Name.Text]
		fields := append([]*ast.FieldDecl(nil), n.Params...)
		for _, decl := range n.Declarations {
			if f, ok := decl.(*ast.FieldDecl); ok {
				fields = append(fields, f)
			}
		}
		r.fields(d, fields)
	case *ast.Trait:
		var fields []*ast.FieldDecl
		for _, decl := range n.Declarations {
			if f, ok := decl.(*ast.FieldDecl); ok {
				fields = append(fields, f)
			}
		}
		r.fields(r.prog.Types[n.Name.Text], fields)
	}
}

func (r *resolver) fields(d *Description, decls []*ast.FieldDecl) {
	for _, f := range decls {
		if d.Field(f.Name.Text) != nil {
			r.fail(f.Name.Loc, fmt.Sprintf("field %q is already declared in %s", f.Name.Text, d.Name))
		}
		field := &Field{
			Name:    f.Name.Text,
			Index:   len(d.Fields),
			Type:    r.typeRef(f.Type),
			Default: f.Initializer,
			Loc:     f.Loc,
		}
		if field.Type.Kind == RefNamed && field.Type.Name == d.Name {
			r.fail(f.Loc, fmt.Sprintf("%s cannot contain itself", d.Name))
		}
		if f.As != nil {
			field.As = f.As.Text
			r.checkFormat(field.Type, f.As)
		}
		d.Fields = append(d.Fields, field)
	}
}

// checkFormat validates the `as` annotation of a field or parameter
func (r *resolver) checkFormat(t Ref, as *ast.Id) {
	switch {
	case t.Kind == RefNamed && t.Name == "Int":
		if _, err := ParseFormat(as.Text); err != nil {
			r.fail(as.Loc, err.Error())
		}
	case t.Kind == RefNamed && !t.Optional && (t.Name == "Slice" || t.Name == "Cell" || t.Name == "Builder"):
		if as.Text != "remaining" {
			r.fail(as.Loc, fmt.Sprintf("%s only supports \"as remaining\"", t.Name))
		}
	default:
		r.fail(as.Loc, fmt.Sprintf("type %s does not support serialization formats", t))
	}
}

// opcode returns the explicit opcode of a message or the CRC32 of its
// signature, e.g. "Transfer{amount:coins,to:address}"
func (r *resolver) opcode(d *Description, n *ast.MessageDecl) uint32 {
	if n.Opcode != nil {
		num, ok := n.Opcode.(*ast.Number)
		if !ok {
			r.fail(n.Opcode.Location(), "message opcode must be an integer literal")
		}
		if num.Value.Sign() <= 0 || num.Value.BitLen() > 32 {
			r.fail(num.Loc, "message opcode must be a positive 32-bit integer")
		}
		return uint32(num.Value.Uint64())
	}
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = f.Name + ":" + abiTypeName(f)
	}
	return crc32.ChecksumIEEE([]byte(d.Name + "{" + strings.Join(parts, ",") + "}"))
}

func abiTypeName(f *Field) string {
	t := f.Type
	var name string
	switch {
	case t.Kind == RefMap:
		name = "dict<" + strings.ToLower(t.Key) + ", " + strings.ToLower(t.Value) + ">"
	case t.Name == "Int":
		format, _ := ParseFormat(f.As)
		name = format.String()
	case t.Name == "Bool":
		name = "bool"
	case t.Name == "Address" || t.Name == "Cell" || t.Name == "Slice" || t.Name == "Builder" || t.Name == "String":
		name = strings.ToLower(t.Name)
		if f.As != "" {
			name += " as " + f.As
		}
	default:
		name = t.Name
	}
	if t.Optional {
		name += "?"
	}
	return name
}

// typeRef resolves a type expression
func (r *resolver) typeRef(t ast.Type) Ref {
	switch n := t.(type) {
	case *ast.TypeId:
		r.requireType(n)
		return Named(n.Text)
	case *ast.OptionalType:
		r.requireType(n.TypeArg)
		return Optional(n.TypeArg.Text)
	case *ast.MapType:
		return r.mapRef(n)
	case *ast.BouncedMessageType:
		r.fail(n.Loc, "bounced<> types are only available in bounced receivers")
	}
	panic(fmt.Sprintf("types: unhandled type node %T", t))
}

func (r *resolver) requireType(n *ast.TypeId) *Description {
	d, ok := r.prog.Types[n.Text]
	if !ok {
		r.failSuggest(n.Loc, fmt.Sprintf("type %q is not found", n.Text), didYouMean(n.Text, r.prog.TypeOrder))
	}
	if d.Kind == KindContract || d.Kind == KindTrait {
		r.fail(n.Loc, fmt.Sprintf("%s %s cannot be used as a value type", d.Kind, d.Name))
	}
	return d
}

func (r *resolver) mapRef(n *ast.MapType) Ref {
	ref := Ref{Kind: RefMap, Key: n.KeyType.Text, Value: n.ValueType.Text}
	switch ref.Key {
	case "Int", "Address":
	default:
		r.fail(n.KeyType.Loc, "map keys must be Int or Address")
	}
	if n.KeyStorageType != nil {
		ref.KeyAs = n.KeyStorageType.Text
		if ref.Key != "Int" {
			r.fail(n.KeyStorageType.Loc, "only Int map keys support serialization formats")
		}
		format, err := ParseFormat(ref.KeyAs)
		if err != nil {
			r.fail(n.KeyStorageType.Loc, err.Error())
		}
		if format.Name != "int" && format.Name != "uint" {
			r.fail(n.KeyStorageType.Loc, "map keys must be intN or uintN")
		}
	}

	value := r.requireType(n.ValueType)
	switch {
	case ref.Value == "Int" || ref.Value == "Bool" || ref.Value == "Cell" || ref.Value == "Address":
	case value.IsStruct():
	default:
		r.fail(n.ValueType.Loc, fmt.Sprintf("map values of type %s are not supported", ref.Value))
	}
	if n.ValueStorageType != nil {
		ref.ValueAs = n.ValueStorageType.Text
		if ref.Value != "Int" {
			r.fail(n.ValueStorageType.Loc, "only Int map values support serialization formats")
		}
		if _, err := ParseFormat(ref.ValueAs); err != nil {
			r.fail(n.ValueStorageType.Loc, err.Error())
		}
	}
	return ref
}

func (r *resolver) declareFunction(item ast.ModuleItem) {
	var (
		fn    *Function
		attrs []*ast.FunctionAttribute
	)
	switch n := item.(type) {
	case *ast.FunctionDef:
		fn = &Function{Name: n.Name.Text, Def: n, Loc: n.Loc, Return: Void}
		if n.Return != nil {
			fn.Return = r.typeRef(n.Return)
		}
		fn.Params = r.params(n.Params)
		attrs = n.Attributes
	case *ast.AsmFunctionDef:
		fn = &Function{Name: n.Name.Text, Asm: n, Loc: n.Loc, Return: Void}
		if n.Return != nil {
			fn.Return = r.typeRef(n.Return)
		}
		fn.Params = r.params(n.Params)
		attrs = n.Attributes
	case *ast.NativeFunctionDecl:
		fn = &Function{Name: n.Name.Text, Native: n.NativeName.Text, Loc: n.Loc, Return: Void}
		if n.Return != nil {
			fn.Return = r.typeRef(n.Return)
		}
		fn.Params = r.params(n.Params)
		attrs = n.Attributes
	case *ast.ConstantDef:
		r.declareConstant(n)
		return
	default:
		return
	}

	extends := false
	for _, a := range attrs {
		switch a.Type {
		case "extends":
			extends = true
		case "mutates":
			fn.Mutates = true
		case "inline":
			fn.Inline = true
		case "get", "virtual", "override", "abstract":
			r.fail(a.Loc, fmt.Sprintf("attribute %q is only allowed inside contracts and traits", a.Type))
		}
	}
	if fn.Mutates && !extends {
		r.fail(fn.Loc, "mutating functions must also be extension functions")
	}

	if !extends {
		if _, ok := r.prog.Functions[fn.Name]; ok {
			r.fail(fn.Loc, fmt.Sprintf("function %q is already declared", fn.Name))
		}
		for _, p := range fn.Params {
			if p.Name == "self" {
				r.fail(p.Loc, `"self" is only allowed as the first parameter of extension functions`)
			}
		}
		r.prog.Functions[fn.Name] = fn
		r.prog.FuncOrder = append(r.prog.FuncOrder, fn.Name)
		return
	}

	if len(fn.Params) == 0 || fn.Params[0].Name != "self" {
		r.fail(fn.Loc, `extension functions must have "self" as the first parameter`)
	}
	self := fn.Params[0].Type
	if self.Kind != RefNamed {
		r.fail(fn.Params[0].Loc, "extension functions are only supported on named types")
	}
	fn.Self = &self
	fn.Params = fn.Params[1:]
	d := r.prog.Types[self.Name]
	if _, ok := d.Functions[fn.Name]; ok {
		r.fail(fn.Loc, fmt.Sprintf("function %q is already declared for %s", fn.Name, d.Name))
	}
	if r.builtinFor(self, fn.Name) {
		r.fail(fn.Loc, fmt.Sprintf("%s.%s is a built-in function", d.Name, fn.Name))
	}
	d.Functions[fn.Name] = fn
}

func (r *resolver) builtinFor(self Ref, name string) bool {
	d := r.prog.Types[self.Name]
	if !d.IsStruct() {
		return false
	}
	_, ok := r.opts.StructMethods[name]
	return ok
}

func (r *resolver) params(list []*ast.TypedParameter) []Param {
	out := make([]Param, 0, len(list))
	seen := make(map[string]bool)
	for _, p := range list {
		name := ast.IdText(p.Name)
		if name != "_" {
			if seen[name] {
				r.fail(p.Loc, fmt.Sprintf("parameter %q is already declared", name))
			}
			seen[name] = true
		}
		param := Param{Name: name, Type: r.typeRef(p.Type), Loc: p.Loc}
		if p.As != nil {
			r.checkFormat(param.Type, p.As)
		}
		out = append(out, param)
	}
	return out
}

func (r *resolver) declareConstant(n *ast.ConstantDef) {
	if _, ok := r.prog.Constants[n.Name.Text]; ok {
		r.fail(n.Name.Loc, fmt.Sprintf("constant %q is already declared", n.Name.Text))
	}
	r.prog.Constants[n.Name.Text] = &Constant{
		Name:  n.Name.Text,
		Type:  r.typeRef(n.Type),
		Value: n.Initializer,
		Loc:   n.Loc,
	}
}
