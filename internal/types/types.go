// Package types resolves declarations into type descriptions and assigns a
// type to every expression of the code that is lowered.
package types

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/source"
)

// RefKind selects the shape of a Ref
type RefKind int

const (
	RefNamed RefKind = iota
	RefMap
	RefNull
	RefVoid
	// a type name used where a value could stand: S in S.fromCell(c)
	RefType
)

// Ref is the type of an expression or a declaration.
type Ref struct {
	Kind     RefKind
	Name     string
	Optional bool

	// map<Key as KeyAs, Value as ValueAs>
	Key, KeyAs     string
	Value, ValueAs string
}

var (
	Void = Ref{Kind: RefVoid}
	Null = Ref{Kind: RefNull}
)

func Named(name string) Ref    { return Ref{Kind: RefNamed, Name: name} }
func Optional(name string) Ref { return Ref{Kind: RefNamed, Name: name, Optional: true} }
func TypeName(name string) Ref { return Ref{Kind: RefType, Name: name} }

func (r Ref) String() string {
	switch r.Kind {
	case RefMap:
		key, value := r.Key, r.Value
		if r.KeyAs != "" {
			key += " as " + r.KeyAs
		}
		if r.ValueAs != "" {
			value += " as " + r.ValueAs
		}
		return "map<" + key + ", " + value + ">"
	case RefNull:
		return "null"
	case RefVoid:
		return "void"
	}
	if r.Optional {
		return r.Name + "?"
	}
	return r.Name
}

// Is reports whether r is the non-optional named type name
func (r Ref) Is(name string) bool {
	return r.Kind == RefNamed && !r.Optional && r.Name == name
}

// NotNull strips the optional marker
func (r Ref) NotNull() Ref {
	r.Optional = false
	return r
}

// Assignable reports whether a value of type from can be stored in to
func Assignable(from, to Ref) bool {
	switch from.Kind {
	case RefVoid, RefType:
		return false
	case RefNull:
		return to.Kind == RefMap || (to.Kind == RefNamed && to.Optional)
	case RefMap:
		return to.Kind == RefMap && from.Key == to.Key && from.Value == to.Value
	}
	if to.Kind != RefNamed || to.Name != from.Name {
		return false
	}
	return to.Optional || !from.Optional
}

// Kind is the kind of a declared type
type Kind int

const (
	KindPrimitive Kind = iota
	KindStruct
	KindMessage
	KindContract
	KindTrait
)

func (k Kind) String() string {
	return [...]string{"primitive", "struct", "message", "contract", "trait"}[k]
}

// Field is a field of a struct, message, contract or trait
type Field struct {
	Name    string
	Index   int
	Type    Ref
	As      string
	Default ast.Expression
	Loc     source.Span
}

// Description is a declared type
type Description struct {
	Name      string
	Kind      Kind
	Fields    []*Field
	Opcode    uint32
	Functions map[string]*Function
	Loc       source.Span
}

// Field returns the field called name, or nil
func (d *Description) Field(name string) *Field {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsStruct reports whether values of the type are field tensors
func (d *Description) IsStruct() bool {
	return d.Kind == KindStruct || d.Kind == KindMessage
}

// Param is a function parameter
type Param struct {
	Name string
	Type Ref
	Loc  source.Span
}

// Function is a module-level function, native, asm function or extension
type Function struct {
	Name    string
	Self    *Ref // receiver type of an extension function
	Mutates bool
	Inline  bool
	Params  []Param
	Return  Ref
	Native  string
	Asm     *ast.AsmFunctionDef
	Def     *ast.FunctionDef
	Loc     source.Span
}

// Constant is a module-level constant
type Constant struct {
	Name  string
	Type  Ref
	Value ast.Expression
	Loc   source.Span
}

// CallKind tells the code generator how a method call was resolved
type CallKind int

const (
	CallExtension CallKind = iota
	CallStructABI
	CallMapABI
)

// Call is the resolution of a method call
type Call struct {
	Kind     CallKind
	Function *Function // CallExtension
	Args     []Ref     // argument types as seen by an ABI function, self first
}

// Program is the resolved form of all loaded modules
type Program struct {
	Types     map[string]*Description
	TypeOrder []string
	Functions map[string]*Function
	FuncOrder []string
	Constants map[string]*Constant

	Exprs     map[ast.Expression]Ref
	Calls     map[*ast.MethodCall]*Call
	ConstRefs map[*ast.Id]*Constant
	Bindings  map[ast.Statement]Ref // let and foreach types
}

func newProgram() *Program {
	return &Program{
		Types:     make(map[string]*Description),
		Functions: make(map[string]*Function),
		Constants: make(map[string]*Constant),
		Exprs:     make(map[ast.Expression]Ref),
		Calls:     make(map[*ast.MethodCall]*Call),
		ConstRefs: make(map[*ast.Id]*Constant),
		Bindings:  make(map[ast.Statement]Ref),
	}
}

// Lookup returns the description of a type name
func (p *Program) Lookup(name string) (*Description, bool) {
	d, ok := p.Types[name]
	return d, ok
}

// TypeOf returns the type recorded for e
func (p *Program) TypeOf(e ast.Expression) Ref {
	return p.Exprs[e]
}

// Format is a parsed serialization annotation of an Int field
type Format struct {
	Name  string // int, uint, coins, varint16, varint32, varuint16, varuint32
	Width int    // int and uint only
}

func (f Format) String() string {
	if f.Name == "int" || f.Name == "uint" {
		return f.Name + strconv.Itoa(f.Width)
	}
	return f.Name
}

// DefaultIntFormat is used for Int values without an annotation
var DefaultIntFormat = Format{Name: "int", Width: 257}

// ParseFormat parses an Int serialization annotation
func ParseFormat(as string) (Format, error) {
	switch as {
	case "":
		return DefaultIntFormat, nil
	case "coins", "varint16", "varint32", "varuint16", "varuint32":
		return Format{Name: as}, nil
	}
	for _, prefix := range []string{"uint", "int"} {
		digits, ok := strings.CutPrefix(as, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			break
		}
		max := 257
		if prefix == "uint" {
			max = 256
		}
		if n < 1 || n > max {
			return Format{}, errors.Errorf("%s width must be between 1 and %d", prefix, max)
		}
		return Format{Name: prefix, Width: n}, nil
	}
	return Format{}, errors.Errorf("unsupported serialization format %q", as)
}
