package types

import (
	"strings"
	"testing"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/builder"
	"github.com/xyproto/tactc/internal/source"
)

// fixed is a builtin with a constant result type
type fixed struct {
	result Ref
	seen   *[]Ref
}

func (f fixed) Resolve(p *Program, args []Ref, loc source.Span) (Ref, error) {
	if f.seen != nil {
		*f.seen = append(*f.seen, args...)
	}
	return f.result, nil
}

func resolve(t *testing.T, code string) (*Program, error) {
	t.Helper()
	m, err := builder.ParseModule(source.NewFile("test.tact", code, source.OriginUser))
	if err != nil {
		t.Fatalf("ParseModule(%q): %v", code, err)
	}
	return Resolve([]*ast.Module{m}, Options{
		StructMethods: map[string]Builtin{"toCell": fixed{result: Named("Cell")}},
		MapMethods:    map[string]Builtin{"get": fixed{result: Optional("Int")}},
	})
}

func mustResolve(t *testing.T, code string) *Program {
	t.Helper()
	p, err := resolve(t, code)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", code, err)
	}
	return p
}

func TestDescriptions(t *testing.T) {
	p := mustResolve(t, `
struct Point { x: Int as int32; y: Int = 7; tag: Address? }
message(0x10) Explicit { v: Bool }
message Derived { amount: Int as coins; to: Address }
`)
	point, ok := p.Lookup("Point")
	if !ok || point.Kind != KindStruct {
		t.Fatalf("Point = %+v", point)
	}
	if len(point.Fields) != 3 || point.Fields[0].As != "int32" || point.Fields[1].Default == nil {
		t.Errorf("Point fields = %+v", point.Fields)
	}
	if got := point.Fields[2].Type.String(); got != "Address?" {
		t.Errorf("tag type = %s, want Address?", got)
	}

	explicit, _ := p.Lookup("Explicit")
	if explicit.Opcode != 0x10 {
		t.Errorf("Explicit opcode = %#x, want 0x10", explicit.Opcode)
	}
	derived, _ := p.Lookup("Derived")
	if derived.Opcode == 0 {
		t.Error("Derived has no opcode")
	}
	for _, name := range Primitives {
		if d, ok := p.Lookup(name); !ok || d.Kind != KindPrimitive {
			t.Errorf("primitive %s is missing", name)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		as   string
		want string
		ok   bool
	}{
		{"", "int257", true},
		{"uint8", "uint8", true},
		{"int257", "int257", true},
		{"uint257", "", false},
		{"int0", "", false},
		{"coins", "coins", true},
		{"varuint32", "varuint32", true},
		{"bytes", "", false},
	}
	for _, tt := range tests {
		f, err := ParseFormat(tt.as)
		if (err == nil) != tt.ok {
			t.Errorf("ParseFormat(%q) error = %v", tt.as, err)
			continue
		}
		if tt.ok && f.String() != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.as, f, tt.want)
		}
	}
}

func TestExpressionTypes(t *testing.T) {
	p := mustResolve(t, `
struct Point { x: Int; y: Int }
const Base: Int = 10;
@name(begin_cell) native beginCell(): Builder;
extends fun double(self: Int): Int { return self * 2; }
fun f(p: Point, m: map<Int, Int>, o: Int?): Bool {
    let a = p.x + Base;
    let b = a.double();
    let c = p.toCell();
    let d = m.get(1);
    let e = o!!;
    let g = beginCell();
    let h = a > 0 ? o : null;
    return a == b && d == null;
}
`)
	want := map[string]string{
		"(p.x + Base)":              "Int",
		"a.double()":                "Int",
		"p.toCell()":                "Cell",
		"m.get(1)":                  "Int?",
		"o!!":                       "Int",
		"beginCell()":               "Builder",
		"((a > 0) ? o : null)":      "Int?",
		"((a == b) && (d == null))": "Bool",
	}
	seen := make(map[string]string)
	for e, ref := range p.Exprs {
		seen[e.String()] = ref.String()
	}
	for expr, typ := range want {
		if got, ok := seen[expr]; !ok || got != typ {
			t.Errorf("type of %s = %q, want %q", expr, got, typ)
		}
	}

	var calls []CallKind
	for _, c := range p.Calls {
		calls = append(calls, c.Kind)
	}
	if len(calls) != 3 {
		t.Errorf("recorded %d method calls, want 3", len(calls))
	}
	if len(p.ConstRefs) != 1 {
		t.Errorf("recorded %d constant uses, want 1", len(p.ConstRefs))
	}
}

func TestStaticStructCall(t *testing.T) {
	var seen []Ref
	m, err := builder.ParseModule(source.NewFile("test.tact", `
struct S { a: Int }
fun f(c: Cell): S { return S.fromCell(c); }
`, source.OriginUser))
	if err != nil {
		t.Fatal(err)
	}
	p, err := Resolve([]*ast.Module{m}, Options{
		StructMethods: map[string]Builtin{"fromCell": fixed{result: Named("S"), seen: &seen}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0].String() != "S" || seen[1].String() != "Cell" {
		t.Errorf("builtin saw %v, want [S Cell]", seen)
	}
	if len(seen) > 0 && seen[0].Kind != RefType {
		t.Errorf("receiver S has kind %v, want a type name", seen[0].Kind)
	}
	for _, c := range p.Calls {
		if c.Kind != CallStructABI {
			t.Errorf("call kind = %v, want struct ABI", c.Kind)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		want       string
		suggestion string
	}{
		{"unknown type", "struct S { a: Itn }", `type "Itn" is not found`, `"Int"`},
		{"duplicate type", "struct S {} struct S {}", `type "S" is already declared`, ""},
		{"duplicate field", "struct S { a: Int; a: Bool }", `field "a" is already declared in S`, ""},
		{"bad format", "struct S { a: Int as uint300 }", "uint width must be between 1 and 256", ""},
		{"format on bool", "struct S { a: Bool as uint8 }", "does not support serialization formats", ""},
		{"bad map key", "struct S { m: map<Bool, Int> }", "map keys must be Int or Address", ""},
		{"unknown variable", "fun f(count: Int): Int { return cuont; }", `cannot find "cuont"`, `"count"`},
		{"unknown field", "struct S { value: Int } fun f(s: S): Int { return s.vlaue; }", `S has no field "vlaue"`, `"value"`},
		{"mismatch", "fun f(): Int { return true; }", "type mismatch: expected Int, got Bool", ""},
		{"missing return", "fun f(a: Int): Int { if (a > 0) { return 1; } }", "does not return a value on every path", ""},
		{"shadowing", "fun f(a: Int) { let a = 1; }", `variable "a" is already declared`, ""},
		{"null inference", "fun f() { let a = null; }", "cannot infer the type of null", ""},
		{"optional field", "struct S { a: Int } fun f(s: S?): Int { return s.a; }", "use !! to unwrap it", ""},
		{"unknown method", "fun f(a: Int): Int { return a.dobule(); }", `Int has no function "dobule"`, ""},
		{"missing field", "struct S { a: Int; b: Int } fun f(): S { return S{ a: 1 }; }", `field "b" of S is not initialized`, ""},
		{"destruct missing", "struct S { a: Int; b: Int } fun f(s: S) { let S { a } = s; }", "missing fields b", ""},
		{"constant cycle", "const A: Int = B; const B: Int = A;", "depends on itself", ""},
		{"assign constant", "const A: Int = 1; fun f() { A = 2; }", `constant "A" cannot be assigned`, ""},
		{"self param", "fun f(self: Int) {}", `"self" is only allowed`, ""},
		{"mutates without extends", "mutates fun f(self: Int) {}", "must also be extension functions", ""},
		{"compare structs", "struct S {} fun f(a: S, b: S): Bool { return a == b; }", "cannot be compared", ""},
		{"huge literal", "const A: Int = " + strings.Repeat("9", 80) + ";", "does not fit in 257 bits", ""},
		{"foreach over int", "fun f(a: Int) { foreach (k, v in a) {} }", "foreach expects a map", ""},
		{"init of", "fun f() { let a = initOf C(); }", "initOf is only supported in contract code", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolve(t, tt.code)
			if err == nil {
				t.Fatalf("Resolve(%q) succeeded, want %q", tt.code, tt.want)
			}
			ce, ok := err.(*source.CompileError)
			if !ok {
				t.Fatalf("Resolve(%q) error is %T, want *source.CompileError", tt.code, err)
			}
			if !strings.Contains(ce.Message, tt.want) {
				t.Errorf("Resolve(%q) = %q, want %q", tt.code, ce.Message, tt.want)
			}
			if !strings.Contains(ce.Context.Suggestion, tt.suggestion) {
				t.Errorf("suggestion = %q, want %q", ce.Context.Suggestion, tt.suggestion)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"cuont", []string{"count"}},
		{"xyz", nil},
		{"valeu", []string{"value", "values"}},
	}
	candidates := []string{"count", "value", "values", "balance"}
	for _, tt := range tests {
		got := findSimilar(tt.name, candidates, 3)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("findSimilar(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if d := levenshteinDistance("kitten", "sitting"); d != 3 {
		t.Errorf("levenshteinDistance(kitten, sitting) = %d, want 3", d)
	}
}

func TestAssignable(t *testing.T) {
	m := Ref{Kind: RefMap, Key: "Int", Value: "Bool"}
	tests := []struct {
		from, to Ref
		want     bool
	}{
		{Named("Int"), Optional("Int"), true},
		{Optional("Int"), Named("Int"), false},
		{Null, Optional("Cell"), true},
		{Null, Named("Cell"), false},
		{Null, m, true},
		{m, m, true},
		{Void, Named("Int"), false},
		{Named("Int"), Named("Bool"), false},
	}
	for _, tt := range tests {
		if got := Assignable(tt.from, tt.to); got != tt.want {
			t.Errorf("Assignable(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
