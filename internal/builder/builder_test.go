package builder

import (
	"math/big"
	"strings"
	"testing"

	"github.com/xyproto/tactc/internal/ast"
	"github.com/xyproto/tactc/internal/imports"
	"github.com/xyproto/tactc/internal/source"
)

func file(code string) *source.File {
	return source.NewFile("test.tact", code, source.OriginUser)
}

func mustExpr(t *testing.T, code string) ast.Expression {
	t.Helper()
	e, err := ParseExpression(file(code))
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", code, err)
	}
	return e
}

func mustModule(t *testing.T, code string) *ast.Module {
	t.Helper()
	m, err := ParseModule(file(code))
	if err != nil {
		t.Fatalf("ParseModule(%q): %v", code, err)
	}
	return m
}

// collect returns an option that records errors instead of stopping
func collect(errs *[]*source.CompileError) Option {
	return WithErrorHandler(func(err *source.CompileError) {
		*errs = append(*errs, err)
	})
}

func TestReservedPrefixes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"fun f() { let __gen_x = 1; }", `"__gen"`},
		{"fun f() { let __tact_y = 1; }", `"__tact"`},
		{"fun __tact_f() {}", `"__tact"`},
		{"fun f(__gen: Int) {}", `"__gen"`},
		{"fun f() { foreach (__tact_k, v in m) {} }", `"__tact"`},
	}
	for _, tt := range tests {
		_, err := ParseModule(file(tt.code))
		if err == nil {
			t.Errorf("ParseModule(%q) succeeded, want reserved prefix error", tt.code)
			continue
		}
		if !strings.Contains(err.Error(), "names cannot start with "+tt.want) {
			t.Errorf("ParseModule(%q) = %v", tt.code, err)
		}
	}
}

func TestWildcard(t *testing.T) {
	accepted := []string{
		"fun f() { let _ = 1; }",
		"fun f() { foreach (_, _ in m) {} }",
		"fun f() { let P { a: _, .. } = p; }",
		"fun f(_: Int) {}",
		"fun f() { try {} catch (_) {} }",
	}
	for _, code := range accepted {
		if _, err := ParseModule(file(code)); err != nil {
			t.Errorf("ParseModule(%q): %v", code, err)
		}
	}

	rejected := []string{
		"fun f() { g(_); }",
		"fun f() { x = _; }",
		"fun f() { let P { _ } = p; }",
		"struct S { _: Int }",
		"fun f() { let x = S { _: 1 }; }",
	}
	for _, code := range rejected {
		_, err := ParseModule(file(code))
		if err == nil || !strings.Contains(err.Error(), `"_" is not allowed here`) {
			t.Errorf("ParseModule(%q) = %v, want wildcard error", code, err)
		}
	}

	m := mustModule(t, "fun f() { let _ = 1; }")
	let := m.Items[0].(*ast.FunctionDef).Statements[0].(*ast.StatementLet)
	if _, ok := let.Name.(*ast.Wildcard); !ok {
		t.Errorf("let binder = %T, want *ast.Wildcard", let.Name)
	}
}

func TestIntegerLiterals(t *testing.T) {
	tests := []struct {
		code string
		base int
	}{
		{"0b101010", 2},
		{"0o52", 8},
		{"0x2A", 16},
		{"42", 10},
		{"4_2", 10},
	}
	for _, tt := range tests {
		n, ok := mustExpr(t, tt.code).(*ast.Number)
		if !ok {
			t.Fatalf("%q did not build a number", tt.code)
		}
		if n.Base != tt.base || n.Value.Cmp(big.NewInt(42)) != 0 {
			t.Errorf("%q = base %d value %s, want base %d value 42", tt.code, n.Base, n.Value, tt.base)
		}
	}

	huge := mustExpr(t, "0x1_0000_0000_0000_0000_0000").(*ast.Number)
	if huge.Value.BitLen() != 81 {
		t.Errorf("big literal has %d bits", huge.Value.BitLen())
	}

	_, err := ParseExpression(file("0_1"))
	if err == nil || !strings.Contains(err.Error(), "leading zeroes") {
		t.Errorf("0_1: got %v, want leading zero error", err)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{`"plain"`, "plain"},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"q\"q\\"`, `q"q\`},
		{`"\u{1F600}"`, "\U0001F600"},
		{`"é"`, "é"},
		{`"\x41"`, "A"},
		{`"\q"`, `\q`},
		{`"\v\b\f\r"`, "\v\b\f\r"},
	}
	for _, tt := range tests {
		s, ok := mustExpr(t, tt.code).(*ast.String)
		if !ok {
			t.Fatalf("%s did not build a string", tt.code)
		}
		if s.Value != tt.want {
			t.Errorf("%s = %q, want %q", tt.code, s.Value, tt.want)
		}
	}

	_, err := ParseExpression(file(`"\u{110000}"`))
	if err == nil || !strings.Contains(err.Error(), "unicode code point") {
		t.Errorf("out of range code point: got %v", err)
	}
}

func TestOperatorFolding(t *testing.T) {
	tests := []struct {
		code  string
		want  string
		start int
		end   int
	}{
		{"1 - 2 - 3", "((1 - 2) - 3)", 0, 9},
		{"1 + 2 * 3", "(1 + (2 * 3))", 0, 9},
		{"a || b && c", "(a || (b && c))", 0, 11},
		{"-!x", "-!x", 0, 3},
		{"a.b.c", "a.b.c", 0, 5},
		{"x!!", "x!!", 0, 3},
		{"c ? 1 : 2", "(c ? 1 : 2)", 0, 9},
		{"(1 + 2) * 3", "((1 + 2) * 3)", 0, 11},
	}
	for _, tt := range tests {
		e := mustExpr(t, tt.code)
		if got := e.String(); got != tt.want {
			t.Errorf("%q = %s, want %s", tt.code, got, tt.want)
		}
		if loc := e.Location().Loc; loc.Start != tt.start || loc.End != tt.end {
			t.Errorf("%q location = %s, want %d..%d", tt.code, loc, tt.start, tt.end)
		}
	}

	inner := mustExpr(t, "1 - 2 - 3").(*ast.OpBinary).Left
	if loc := inner.Location().Loc; loc != source.Range(0, 5) {
		t.Errorf("inner fold location = %s, want 0..5", loc)
	}
}

func TestSuffixCalls(t *testing.T) {
	if _, ok := mustExpr(t, "f(1, 2)").(*ast.StaticCall); !ok {
		t.Errorf("f(1, 2) is not a static call")
	}
	call, ok := mustExpr(t, "a.b(1)").(*ast.MethodCall)
	if !ok {
		t.Fatalf("a.b(1) is not a method call")
	}
	if call.Method.Text != "b" || call.Self.String() != "a" || len(call.Args) != 1 {
		t.Errorf("a.b(1) = %s", call)
	}

	for _, code := range []string{"1(2)", "f(1)(2)", "x!!(1)"} {
		_, err := ParseExpression(file(code))
		if err == nil || !strings.Contains(err.Error(), "can be called") {
			t.Errorf("%q: got %v, want not callable error", code, err)
		}
	}

	var errs []*source.CompileError
	e, err := ParseExpression(file("1(2)"), collect(&errs))
	if err != nil {
		t.Fatalf("collecting handler returned error %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if sc, ok := e.(*ast.StaticCall); !ok || sc.Function.Text != "__invalid__" {
		t.Errorf("recovered node = %s", e)
	}
}

func TestBouncedReceiverRecovery(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{`contract C { bounced() {} }`, "should accept an argument"},
		{`contract C { bounced("text") {} }`, "should not accept a string"},
	}
	for _, tt := range tests {
		_, err := ParseModule(file(tt.code))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ParseModule(%q) = %v, want %q", tt.code, err, tt.want)
		}

		var errs []*source.CompileError
		m, err := ParseModule(file(tt.code), collect(&errs))
		if err != nil {
			t.Fatalf("collecting handler returned error %v", err)
		}
		if len(errs) != 1 || !strings.Contains(errs[0].Message, tt.want) {
			t.Fatalf("errors = %v", errs)
		}
		r := m.Items[0].(*ast.Contract).Declarations[0].(*ast.Receiver)
		bounce, ok := r.Selector.(*ast.ReceiverBounce)
		if !ok {
			t.Fatalf("selector = %T", r.Selector)
		}
		if ast.IdText(bounce.Param.Name) != "__invalid__" || bounce.Param.Type.String() != "__Invalid__" {
			t.Errorf("placeholder param = %s", bounce.Param)
		}
		if bounce.Param.Loc.Loc != source.Empty {
			t.Errorf("placeholder location = %s", bounce.Param.Loc.Loc)
		}
	}

	m := mustModule(t, `message M {} contract C { bounced(msg: bounced<M>) {} receive("hi") {} external() {} }`)
	decls := m.Items[1].(*ast.Contract).Declarations
	if got := decls[0].(*ast.Receiver).Selector.String(); got != "bounced(msg: bounced<M>)" {
		t.Errorf("bounced selector = %s", got)
	}
	if _, ok := decls[1].(*ast.Receiver).Selector.(*ast.ReceiverInternal).SubKind.(ast.ReceiverComment); !ok {
		t.Errorf("comment receiver not recognized")
	}
	if _, ok := decls[2].(*ast.Receiver).Selector.(*ast.ReceiverExternal).SubKind.(ast.ReceiverFallback); !ok {
		t.Errorf("fallback external receiver not recognized")
	}
}

func TestDestructure(t *testing.T) {
	s, err := ParseStatement(file("let P { a, b: c, d: _, .. } = p;"))
	if err != nil {
		t.Fatal(err)
	}
	d := s.(*ast.StatementDestruct)
	if !d.IgnoreUnspecifiedFields || len(d.Identifiers) != 3 {
		t.Fatalf("destruct = %s", d)
	}
	got := make([]string, len(d.Identifiers))
	for i, b := range d.Identifiers {
		got[i] = b.Field.Text + ":" + ast.IdText(b.Binder)
	}
	if strings.Join(got, " ") != "a:a b:c d:_" {
		t.Errorf("bindings = %v", got)
	}

	_, err = ParseStatement(file("let P { a, b, a: x } = p;"))
	if err == nil || !strings.Contains(err.Error(), `duplicate field "a"`) {
		t.Errorf("duplicate field: got %v", err)
	}

	var errs []*source.CompileError
	s, _ = ParseStatement(file("let P { a, b, a: x } = p;"), collect(&errs))
	d = s.(*ast.StatementDestruct)
	if len(d.Identifiers) != 2 || ast.IdText(d.Identifiers[0].Binder) != "x" {
		t.Errorf("recovered bindings = %s", d)
	}
}

func TestImports(t *testing.T) {
	tests := []struct {
		code     string
		kind     imports.Kind
		lang     imports.Language
		segments string
		stepsUp  int
	}{
		{`import "@stdlib/foo";`, imports.KindStdlib, imports.LangTact, "foo.tact", 0},
		{`import "./foo.fc";`, imports.KindRelative, imports.LangFunC, "foo.fc", 0},
		{`import "../lib/./a/../b.tact";`, imports.KindRelative, imports.LangTact, "lib/b.tact", 1},
		{`import "./x.func";`, imports.KindRelative, imports.LangFunC, "x.func", 0},
	}
	for _, tt := range tests {
		list, err := ParseImports(file(tt.code))
		if err != nil {
			t.Errorf("ParseImports(%q): %v", tt.code, err)
			continue
		}
		p := list[0].Path
		if p.Kind != tt.kind || p.Language != tt.lang || strings.Join(p.Path.Segments, "/") != tt.segments || p.Path.StepsUp != tt.stepsUp {
			t.Errorf("ParseImports(%q) = %+v", tt.code, p)
		}
	}

	errors := []struct {
		code string
		want string
	}{
		{`import "foo";`, "must start with"},
		{`import "./dir/";`, "cannot import a folder"},
		{`import ".\\a";`, `must use "/"`},
		{`import "@stdlib/../x";`, "cannot leave the standard library"},
	}
	for _, tt := range errors {
		_, err := ParseImports(file(tt.code))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ParseImports(%q) = %v, want %q", tt.code, err, tt.want)
		}
	}

	var errs []*source.CompileError
	list, _ := ParseImports(file(`import ".\\a\\b";`), collect(&errs))
	if got := list[0].Path.Path.String(); got != "./a/b.tact" {
		t.Errorf("repaired path = %s", got)
	}
}

func TestNativeFunctionNames(t *testing.T) {
	m := mustModule(t, "@name(~load_uint) extends mutates native loadUint(self: Slice, l: Int): Int;")
	n := m.Items[0].(*ast.NativeFunctionDecl)
	if n.NativeName.Text != "~load_uint" {
		t.Errorf("native name = %q", n.NativeName.Text)
	}

	tests := []struct {
		name string
		want string
	}{
		{"int", "reserved FunC identifier"},
		{"if", "reserved FunC identifier"},
		{"123", "cannot be a number"},
		{"-0x1F", "cannot be a number"},
		{"{-comment", "invalid FunC identifier"},
	}
	for _, tt := range tests {
		code := "@name(" + tt.name + ") native f();"
		_, err := ParseModule(file(code))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ParseModule(%q) = %v, want %q", code, err, tt.want)
		}
	}
}

func TestDeclarationRules(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"abstract fun f() {}", "abstract function cannot have a body"},
		{"fun f();", "function without a body must be abstract"},
		{"abstract fun f();", "may omit the body"},
		{"inline inline fun f() {}", `duplicate function attribute "inline"`},
		{"virtual const X: Int = 1;", "module-level constants"},
		{"const X: Int;", "constant without a body must be abstract"},
		{"contract C { abstract const X: Int; }", "may omit the value"},
		{"contract C { asm fun f() { NOP } }", "asm functions are not supported"},
		{"trait T { asm fun f() { NOP } }", "asm functions are not supported"},
		{"fun f(x: Int as uint8) {}", `"as" is not allowed`},
		{"contract C { init(x: Int as uint8 as int8) {} }", `only one "as" is allowed for a parameter`},
		{"struct S { a: Int as uint8 as uint16 }", `only one "as" is allowed for a field`},
	}
	for _, tt := range tests {
		_, err := ParseModule(file(tt.code))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ParseModule(%q) = %v, want %q", tt.code, err, tt.want)
		}
	}

	m := mustModule(t, "trait T { abstract fun f(); abstract const X: Int; virtual const Y: Int = 2; }")
	decls := m.Items[0].(*ast.Trait).Declarations
	if _, ok := decls[0].(*ast.FunctionDecl); !ok {
		t.Errorf("trait function = %T", decls[0])
	}
	if _, ok := decls[1].(*ast.ConstantDecl); !ok {
		t.Errorf("trait constant = %T", decls[1])
	}

	m = mustModule(t, "asm(b a -> 1 0) fun swap(a: Int, b: Int): Int {  SWAP  }")
	asm := m.Items[0].(*ast.AsmFunctionDef)
	if asm.Instructions[0] != "SWAP" || asm.Shuffle.String() != "(b a -> 1 0)" {
		t.Errorf("asm function = %s", asm)
	}
}

func TestTypes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"let x: Int? = null;", "let x: Int? = null;"},
		{"let x: map<Int as uint8, Cell> = null;", "let x: map<Int as uint8, Cell> = null;"},
		{"let x: bounced<M> = m;", "let x: bounced<M> = m;"},
	}
	for _, tt := range tests {
		s, err := ParseStatement(file(tt.code))
		if err != nil {
			t.Errorf("ParseStatement(%q): %v", tt.code, err)
			continue
		}
		if got := s.String(); got != tt.want {
			t.Errorf("ParseStatement(%q) = %s", tt.code, got)
		}
	}

	errs := []struct {
		code string
		want string
	}{
		{"let x: Int?? = 1;", "nested optional"},
		{"let x: map<Int> = 1;", "expects 2 type arguments, got 1"},
		{"let x: map<Int?, Int> = 1;", "map key types cannot be optional"},
		{"let x: map<Int, map<Int, Int>> = 1;", "map value type must be a plain type name"},
		{"let x: map<Int as uint8 as uint16, Int> = 1;", `only one "as" is allowed for a map key`},
		{"let x: Foo<Int> = 1;", "unknown generic type"},
		{"let x: bounced<M?> = 1;", "only named types can be bounced"},
		{"let x: map<Int, Int>? = 1;", "only named types can be optional"},
		{"let x = set<Int>{};", "set literals are not supported"},
		{"let x = map<Int, map<Int, Int>>{};", "map value type"},
	}
	for _, tt := range errs {
		_, err := ParseStatement(file(tt.code))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ParseStatement(%q) = %v, want %q", tt.code, err, tt.want)
		}
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"x += 1;", "x += 1;"},
		{"x <<= 2;", "x <<= 2;"},
		{"x.y = 1;", "x.y = 1;"},
		{"if (a) { b(); } else if (c) { d(); }", "if (a) {\n    b();\n} else if (c) {\n    d();\n}"},
		{"repeat (3) {}", "repeat (3) {}"},
		{"do { i -= 1; } until (i == 0);", "do {\n    i -= 1;\n} until ((i == 0));"},
		{"return;", "return;"},
	}
	for _, tt := range tests {
		s, err := ParseStatement(file(tt.code))
		if err != nil {
			t.Errorf("ParseStatement(%q): %v", tt.code, err)
			continue
		}
		if got := s.String(); got != tt.want {
			t.Errorf("ParseStatement(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}

	s, _ := ParseStatement(file("x &&= y;"))
	if a, ok := s.(*ast.StatementAugmentedAssign); !ok || a.Op != "&&" {
		t.Errorf("x &&= y built %#v", s)
	}
}

func TestContract(t *testing.T) {
	m := mustModule(t, `@interface("org.example")
contract Counter(owner: Address, seq: Int as uint32) with Deployable, Ownable {
    counter: Int as uint32 = 0;
    init() {}
    get fun counter(): Int { return self.counter; }
}
contract Empty {}`)
	c := m.Items[0].(*ast.Contract)
	if len(c.Params) != 2 || c.Params[1].As.Text != "uint32" {
		t.Errorf("contract params = %v", c.Params)
	}
	if len(c.Traits) != 2 || c.Attributes[0].Name.Value != "org.example" {
		t.Errorf("contract header = %s", c)
	}
	if len(c.Declarations) != 3 {
		t.Errorf("declarations = %d", len(c.Declarations))
	}
	if e := m.Items[1].(*ast.Contract); e.Params != nil {
		t.Errorf("contract without parameter list has params %v", e.Params)
	}
}
