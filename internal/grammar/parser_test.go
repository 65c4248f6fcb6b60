package grammar

import (
	"strings"
	"testing"

	"github.com/xyproto/tactc/internal/cst"
	"github.com/xyproto/tactc/internal/source"
)

func file(code string) *source.File {
	return source.NewFile("test.tact", code, source.OriginUser)
}

func TestLexer(t *testing.T) {
	l := NewLexer(file(`let x = 0x1_F + 0b10 // comment
	/* block */ "a\"b" <<= !!`))
	var got []string
	for {
		tok := l.NextToken()
		if tok.Kind == TokenEOF {
			break
		}
		got = append(got, tok.String())
	}
	want := []string{`"let"`, `"x"`, `"="`, "integer 0x1_F", `"+"`, "integer 0b10", `string "a\\\"b"`, `"<<="`, `"!!"`}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("tokens = %v, want %v", got, want)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []string{
		`"unterminated`,
		`0x`,
		`1__0`,
		`12abc`,
		`/* open`,
		"#",
	}
	for _, input := range tests {
		if _, err := ParseExpression(file(input)); err == nil {
			t.Errorf("ParseExpression(%q) succeeded, want error", input)
		}
	}
}

func TestParseModule(t *testing.T) {
	code := `import "@stdlib/deploy";
import "./util";

primitive Int;

struct Point { x: Int as int32; y: Int = 0 }

message(0x1234) Move { to: Point }

const MAX: Int = 10;

@name(~load_uint)
extends mutates native loadUint(self: Slice, l: Int): Int;

asm(value key -> 1 0) fun pair(key: Int, value: Int): Int { SWAP <{ DUP }> PUSHCONT }

inline fun add(a: Int, b: Int): Int {
    return a + b * 2;
}

@interface("org.example")
contract Counter(owner: Address) with Deployable {
    counter: Int as uint32 = 0;

    init() {}

    receive(msg: Move) {
        self.counter += 1;
    }

    receive("increment") { self.counter = self.counter + 1 }

    bounced(msg: bounced<Move>) {}

    get fun counter(): Int { return self.counter; }
}

trait Ownable {
    owner: Address;
    abstract fun check();
    virtual const FEE: Int = 1;
}
`
	m, err := ParseModule(file(code))
	if err != nil {
		t.Fatalf("ParseModule error: %v", err)
	}
	if len(m.Imports) != 2 {
		t.Fatalf("got %d imports, want 2", len(m.Imports))
	}
	if m.Imports[0].Path.Value != "@stdlib/deploy" {
		t.Errorf("import path = %q", m.Imports[0].Path.Value)
	}

	kinds := make([]string, len(m.Items))
	for i, item := range m.Items {
		switch item.(type) {
		case *cst.PrimitiveTypeDecl:
			kinds[i] = "primitive"
		case *cst.StructDecl:
			kinds[i] = "struct"
		case *cst.MessageDecl:
			kinds[i] = "message"
		case *cst.Constant:
			kinds[i] = "const"
		case *cst.NativeFunctionDecl:
			kinds[i] = "native"
		case *cst.AsmFunction:
			kinds[i] = "asm"
		case *cst.Function:
			kinds[i] = "fun"
		case *cst.Contract:
			kinds[i] = "contract"
		case *cst.Trait:
			kinds[i] = "trait"
		}
	}
	want := "primitive struct message const native asm fun contract trait"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("items = %q, want %q", got, want)
	}

	native := m.Items[4].(*cst.NativeFunctionDecl)
	if native.NativeName.Accessor != "~" || native.NativeName.Name != "load_uint" {
		t.Errorf("native name = %q%q", native.NativeName.Accessor, native.NativeName.Name)
	}
	if len(native.Attributes) != 2 {
		t.Errorf("native attributes = %d, want 2", len(native.Attributes))
	}

	asm := m.Items[5].(*cst.AsmFunction)
	if len(asm.Shuffle.Ids) != 2 || len(asm.Shuffle.To) != 2 {
		t.Errorf("asm shuffle = %+v", asm.Shuffle)
	}
	if got := strings.TrimSpace(asm.Instructions[0]); got != "SWAP <{ DUP }> PUSHCONT" {
		t.Errorf("asm body = %q", got)
	}

	contract := m.Items[7].(*cst.Contract)
	if contract.Params == nil || len(contract.Params.Values) != 1 {
		t.Errorf("contract params = %+v", contract.Params)
	}
	if len(contract.Items) != 6 {
		t.Fatalf("contract items = %d, want 6", len(contract.Items))
	}
	if r := contract.Items[3].(*cst.Receiver); r.Kind.Name != "receive" {
		t.Errorf("receiver kind = %q", r.Kind.Name)
	} else if _, ok := r.Param.(*cst.StringLiteral); !ok {
		t.Errorf("comment receiver param = %T", r.Param)
	}

	trait := m.Items[8].(*cst.Trait)
	if fn := trait.Items[1].(*cst.Function); fn.Body != nil {
		t.Errorf("abstract function has a body")
	}
}

func TestParseExpressionShapes(t *testing.T) {
	tests := []struct {
		input string
		check func(cst.Expr) bool
	}{
		{"1 + 2 * 3", func(e cst.Expr) bool {
			b, ok := e.(*cst.Binary)
			return ok && len(b.Tail) == 1 && b.Tail[0].Op.Name == "+"
		}},
		{"a - b - c", func(e cst.Expr) bool {
			b, ok := e.(*cst.Binary)
			return ok && len(b.Tail) == 2
		}},
		{"-!x", func(e cst.Expr) bool {
			u, ok := e.(*cst.Unary)
			return ok && len(u.Prefixes) == 2
		}},
		{"!!x", func(e cst.Expr) bool {
			u, ok := e.(*cst.Unary)
			return ok && len(u.Prefixes) == 2 && u.Prefixes[1].Name == "!"
		}},
		{"a.b(1)!!.c", func(e cst.Expr) bool {
			s, ok := e.(*cst.Suffix)
			return ok && len(s.Suffixes) == 4
		}},
		{"c ? 1 : 2", func(e cst.Expr) bool {
			c, ok := e.(*cst.Conditional)
			return ok && c.Tail != nil
		}},
		{"Point { x: 1, y }", func(e cst.Expr) bool {
			s, ok := e.(*cst.StructInstance)
			return ok && len(s.Fields) == 2 && s.Fields[1].Init == nil
		}},
		{"map<Int as uint8, Int>{ 1: 2, 3: 4 }", func(e cst.Expr) bool {
			m, ok := e.(*cst.MapLiteral)
			return ok && len(m.TypeArgs) == 2 && len(m.Fields) == 2
		}},
		{"set<Int>{ 1 }", func(e cst.Expr) bool {
			_, ok := e.(*cst.SetLiteral)
			return ok
		}},
		{"initOf Foo(1, 2)", func(e cst.Expr) bool {
			i, ok := e.(*cst.InitOf)
			return ok && len(i.Args) == 2
		}},
		{`(("s"))`, func(e cst.Expr) bool {
			p, ok := e.(*cst.Parens)
			return ok && p.Loc == source.Range(0, 7)
		}},
	}
	for _, tt := range tests {
		e, err := ParseExpression(file(tt.input))
		if err != nil {
			t.Errorf("ParseExpression(%q) error: %v", tt.input, err)
			continue
		}
		if !tt.check(e) {
			t.Errorf("ParseExpression(%q) = %#v, unexpected shape", tt.input, e)
		}
	}
}

func TestParseStatementShapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let x: Int = 1;", "*cst.StatementLet"},
		{"let Point { x, y: _, .. } = p;", "*cst.StatementDestruct"},
		{"x += 1;", "*cst.StatementAssign"},
		{"foo();", "*cst.StatementExpression"},
		{"if (a) {} else if (b) {} else {}", "*cst.StatementCondition"},
		{"do { x = x - 1; } until (x == 0);", "*cst.StatementUntil"},
		{"try { } catch (e) { }", "*cst.StatementTry"},
		{"foreach (k, v in m) { }", "*cst.StatementForEach"},
		{"repeat (10) { }", "*cst.StatementRepeat"},
		{"{ return }", "*cst.StatementBlock"},
	}
	for _, tt := range tests {
		s, err := ParseStatement(file(tt.input))
		if err != nil {
			t.Errorf("ParseStatement(%q) error: %v", tt.input, err)
			continue
		}
		if got := typeName(s); got != tt.want {
			t.Errorf("ParseStatement(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *cst.StatementLet:
		return "*cst.StatementLet"
	case *cst.StatementDestruct:
		return "*cst.StatementDestruct"
	case *cst.StatementAssign:
		return "*cst.StatementAssign"
	case *cst.StatementExpression:
		return "*cst.StatementExpression"
	case *cst.StatementCondition:
		return "*cst.StatementCondition"
	case *cst.StatementUntil:
		return "*cst.StatementUntil"
	case *cst.StatementTry:
		return "*cst.StatementTry"
	case *cst.StatementForEach:
		return "*cst.StatementForEach"
	case *cst.StatementRepeat:
		return "*cst.StatementRepeat"
	case *cst.StatementBlock:
		return "*cst.StatementBlock"
	}
	return "unknown"
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"struct point {}", "expected type name"},
		{"fun f( {}", "expected identifier"},
		{"fun f() { let x = ; }", "expected expression"},
		{"virtual mutates const X: Int = 1;", "cannot be used on constants"},
		{"trait T { init() {} }", "not allowed in traits"},
	}
	for _, tt := range tests {
		_, err := ParseModule(file(tt.input))
		if err == nil {
			t.Errorf("ParseModule(%q) succeeded, want error", tt.input)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("ParseModule(%q) error = %q, want it to contain %q", tt.input, err, tt.want)
		}
	}
}
