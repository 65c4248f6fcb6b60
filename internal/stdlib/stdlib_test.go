package stdlib

import (
	"strings"
	"testing"

	"github.com/xyproto/tactc/internal/dict"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/writer"
)

func render(t *testing.T, roots ...string) string {
	t.Helper()
	ctx := writer.New()
	Write(ctx)
	for _, r := range roots {
		ctx.Used(r)
	}
	out, err := ctx.Render()
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestEverythingGenerates(t *testing.T) {
	ctx := writer.New()
	Write(ctx)
	ctx.UseAll()
	funcs, err := ctx.Functions()
	if err != nil {
		t.Fatal(err)
	}
	if len(funcs) != len(ctx.Declared()) {
		t.Errorf("generated %d of %d declared functions", len(funcs), len(ctx.Declared()))
	}
	for _, f := range funcs {
		if f.Tag != "stdlib" {
			t.Errorf("%s has tag %q", f.Name, f.Tag)
		}
		if f.Code.Kind == writer.CodeNone {
			t.Errorf("%s has no code", f.Name)
		}
	}
}

func TestDeclaredNames(t *testing.T) {
	ctx := writer.New()
	Write(ctx)
	want := []string{
		"__tact_sha256",
		"__tact_not_null",
		"__tact_dump_int",
		"__tact_slice_eq_bits_nullable_left",
		"__tact_int_eq_nullable",
		"__tact_cell_neq",
		"__tact_slice_neq_nullable_right",
		"__tact_dict_eq",
		"__tact_tuple_create_15",
		"__tact_tuple_destroy_0",
		"__tact_string_builder_append_not_mut",
		ops.Extension("Int", "toString"),
		dict.FuncName(dict.OpNext, dict.KeyInt, dict.ValueVaruint32),
		dict.ExistsName(dict.KeyUint),
	}
	for _, name := range want {
		if !ctx.IsDeclared(name) {
			t.Errorf("%s is not declared", name)
		}
	}
	for _, name := range []string{"__tact_int_eq", "__tact_tuple_create_16"} {
		if ctx.IsDeclared(name) {
			t.Errorf("%s should not be declared", name)
		}
	}
}

func TestRenderedText(t *testing.T) {
	tests := []struct {
		root string
		want []string
	}{
		{
			"__tact_not_null",
			[]string{"forall X -> X __tact_not_null(X x) impure inline {\n    throw_if(128, null?(x)); return x;\n}"},
		},
		{
			"__tact_tuple_create_2",
			[]string{`forall X0, X1 -> tuple __tact_tuple_create_2((X0, X1) v) asm "2 TUPLE";`},
		},
		{
			"__tact_int_neq_nullable",
			[]string{"return ( a_is_null & b_is_null ) ? ( false ) : ( ( ( ~ a_is_null ) & ( ~ b_is_null ) ) ? ( a != b ) : ( true ) );"},
		},
		{
			"__tact_cell_eq_nullable_right",
			[]string{"return (null?(b)) ? (false) : (a.cell_hash() == b.cell_hash());"},
		},
		{
			"__tact_sha256",
			[]string{"int __tact_sha256(slice data) asm \"\"\"\n<{\n    <{ DUP SREFS }> PUSHCONT", "1 1 CALLXARGS\n\"\"\";"},
		},
		{
			"__tact_dict_get_code",
			[]string{"throw_unless(135, ok);"},
		},
		{
			"__tact_dump_address",
			[]string{"__tact_address_to_user_friendly(address)", "__tact_crc16(slice data) inline_ref {", "__tact_base64_encode(slice data) {", "__tact_preload_offset(slice s, int offset, int bits) inline asm \"SDSUBSTR\";"},
		},
	}
	for _, tt := range tests {
		out := render(t, tt.root)
		for _, want := range tt.want {
			if !strings.Contains(out, want) {
				t.Errorf("Render(%s) is missing %q:\n%s", tt.root, want, out)
			}
		}
	}
}

func TestDependenciesFollowUse(t *testing.T) {
	out := render(t, "__tact_dump_int")
	for _, name := range []string{
		"__tact_dump_str",
		ops.Extension("Int", "toString"),
		"__tact_string_builder_start_string",
		"__tact_string_builder_append(",
		"__tact_string_builder_end_slice",
		"__tact_string_builder_end(",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("output is missing %s", name)
		}
	}
	if strings.Contains(out, "__tact_dump_bool") {
		t.Error("unused __tact_dump_bool was emitted")
	}
	// emitted once even though three functions use it
	if n := strings.Count(out, "__tact_string_builder_start(builder b) inline {"); n != 1 {
		t.Errorf("__tact_string_builder_start defined %d times", n)
	}
}

func TestEqualityName(t *testing.T) {
	tests := []struct {
		family   string
		negate   bool
		nullable string
		want     string
	}{
		{"int", false, "both", "__tact_int_eq_nullable"},
		{"int", true, "left", "__tact_int_neq_nullable_left"},
		{"cell", false, "", "__tact_cell_eq"},
		{"slice", true, "right", "__tact_slice_neq_nullable_right"},
	}
	for _, tt := range tests {
		if got := EqualityName(tt.family, tt.negate, tt.nullable); got != tt.want {
			t.Errorf("EqualityName(%q, %v, %q) = %q, want %q", tt.family, tt.negate, tt.nullable, got, tt.want)
		}
	}
}
