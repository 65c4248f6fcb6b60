package stdlib

import (
	"fmt"

	"github.com/xyproto/tactc/internal/writer"
)

// eqFamily describes how two non-null values of one FunC type compare
type eqFamily struct {
	prefix string // __tact_<prefix>_eq...
	typ    string
	eq     string // format with a and b
	neq    string
	plain  bool // also generate the variants without null handling
}

var eqFamilies = []eqFamily{
	{"int", "int", "a == b", "a != b", false},
	{"cell", "cell", "a.cell_hash() == b.cell_hash()", "a.cell_hash() != b.cell_hash()", true},
	{"slice", "slice", "a.slice_hash() == b.slice_hash()", "a.slice_hash() != b.slice_hash()", true},
}

// EqualityName returns the runtime function comparing two values. nullable
// is "", "left", "right" or "both".
func EqualityName(family string, negate bool, nullable string) string {
	op := "eq"
	if negate {
		op = "neq"
	}
	switch nullable {
	case "left", "right":
		return fmt.Sprintf("__tact_%s_%s_nullable_%s", family, op, nullable)
	case "both":
		return fmt.Sprintf("__tact_%s_%s_nullable", family, op)
	}
	return fmt.Sprintf("__tact_%s_%s", family, op)
}

func writeEquality(ctx *writer.Context) {
	for _, f := range eqFamilies {
		for _, negate := range []bool{false, true} {
			writeEqFamily(ctx, f, negate)
		}
	}

	// address comparison looks at the data bits only
	bits := func(nullable, guard string) {
		name := "__tact_slice_eq_bits"
		if nullable != "" {
			name += "_nullable"
		}
		if nullable == "left" || nullable == "right" {
			name += "_" + nullable
		}
		fun(ctx, name, "int "+name+"(slice a, slice b)", writer.FlagInline, func() {
			ctx.Body(func() { ctx.Write(guard) })
		})
	}
	bits("", "return equal_slices_bits(a, b);")
	bits("right", "return (null?(b)) ? (false) : (equal_slices_bits(a, b));")
	bits("left", "return (null?(a)) ? (false) : (equal_slices_bits(a, b));")
	bits("both", bothNull("equal_slices_bits(a, b)", false))
}

func writeEqFamily(ctx *writer.Context, f eqFamily, negate bool) {
	cmp, absent := f.eq, "false"
	if negate {
		cmp, absent = f.neq, "true"
	}
	decl := func(nullable, body string) {
		name := EqualityName(f.prefix, negate, nullable)
		sig := fmt.Sprintf("int %s(%s a, %s b)", name, f.typ, f.typ)
		fun(ctx, name, sig, writer.FlagInline, func() {
			ctx.Body(func() { ctx.Write(body) })
		})
	}
	if f.plain {
		decl("", "return ("+cmp+");")
	}
	decl("right", fmt.Sprintf("return (null?(b)) ? (%s) : (%s);", absent, cmp))
	decl("left", fmt.Sprintf("return (null?(a)) ? (%s) : (%s);", absent, cmp))
	decl("both", bothNull(cmp, negate))
}

// bothNull compares two nullable values: two nulls are equal, one null is not
func bothNull(cmp string, negate bool) string {
	same, differ := "true", "false"
	if negate {
		same, differ = "false", "true"
	}
	return fmt.Sprintf(`
		var a_is_null = null?(a);
		var b_is_null = null?(b);
		return ( a_is_null & b_is_null ) ? ( %s ) : ( ( ( ~ a_is_null ) & ( ~ b_is_null ) ) ? ( %s ) : ( %s ) );
	`, same, cmp, differ)
}
