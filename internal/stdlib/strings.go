package stdlib

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/writer"
)

func writeTuples(ctx *writer.Context) {
	fun(ctx, "__tact_tuple_create_0", "tuple __tact_tuple_create_0()", 0, func() {
		ctx.Asm("", "NIL")
	})
	fun(ctx, "__tact_tuple_destroy_0", "() __tact_tuple_destroy_0()", writer.FlagInline, func() {
		ctx.Body(func() { ctx.Append("return ();") })
	})

	for i := 1; i <= MaxTupleSize; i++ {
		i := i
		vars := make([]string, i)
		for j := range vars {
			vars[j] = fmt.Sprintf("X%d", j)
		}
		list := strings.Join(vars, ", ")

		create := fmt.Sprintf("__tact_tuple_create_%d", i)
		fun(ctx, create, fmt.Sprintf("forall %s -> tuple %s((%s) v)", list, create, list), 0, func() {
			ctx.Asm("", fmt.Sprintf("%d TUPLE", i))
		})
		destroy := fmt.Sprintf("__tact_tuple_destroy_%d", i)
		fun(ctx, destroy, fmt.Sprintf("forall %s -> (%s) %s(tuple v)", list, list, destroy), 0, func() {
			ctx.Asm("", fmt.Sprintf("%d UNTUPLE", i))
		})
	}
}

// writeStrings declares the string builder: a list of builders where the head
// is the cell being filled and every full cell is pushed down the list.
func writeStrings(ctx *writer.Context) {
	start := func(name, init string) {
		fun(ctx, name, "tuple "+name+"()", writer.FlagInline, func() {
			ctx.Body(func() {
				ctx.Write("return " + ctx.Used("__tact_string_builder_start") + "(" + init + ");")
			})
		})
	}
	start("__tact_string_builder_start_comment", "begin_cell().store_uint(0, 32)")
	start("__tact_string_builder_start_tail_string", "begin_cell().store_uint(0, 8)")
	start("__tact_string_builder_start_string", "begin_cell()")

	fun(ctx, "__tact_string_builder_start", "tuple __tact_string_builder_start(builder b)", writer.FlagInline, func() {
		ctx.Body(func() { ctx.Write("return tpush(tpush(empty_tuple(), b), null());") })
	})

	fun(ctx, "__tact_string_builder_end", "cell __tact_string_builder_end(tuple builders)", writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write(`
				(builder b, tuple tail) = uncons(builders);
				cell c = b.end_cell();
				while(~ null?(tail)) {
				    (b, tail) = uncons(tail);
				    c = b.store_ref(c).end_cell();
				}
				return c;
			`)
		})
	})

	fun(ctx, "__tact_string_builder_end_slice", "slice __tact_string_builder_end_slice(tuple builders)", writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write("return " + ctx.Used("__tact_string_builder_end") + "(builders).begin_parse();")
		})
	})

	fun(ctx, "__tact_string_builder_append", "((tuple), ()) __tact_string_builder_append(tuple builders, slice sc)", 0, func() {
		ctx.Body(func() {
			ctx.Write(`
				int sliceRefs = slice_refs(sc);
				int sliceBits = slice_bits(sc);

				while((sliceBits > 0) | (sliceRefs > 0)) {

				    ;; Load the current builder
				    (builder b, tuple tail) = uncons(builders);
				    int remBytes = 127 - (builder_bits(b) / 8);
				    int exBytes = sliceBits / 8;

				    ;; Append bits
				    int amount = min(remBytes, exBytes);
				    if (amount > 0) {
				        slice read = sc~load_bits(amount * 8);
				        b = b.store_slice(read);
				    }

				    ;; Update builders
				    builders = cons(b, tail);

				    ;; Check if we need to add a new cell and continue
				    if (exBytes - amount > 0) {
				        var bb = begin_cell();
				        builders = cons(bb, builders);
				        sliceBits = (exBytes - amount) * 8;
				    } elseif (sliceRefs > 0) {
				        sc = sc~load_ref().begin_parse();
				        sliceRefs = slice_refs(sc);
				        sliceBits = slice_bits(sc);
				    } else {
				        sliceBits = 0;
				        sliceRefs = 0;
				    }
				}

				return ((builders), ());
			`)
		})
	})

	fun(ctx, "__tact_string_builder_append_not_mut", "(tuple) __tact_string_builder_append_not_mut(tuple builders, slice sc)", 0, func() {
		ctx.Body(func() {
			ctx.Write(`
				builders~` + ctx.Used("__tact_string_builder_append") + `(sc);
				return builders;
			`)
		})
	})
}
