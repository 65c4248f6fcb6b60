// Package stdlib declares the FunC runtime support functions that generated
// code calls: hashing, address helpers, debug output, equality families,
// tuples, string builders and the dictionary matrix.
package stdlib

import (
	"github.com/xyproto/tactc/internal/dict"
	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/writer"
)

// Exit codes raised by the runtime
const (
	ErrNullReference = 128
	ErrInvalidOpcode = 129
	ErrCodeNotFound  = 135
)

// MaxTupleSize is the largest tuple the tuple helpers are generated for
const MaxTupleSize = 15

// Write declares every runtime function. Only the ones reachable from
// generated code end up in the output.
func Write(ctx *writer.Context) {
	writeCore(ctx)
	writeDebug(ctx)
	writeEquality(ctx)
	writeTuples(ctx)
	writeStrings(ctx)
	dict.Write(ctx)
}

// fun declares a function tagged as part of the runtime
func fun(ctx *writer.Context, name, signature string, flags writer.Flags, gen func()) {
	ctx.Fun(name, func() {
		ctx.Signature(signature)
		if flags != 0 {
			ctx.Flag(flags)
		}
		ctx.Tag("stdlib")
		gen()
	})
}

func writeCore(ctx *writer.Context) {
	fun(ctx, "__tact_sha256", "int __tact_sha256(slice data)", 0, func() {
		ctx.Asm("", `
			<{
			    <{ DUP SREFS }> PUSHCONT
			    <{ LDREFRTOS }> PUSHCONT
			    WHILE
			    DEPTH
			    HASHEXT_SHA256
			}> PUSHCONT
			1 1 CALLXARGS
		`)
	})

	fun(ctx, "__tact_load_address_opt", "(slice, slice) __tact_load_address_opt(slice cs)", 0, func() {
		ctx.Asm("", `
			b{00} SDBEGINSQ
			IF:<{
			  PUSHNULL
			}>ELSE<{
			  LDMSGADDR
			  SWAP
			}>
		`)
	})

	fun(ctx, "__tact_store_addr_none", "builder __tact_store_addr_none(builder b)", 0, func() {
		ctx.Asm("", "b{00} STSLICECONST")
	})

	fun(ctx, "__tact_store_address_opt", "builder __tact_store_address_opt(slice address, builder b)", writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write(`
				if (null?(address)) {
				    return ` + ctx.Used("__tact_store_addr_none") + `(b);
				} else {
				    return b.store_slice(address);
				}
			`)
		})
	})

	fun(ctx, "__tact_not_null", "forall X -> X __tact_not_null(X x)", writer.FlagImpure|writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write(fmtThrowIf(ErrNullReference, "null?(x)") + " return x;")
		})
	})

	fun(ctx, "__tact_preload_offset", "(slice) __tact_preload_offset(slice s, int offset, int bits)", writer.FlagInline, func() {
		ctx.Asm("", "SDSUBSTR")
	})

	fun(ctx, "__tact_context_get", "(int, slice, int, slice) __tact_context_get()", writer.FlagInline, func() {
		ctx.Body(func() { ctx.Write("return __tact_context;") })
	})

	fun(ctx, "__tact_in_msg_get", "slice __tact_in_msg_get()", writer.FlagInline, func() {
		ctx.Body(func() { ctx.Write("return __tact_in_msg;") })
	})

	fun(ctx, "__tact_context_get_sender", "slice __tact_context_get_sender()", writer.FlagInline, func() {
		ctx.Body(func() { ctx.Write("return __tact_context_sender;") })
	})

	fun(ctx, "__tact_prepare_random", "() __tact_prepare_random()", writer.FlagImpure|writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write(`
				if (null?(__tact_randomized)) {
				    randomize_lt();
				    __tact_randomized = true;
				}
			`)
		})
	})

	fun(ctx, "__tact_dict_set_code", "cell __tact_dict_set_code(cell dict, int id, cell code)", writer.FlagInline, func() {
		ctx.Body(func() { ctx.Write("return udict_set_ref(dict, 16, id, code);") })
	})

	fun(ctx, "__tact_dict_get_code", "cell __tact_dict_get_code(cell dict, int id)", writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write(`
				var (data, ok) = udict_get_ref?(dict, 16, id);
				` + fmtThrowUnless(ErrCodeNotFound, "ok") + `
				return data;
			`)
		})
	})

	// deep equality walks a and deletes each key from a copy of b
	fun(ctx, "__tact_dict_eq", "int __tact_dict_eq(cell a, cell b, int kl)", writer.FlagInline, func() {
		ctx.Body(func() {
			ctx.Write(`
				(slice key, slice value, int flag) = ` + ctx.Used("__tact_dict_min") + `(a, kl);
				while (flag) {
				    (slice value_b, int flag_b) = b~` + ctx.Used("__tact_dict_delete_get") + `(kl, key);
				    ifnot (flag_b) {
				        return 0;
				    }
				    ifnot (value.slice_hash() == value_b.slice_hash()) {
				        return 0;
				    }
				    (key, value, flag) = ` + ctx.Used("__tact_dict_next") + `(a, kl, key);
				}
				return null?(b);
			`)
		})
	})

	writeIntToString(ctx)
}

// writeIntToString declares the Int.toString() extension, which the debug
// helpers also use.
func writeIntToString(ctx *writer.Context) {
	name := ops.Extension("Int", "toString")
	fun(ctx, name, "slice "+name+"(int $self)", 0, func() {
		ctx.Body(func() {
			ctx.Write(`
				tuple b = ` + ctx.Used("__tact_string_builder_start_string") + `();
				if ($self < 0) {
				    b~` + ctx.Used("__tact_string_builder_append") + `("-");
				    $self = - $self;
				}
				tuple digits = null();
				do {
				    digits = cons(48 + $self % 10, digits);
				    $self = $self / 10;
				} until ($self == 0);
				builder chars = begin_cell();
				while (~ null?(digits)) {
				    (int c, digits) = uncons(digits);
				    chars = chars.store_uint(c, 8);
				}
				b~` + ctx.Used("__tact_string_builder_append") + `(chars.end_cell().begin_parse());
				return ` + ctx.Used("__tact_string_builder_end_slice") + `(b);
			`)
		})
	})
}
