package stdlib

import (
	"fmt"
	"strings"

	"github.com/xyproto/tactc/internal/ops"
	"github.com/xyproto/tactc/internal/writer"
)

func fmtThrowIf(code int, cond string) string {
	return fmt.Sprintf("throw_if(%d, %s);", code, cond)
}

func fmtThrowUnless(code int, cond string) string {
	return fmt.Sprintf("throw_unless(%d, %s);", code, cond)
}

// dumpNullable declares a dump helper printing "null" for a null argument
// and the result of show(arg) otherwise.
func dumpNullable(ctx *writer.Context, name, param string, show func() string) {
	sig := fmt.Sprintf("() %s(%s, slice debug_print_1, slice debug_print_2)", name, param)
	arg := param[strings.LastIndex(param, " ")+1:]
	fun(ctx, name, sig, writer.FlagImpure, func() {
		ctx.Body(func() {
			dump := ctx.Used("__tact_dump_str")
			ctx.Write(`
				if (null?(` + arg + `)) {
				    ` + dump + `("null", debug_print_1, debug_print_2);
				} else {
				    ` + dump + `(` + show() + `, debug_print_1, debug_print_2);
				}
			`)
		})
	})
}

func writeDebug(ctx *writer.Context) {
	fun(ctx, "__tact_dump", "forall X -> () __tact_dump(X value, slice debug_print_1, slice debug_print_2)", writer.FlagImpure, func() {
		ctx.Asm("", "STRDUMP DROP STRDUMP DROP s0 DUMP DROP")
	})

	fun(ctx, "__tact_dump_str", "() __tact_dump_str(slice value, slice debug_print_1, slice debug_print_2)", writer.FlagImpure, func() {
		ctx.Asm("", "STRDUMP DROP STRDUMP DROP STRDUMP DROP")
	})

	fun(ctx, "__tact_dump_bool", "() __tact_dump_bool(int value, slice debug_print_1, slice debug_print_2)", writer.FlagImpure, func() {
		ctx.Body(func() {
			dump := ctx.Used("__tact_dump_str")
			ctx.Write(`
				if (null?(value)) {
				    ` + dump + `("null", debug_print_1, debug_print_2);
				} elseif (value) {
				    ` + dump + `("true", debug_print_1, debug_print_2);
				} else {
				    ` + dump + `("false", debug_print_1, debug_print_2);
				}
			`)
		})
	})

	dumpNullable(ctx, "__tact_dump_string", "slice str", func() string { return "str" })
	dumpNullable(ctx, "__tact_dump_int", "int number", func() string {
		return ctx.Used(ops.Extension("Int", "toString")) + "(number)"
	})
	dumpNullable(ctx, "__tact_dump_address", "slice address", func() string {
		return ctx.Used("__tact_address_to_user_friendly") + "(address)"
	})

	fun(ctx, "__tact_dump_stack", "() __tact_dump_stack(slice debug_print_1, slice debug_print_2)", writer.FlagImpure, func() {
		ctx.Asm("", "STRDUMP DROP STRDUMP DROP DUMPSTK")
	})

	fun(ctx, "__tact_crc16", "(slice) __tact_crc16(slice data)", writer.FlagInlineRef, func() {
		ctx.Body(func() {
			ctx.Write(`
				slice new_data = begin_cell()
				    .store_slice(data)
				    .store_slice("0000"s)
				.end_cell().begin_parse();
				int reg = 0;
				while (~ new_data.slice_data_empty?()) {
				    int byte = new_data~load_uint(8);
				    int mask = 0x80;
				    while (mask > 0) {
				        reg <<= 1;
				        if (byte & mask) {
				            reg += 1;
				        }
				        mask >>= 1;
				        if (reg > 0xffff) {
				            reg &= 0xffff;
				            reg ^= 0x1021;
				        }
				    }
				}
				(int q, int r) = divmod(reg, 256);
				return begin_cell()
				    .store_uint(q, 8)
				    .store_uint(r, 8)
				.end_cell().begin_parse();
			`)
		})
	})

	fun(ctx, "__tact_base64_encode", "(slice) __tact_base64_encode(slice data)", 0, func() {
		ctx.Body(func() {
			offset := ctx.Used("__tact_preload_offset")
			ctx.Write(`
				slice chars = "` + base64Alphabet + `"s;
				builder res = begin_cell();

				while (data.slice_bits() >= 24) {
				    (int bs1, int bs2, int bs3) = (data~load_uint(8), data~load_uint(8), data~load_uint(8));

				    int n = (bs1 << 16) | (bs2 << 8) | bs3;

				    res = res
				        .store_slice(` + offset + `(chars, ((n >> 18) & 63) * 8, 8))
				        .store_slice(` + offset + `(chars, ((n >> 12) & 63) * 8, 8))
				        .store_slice(` + offset + `(chars, ((n >>  6) & 63) * 8, 8))
				        .store_slice(` + offset + `(chars, ((n      ) & 63) * 8, 8));
				}

				return res.end_cell().begin_parse();
			`)
		})
	})

	fun(ctx, "__tact_address_to_user_friendly", "(slice) __tact_address_to_user_friendly(slice address)", 0, func() {
		ctx.Body(func() {
			ctx.Write(`
				(int wc, int hash) = address.parse_std_addr();

				slice user_friendly_address = begin_cell()
				    .store_slice("11"s)
				    .store_uint((wc + 0x100) % 0x100, 8)
				    .store_uint(hash, 256)
				.end_cell().begin_parse();

				slice checksum = ` + ctx.Used("__tact_crc16") + `(user_friendly_address);
				slice user_friendly_address_with_checksum = begin_cell()
				    .store_slice(user_friendly_address)
				    .store_slice(checksum)
				.end_cell().begin_parse();

				return ` + ctx.Used("__tact_base64_encode") + `(user_friendly_address_with_checksum);
			`)
		})
	})
}

// base64Alphabet is the URL-safe alphabet, hex encoded for a slice literal
const base64Alphabet = "4142434445464748494A4B4C4D4E4F505152535455565758595A" +
	"6162636465666768696A6B6C6D6E6F707172737475767778797A" +
	"303132333435363738392D5F"
