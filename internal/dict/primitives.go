package dict

import "github.com/xyproto/tactc/internal/writer"

// primitive is a slice-keyed dictionary instruction wrapped as a function
type primitive struct {
	name      string
	signature string
	shuffle   string
	code      string
}

// The machine has slice-keyed forms of these instructions but FunC does not
// expose all of them, so they are wrapped with explicit stack shuffles.
var primitives = []primitive{
	{"__tact_dict_delete", "(cell, int) __tact_dict_delete(cell dict, int key_len, slice index)", "index dict key_len", "DICTDEL"},
	{"__tact_dict_delete_int", "(cell, int) __tact_dict_delete_int(cell dict, int key_len, int index)", "index dict key_len", "DICTIDEL"},
	{"__tact_dict_delete_uint", "(cell, int) __tact_dict_delete_uint(cell dict, int key_len, int index)", "index dict key_len", "DICTUDEL"},
	{"__tact_dict_set_ref", "((cell), ()) __tact_dict_set_ref(cell dict, int key_len, slice index, cell value)", "value index dict key_len", "DICTSETREF"},
	{"__tact_dict_replace_ref", "((cell), (int)) __tact_dict_replace_ref(cell dict, int key_len, slice index, cell value)", "value index dict key_len", "DICTREPLACEREF"},
	{"__tact_dict_replaceget_ref", "((cell), (cell, int)) __tact_dict_replaceget_ref(cell dict, int key_len, slice index, cell value)", "value index dict key_len", "DICTREPLACEGETREF NULLSWAPIFNOT"},
	{"__tact_dict_get", "(slice, int) __tact_dict_get(cell dict, int key_len, slice index)", "index dict key_len", "DICTGET NULLSWAPIFNOT"},
	{"__tact_dict_delete_get", "(cell, (slice, int)) __tact_dict_delete_get(cell dict, int key_len, slice index)", "index dict key_len", "DICTDELGET NULLSWAPIFNOT"},
	{"__tact_dict_delete_get_ref", "(cell, (cell, int)) __tact_dict_delete_get_ref(cell dict, int key_len, slice index)", "index dict key_len", "DICTDELGETREF NULLSWAPIFNOT"},
	{"__tact_dict_get_ref", "(cell, int) __tact_dict_get_ref(cell dict, int key_len, slice index)", "index dict key_len", "DICTGETREF NULLSWAPIFNOT"},
	{"__tact_dict_min", "(slice, slice, int) __tact_dict_min(cell dict, int key_len)", "dict key_len -> 1 0 2", "DICTMIN NULLSWAPIFNOT2"},
	{"__tact_dict_min_ref", "(slice, cell, int) __tact_dict_min_ref(cell dict, int key_len)", "dict key_len -> 1 0 2", "DICTMINREF NULLSWAPIFNOT2"},
	{"__tact_dict_next", "(slice, slice, int) __tact_dict_next(cell dict, int key_len, slice pivot)", "pivot dict key_len -> 1 0 2", "DICTGETNEXT NULLSWAPIFNOT2"},
}

func writePrimitives(ctx *writer.Context) {
	for _, p := range primitives {
		p := p
		ctx.Fun(p.name, func() {
			ctx.Signature(p.signature)
			ctx.Tag("stdlib")
			ctx.Asm(p.shuffle, p.code)
		})
	}

	// no instruction returns the next entry as a reference
	ctx.Fun("__tact_dict_next_ref", func() {
		ctx.Signature("(slice, cell, int) __tact_dict_next_ref(cell dict, int key_len, slice pivot)")
		ctx.Tag("stdlib")
		ctx.Body(func() {
			ctx.Write(`
				var (key, value, flag) = ` + ctx.Used("__tact_dict_next") + `(dict, key_len, pivot);
				if (flag) {
				    return (key, value~load_ref(), flag);
				} else {
				    return (null(), null(), flag);
				}
			`)
		})
	})
}
