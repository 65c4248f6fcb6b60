package dict

import (
	"fmt"

	"github.com/xyproto/tactc/internal/writer"
)

// Write declares the raw primitives and the full key/value matrix. Nothing is
// emitted until a caller uses one of the names.
func Write(ctx *writer.Context) {
	writePrimitives(ctx)
	for _, k := range Keys {
		for _, v := range Values {
			m := matrix{ctx: ctx, k: k, v: v}
			m.get()
			m.min()
			m.next()
			m.set()
			m.replace()
			m.replaceGet()
			m.deleteGet()
		}
	}
	for _, k := range Keys {
		writeExists(ctx, k)
	}
}

// matrix generates the functions of one key/value pair
type matrix struct {
	ctx *writer.Context
	k   KeyEncoding
	v   ValueEncoding
}

// native is the FunC prefix of the width-aware builtins for the key
func (m matrix) native() string {
	switch m.k {
	case KeyUint:
		return "udict"
	case KeyInt:
		return "idict"
	}
	return "dict"
}

func (m matrix) refSuffix() string {
	if m.v == ValueCell {
		return "_ref"
	}
	return ""
}

// declare registers one operation with the attributes shared by the matrix
func (m matrix) declare(op Op, signature string, body func()) {
	m.ctx.Fun(FuncName(op, m.k, m.v), func() {
		m.ctx.Signature(signature)
		m.ctx.Flag(writer.FlagInline)
		m.ctx.Tag("stdlib")
		m.ctx.Body(body)
	})
}

func (m matrix) name(op Op) string {
	return FuncName(op, m.k, m.v)
}

func (m matrix) lookup() string {
	if m.k == KeySlice {
		return m.ctx.Used("__tact_dict_get" + m.refSuffix())
	}
	return m.native() + "_get" + m.refSuffix() + "?"
}

func (m matrix) remove() string {
	if m.k == KeySlice {
		return m.ctx.Used("__tact_dict_delete")
	}
	return m.native() + "_delete?"
}

func (m matrix) removeGet() string {
	if m.k == KeySlice {
		return m.ctx.Used("__tact_dict_delete_get" + m.refSuffix())
	}
	return m.native() + "_delete_get" + m.refSuffix() + "?"
}

func (m matrix) get() {
	sig := fmt.Sprintf("%s %s(cell d, int kl, %s k%s)", m.v.funcType(), m.name(OpGet), m.k.funcType(), m.v.widthParam())
	m.declare(OpGet, sig, func() {
		m.ctx.Write(`
			var (r, ok) = ` + m.lookup() + `(d, kl, k);
			if (ok) {
			    return ` + m.v.load("r") + `;
			} else {
			    return null();
			}
		`)
	})
}

func (m matrix) set() {
	sig := fmt.Sprintf("(cell, ()) %s(cell d, int kl, %s k, %s v%s)", m.name(OpSet), m.k.funcType(), m.v.funcType(), m.v.widthParam())
	m.declare(OpSet, sig, func() {
		var store string
		switch {
		case m.v == ValueCell && m.k == KeySlice:
			store = m.ctx.Used("__tact_dict_set_ref") + "(d, kl, k, v)"
		case m.v == ValueCell:
			store = "(" + m.native() + "_set_ref(d, kl, k, v), ())"
		case m.v == ValueSlice && m.k != KeySlice:
			store = "(" + m.native() + "_set(d, kl, k, v), ())"
		default:
			store = "(" + m.native() + "_set_builder(d, kl, k, begin_cell()." + m.v.store() + "), ())"
		}
		m.ctx.Write(`
			if (null?(v)) {
			    var (r, ok) = ` + m.remove() + `(d, kl, k);
			    return (r, ());
			} else {
			    return ` + store + `;
			}
		`)
	})
}

func (m matrix) replace() {
	sig := fmt.Sprintf("(cell, (int)) %s(cell d, int kl, %s k, %s v%s)", m.name(OpReplace), m.k.funcType(), m.v.funcType(), m.v.widthParam())
	m.declare(OpReplace, sig, func() {
		var store string
		switch {
		case m.v == ValueCell && m.k == KeySlice:
			store = m.ctx.Used("__tact_dict_replace_ref") + "(d, kl, k, v)"
		case m.v == ValueCell:
			store = m.native() + "_replace_ref?(d, kl, k, v)"
		case m.v == ValueSlice && m.k != KeySlice:
			store = m.native() + "_replace?(d, kl, k, v)"
		default:
			store = m.native() + "_replace_builder?(d, kl, k, begin_cell()." + m.v.store() + ")"
		}
		m.ctx.Write(`
			if (null?(v)) {
			    var (r, ok) = ` + m.remove() + `(d, kl, k);
			    return (r, (ok));
			} else {
			    return ` + store + `;
			}
		`)
	})
}

func (m matrix) replaceGet() {
	sig := fmt.Sprintf("(cell, (%s)) %s(cell d, int kl, %s k, %s v%s)", m.v.funcType(), m.name(OpReplaceGet), m.k.funcType(), m.v.funcType(), m.v.widthParam())
	m.declare(OpReplaceGet, sig, func() {
		var swap string
		switch {
		case m.v == ValueCell && m.k == KeySlice:
			swap = "d~" + m.ctx.Used("__tact_dict_replaceget_ref") + "(kl, k, v)"
		case m.v == ValueCell:
			swap = "d~" + m.native() + "_replaceget_ref?(kl, k, v)"
		case m.v == ValueSlice && m.k != KeySlice:
			swap = "d~" + m.native() + "_replaceget?(kl, k, v)"
		default:
			swap = "d~" + m.native() + "_replaceget?(kl, k, begin_cell()." + m.v.store() + ".end_cell().begin_parse())"
		}
		m.ctx.Write(`
			var (old, ok) = null?(v) ? d~` + m.removeGet() + `(kl, k) : ` + swap + `;
			if (ok) {
			    return (d, ` + m.v.load("old") + `);
			} else {
			    return (d, null());
			}
		`)
	})
}

func (m matrix) deleteGet() {
	sig := fmt.Sprintf("(cell, (%s)) %s(cell d, int kl, %s k%s)", m.v.funcType(), m.name(OpDeleteGet), m.k.funcType(), m.v.widthParam())
	m.declare(OpDeleteGet, sig, func() {
		m.ctx.Write(`
			var (old, ok) = d~` + m.removeGet() + `(kl, k);
			if (ok) {
			    return (d, ` + m.v.load("old") + `);
			} else {
			    return (d, null());
			}
		`)
	})
}

func (m matrix) min() {
	sig := fmt.Sprintf("(%s, %s, int) %s(cell d, int kl%s)", m.k.funcType(), m.v.funcType(), m.name(OpMin), m.v.widthParam())
	m.declare(OpMin, sig, func() {
		var first string
		if m.k == KeySlice {
			first = m.ctx.Used("__tact_dict_min" + m.refSuffix())
		} else {
			first = m.native() + "_get_min" + m.refSuffix() + "?"
		}
		m.ctx.Write(`
			var (key, value, flag) = ` + first + `(d, kl);
			if (flag) {
			    return (key, ` + m.v.load("value") + `, flag);
			} else {
			    return (null(), null(), flag);
			}
		`)
	})
}

func (m matrix) next() {
	sig := fmt.Sprintf("(%s, %s, int) %s(cell d, int kl, %s pivot%s)", m.k.funcType(), m.v.funcType(), m.name(OpNext), m.k.funcType(), m.v.widthParam())
	m.declare(OpNext, sig, func() {
		if m.k == KeySlice && m.v == ValueSlice {
			m.ctx.Write("return " + m.ctx.Used("__tact_dict_next") + "(d, kl, pivot);")
			return
		}
		var following string
		if m.k == KeySlice {
			following = m.ctx.Used("__tact_dict_next")
		} else {
			following = m.native() + "_get_next?"
		}
		// the next instructions return the value slice even for references
		value := m.v.load("value")
		if m.v == ValueCell {
			value = "value~load_ref()"
		}
		m.ctx.Write(`
			var (key, value, flag) = ` + following + `(d, kl, pivot);
			if (flag) {
			    return (key, ` + value + `, flag);
			} else {
			    return (null(), null(), flag);
			}
		`)
	})
}

func writeExists(ctx *writer.Context, k KeyEncoding) {
	ctx.Fun(ExistsName(k), func() {
		ctx.Signature(fmt.Sprintf("int %s(cell d, int kl, %s k)", ExistsName(k), k.funcType()))
		ctx.Flag(writer.FlagInline)
		ctx.Tag("stdlib")
		ctx.Body(func() {
			lookup := matrix{ctx: ctx, k: k, v: ValueSlice}.lookup()
			ctx.Write(`
				var (r, ok) = ` + lookup + `(d, kl, k);
				return ok;
			`)
		})
	})
}
