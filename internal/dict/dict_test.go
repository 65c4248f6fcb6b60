package dict

import (
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/xyproto/tactc/internal/cell"
	"github.com/xyproto/tactc/internal/writer"
)

// everything declares the matrix and generates all of it
func everything(t *testing.T) map[string]*writer.Function {
	t.Helper()
	ctx := writer.New()
	Write(ctx)
	ctx.UseAll()
	funcs, err := ctx.Functions()
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]*writer.Function, len(funcs))
	for _, f := range funcs {
		out[f.Name] = f
	}
	return out
}

func TestMatrixIsComplete(t *testing.T) {
	funcs := everything(t)
	for _, k := range Keys {
		for _, v := range Values {
			for _, op := range Ops {
				if _, ok := funcs[FuncName(op, k, v)]; !ok {
					t.Errorf("missing %s", FuncName(op, k, v))
				}
			}
		}
	}
	exists := 0
	for name := range funcs {
		if strings.HasPrefix(name, "__tact_dict_exists_") {
			exists++
		}
	}
	if exists != 3 {
		t.Errorf("got %d exists functions, want 3", exists)
	}
	if got, want := len(Keys)*len(Values), 27; got != want {
		t.Errorf("matrix has %d pairs, want %d", got, want)
	}
}

func TestSignatureShapes(t *testing.T) {
	funcs := everything(t)
	for _, k := range Keys {
		for _, v := range Values {
			kt, vt := k.funcType(), v.funcType()
			want := map[Op]string{
				OpGet:        vt + " " + FuncName(OpGet, k, v) + "(cell d, int kl, " + kt + " k",
				OpSet:        "(cell, ()) " + FuncName(OpSet, k, v) + "(cell d, int kl, " + kt + " k, " + vt + " v",
				OpReplace:    "(cell, (int)) " + FuncName(OpReplace, k, v) + "(cell d, int kl, " + kt + " k, " + vt + " v",
				OpReplaceGet: "(cell, (" + vt + ")) " + FuncName(OpReplaceGet, k, v) + "(cell d, int kl, " + kt + " k, " + vt + " v",
				OpDeleteGet:  "(cell, (" + vt + ")) " + FuncName(OpDeleteGet, k, v) + "(cell d, int kl, " + kt + " k",
				OpMin:        "(" + kt + ", " + vt + ", int) " + FuncName(OpMin, k, v) + "(cell d, int kl",
				OpNext:       "(" + kt + ", " + vt + ", int) " + FuncName(OpNext, k, v) + "(cell d, int kl, " + kt + " pivot",
			}
			for op, prefix := range want {
				sig := funcs[FuncName(op, k, v)].Signature
				tail := ")"
				if v.HasWidth() {
					tail = ", int vl)"
				}
				if sig != prefix+tail {
					t.Errorf("%s signature = %q, want %q", FuncName(op, k, v), sig, prefix+tail)
				}
			}
		}
	}
	for _, k := range Keys {
		want := "int " + ExistsName(k) + "(cell d, int kl, " + k.funcType() + " k)"
		if got := funcs[ExistsName(k)].Signature; got != want {
			t.Errorf("exists signature = %q, want %q", got, want)
		}
	}
}

func TestSettingNullDeletes(t *testing.T) {
	funcs := everything(t)
	deleters := map[KeyEncoding]string{
		KeySlice: "__tact_dict_delete(d, kl, k)",
		KeyUint:  "udict_delete?(d, kl, k)",
		KeyInt:   "idict_delete?(d, kl, k)",
	}
	for _, k := range Keys {
		for _, v := range Values {
			for _, op := range []Op{OpSet, OpReplace} {
				body := funcs[FuncName(op, k, v)].Code.Text
				if !strings.HasPrefix(body, "if (null?(v)) {\n    var (r, ok) = "+deleters[k]) {
					t.Errorf("%s does not delete on null:\n%s", FuncName(op, k, v), body)
				}
			}
			body := funcs[FuncName(OpReplaceGet, k, v)].Code.Text
			if !strings.HasPrefix(body, "var (old, ok) = null?(v) ? d~") {
				t.Errorf("%s does not delete on null:\n%s", FuncName(OpReplaceGet, k, v), body)
			}
		}
	}
}

func TestGeneratedBodies(t *testing.T) {
	funcs := everything(t)
	tests := []struct {
		name string
		want string
	}{
		{
			"__tact_dict_get_uint_uint",
			"var (r, ok) = udict_get?(d, kl, k);\nif (ok) {\n    return r~load_uint(vl);\n} else {\n    return null();\n}",
		},
		{
			"__tact_dict_get_slice_cell",
			"var (r, ok) = __tact_dict_get_ref(d, kl, k);\nif (ok) {\n    return r;\n} else {\n    return null();\n}",
		},
		{
			"__tact_dict_next_slice_slice",
			"return __tact_dict_next(d, kl, pivot);",
		},
		{
			"__tact_dict_next_int_cell",
			"var (key, value, flag) = idict_get_next?(d, kl, pivot);\nif (flag) {\n    return (key, value~load_ref(), flag);\n} else {\n    return (null(), null(), flag);\n}",
		},
		{
			"__tact_dict_min_uint_coins",
			"var (key, value, flag) = udict_get_min?(d, kl);\nif (flag) {\n    return (key, value~load_coins(), flag);\n} else {\n    return (null(), null(), flag);\n}",
		},
		{
			"__tact_dict_exists_slice",
			"var (r, ok) = __tact_dict_get(d, kl, k);\nreturn ok;",
		},
	}
	for _, tt := range tests {
		if got := funcs[tt.name].Code.Text; got != tt.want {
			t.Errorf("%s body =\n%s\nwant\n%s", tt.name, got, tt.want)
		}
	}

	set := funcs["__tact_dict_set_int_varint32"].Code.Text
	if !strings.Contains(set, "return (idict_set_builder(d, kl, k, begin_cell().store_varint32(v)), ());") {
		t.Errorf("__tact_dict_set_int_varint32 body:\n%s", set)
	}
	replaceGet := funcs["__tact_dict_replaceget_slice_slice"].Code.Text
	if !strings.Contains(replaceGet, "d~dict_replaceget?(kl, k, begin_cell().store_slice(v).end_cell().begin_parse())") {
		t.Errorf("__tact_dict_replaceget_slice_slice body:\n%s", replaceGet)
	}
}

func TestOnlyUsedFunctionsAreEmitted(t *testing.T) {
	ctx := writer.New()
	Write(ctx)
	ctx.Used(FuncName(OpSet, KeySlice, ValueCell))
	ctx.Used(FuncName(OpGet, KeySlice, ValueCell))
	funcs, err := ctx.Functions()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range funcs {
		got = append(got, f.Name)
	}
	want := []string{
		"__tact_dict_set_slice_cell",
		"__tact_dict_get_slice_cell",
		"__tact_dict_set_ref",
		"__tact_dict_delete",
		"__tact_dict_get_ref",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("emitted %v, want %v", got, want)
	}
}

func TestConstantEncodings(t *testing.T) {
	max256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	tests := []struct {
		v     ValueEncoding
		x     *big.Int
		width int
	}{
		{ValueUint, big.NewInt(1), 1},
		{ValueUint, max256, 256},
		{ValueInt, big.NewInt(-1), 1},
		{ValueInt, max256, 257},
		{ValueCoins, cell.MaxCoins, 0},
		{ValueVarint16, big.NewInt(-300), 0},
		{ValueVaruint32, big.NewInt(1 << 40), 0},
	}
	for _, tt := range tests {
		b := cell.NewBuilder()
		if err := tt.v.Store(b, tt.x, tt.width); err != nil {
			t.Errorf("%s.Store(%s): %v", tt.v, tt.x, err)
			continue
		}
		got, err := tt.v.Load(b.EndCell().BeginParse(), tt.width)
		if err != nil || got.Cmp(tt.x) != 0 {
			t.Errorf("%s.Load() = %v, %v, want %s", tt.v, got, err, tt.x)
		}
	}
	if err := ValueCell.Store(cell.NewBuilder(), big.NewInt(1), 0); err == nil {
		t.Error("storing an integer as a cell value succeeded")
	}
}

func TestParseEncodings(t *testing.T) {
	for _, v := range Values {
		if got, ok := ParseValue(v.String()); !ok || got != v {
			t.Errorf("ParseValue(%q) = %v, %v", v.String(), got, ok)
		}
	}
	for _, k := range Keys {
		if got, ok := ParseKey(k.String()); !ok || got != k {
			t.Errorf("ParseKey(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseValue("float"); ok {
		t.Error(`ParseValue("float") succeeded`)
	}
}
