// Package dict generates the dictionary runtime: the raw slice-keyed
// primitives and one function per (key encoding, value encoding, operation).
package dict

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/xyproto/tactc/internal/cell"
)

// KeyEncoding is how a map key is laid out in the dictionary
type KeyEncoding int

const (
	KeySlice KeyEncoding = iota
	KeyUint
	KeyInt
)

// Keys lists every key encoding in generation order
var Keys = []KeyEncoding{KeySlice, KeyUint, KeyInt}

func (k KeyEncoding) String() string {
	switch k {
	case KeySlice:
		return "slice"
	case KeyUint:
		return "uint"
	case KeyInt:
		return "int"
	}
	return fmt.Sprintf("KeyEncoding(%d)", int(k))
}

// funcType is the FunC type of a key parameter
func (k KeyEncoding) funcType() string {
	if k == KeySlice {
		return "slice"
	}
	return "int"
}

// ValueEncoding is how a map value is serialized inside the dictionary
type ValueEncoding int

const (
	ValueSlice ValueEncoding = iota
	ValueInt
	ValueUint
	ValueCell
	ValueCoins
	ValueVarint16
	ValueVarint32
	ValueVaruint16
	ValueVaruint32
)

// Values lists every value encoding in generation order
var Values = []ValueEncoding{
	ValueSlice, ValueInt, ValueUint, ValueCell, ValueCoins,
	ValueVarint16, ValueVarint32, ValueVaruint16, ValueVaruint32,
}

var valueNames = [...]string{"slice", "int", "uint", "cell", "coins", "varint16", "varint32", "varuint16", "varuint32"}

func (v ValueEncoding) String() string {
	if int(v) >= 0 && int(v) < len(valueNames) {
		return valueNames[v]
	}
	return fmt.Sprintf("ValueEncoding(%d)", int(v))
}

// funcType is the FunC type of a value parameter
func (v ValueEncoding) funcType() string {
	switch v {
	case ValueSlice, ValueCell:
		return v.String()
	}
	return "int"
}

// HasWidth reports whether the encoding needs an explicit bit width
func (v ValueEncoding) HasWidth() bool {
	return v == ValueInt || v == ValueUint
}

// widthParam is appended to every signature of a value that needs a width
func (v ValueEncoding) widthParam() string {
	if v.HasWidth() {
		return ", int vl"
	}
	return ""
}

// load is the FunC expression decoding the value from slice src
func (v ValueEncoding) load(src string) string {
	switch v {
	case ValueInt:
		return src + "~load_int(vl)"
	case ValueUint:
		return src + "~load_uint(vl)"
	case ValueSlice, ValueCell:
		return src
	}
	return src + "~load_" + v.String() + "()"
}

// store is the builder call serializing v
func (v ValueEncoding) store() string {
	switch v {
	case ValueInt:
		return "store_int(v, vl)"
	case ValueUint:
		return "store_uint(v, vl)"
	case ValueSlice:
		return "store_slice(v)"
	}
	return "store_" + v.String() + "(v)"
}

// lengthBits is the size of the byte-length prefix of a variable encoding
func (v ValueEncoding) lengthBits() int {
	switch v {
	case ValueCoins, ValueVarint16, ValueVaruint16:
		return 4
	case ValueVarint32, ValueVaruint32:
		return 5
	}
	return 0
}

// ParseKey maps a map key format name to its encoding
func ParseKey(name string) (KeyEncoding, bool) {
	for _, k := range Keys {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// ParseValue maps a map value format name to its encoding
func ParseValue(name string) (ValueEncoding, bool) {
	for _, v := range Values {
		if v.String() == name {
			return v, true
		}
	}
	return 0, false
}

// Store encodes an integer constant the way the generated setter would.
// Slice and cell values are not integers and are rejected.
func (v ValueEncoding) Store(b *cell.Builder, x *big.Int, width int) error {
	switch v {
	case ValueInt:
		return b.StoreInt(x, width)
	case ValueUint:
		return b.StoreUint(x, width)
	case ValueCoins, ValueVaruint16, ValueVaruint32:
		return b.StoreVarUint(x, v.lengthBits())
	case ValueVarint16, ValueVarint32:
		return b.StoreVarInt(x, v.lengthBits())
	}
	return errors.Errorf("%s values are not integers", v)
}

// Load decodes an integer stored by Store
func (v ValueEncoding) Load(s *cell.Slice, width int) (*big.Int, error) {
	switch v {
	case ValueInt:
		return s.LoadInt(width)
	case ValueUint:
		return s.LoadUint(width)
	case ValueCoins, ValueVaruint16, ValueVaruint32:
		return s.LoadVarUint(v.lengthBits())
	case ValueVarint16, ValueVarint32:
		return s.LoadVarInt(v.lengthBits())
	}
	return nil, errors.Errorf("%s values are not integers", v)
}

// Op is one dictionary operation of the matrix
type Op int

const (
	OpGet Op = iota
	OpSet
	OpReplace
	OpReplaceGet
	OpDeleteGet
	OpMin
	OpNext
)

// Ops lists the operations generated for every key/value pair
var Ops = []Op{OpGet, OpSet, OpReplace, OpReplaceGet, OpDeleteGet, OpMin, OpNext}

func (o Op) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpReplace:
		return "replace"
	case OpReplaceGet:
		return "replaceget"
	case OpDeleteGet:
		return "delete_get"
	case OpMin:
		return "min"
	case OpNext:
		return "next"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// FuncName is the registry name of an operation for one key/value pair
func FuncName(op Op, k KeyEncoding, v ValueEncoding) string {
	return fmt.Sprintf("__tact_dict_%s_%s_%s", op, k, v)
}

// ExistsName is the registry name of the membership test for a key encoding
func ExistsName(k KeyEncoding) string {
	return "__tact_dict_exists_" + k.String()
}
