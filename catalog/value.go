// Package catalog supplies the small in-memory type system and tuple
// layout the executor layer scans, joins and aggregates over: Kind/Value
// play the role of the teacher's catalog/db_types package, cut down to the
// two kinds the executor layer actually needs.
package catalog

import (
	"bytes"
	"encoding/binary"

	"coredb/common"
)

// Kind identifies a column's storage type, mirroring db_types.TypeID's
// KindID but without the generalized Size field — this engine only ever
// instantiates Int32 and Varchar.
type Kind uint8

const (
	Int32 Kind = iota + 1
	Varchar
)

func (k Kind) String() string {
	switch k {
	case Int32:
		return "INT32"
	case Varchar:
		return "VARCHAR"
	default:
		return "UNKNOWN"
	}
}

// Value is a typed column value. Exactly one of int32Val/strVal is
// meaningful, selected by Kind — the same tagged-union shape as the
// teacher's db_types.Value, minus the interface{} boxing.
type Value struct {
	Kind     Kind
	int32Val int32
	strVal   string
}

func NewInt32Value(v int32) Value {
	return Value{Kind: Int32, int32Val: v}
}

func NewVarcharValue(v string) Value {
	return Value{Kind: Varchar, strVal: v}
}

func (v Value) AsInt32() int32 {
	return v.int32Val
}

func (v Value) AsString() string {
	return v.strVal
}

// Less orders two values of the same kind, matching db_types's per-type
// Less methods.
func (v Value) Less(than Value) bool {
	switch v.Kind {
	case Int32:
		return v.int32Val < than.int32Val
	case Varchar:
		return v.strVal < than.strVal
	default:
		panic("catalog: value has no comparable kind")
	}
}

func (v Value) Equal(other Value) bool {
	return v.Kind == other.Kind && v.int32Val == other.int32Val && v.strVal == other.strVal
}

// Serialize writes v's inlined encoding into dest, which must be at least
// len(dest) == the owning column's InlinedSize(). Varchar is length-prefixed
// within its fixed slot, matching CharType's size-then-bytes layout.
func (v Value) Serialize(dest []byte) {
	buf := bytes.Buffer{}
	switch v.Kind {
	case Int32:
		common.PanicIfErr(binary.Write(&buf, binary.BigEndian, v.int32Val))
	case Varchar:
		common.PanicIfErr(binary.Write(&buf, binary.BigEndian, uint32(len(v.strVal))))
		buf.WriteString(v.strVal)
	default:
		panic("catalog: value has no serializable kind")
	}
	copy(dest, buf.Bytes())
}

// DeserializeValue reads a Value of the given kind out of src, which must
// start at the column's offset within the tuple's backing bytes.
func DeserializeValue(kind Kind, src []byte) Value {
	switch kind {
	case Int32:
		return NewInt32Value(int32(binary.BigEndian.Uint32(src)))
	case Varchar:
		l := binary.BigEndian.Uint32(src)
		return NewVarcharValue(string(src[4 : 4+l]))
	default:
		panic("catalog: unknown kind in DeserializeValue")
	}
}
