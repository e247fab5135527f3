package catalog

import (
	"fmt"

	"coredb/storage/rid"
)

// Tuple is a flat inlined byte row plus the RID it was read from (zero
// value if not yet placed in a heap), adapted from catalog/tuple.go —
// collapsed onto a plain byte slice since this engine has no on-disk Row
// type of its own to embed.
type Tuple struct {
	Data []byte
	RID  rid.RID
}

// NewTuple serializes values into a single inlined byte buffer per schema,
// matching the teacher's NewTupleWithSchema.
func NewTuple(values []Value, schema *Schema) (*Tuple, error) {
	cols := schema.GetColumns()
	if len(values) != len(cols) {
		return nil, fmt.Errorf("catalog: schema has %d columns, got %d values", len(cols), len(values))
	}

	data := make([]byte, schema.Length())
	for i, col := range cols {
		values[i].Serialize(data[col.Offset : col.Offset+col.InlinedSize()])
	}
	return &Tuple{Data: data}, nil
}

// GetValue decodes the columnIdx'th column out of t's inlined bytes.
func (t *Tuple) GetValue(schema *Schema, columnIdx int) Value {
	col := schema.GetColumn(columnIdx)
	return DeserializeValue(col.Kind, t.Data[col.Offset:])
}
