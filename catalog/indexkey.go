package catalog

import "coredb/indexhash"

// ValueToIndexKey projects a column value onto the hash table's fixed
// 8-byte key: Int32 occupies the low 4 bytes big-endian, Varchar is
// truncated (or zero-padded) to 8 bytes. Index lookups only ever need
// hash-equality, not ordering, so truncation costs nothing beyond an
// occasional extra bucket collision the hash table already tolerates.
func ValueToIndexKey(v Value) indexhash.Key {
	var k indexhash.Key
	switch v.Kind {
	case Int32:
		n := uint32(v.int32Val)
		k[4] = byte(n >> 24)
		k[5] = byte(n >> 16)
		k[6] = byte(n >> 8)
		k[7] = byte(n)
	case Varchar:
		copy(k[:], v.strVal)
	default:
		panic("catalog: value has no indexable kind")
	}
	return k
}
