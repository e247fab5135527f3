package indexhash

import (
	"coredb/storage/page"
	"coredb/storage/rid"
)

// Key is the hash table's key type: a fixed-width byte string, mirroring
// BusTub's GenericKey<8> — the instantiation it uses for its own default
// secondary index.
type Key [8]byte

// pairSize is the on-disk size of one (Key, rid.RID) slot.
const pairSize = 8 + 8

// BucketArraySize is the largest number of (key, value) slots a bucket
// page can hold alongside its two parallel occupied/readable bitmaps,
// derived from the page size and pair size rather than hardcoded: solving
// n*pairSize + 2*ceil(n/8) <= PageSize for n, approximating ceil(n/8) by
// its low-order-bit-safe bound n/8 rounded up via the 8*PageSize form.
const BucketArraySize = (8 * page.PageSize) / (8*pairSize + 2)

const bitmapBytes = (BucketArraySize + 7) / 8

// BucketPage holds up to BucketArraySize (key, value) pairs plus two
// bitmaps: Occupied marks every slot ever written (scanning stops at the
// first unoccupied slot), Readable marks which occupied slots are live
// (a cleared Readable bit with Occupied still set is a tombstone left by
// Remove).
type BucketPage struct {
	Keys     [BucketArraySize]Key
	Values   [BucketArraySize]rid.RID
	Occupied [bitmapBytes]byte
	Readable [bitmapBytes]byte
}

func (b *BucketPage) IsOccupied(idx uint32) bool {
	return b.Occupied[idx/8]&(1<<(idx%8)) != 0
}

func (b *BucketPage) setOccupied(idx uint32) {
	b.Occupied[idx/8] |= 1 << (idx % 8)
}

func (b *BucketPage) IsReadable(idx uint32) bool {
	return b.Readable[idx/8]&(1<<(idx%8)) != 0
}

func (b *BucketPage) setReadable(idx uint32) {
	b.Readable[idx/8] |= 1 << (idx % 8)
}

func (b *BucketPage) clearReadable(idx uint32) {
	b.Readable[idx/8] &^= 1 << (idx % 8)
}

func (b *BucketPage) KeyAt(idx uint32) Key       { return b.Keys[idx] }
func (b *BucketPage) ValueAt(idx uint32) rid.RID { return b.Values[idx] }

// GetValue appends every value stored under key to result, returning
// whether it found at least one. Scanning stops at the first unoccupied
// slot — occupied slots are always a prefix of the array.
func (b *BucketPage) GetValue(key Key, result *[]rid.RID) bool {
	for i := uint32(0); i < BucketArraySize; i++ {
		if !b.IsOccupied(i) {
			break
		}
		if b.IsReadable(i) && b.Keys[i] == key {
			*result = append(*result, b.Values[i])
		}
	}
	return len(*result) > 0
}

// Insert adds (key, value) to the first unoccupied slot. Returns false if
// the exact pair already exists (readable) or the bucket is full.
func (b *BucketPage) Insert(key Key, value rid.RID) bool {
	for i := uint32(0); i < BucketArraySize; i++ {
		if b.IsOccupied(i) && b.IsReadable(i) && b.Keys[i] == key && b.Values[i] == value {
			return false
		}
		if !b.IsOccupied(i) {
			b.Keys[i] = key
			b.Values[i] = value
			b.setOccupied(i)
			b.setReadable(i)
			return true
		}
	}
	return false
}

// Remove tombstones the (key, value) pair if present.
func (b *BucketPage) Remove(key Key, value rid.RID) bool {
	for i := uint32(0); i < BucketArraySize; i++ {
		if b.IsOccupied(i) && b.IsReadable(i) && b.Keys[i] == key && b.Values[i] == value {
			b.clearReadable(i)
			return true
		}
	}
	return false
}

// RemoveAt tombstones whatever is at idx, if occupied and readable.
func (b *BucketPage) RemoveAt(idx uint32) {
	if b.IsOccupied(idx) && b.IsReadable(idx) {
		b.clearReadable(idx)
	}
}

// EmptyAll drains every readable (key, value) pair out of the bucket and
// clears every slot, occupied or not — used by splitInsert to redistribute
// a full bucket's contents across itself and a freshly allocated sibling.
func (b *BucketPage) EmptyAll() (keys []Key, values []rid.RID) {
	for i := uint32(0); i < BucketArraySize; i++ {
		if b.IsReadable(i) {
			keys = append(keys, b.Keys[i])
			values = append(values, b.Values[i])
		}
	}
	*b = BucketPage{}
	return keys, values
}

// IsFull reports whether every slot is occupied.
func (b *BucketPage) IsFull() bool {
	for i := uint32(0); i < BucketArraySize; i++ {
		if !b.IsOccupied(i) {
			return false
		}
	}
	return true
}

// NumReadable counts live (non-tombstoned) entries.
func (b *BucketPage) NumReadable() uint32 {
	var n uint32
	for i := uint32(0); i < BucketArraySize; i++ {
		if b.IsReadable(i) {
			n++
		}
	}
	return n
}

func (b *BucketPage) IsEmpty() bool {
	return b.NumReadable() == 0
}

// bucketPageEncodedSize is BucketPage's flattened on-disk size.
const bucketPageEncodedSize = BucketArraySize*pairSize + 2*bitmapBytes

func init() {
	if bucketPageEncodedSize > page.PageSize {
		panic("indexhash: bucket page layout does not fit in a page")
	}
}

// Encode serializes b into p's data buffer.
func (b *BucketPage) Encode(p *page.Page) {
	offset := 0
	for i := 0; i < BucketArraySize; i++ {
		copy(p.Data[offset:offset+8], b.Keys[i][:])
		offset += 8
		idBytes := b.Values[i].Bytes()
		copy(p.Data[offset:offset+8], idBytes[:])
		offset += 8
	}
	copy(p.Data[offset:offset+bitmapBytes], b.Occupied[:])
	offset += bitmapBytes
	copy(p.Data[offset:offset+bitmapBytes], b.Readable[:])
	p.IsDirty = true
}

// DecodeBucketPage reads a BucketPage out of p's data buffer.
func DecodeBucketPage(p *page.Page) *BucketPage {
	b := &BucketPage{}
	offset := 0
	for i := 0; i < BucketArraySize; i++ {
		copy(b.Keys[i][:], p.Data[offset:offset+8])
		offset += 8
		var idBytes [8]byte
		copy(idBytes[:], p.Data[offset:offset+8])
		b.Values[i] = rid.FromBytes(idBytes)
		offset += 8
	}
	copy(b.Occupied[:], p.Data[offset:offset+bitmapBytes])
	offset += bitmapBytes
	copy(b.Readable[:], p.Data[offset:offset+bitmapBytes])
	return b
}
