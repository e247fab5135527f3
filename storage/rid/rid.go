// Package rid defines the row identifier used throughout the storage and
// transaction cores to address a tuple: the page it lives on plus its slot
// within that page.
package rid

import "fmt"

// RID addresses a single row: the page holding it and the row's slot number
// inside that page. It is also the Value half of every extendible hash
// table instantiated in this module, and the key into the lock manager's
// per-row request queues.
type RID struct {
	PageID  int32
	SlotNum uint32
}

func New(pageID int32, slotNum uint32) RID {
	return RID{PageID: pageID, SlotNum: slotNum}
}

func (r RID) String() string {
	return fmt.Sprintf("%d:%d", r.PageID, r.SlotNum)
}

// Bytes serializes the RID to its fixed 8-byte on-disk representation,
// matching the pair layout HashTableBucketPage stores on disk.
func (r RID) Bytes() [8]byte {
	var b [8]byte
	b[0] = byte(r.PageID)
	b[1] = byte(r.PageID >> 8)
	b[2] = byte(r.PageID >> 16)
	b[3] = byte(r.PageID >> 24)
	b[4] = byte(r.SlotNum)
	b[5] = byte(r.SlotNum >> 8)
	b[6] = byte(r.SlotNum >> 16)
	b[7] = byte(r.SlotNum >> 24)
	return b
}

func FromBytes(b [8]byte) RID {
	pageID := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
	slot := uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24
	return RID{PageID: pageID, SlotNum: slot}
}
