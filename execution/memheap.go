package execution

import (
	"sync"

	"coredb/catalog"
	"coredb/storage/rid"
)

// MemHeap is an in-memory row store satisfying catalog.TableHeap, used by
// tests and the demo in place of a disk-backed heap (out of scope for this
// engine per its framing of heap storage as an executor-layer concern, not
// a storage-core one). Adapted from disk/structures/table_heap.go's
// InsertTuple/ReadTuple/HardDeleteTuple shape, with pages collapsed to a
// single growable slice and every RID's PageID pinned at 0.
type MemHeap struct {
	mu      sync.Mutex
	slots   [][]byte
	deleted []bool
}

func NewMemHeap() *MemHeap {
	return &MemHeap{}
}

func (h *MemHeap) InsertTuple(data []byte) (rid.RID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	h.slots = append(h.slots, cp)
	h.deleted = append(h.deleted, false)
	return rid.New(0, uint32(len(h.slots)-1)), true
}

func (h *MemHeap) GetTuple(id rid.RID) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := int(id.SlotNum)
	if idx < 0 || idx >= len(h.slots) || h.deleted[idx] {
		return nil, false
	}
	return h.slots[idx], true
}

func (h *MemHeap) DeleteTuple(id rid.RID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := int(id.SlotNum)
	if idx < 0 || idx >= len(h.slots) || h.deleted[idx] {
		return false
	}
	h.deleted[idx] = true
	return true
}

func (h *MemHeap) Iterator() catalog.TableHeapIterator {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &memHeapIterator{heap: h, next: 0}
}

type memHeapIterator struct {
	heap *MemHeap
	next int
}

func (it *memHeapIterator) Next() (rid.RID, []byte, bool) {
	it.heap.mu.Lock()
	defer it.heap.mu.Unlock()

	for it.next < len(it.heap.slots) {
		idx := it.next
		it.next++
		if !it.heap.deleted[idx] {
			return rid.New(0, uint32(idx)), it.heap.slots[idx], true
		}
	}
	return rid.RID{}, nil, false
}
