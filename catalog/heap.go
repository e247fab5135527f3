package catalog

import "coredb/storage/rid"

// TableHeap is the row store an executor scans, named only as an
// interface per the engine's framing of heap storage as out of scope for
// the storage core itself — execution/memheap.go is the only
// implementation, used by tests and the demo, never by catalog itself.
type TableHeap interface {
	InsertTuple(data []byte) (rid.RID, bool)
	GetTuple(id rid.RID) ([]byte, bool)
	DeleteTuple(id rid.RID) bool
	Iterator() TableHeapIterator
}

// TableHeapIterator walks a TableHeap's live tuples in an unspecified
// order, matching the teacher's structures.TableIterator shape.
type TableHeapIterator interface {
	// Next returns the next live tuple, or ok == false once exhausted.
	Next() (id rid.RID, data []byte, ok bool)
}
