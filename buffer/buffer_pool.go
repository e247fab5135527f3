// Package buffer implements the replacement-policy-driven page cache: a
// bounded set of frames backed by a disk manager, pin/unpin bookkeeping,
// dirty tracking, and eviction through an LRU Replacer.
package buffer

import (
	"fmt"
	"log"
	"sync"

	"coredb/storage/disk"
	"coredb/storage/page"
)

// BufferPool caches disk pages in pool_size frames. One mutex serialises
// every operation on an instance, including the disk I/O performed while
// evicting or fetching — simple, and correct because no other goroutine
// can observe a frame mid-transition while the mutex is held.
type BufferPool struct {
	mu sync.Mutex

	diskManager  disk.DiskManager
	allocatePage func() int32
	replacer     *LRUReplacer

	frames    []page.Page
	pageTable map[int32]int // page id -> frame id
	freeList  []int         // FIFO of frame ids holding no page
}

// NewBufferPool constructs a pool of poolSize frames over diskManager. All
// frames start in the free list, matching BufferPoolManagerInstance's
// constructor.
func NewBufferPool(poolSize int, diskManager disk.DiskManager) *BufferPool {
	return newBufferPool(poolSize, diskManager, diskManager.AllocatePage)
}

// newBufferPool is the shared constructor behind NewBufferPool and the
// striped instances a ParallelBufferPool builds; allocatePage lets the
// latter hand out page ids on an instance_index + k*num_instances
// stride instead of the disk manager's raw sequence.
func newBufferPool(poolSize int, diskManager disk.DiskManager, allocatePage func() int32) *BufferPool {
	free := make([]int, poolSize)
	frames := make([]page.Page, poolSize)
	for i := range free {
		free[i] = i
		frames[i].PageID = page.InvalidPageID
	}
	return &BufferPool{
		diskManager:  diskManager,
		allocatePage: allocatePage,
		replacer:     NewLRUReplacer(poolSize),
		frames:       frames,
		pageTable:    make(map[int32]int, poolSize),
		freeList:     free,
	}
}

// FetchPage pins the page, reading it from disk into a frame if it isn't
// already resident. Returns nil if the page table hit misses and every
// frame is pinned (no free frame, no replacer victim).
func (b *BufferPool) FetchPage(pageID int32) *page.Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frameID, ok := b.pageTable[pageID]; ok {
		b.pinLocked(frameID)
		return &b.frames[frameID]
	}

	frameID, ok := b.victimLocked()
	if !ok {
		return nil
	}

	delete(b.pageTable, b.frames[frameID].PageID)
	b.pageTable[pageID] = frameID

	frame := &b.frames[frameID]
	frame.Reset(pageID)
	frame.PinCount = 1
	if err := b.diskManager.ReadPage(pageID, &frame.Data); err != nil {
		log.Printf("buffer: FetchPage(%d): read failed: %v", pageID, err)
	}
	return frame
}

// NewPage allocates a fresh page id from the disk manager and pins a
// zeroed frame for it — never reading the id back from disk, since a new
// page is defined as fresh zeroes (spec.md §9 Open Question, resolved in
// SPEC_FULL.md §4.2). Returns (InvalidPageID, nil) if every frame is
// pinned.
func (b *BufferPool) NewPage() (int32, *page.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.victimLocked()
	if !ok {
		return page.InvalidPageID, nil
	}

	pageID := b.allocatePage()
	delete(b.pageTable, b.frames[frameID].PageID)
	b.pageTable[pageID] = frameID

	frame := &b.frames[frameID]
	frame.Reset(pageID)
	frame.PinCount = 1
	return pageID, frame
}

// UnpinPage decrements the page's pin count, ORing isDirty into the
// frame's dirty flag (once dirty, stays dirty until the next eviction).
// When the pin count reaches zero the frame becomes eligible for eviction.
// Returns false if the page isn't resident or was already unpinned to 0.
func (b *BufferPool) UnpinPage(pageID int32, isDirty bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		return false
	}
	frame := &b.frames[frameID]
	if frame.PinCount <= 0 {
		return false
	}

	if isDirty {
		frame.IsDirty = true
	}
	frame.PinCount--
	if frame.PinCount == 0 {
		b.replacer.Unpin(frameID)
	}
	return true
}

// FlushPage writes the page to disk if dirty, regardless of pin count.
// Returns false if the page is not resident. It deliberately does not
// clear IsDirty — see SPEC_FULL.md §4.2's resolution of the matching Open
// Question; a page written here can be written again on its next
// eviction.
func (b *BufferPool) FlushPage(pageID int32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(pageID)
}

func (b *BufferPool) flushLocked(pageID int32) bool {
	frameID, ok := b.pageTable[pageID]
	if !ok {
		return false
	}
	frame := &b.frames[frameID]
	if !frame.IsDirty {
		return true
	}
	if err := b.diskManager.WritePage(pageID, &frame.Data); err != nil {
		log.Printf("buffer: FlushPage(%d): write failed: %v", pageID, err)
		return false
	}
	return true
}

// FlushAllPages flushes every resident page. Frames never fetched into
// (still holding InvalidPageID) are skipped — guarding the bug spec.md §9
// flags in the original FlushAllPgsImp, which would otherwise ask the disk
// manager to flush a sentinel id.
func (b *BufferPool) FlushAllPages() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for pageID := range b.pageTable {
		if pageID == page.InvalidPageID {
			continue
		}
		b.flushLocked(pageID)
	}
}

// DeletePage removes a page from the pool entirely. Succeeds trivially if
// the page isn't resident. Fails if resident with a positive pin count.
// A dirty page is dropped without flushing — callers needing the write
// must FlushPage first.
func (b *BufferPool) DeletePage(pageID int32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable[pageID]
	if !ok {
		return true
	}

	frame := &b.frames[frameID]
	if frame.PinCount > 0 {
		return false
	}

	delete(b.pageTable, pageID)
	frame.Reset(page.InvalidPageID)
	b.freeList = append(b.freeList, frameID)
	// Pin it on the replacer purely to ensure it can't be chosen as a
	// victim while parked in the free list (BP2: never in both places).
	b.replacer.Pin(frameID)
	b.diskManager.DeallocatePage(pageID)
	return true
}

// victimLocked finds a frame to (re)populate, preferring the free list
// over the replacer; the returned frame is not in the replacer, and the
// caller sets its pin count. Caller holds b.mu. If the chosen frame
// held a dirty page it is written back first. Returns ok=false if both
// the free list and the replacer are empty.
func (b *BufferPool) victimLocked() (int, bool) {
	if n := len(b.freeList); n > 0 {
		frameID := b.freeList[0]
		b.freeList = b.freeList[1:]
		return frameID, true
	}

	frameID, ok := b.replacer.Victim()
	if !ok {
		return 0, false
	}

	frame := &b.frames[frameID]
	if frame.PinCount != 0 {
		panic(fmt.Sprintf("buffer: replacer returned pinned frame %d (pin count %d)", frameID, frame.PinCount))
	}
	if frame.IsDirty {
		if err := b.diskManager.WritePage(frame.PageID, &frame.Data); err != nil {
			log.Printf("buffer: eviction flush of page %d failed: %v", frame.PageID, err)
		}
	}
	return frameID, true
}

func (b *BufferPool) pinLocked(frameID int) {
	b.frames[frameID].PinCount++
	b.replacer.Pin(frameID)
}

// PoolSize returns the number of frames this instance owns.
func (b *BufferPool) PoolSize() int {
	return len(b.frames)
}
