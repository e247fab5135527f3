// Package disk is the external collaborator spec.md places out of scope: a
// byte-addressed page store backed by a single OS file. It exists only so
// the buffer pool, hash index and their tests have something real to drive;
// none of its internals are part of the subsystems under study.
package disk

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"coredb/storage/page"
)

// Manager implements DiskManager against a single on-disk file. Page 0 is
// reserved (AllocatePage never returns it) so that InvalidPageID (-1) and
// "no page yet" are never confused with a real page id.
type DiskManager interface {
	ReadPage(pageID int32, buf *[page.PageSize]byte) error
	WritePage(pageID int32, buf *[page.PageSize]byte) error
	AllocatePage() int32
	DeallocatePage(pageID int32)
	Close() error
}

type Manager struct {
	mu         sync.Mutex
	file       *os.File
	nextPageID int32
}

var _ DiskManager = (*Manager)(nil)

// NewManager opens (creating if absent) the backing file at path.
func NewManager(path string) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}

	next := int32(stat.Size() / page.PageSize)
	if next == 0 {
		next = 1 // page 0 is reserved
	}

	log.Printf("disk: opened %s, size=%d bytes, next page id=%d", path, stat.Size(), next)
	return &Manager{file: f, nextPageID: next}, nil
}

func (m *Manager) ReadPage(pageID int32, buf *[page.PageSize]byte) error {
	if pageID == page.InvalidPageID {
		return fmt.Errorf("disk: read of invalid page id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	off := int64(pageID) * page.PageSize
	n, err := m.file.ReadAt(buf[:], off)
	if err == io.EOF && n == 0 {
		// page was allocated but never written; treat as all-zero.
		*buf = [page.PageSize]byte{}
		return nil
	}
	if err != nil && err != io.EOF {
		return fmt.Errorf("disk: read page %d: %w", pageID, err)
	}
	return nil
}

func (m *Manager) WritePage(pageID int32, buf *[page.PageSize]byte) error {
	if pageID == page.InvalidPageID {
		return fmt.Errorf("disk: write of invalid page id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	off := int64(pageID) * page.PageSize
	n, err := m.file.WriteAt(buf[:], off)
	if err != nil {
		return fmt.Errorf("disk: write page %d: %w", pageID, err)
	}
	if n != page.PageSize {
		panic(fmt.Sprintf("disk: short write for page %d: wrote %d of %d bytes", pageID, n, page.PageSize))
	}
	return nil
}

// AllocatePage hands out monotonically increasing page ids. It never
// reuses a deallocated id — page id reuse is a freelist concern, and
// spec.md explicitly keeps the freelist/allocation policy inside the disk
// manager, outside the cores this module implements.
func (m *Manager) AllocatePage() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextPageID
	m.nextPageID++
	return id
}

// DeallocatePage is a no-op: BusTub's own disk manager
// treats deallocation as advisory (the page's disk space isn't reclaimed).
func (m *Manager) DeallocatePage(pageID int32) {}

func (m *Manager) Close() error {
	return m.file.Close()
}
