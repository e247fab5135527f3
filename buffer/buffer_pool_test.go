package buffer

import (
	"os"
	"testing"

	"coredb/storage/disk"
	"coredb/storage/page"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func tempManager(t *testing.T) *disk.Manager {
	t.Helper()
	id, err := uuid.NewUUID()
	require.NoError(t, err)
	path := id.String() + ".coredb"
	t.Cleanup(func() { os.Remove(path) })

	m, err := disk.NewManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestBufferPool_NewPage_IsZeroedWithoutDiskRead(t *testing.T) {
	bp := NewBufferPool(4, tempManager(t))

	id, p := bp.NewPage()
	require.NotEqual(t, page.InvalidPageID, id)
	require.Equal(t, [page.PageSize]byte{}, p.Data)
	require.EqualValues(t, 1, p.PinCount)
}

func TestBufferPool_FetchPage_SecondFetchHitsPageTable(t *testing.T) {
	bp := NewBufferPool(4, tempManager(t))

	id, p := bp.NewPage()
	p.Data[0] = 42
	bp.UnpinPage(id, true)

	fetched := bp.FetchPage(id)
	require.NotNil(t, fetched)
	require.Equal(t, byte(42), fetched.Data[0], "dirty write must survive a re-fetch without an explicit flush")
	require.EqualValues(t, 1, fetched.PinCount)
}

func TestBufferPool_FetchPage_AllPinned_ReturnsNil(t *testing.T) {
	bp := NewBufferPool(2, tempManager(t))

	id1, _ := bp.NewPage()
	id2, _ := bp.NewPage()
	require.NotEqual(t, id1, id2)

	third := bp.FetchPage(999)
	require.Nil(t, third, "no free frame and no evictable frame must fail fetch")
}

func TestBufferPool_UnpinPage_MakesFrameEvictable(t *testing.T) {
	bp := NewBufferPool(1, tempManager(t))

	id1, _ := bp.NewPage()
	require.Nil(t, bp.FetchPage(999), "single pinned frame leaves nothing to evict")

	require.True(t, bp.UnpinPage(id1, false))

	id2, p2 := bp.NewPage()
	require.NotEqual(t, page.InvalidPageID, id2)
	require.NotNil(t, p2)
}

func TestBufferPool_UnpinPage_UnknownPage_ReturnsFalse(t *testing.T) {
	bp := NewBufferPool(2, tempManager(t))
	require.False(t, bp.UnpinPage(123, false))
}

func TestBufferPool_FlushPage_WritesDirtyPageButKeepsDirtyFlag(t *testing.T) {
	bp := NewBufferPool(2, tempManager(t))

	id, p := bp.NewPage()
	p.Data[0] = 7
	p.IsDirty = true

	require.True(t, bp.FlushPage(id))
	require.True(t, p.IsDirty, "FlushPage must not clear IsDirty")
}

func TestBufferPool_FlushAllPages_SkipsInvalidFrames(t *testing.T) {
	bp := NewBufferPool(4, tempManager(t))

	id, p := bp.NewPage()
	p.IsDirty = true
	bp.UnpinPage(id, true)

	// remaining 3 frames are still InvalidPageID; FlushAllPages must not
	// attempt to flush them.
	require.NotPanics(t, func() { bp.FlushAllPages() })
}

func TestBufferPool_DeletePage_PinnedFails(t *testing.T) {
	bp := NewBufferPool(2, tempManager(t))
	id, _ := bp.NewPage()

	require.False(t, bp.DeletePage(id))
}

func TestBufferPool_DeletePage_UnpinnedSucceedsAndFreesFrame(t *testing.T) {
	bp := NewBufferPool(1, tempManager(t))
	id, _ := bp.NewPage()
	require.True(t, bp.UnpinPage(id, false))

	require.True(t, bp.DeletePage(id))

	id2, p2 := bp.NewPage()
	require.NotEqual(t, page.InvalidPageID, id2)
	require.NotNil(t, p2)
	require.Equal(t, [page.PageSize]byte{}, p2.Data)
}

func TestBufferPool_DeletePage_AbsentPageSucceedsTrivially(t *testing.T) {
	bp := NewBufferPool(2, tempManager(t))
	require.True(t, bp.DeletePage(555))
}

func TestBufferPool_Eviction_FlushesDirtyVictimBeforeReuse(t *testing.T) {
	m := tempManager(t)
	bp := NewBufferPool(1, m)

	id1, p1 := bp.NewPage()
	p1.Data[0] = 9
	require.True(t, bp.UnpinPage(id1, true))

	id2, _ := bp.NewPage()
	require.NotEqual(t, id1, id2)

	var out [page.PageSize]byte
	require.NoError(t, m.ReadPage(id1, &out))
	require.Equal(t, byte(9), out[0], "dirty victim must be flushed to disk before its frame is reused")
}
