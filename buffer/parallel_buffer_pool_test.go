package buffer

import (
	"testing"

	"coredb/storage/page"

	"github.com/stretchr/testify/require"
)

func TestParallelBufferPool_NewPage_IdStripesBackToOwningInstance(t *testing.T) {
	pbp := NewParallelBufferPool(4, 4, tempManager(t))

	seen := map[int32]bool{}
	for i := 0; i < 16; i++ {
		id, p := pbp.NewPage()
		require.NotEqual(t, page.InvalidPageID, id)
		require.False(t, seen[id], "page id must never repeat across instances")
		seen[id] = true
		require.True(t, pbp.UnpinPage(id, false))
		_ = p
	}
}

func TestParallelBufferPool_FetchPage_RoutesToTheAllocatingInstance(t *testing.T) {
	pbp := NewParallelBufferPool(3, 4, tempManager(t))

	id, p := pbp.NewPage()
	p.Data[0] = 1
	require.True(t, pbp.UnpinPage(id, true))

	fetched := pbp.FetchPage(id)
	require.NotNil(t, fetched)
	require.Equal(t, byte(1), fetched.Data[0])
}

func TestParallelBufferPool_NewPage_FailsOnlyWhenEveryInstanceIsFull(t *testing.T) {
	pbp := NewParallelBufferPool(2, 1, tempManager(t))

	id1, _ := pbp.NewPage()
	id2, _ := pbp.NewPage()
	require.NotEqual(t, id1, id2)

	id3, p3 := pbp.NewPage()
	require.Equal(t, page.InvalidPageID, id3)
	require.Nil(t, p3)
}
