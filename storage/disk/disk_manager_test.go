package disk

import (
	"os"
	"testing"

	"coredb/storage/page"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewUUID()
	require.NoError(t, err)
	path := id.String() + ".coredb"
	t.Cleanup(func() { os.Remove(path) })
	return path
}

func TestManager_AllocatePage_NeverReusesAndSkipsZero(t *testing.T) {
	m, err := NewManager(tempDBPath(t))
	require.NoError(t, err)
	defer m.Close()

	first := m.AllocatePage()
	require.NotEqual(t, int32(0), first)

	seen := map[int32]bool{first: true}
	for i := 0; i < 10; i++ {
		id := m.AllocatePage()
		require.False(t, seen[id], "AllocatePage must never reuse an id")
		seen[id] = true
	}
}

func TestManager_WriteThenRead_RoundTrips(t *testing.T) {
	m, err := NewManager(tempDBPath(t))
	require.NoError(t, err)
	defer m.Close()

	id := m.AllocatePage()

	var out [page.PageSize]byte
	copy(out[:], "hello, disk manager")
	require.NoError(t, m.WritePage(id, &out))

	var in [page.PageSize]byte
	require.NoError(t, m.ReadPage(id, &in))
	require.Equal(t, out, in)
}

func TestManager_ReadPage_NeverWrittenReturnsZeroes(t *testing.T) {
	m, err := NewManager(tempDBPath(t))
	require.NoError(t, err)
	defer m.Close()

	id := m.AllocatePage()

	var in [page.PageSize]byte
	require.NoError(t, m.ReadPage(id, &in))
	require.Equal(t, [page.PageSize]byte{}, in)
}
