package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUReplacer_VictimEmpty_ReturnsFalse(t *testing.T) {
	r := NewLRUReplacer(4)
	_, ok := r.Victim()
	assert.False(t, ok)
}

func TestLRUReplacer_VictimIsLeastRecentlyUnpinned(t *testing.T) {
	r := NewLRUReplacer(8)
	for _, f := range []int{1, 2, 3, 4, 5} {
		r.Unpin(f)
	}
	require.Equal(t, 5, r.Size())

	v, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, 1, v, "1 was unpinned first, so it must be evicted first")
	assert.Equal(t, 4, r.Size())
}

func TestLRUReplacer_Pin_RemovesFromEvictableSet(t *testing.T) {
	r := NewLRUReplacer(8)
	r.Unpin(1)
	r.Unpin(2)
	r.Pin(1)

	assert.Equal(t, 1, r.Size())
	v, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRUReplacer_Unpin_IsIdempotent(t *testing.T) {
	r := NewLRUReplacer(8)
	r.Unpin(1)
	r.Unpin(1)
	assert.Equal(t, 1, r.Size())
}

func TestLRUReplacer_Pin_OnAbsentFrameIsNoop(t *testing.T) {
	r := NewLRUReplacer(8)
	r.Pin(3) // never unpinned
	assert.Equal(t, 0, r.Size())
}

func TestLRUReplacer_ReplacerOrder_MidListUnpinMovesToFront(t *testing.T) {
	r := NewLRUReplacer(8)
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	// re-pin then re-unpin 2: it should now be the most recently unpinned.
	r.Pin(2)
	r.Unpin(2)

	order := []int{}
	for {
		v, ok := r.Victim()
		if !ok {
			break
		}
		order = append(order, v)
	}
	assert.Equal(t, []int{1, 3, 2}, order)
}
