package indexhash

import (
	"testing"

	"coredb/storage/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryPage_InitDirectory_ClearsAllSlots(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(5, -1)

	assert.EqualValues(t, 5, d.PageID)
	assert.EqualValues(t, 0, d.GlobalDepth)
	for i := 0; i < DirectoryArraySize; i++ {
		assert.Equal(t, page.InvalidPageID, d.BucketPageIDs[i])
		assert.EqualValues(t, 0, d.LocalDepths[i])
	}
}

func TestDirectoryPage_IncrGlobalDepth_FirstCallJustSetsDepthToOne(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.IncrGlobalDepth()
	assert.EqualValues(t, 1, d.GlobalDepth)
}

func TestDirectoryPage_IncrGlobalDepth_MirrorsExistingSlots(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.IncrGlobalDepth() // depth 1
	d.SetBucketPageID(0, 10)
	d.SetLocalDepth(0, 1)
	d.SetBucketPageID(1, 20)
	d.SetLocalDepth(1, 1)

	d.IncrGlobalDepth() // depth 2
	require.EqualValues(t, 2, d.GlobalDepth)
	assert.EqualValues(t, 10, d.GetBucketPageID(0))
	assert.EqualValues(t, 10, d.GetBucketPageID(2), "slot 2 mirrors slot 0 after doubling")
	assert.EqualValues(t, 20, d.GetBucketPageID(1))
	assert.EqualValues(t, 20, d.GetBucketPageID(3), "slot 3 mirrors slot 1 after doubling")
}

func TestDirectoryPage_GlobalDepthMask(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.IncrGlobalDepth()
	d.IncrGlobalDepth()
	assert.EqualValues(t, 0b11, d.GlobalDepthMask())
}

func TestDirectoryPage_CanShrink_FalseAtDepthOne(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.IncrGlobalDepth()
	assert.False(t, d.CanShrink())
}

func TestDirectoryPage_CanShrink_FalseWhenABucketIsAtGlobalDepth(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.IncrGlobalDepth()
	d.IncrGlobalDepth()
	d.SetLocalDepth(0, 2)
	d.SetLocalDepth(1, 1)
	d.SetLocalDepth(2, 1)
	d.SetLocalDepth(3, 1)
	assert.False(t, d.CanShrink())
}

func TestDirectoryPage_CanShrink_TrueWhenEveryLocalDepthIsBelowGlobal(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.IncrGlobalDepth()
	d.IncrGlobalDepth()
	d.SetLocalDepth(0, 1)
	d.SetLocalDepth(1, 1)
	d.SetLocalDepth(2, 1)
	d.SetLocalDepth(3, 1)
	assert.True(t, d.CanShrink())
}

func TestDirectoryPage_GetSplitImageIndex_ZeroLocalDepth(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	assert.EqualValues(t, 1, d.GetSplitImageIndex(0))
	assert.EqualValues(t, 0, d.GetSplitImageIndex(1))
}

func TestDirectoryPage_GetSplitImageIndex_NonZeroLocalDepth(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(1, -1)
	d.SetLocalDepth(5, 2)
	assert.EqualValues(t, 5^(1<<1), d.GetSplitImageIndex(5))
}

func TestDirectoryPage_EncodeDecode_RoundTrips(t *testing.T) {
	d := &DirectoryPage{}
	d.InitDirectory(7, 42)
	d.IncrGlobalDepth()
	d.SetBucketPageID(0, 100)
	d.SetBucketPageID(1, 200)
	d.SetLocalDepth(0, 1)
	d.SetLocalDepth(1, 1)

	p := page.NewPage(7)
	d.Encode(p)

	roundTripped := DecodeDirectoryPage(p)
	assert.Equal(t, d, roundTripped)
}
