// Package indexhash implements an extendible hash table used as a
// secondary index: a directory page of bucket pointers plus local depths,
// and bucket pages holding the actual key/value pairs, both stored as
// ordinary buffer-pool pages.
package indexhash

import (
	"encoding/binary"

	"coredb/storage/page"
)

// DirectoryArraySize bounds how many directory slots (2^globalDepth at
// most) a single directory page can index. BusTub fixes this at 512; kept
// as a named constant rather than inlined so every array sized off it
// stays in lockstep.
const DirectoryArraySize = 512

// DirectoryPage is the root of an extendible hash table: for every
// possible hash prefix of length GlobalDepth, it records which bucket
// page owns that prefix and how many of the prefix's bits that bucket
// actually discriminates on (LocalDepth).
type DirectoryPage struct {
	PageID        int32
	LSN           int64
	GlobalDepth   uint32
	LocalDepths   [DirectoryArraySize]uint8
	BucketPageIDs [DirectoryArraySize]int32
}

// directoryPageEncodedSize is the exact byte length Encode/Decode use.
const directoryPageEncodedSize = 4 + 8 + 4 + DirectoryArraySize + DirectoryArraySize*4

func init() {
	if directoryPageEncodedSize > page.PageSize {
		panic("indexhash: directory page layout does not fit in a page")
	}
}

// InitDirectory resets the page to a fresh, empty directory: every slot
// unpointed and every local depth zero, ready for the hash table
// constructor to bootstrap bucket 0.
func (d *DirectoryPage) InitDirectory(pageID int32, lsn int64) {
	d.PageID = pageID
	d.LSN = lsn
	d.GlobalDepth = 0
	for i := range d.BucketPageIDs {
		d.BucketPageIDs[i] = page.InvalidPageID
		d.LocalDepths[i] = 0
	}
}

// GlobalDepthMask is GlobalDepth ones in the low bits: hashVal & mask
// picks out a key's directory slot.
func (d *DirectoryPage) GlobalDepthMask() uint32 {
	return (uint32(1) << d.GlobalDepth) - 1
}

// LocalHighBit is LocalDepths[bucketIdx] ones in the low bits.
func (d *DirectoryPage) LocalHighBit(bucketIdx uint32) uint32 {
	return (uint32(1) << d.LocalDepths[bucketIdx]) - 1
}

// IncrGlobalDepth doubles the directory's addressable range, copying each
// existing slot's bucket pointer and local depth into its mirror at
// idx|1<<oldDepth so every new slot still resolves to the bucket it did
// before the doubling.
func (d *DirectoryPage) IncrGlobalDepth() {
	if d.GlobalDepth == 0 {
		d.GlobalDepth++
		return
	}
	mask := uint32(1) << d.GlobalDepth
	for idx := uint32(0); idx < (1 << d.GlobalDepth); idx++ {
		d.BucketPageIDs[idx|mask] = d.BucketPageIDs[idx]
		d.LocalDepths[idx|mask] = d.LocalDepths[idx]
	}
	d.GlobalDepth++
}

// DecrGlobalDepth halves the addressable range, clearing the slots that
// fall outside the smaller directory. Caller must have verified CanShrink.
func (d *DirectoryPage) DecrGlobalDepth() {
	if d.GlobalDepth <= 1 {
		panic("indexhash: cannot decrement global depth below 1")
	}
	mask := uint32(1) << (d.GlobalDepth - 1)
	for idx := uint32(0); idx < (1 << d.GlobalDepth); idx++ {
		if idx&mask > 0 {
			d.BucketPageIDs[idx] = page.InvalidPageID
			d.LocalDepths[idx] = 0
		}
	}
	d.GlobalDepth--
}

func (d *DirectoryPage) GetBucketPageID(bucketIdx uint32) int32 {
	return d.BucketPageIDs[bucketIdx]
}

func (d *DirectoryPage) SetBucketPageID(bucketIdx uint32, bucketPageID int32) {
	d.BucketPageIDs[bucketIdx] = bucketPageID
}

func (d *DirectoryPage) GetLocalDepth(bucketIdx uint32) uint8 {
	return d.LocalDepths[bucketIdx]
}

func (d *DirectoryPage) SetLocalDepth(bucketIdx uint32, localDepth uint8) {
	d.LocalDepths[bucketIdx] = localDepth
}

// CanShrink reports whether the global depth is above 1 and every
// bucket's local depth is strictly below it — the precondition for
// DecrGlobalDepth.
func (d *DirectoryPage) CanShrink() bool {
	if d.GlobalDepth == 1 {
		return false
	}
	for _, ld := range d.LocalDepths[:1<<d.GlobalDepth] {
		if uint32(ld) == d.GlobalDepth {
			return false
		}
	}
	return true
}

// GetSplitImageIndex returns the directory slot that was this bucket's
// sibling at its last split — the only bucket it may ever merge back
// with.
func (d *DirectoryPage) GetSplitImageIndex(bucketIdx uint32) uint32 {
	localDepth := d.LocalDepths[bucketIdx]
	if localDepth == 0 {
		return 1 ^ bucketIdx
	}
	return bucketIdx ^ (1 << (localDepth - 1))
}

// IncrLocalDepth raises bucketIdx's bucket's local depth by one. If every
// directory slot sharing that bucket needs the bump (global depth already
// exceeds the bucket's local depth), all of them are updated together;
// otherwise only bucketIdx's depth is raised and the directory then
// doubles via IncrGlobalDepth, whose mirror copy carries the new depth.
func (d *DirectoryPage) IncrLocalDepth(bucketIdx uint32) {
	if d.GlobalDepth > uint32(d.LocalDepths[bucketIdx]) {
		pageID := d.GetBucketPageID(bucketIdx)
		for i := range d.BucketPageIDs {
			if d.BucketPageIDs[i] == pageID {
				d.LocalDepths[i]++
			}
		}
		return
	}
	d.LocalDepths[bucketIdx]++
	d.IncrGlobalDepth()
}

// DecrLocalDepth lowers bucketIdx's local depth after a merge, then
// shrinks the directory itself if every bucket can now tolerate it.
func (d *DirectoryPage) DecrLocalDepth(bucketIdx uint32) {
	d.LocalDepths[bucketIdx]--
	if d.CanShrink() {
		d.DecrGlobalDepth()
	}
}

// CheckAndUpdateDirectory propagates bucketIdx's bucket page id to every
// directory slot that shares its local-depth prefix, used after a split
// moves half a bucket's keys onto a freshly allocated page.
func (d *DirectoryPage) CheckAndUpdateDirectory(bucketIdx uint32) {
	localMask := d.LocalHighBit(bucketIdx)
	localBucketIdx := bucketIdx & localMask
	pageID := d.BucketPageIDs[bucketIdx]
	for i := range d.BucketPageIDs {
		if uint32(i)&localMask == localBucketIdx {
			d.BucketPageIDs[i] = pageID
		}
	}
}

// Encode serializes d into p's data buffer.
func (d *DirectoryPage) Encode(p *page.Page) {
	buf := p.Data[:directoryPageEncodedSize]
	binary.LittleEndian.PutUint32(buf[0:4], uint32(d.PageID))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(d.LSN))
	binary.LittleEndian.PutUint32(buf[12:16], d.GlobalDepth)
	copy(buf[16:16+DirectoryArraySize], d.LocalDepths[:])
	offset := 16 + DirectoryArraySize
	for i, id := range d.BucketPageIDs {
		binary.LittleEndian.PutUint32(buf[offset+i*4:offset+i*4+4], uint32(id))
	}
	p.IsDirty = true
}

// DecodeDirectoryPage reads a DirectoryPage out of p's data buffer.
func DecodeDirectoryPage(p *page.Page) *DirectoryPage {
	buf := p.Data[:directoryPageEncodedSize]
	d := &DirectoryPage{
		PageID:      int32(binary.LittleEndian.Uint32(buf[0:4])),
		LSN:         int64(binary.LittleEndian.Uint64(buf[4:12])),
		GlobalDepth: binary.LittleEndian.Uint32(buf[12:16]),
	}
	copy(d.LocalDepths[:], buf[16:16+DirectoryArraySize])
	offset := 16 + DirectoryArraySize
	for i := range d.BucketPageIDs {
		d.BucketPageIDs[i] = int32(binary.LittleEndian.Uint32(buf[offset+i*4 : offset+i*4+4]))
	}
	return d
}
